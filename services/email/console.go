package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/trezcool/mahudhurio/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail string
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    conf.TestMode,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
		svc.send(*msg)
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\n", svc.defaultFromEmail)
	fmt.Fprintf(body, "To: %s\n", joinAddrs(msg.To))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(body, "Cc: %s\n", joinAddrs(msg.Cc))
	}
	fmt.Fprintf(body, "Subject: %s%s\n\n", svc.subjPrefix, msg.Subject)
	body.WriteString(msg.BodyStr)
	for _, at := range msg.Attachments {
		fmt.Fprintf(body, "\n[attachment: %s (%s)]", at.Filename, at.ContentType)
	}
	log.Println(body.String())
}

func joinAddrs(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
