package qrsvc

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/schedule"
	"github.com/trezcool/mahudhurio/core/settings"
)

// ErrDisabled means QR check-in is switched off in the device settings.
var ErrDisabled = errors.New("qr: check-in is disabled")

const imageSize = 256 // px, scans reliably from a projected screen

type Service struct {
	frontendBaseURL string
}

func NewService(conf *core.Config) *Service {
	return &Service{frontendBaseURL: strings.TrimRight(conf.FrontendBaseURL, "/")}
}

// CheckInURL builds the link students land on when scanning: the session's
// join code plus its start time, so the checking-in page can refuse scans
// for a session other than the projected one.
func (svc *Service) CheckInURL(course schedule.Course) string {
	q := url.Values{}
	q.Set("code", course.Code)
	q.Set("time", course.StartTime.UTC().Format(time.RFC3339))
	return fmt.Sprintf("%s/attendance?%s", svc.frontendBaseURL, q.Encode())
}

// Generate renders the check-in QR code as a PNG, honoring the QR check-in
// switch.
func (svc *Service) Generate(course schedule.Course, conf settings.Settings) ([]byte, error) {
	if !conf.QRCheckIn {
		return nil, ErrDisabled
	}
	png, err := qrcode.Encode(svc.CheckInURL(course), qrcode.Medium, imageSize)
	if err != nil {
		return nil, errors.Wrap(err, "qr: encoding")
	}
	return png, nil
}
