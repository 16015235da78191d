package main

import (
	"log"
	"os"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/auth"
	"github.com/trezcool/mahudhurio/core/settings"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	qrsvc "github.com/trezcool/mahudhurio/services/qr"
	"github.com/trezcool/mahudhurio/storage/localdb"
	"github.com/trezcool/mahudhurio/storage/restapi"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "DASHBOARD : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	// local store
	db, err := localdb.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
	defer db.Close()
	tokens := localdb.NewTokenStore(db)

	// API client; unauthenticated until a refresh token exists
	var source restapi.TokenSource
	if refresh, err := tokens.GetRefreshToken(); err == nil {
		source = restapi.NewRefreshTokenSource(conf, refresh, logger)
	}
	client := restapi.NewClient(conf, source, logger)

	clock := core.NewClock()
	validate, translator := core.NewValidator()

	var mailer core.EmailService
	if conf.SendgridApiKey != "" {
		mailer = emailsvc.NewSendgridService(conf, logger)
	} else {
		mailer = emailsvc.NewConsoleService(conf)
	}

	courseRepo := restapi.NewCourseRepository(client)
	attSvc := attendance.NewService(
		restapi.NewAttendanceRepository(client),
		restapi.NewStudentRepository(client),
		courseRepo,
		localdb.NewJustificationRepository(db),
		conf,
		clock,
		logger,
	)

	cli := commandLine{
		conf:        conf,
		logger:      logger,
		clock:       clock,
		session:     auth.NewMachine(),
		tokens:      tokens,
		courses:     courseRepo,
		attendance:  attSvc,
		settingsSvc: settings.NewService(localdb.NewSettingsRepository(db), validate, translator, clock, logger),
		qr:          qrsvc.NewService(conf),
		mailer:      mailer,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
