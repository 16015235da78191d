package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/auth"
	"github.com/trezcool/mahudhurio/core/settings"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	qrsvc "github.com/trezcool/mahudhurio/services/qr"
	"github.com/trezcool/mahudhurio/storage/dummydb"
	"github.com/trezcool/mahudhurio/storage/restapi"
	"github.com/trezcool/mahudhurio/tests"
)

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatal(err)
	}

	conf := testutil.NewConfig(t)
	logger := logsvc.NewStdLogger(log.New(&bytes.Buffer{}, "", 0))
	validate, translator := core.NewValidator()
	clock := core.FixedClock{T: time.Date(2021, 3, 1, 8, 30, 0, 0, time.UTC)}

	cli := &commandLine{
		conf:    conf,
		logger:  logger,
		clock:   clock,
		session: auth.NewMachine(),
		tokens:  dummydb.NewTokenStore(db),
		courses: dummydb.NewCourseRepository(db),
		attendance: attendance.NewService(
			dummydb.NewRecordRepository(db),
			dummydb.NewStudentRepository(db),
			dummydb.NewCourseRepository(db),
			dummydb.NewJustificationRepository(db),
			conf,
			clock,
			logger,
		),
		settingsSvc: settings.NewService(dummydb.NewSettingsRepository(db), validate, translator, clock, logger),
		qr:          qrsvc.NewService(conf),
		mailer:      emailsvc.NewConsoleService(conf),
	}
	return cli, db
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no args", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: errHelp},
		{name: "login without email", args: []string{"login"}, wantErr: errHelp},
		{name: "report without group", args: []string{"report"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"dashboard"}, tt.args...)
			if err := cli.run(args); !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	origRead, origLogin := readPasswordFunc, loginFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte("pwd"), nil }
	defer func() { readPasswordFunc, loginFunc = origRead, origLogin }()

	t.Run("professor", func(t *testing.T) {
		cli, _ := setup(t)
		loginFunc = func(context.Context, *core.Config, string, string) (restapi.Credentials, auth.Account, error) {
			return restapi.Credentials{Access: "a", Refresh: "r"},
				auth.Account{Email: "prof@uni.dz", Role: auth.RoleProfessor}, nil
		}

		if err := cli.run([]string{"dashboard", "login", "-email", "prof@uni.dz"}); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if got := cli.session.Current(); got != auth.StateAuthenticated {
			t.Errorf("session state = %v, want %v", got, auth.StateAuthenticated)
		}
		if tok, _ := cli.tokens.GetRefreshToken(); tok != "r" {
			t.Errorf("stored refresh token = %q, want r", tok)
		}
	})

	t.Run("role rejected", func(t *testing.T) {
		cli, _ := setup(t)
		loginFunc = func(context.Context, *core.Config, string, string) (restapi.Credentials, auth.Account, error) {
			return restapi.Credentials{}, auth.Account{Role: "student"}, restapi.ErrRoleRejected
		}

		if err := cli.run([]string{"dashboard", "login", "-email", "kid@uni.dz"}); !errors.Is(err, restapi.ErrRoleRejected) {
			t.Fatalf("run() error = %v, want %v", err, restapi.ErrRoleRejected)
		}
		if got := cli.session.Current(); got != auth.StateUnauthorized {
			t.Errorf("session state = %v, want %v", got, auth.StateUnauthorized)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		cli, _ := setup(t)
		loginFunc = func(context.Context, *core.Config, string, string) (restapi.Credentials, auth.Account, error) {
			return restapi.Credentials{}, auth.Account{}, restapi.ErrUnauthorized
		}

		if err := cli.run([]string{"dashboard", "login", "-email", "prof@uni.dz"}); !errors.Is(err, restapi.ErrUnauthorized) {
			t.Fatalf("run() error = %v, want %v", err, restapi.ErrUnauthorized)
		}
		if got := cli.session.Current(); got != auth.StateError {
			t.Errorf("session state = %v, want %v", got, auth.StateError)
		}
	})
}

func Test_commandLine_report(t *testing.T) {
	cli, db := setup(t)
	testutil.SeedGroup(db)

	out := filepath.Join(t.TempDir(), "report.csv")
	if err := cli.run([]string{"dashboard", "report", "-group", "G1", "-out", out}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !bytes.Contains(raw, []byte("Amina Bensalem")) {
		t.Errorf("report missing roster rows:\n%s", raw)
	}
}

func Test_commandLine_reportForDay(t *testing.T) {
	cli, db := setup(t)
	testutil.SeedGroup(db)

	out := filepath.Join(t.TempDir(), "day.csv")
	if err := cli.run([]string{"dashboard", "report", "-group", "G1", "-date", "2021-03-01", "-out", out}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	raw, _ := os.ReadFile(out)
	if !bytes.Contains(raw, []byte("present")) {
		t.Errorf("day report missing statuses:\n%s", raw)
	}

	if err := cli.run([]string{"dashboard", "report", "-group", "G1", "-date", "bogus"}); err == nil {
		t.Error("run() error = nil, want invalid date error")
	}
}

func Test_commandLine_find(t *testing.T) {
	cli, db := setup(t)
	testutil.SeedGroup(db)

	if err := cli.run([]string{"dashboard", "find", "-group", "G1", "-name", "karim"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	// a typo still completes without error thanks to the suggestion path
	if err := cli.run([]string{"dashboard", "find", "-group", "G1", "-name", "karin"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := cli.run([]string{"dashboard", "find", "-group", "G1"}); !errors.Is(err, errHelp) {
		t.Errorf("run() error = %v, want %v", err, errHelp)
	}
}

func Test_commandLine_settings(t *testing.T) {
	cli, _ := setup(t)

	if err := cli.run([]string{"dashboard", "settings", "-qr", "off", "-latency", "20min"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	conf := cli.settingsSvc.Load()
	if conf.QRCheckIn {
		t.Error("QRCheckIn = true, want false")
	}
	if conf.LatencyTime != settings.Latency20 {
		t.Errorf("LatencyTime = %q, want %q", conf.LatencyTime, settings.Latency20)
	}

	if err := cli.run([]string{"dashboard", "settings", "-latency", "45min"}); err == nil {
		t.Error("run() error = nil, want validation error")
	}
	if err := cli.run([]string{"dashboard", "settings", "-qr", "maybe"}); err == nil {
		t.Error("run() error = nil, want toggle error")
	}
}

func Test_commandLine_qr(t *testing.T) {
	cli, db := setup(t)
	testutil.SeedGroup(db)

	// clock sits inside the 08:00 session
	if err := cli.run([]string{"dashboard", "qr"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := filepath.Join(cli.conf.WorkDir, "checkin-ALG1.png")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected QR file: %v", err)
	}

	if err := cli.run([]string{"dashboard", "qr", "-course", "999"}); err == nil {
		t.Error("run() error = nil, want unknown session error")
	}
}
