package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"net/mail"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/term"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/auth"
	"github.com/trezcool/mahudhurio/core/schedule"
	"github.com/trezcool/mahudhurio/core/settings"
	exportsvc "github.com/trezcool/mahudhurio/services/export"
	qrsvc "github.com/trezcool/mahudhurio/services/qr"
	"github.com/trezcool/mahudhurio/storage/restapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	loginFunc        = restapi.Login     // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf        *core.Config
	logger      core.Logger
	clock       core.Clock
	session     *auth.Machine
	tokens      restapi.TokenStore
	courses     schedule.Repository
	attendance  *attendance.Service
	settingsSvc *settings.Service
	qr          *qrsvc.Service
	mailer      core.EmailService
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                               - sign in; the password is prompted next")
	fmt.Println("  report -group GROUP [-date YYYY-MM-DD] [-out FILE] [-email ADDR] - export an attendance report")
	fmt.Println("  find -group GROUP -name NAME                     - look a student up, with typo suggestions")
	fmt.Println("  watch                                            - follow the live timetable and roster")
	fmt.Println("  qr [-course ID]                                  - render the check-in QR code")
	fmt.Println("  settings [-qr on|off] [-autolate on|off] [-latency 5min|10min|15min|20min|30min] - show or change device settings")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The professor's email. The password will be prompted next.")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportGroup := reportCmd.String("group", "", "The student group to report on.")
	reportDate := reportCmd.String("date", "", "A single session day (YYYY-MM-DD); omit for the overall report.")
	reportOut := reportCmd.String("out", "", "Output file (.xlsx or .csv); a name is generated when omitted.")
	reportEmail := reportCmd.String("email", "", "Also email the report to this address.")

	qrCmd := flag.NewFlagSet("qr", flag.ExitOnError)
	qrCourse := qrCmd.Int("course", 0, "Session id; the ongoing session is used when omitted.")

	findCmd := flag.NewFlagSet("find", flag.ExitOnError)
	findGroup := findCmd.String("group", "", "The student group to search in.")
	findName := findCmd.String("name", "", "Name or email to look for.")

	settingsCmd := flag.NewFlagSet("settings", flag.ExitOnError)
	settingsQR := settingsCmd.String("qr", "", "Toggle QR check-in (on|off).")
	settingsAutoLate := settingsCmd.String("autolate", "", "Toggle automatic late marking (on|off).")
	settingsLatency := settingsCmd.String("latency", "", "Late-marking grace period.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginEmail, string(pwd))
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportGroup == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(*reportGroup, *reportDate, *reportOut, *reportEmail)
	case "find":
		if err := findCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *findGroup == "" || *findName == "" {
			findCmd.Usage()
			return errHelp
		}
		return cli.find(*findGroup, *findName)
	case "watch":
		return cli.watch()
	case "qr":
		if err := qrCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.renderQR(*qrCourse)
	case "settings":
		if err := settingsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.settings(*settingsQR, *settingsAutoLate, *settingsLatency)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(email, password string) error {
	if _, err := cli.session.Apply(auth.EventLoginStarted); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cli.conf.API.Timeout)
	defer cancel()

	creds, acct, err := loginFunc(ctx, cli.conf, email, password)
	switch {
	case errors.Is(err, restapi.ErrRoleRejected):
		_, _ = cli.session.Apply(auth.EventRoleRejected)
		return err
	case err != nil:
		_, _ = cli.session.Apply(auth.EventFailed)
		return err
	}

	if err := cli.tokens.SaveRefreshToken(creds.Refresh); err != nil {
		_, _ = cli.session.Apply(auth.EventFailed)
		return err
	}
	if _, err := cli.session.Apply(auth.EventAuthenticated); err != nil {
		return err
	}
	cli.session.SetAccount(acct)
	fmt.Printf("Signed in as %s %s <%s>\n", acct.FirstName, acct.LastName, acct.Email)
	return nil
}

func (cli *commandLine) report(group, date, out, emailTo string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cli.conf.API.Timeout)
	defer cancel()

	var (
		rows  []attendance.ResolvedRow
		stats *attendance.Stats
		err   error
	)
	if date != "" {
		day, perr := time.ParseInLocation("2006-01-02", date, cli.conf.Location())
		if perr != nil {
			return fmt.Errorf("invalid -date %q: %v", date, perr)
		}
		rows, err = cli.attendance.DayRoster(ctx, group, day)
	} else {
		rows, err = cli.attendance.OverallRoster(ctx, group)
		if err == nil {
			stats, err = cli.attendance.GroupStats(ctx, group)
		}
	}
	if err != nil {
		return err
	}

	if out == "" {
		out = filepath.Join(cli.conf.WorkDir, fmt.Sprintf("attendance-%s-%s.xlsx", group, uuid.New().String()[:8]))
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	title := fmt.Sprintf("%s attendance", group)
	if strings.EqualFold(filepath.Ext(out), ".csv") {
		err = exportsvc.WriteCSV(f, rows)
	} else {
		err = exportsvc.WriteExcel(f, rows, stats, title)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", out)

	if stats != nil {
		if trend, ok := stats.Trend(); ok {
			fmt.Println(trend.String())
		}
	}
	if emailTo != "" {
		return cli.emailReport(out, title, emailTo)
	}
	return nil
}

func (cli *commandLine) emailReport(path, title, to string) error {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: to}},
		Subject: title,
		BodyStr: "Attached is the attendance report you requested.",
	}
	if err := msg.AttachFile(path); err != nil {
		return err
	}
	cli.mailer.SendMessages(msg)
	fmt.Printf("Report emailed to %s\n", to)
	return nil
}

// find looks a student up in a group's overall roster, suggesting close
// names when the exact search comes back empty.
func (cli *commandLine) find(group, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cli.conf.API.Timeout)
	defer cancel()

	rows, err := cli.attendance.OverallRoster(ctx, group)
	if err != nil {
		return err
	}

	matches := attendance.FilterRows(rows, name, attendance.FilterAll, false)
	if len(matches) == 0 {
		matches = attendance.SuggestRows(rows, name, 5)
		if len(matches) == 0 {
			fmt.Printf("No student matching %q in %s\n", name, group)
			return nil
		}
		fmt.Printf("No exact match for %q; closest:\n", name)
	}
	printRoster(group, matches)
	return nil
}

// watch refreshes the timetable on a schedule and keeps the ongoing
// session's roster reconciled until interrupted.
func (cli *commandLine) watch() error {
	conf := cli.settingsSvc.Load()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cli.conf.API.Timeout)
		defer cancel()

		courses, err := cli.courses.ListCourses(ctx, schedule.Filter{ProfessorEmail: cli.session.Account().Email})
		if err != nil {
			cli.logger.Error(fmt.Sprintf("refreshing timetable: %v", err), err)
			return
		}
		tt := schedule.Classify(courses, cli.clock.Now())
		fmt.Printf("%s  past: %d  ongoing: %d  upcoming: %d\n",
			cli.clock.Now().In(cli.conf.Location()).Format("15:04:05"), len(tt.Past), len(tt.Ongoing), len(tt.Upcoming))

		current, ok := tt.Current()
		if !ok {
			return
		}
		rows, err := cli.attendance.LiveRoster(ctx, current, conf)
		if err != nil {
			cli.logger.Error(fmt.Sprintf("reconciling %s: %v", current.Name, err), err)
			return
		}
		printRoster(current.Name, rows)
	}

	refresh()
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", cli.conf.CourseRefreshInterval), refresh); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	return nil
}

func printRoster(name string, rows []attendance.ResolvedRow) {
	fmt.Printf("-- %s --\n", name)
	for _, row := range rows {
		fmt.Printf("%-30s %-10s %s\n", row.FullName, row.Status, row.CheckIn)
	}
}

func (cli *commandLine) renderQR(courseID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), cli.conf.API.Timeout)
	defer cancel()

	courses, err := cli.courses.ListCourses(ctx, schedule.Filter{ProfessorEmail: cli.session.Account().Email})
	if err != nil {
		return err
	}

	var course schedule.Course
	if courseID != 0 {
		var found bool
		for _, c := range courses {
			if c.ID == courseID {
				course, found = c, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no session with id %d", courseID)
		}
	} else {
		current, ok := schedule.Classify(courses, cli.clock.Now()).Current()
		if !ok {
			return errors.New("no ongoing session")
		}
		course = current
	}

	png, err := cli.qr.Generate(course, cli.settingsSvc.Load())
	if err != nil {
		return err
	}
	out := filepath.Join(cli.conf.WorkDir, fmt.Sprintf("checkin-%s.png", course.Code))
	if err := ioutil.WriteFile(out, png, 0644); err != nil {
		return err
	}
	fmt.Printf("QR code written to %s\n", out)
	return nil
}

func (cli *commandLine) settings(qr, autoLate, latency string) error {
	conf := cli.settingsSvc.Load()

	var dirty bool
	if qr != "" {
		on, err := parseToggle(qr)
		if err != nil {
			return err
		}
		conf.QRCheckIn = on
		dirty = true
	}
	if autoLate != "" {
		on, err := parseToggle(autoLate)
		if err != nil {
			return err
		}
		conf.AutoLateMarking = on
		dirty = true
	}
	if latency != "" {
		conf.LatencyTime = latency
		dirty = true
	}

	if dirty {
		saved, err := cli.settingsSvc.Save(conf)
		if err != nil {
			return err
		}
		conf = saved
	}
	fmt.Printf("qr check-in: %v\nauto late marking: %v\nlatency: %s\n", conf.QRCheckIn, conf.AutoLateMarking, conf.LatencyTime)
	return nil
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid toggle %q (want on or off)", s)
	}
}
