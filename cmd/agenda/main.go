package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"agenda/internal/agenda"
	"agenda/internal/config"
	appLog "agenda/internal/log"
)

// flagConfig holds CLI flag values; non-empty ones override the config file.
type flagConfig struct {
	configPath string
	file       string
	date       string
	days       int
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := loadConfig(flags)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Debug("effective config",
		"calendar", conf.Calendar,
		"date", conf.Date,
		"days", conf.Days,
		"refresh", conf.Refresh,
		"once", flags.once,
	)

	if conf.Refresh == "" || flags.once {
		if err := printAgenda(os.Stdout, conf, time.Now()); err != nil {
			appLog.Error("failed to print agenda", err, "calendar", conf.Calendar)
			os.Exit(1)
		}
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, conf); err != nil {
		appLog.Error("failed to start refresh schedule", err, "refresh", conf.Refresh)
		os.Exit(1)
	}
	appLog.Info("agenda exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to YAML config file (created with defaults if missing)")
	flag.StringVar(&cfg.file, "file", "", "Calendar file to read (overrides config)")
	flag.StringVar(&cfg.date, "date", "", "First day to print, YYYY-MM-DD (default today)")
	flag.IntVar(&cfg.days, "days", 0, "Number of days to print (overrides config)")
	flag.BoolVar(&cfg.once, "once", false, "Print once and exit even if a refresh schedule is configured")

	flag.Parse()

	return cfg
}

func loadConfig(flags flagConfig) (*config.Config, error) {
	conf := config.DefaultConfig()
	if flags.configPath != "" {
		var err error
		if conf, err = config.Load(flags.configPath); err != nil {
			return nil, err
		}
	}

	if flags.file != "" {
		conf.Calendar = flags.file
	}
	if flags.date != "" {
		conf.Date = flags.date
	}
	if flags.days > 0 {
		conf.Days = flags.days
	}
	conf.Normalize()

	return conf, conf.Validate()
}

// printAgenda loads the calendar and writes the agenda for the configured
// days to w. A range without events prints a short notice instead.
func printAgenda(w io.Writer, conf *config.Config, now time.Time) error {
	cal, err := agenda.Load(conf.Calendar)
	if err != nil {
		return err
	}

	from := conf.StartDate(now)
	to := from.AddDate(0, 0, conf.Days-1)

	text := cal.Span(from, to)
	if text == "" {
		if conf.Days == 1 {
			text = "No events on " + agenda.FormatDate(from)
		} else {
			text = "No events from " + agenda.FormatDate(from) + " to " + agenda.FormatDate(to)
		}
	}

	_, err = fmt.Fprintln(w, text)
	return err
}

// watch prints the agenda on the conf.Refresh schedule until ctx is done.
func watch(ctx context.Context, conf *config.Config) error {
	if conf.Refresh == "" {
		return errors.New("no refresh schedule configured")
	}

	c := cron.New()
	_, err := c.AddFunc(conf.Refresh, func() {
		if err := printAgenda(os.Stdout, conf, time.Now()); err != nil {
			appLog.Error("scheduled agenda failed", err, "calendar", conf.Calendar)
		}
	})
	if err != nil {
		return err
	}

	appLog.Info("refresh schedule started", "refresh", conf.Refresh)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
