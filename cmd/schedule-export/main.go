// Command schedule-export writes the appointment schedule to an XLSX
// workbook, optionally narrowed to one provider or status.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clinic-schedule-api/internal/backend"
	"clinic-schedule-api/internal/config"
	"clinic-schedule-api/internal/logger"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/report"
	"clinic-schedule-api/internal/store"
	"clinic-schedule-api/internal/summary"
)

type options struct {
	out      string
	provider string
	status   string
	risk     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("schedule-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.out, "o", "schedule.xlsx", "output file, - for stdout")
	fs.StringVar(&o.provider, "provider", "", "only appointments assigned to this provider user id")
	fs.StringVar(&o.status, "status", "", "only appointments in this status")
	fs.StringVar(&o.risk, "risk", "", "only appointments at this risk level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func (o options) filter() (model.Filter, error) {
	f := model.Filter{ProviderID: o.provider}
	if o.status != "" {
		s, err := model.ParseStatus(o.status)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if o.risk != "" {
		r, err := model.ParseRiskLevel(o.risk)
		if err != nil {
			return f, err
		}
		f.RiskLevel = r
	}
	return f, nil
}

// export writes the filtered schedule and returns how many rows it wrote.
func export(ctx context.Context, st store.Appointments, f model.Filter, w io.Writer) (int, error) {
	appts, err := st.ListAppointments(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("list appointments: %w", err)
	}
	if err := report.WriteSchedule(w, appts, summary.Compute(appts)); err != nil {
		return 0, err
	}
	return len(appts), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	f, err := o.filter()
	if err != nil {
		return err
	}

	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, "console", "schedule-export")
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	w := stdout
	if o.out != "-" {
		file, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", o.out, err)
		}
		defer file.Close()
		w = file
	}

	n, err := export(ctx, st, f, w)
	if err != nil {
		return err
	}
	log.Info("schedule exported", zap.String("out", o.out), zap.Int("appointments", n))
	return nil
}

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "schedule-export: %v\n", err)
		os.Exit(1)
	}
}
