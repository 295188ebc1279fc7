package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/gitinfo"
	"github.com/stationhq/stylebook/internal/history"
	"github.com/stationhq/stylebook/internal/logfields"
	"github.com/stationhq/stylebook/internal/metrics"
	"github.com/stationhq/stylebook/internal/notify"
	"github.com/stationhq/stylebook/internal/preview"
	"github.com/stationhq/stylebook/internal/site"
	"github.com/stationhq/stylebook/internal/watch"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

var cli struct {
	Config  string `short:"c" help:"Configuration file path" default:"stylebook.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Override the output directory"`
	} `cmd:"" help:"Build the site from configured sources"`

	Check struct{} `cmd:"" help:"Validate all sources without writing output"`

	Watch struct{} `cmd:"" help:"Rebuild automatically when sources change"`

	Preview struct {
		Addr  string `help:"Listen address (overrides config)"`
		Watch bool   `help:"Also rebuild on source changes while serving"`
	} `cmd:"" help:"Serve the generated site locally"`

	History struct {
		Limit int `short:"n" default:"20" help:"Number of records to show"`
	} `cmd:"" help:"Show recent build outcomes"`

	Init struct {
		Force bool `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Write an example configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&cli)

	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := run(kctx.Command()); err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func run(command string) error {
	switch command {
	case "init":
		if err := config.Init(cli.Config, cli.Init.Force); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cli.Config)
		return nil
	case "version":
		fmt.Printf("stylebook %s (%s)\n", version, commit)
		return nil
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "build":
		if cli.Build.Output != "" {
			cfg.Output.Directory = cli.Build.Output
		}
		g, _ := newGenerator(cfg)
		return runBuild(ctx, cfg, g)
	case "check":
		return runCheck(ctx, cfg)
	case "watch":
		return runWatch(ctx, cfg)
	case "preview":
		return runPreview(ctx, cfg)
	case "history":
		return runHistory(ctx, cfg)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// newGenerator assembles a generator with the optional metrics recorder and
// revision stamp.
func newGenerator(cfg *config.Config) (*site.Generator, *prometheus.Registry) {
	var opts []site.Option
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(registry)))
	}

	if rev, err := gitinfo.Resolve("."); err == nil {
		opts = append(opts, site.WithRevision(rev))
		slog.Debug("Resolved source revision", slog.String("commit", rev.Short()))
	} else if !errors.Is(err, gitinfo.ErrNotRepository) {
		slog.Warn("Could not resolve source revision", logfields.Error(err))
	}

	return site.NewGenerator(cfg, opts...), registry
}

func runBuild(ctx context.Context, cfg *config.Config, g *site.Generator) error {
	report, err := g.Build(ctx)
	if report != nil {
		fmt.Println(report.Summary())
		recordHistory(ctx, cfg, report)
		publishEvent(ctx, cfg, report)
	}
	return err
}

func runCheck(ctx context.Context, cfg *config.Config) error {
	g, _ := newGenerator(cfg)
	report, err := g.Check(ctx)
	if err != nil {
		return err
	}

	for _, issue := range report.Issues {
		fmt.Printf("%s\t%s\t%s\t%s\n", issue.Severity, issue.Code, issue.Unit, issue.Message)
	}
	fmt.Printf("checked %d rulesets, %d guidelines: %d issue(s)\n",
		report.Rulesets, report.Guidelines, len(report.Issues))
	if report.Outcome == site.OutcomeFailed {
		return fmt.Errorf("source validation failed")
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	g, _ := newGenerator(cfg)
	w, err := watch.New(cfg, func(ctx context.Context) error {
		return runBuild(ctx, cfg, g)
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return w.Stop()
}

func runPreview(ctx context.Context, cfg *config.Config) error {
	addr := cfg.Preview.Addr
	if cli.Preview.Addr != "" {
		addr = cli.Preview.Addr
	}

	g, registry := newGenerator(cfg)
	var w *watch.Watcher
	if cli.Preview.Watch {
		var err error
		w, err = watch.New(cfg, func(ctx context.Context) error {
			return runBuild(ctx, cfg, g)
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
	}

	srv := preview.New(addr, g.SitePath(), cfg.Output.Directory, registry)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if w != nil {
		if err := w.Stop(); err != nil {
			slog.Warn("Watcher shutdown error", logfields.Error(err))
		}
	}
	return srv.Stop(shutdownCtx)
}

func runHistory(ctx context.Context, cfg *config.Config) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(ctx, cli.History.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tRULESETS\tGUIDELINES\tPAGES\tWARNINGS\tCOMMIT")
	for _, r := range records {
		commit := r.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Started.Format(time.RFC3339), r.Outcome,
			r.Rulesets, r.Guidelines, r.Pages, r.Warnings, commit)
	}
	return tw.Flush()
}

// recordHistory appends the build to the history store. Best effort: a
// history failure never changes the build result.
func recordHistory(ctx context.Context, cfg *config.Config, report *site.Report) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Could not open build history", logfields.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	err = store.Append(ctx, history.Record{
		BuildID:    report.BuildID,
		Started:    report.Start,
		Finished:   report.End,
		Outcome:    string(report.Outcome),
		Commit:     report.Commit,
		Rulesets:   report.Rulesets,
		Guidelines: report.Guidelines,
		Pages:      report.Pages,
		Warnings:   len(report.Warnings),
	})
	if err != nil {
		slog.Warn("Could not record build history", logfields.Error(err))
	}
}

// publishEvent emits a build-completed notification when configured.
func publishEvent(ctx context.Context, cfg *config.Config, report *site.Report) {
	if !cfg.Notify.Enabled {
		return
	}
	n, err := notify.NewNATSNotifier(cfg.Notify)
	if err != nil {
		slog.Warn("Could not connect notifier", logfields.Error(err))
		return
	}
	defer n.Close()

	err = n.BuildCompleted(ctx, notify.BuildEvent{
		BuildID:    report.BuildID,
		Outcome:    string(report.Outcome),
		Commit:     report.Commit,
		Rulesets:   report.Rulesets,
		Guidelines: report.Guidelines,
		Pages:      report.Pages,
		Warnings:   len(report.Warnings),
	})
	if err != nil {
		slog.Warn("Could not publish build event", logfields.Error(err))
	}
}
