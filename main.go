package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gregLibert/card-id/internal/config"
	"github.com/gregLibert/card-id/internal/logger"
	"github.com/gregLibert/card-id/internal/logging"
	"github.com/gregLibert/card-id/internal/workbook"
	"github.com/gregLibert/card-id/pkg/cardid"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const (
	exitOK = iota
	exitCard
	exitConfig
	exitWorkbook
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath, "Path to the TOML settings file")
	profileFlag := flag.String("profile", "", "Card profile (generic or cepas), overrides the settings file")
	dryRun := flag.Bool("dry-run", false, "Print the identifier without writing the workbook")
	verbose := flag.Bool("verbose", false, "Log every APDU exchanged with the card")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "card-id - read a smart card identifier into an xlsx roster\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  card-id [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  %s    Sentry DSN for error reporting\n", logging.DSNEnv)
	}
	flag.Parse()

	ctx, err := logger.RegisterLoggerInContext(context.Background(), *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		return exitConfig
	}
	defer func() {
		// Sync reports EINVAL on a terminal.
		_ = logger.ReleaseLogger(ctx)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.FromContext(ctx).Errorf("Invalid settings: %v", err)
		return exitConfig
	}
	for _, key := range cfg.Unknown {
		logger.FromContext(ctx).Warnf("Ignoring unknown setting %q", key)
	}
	if *profileFlag != "" {
		cfg.Profile = *profileFlag
	}
	profile, err := cfg.CardProfile()
	if err != nil {
		logger.FromContext(ctx).Errorf("Invalid profile: %v", err)
		return exitConfig
	}

	if logging.InitSentry(logging.SentryOptions{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Version:     Version,
	}) {
		logger.FromContext(ctx).Debug("Sentry error reporting enabled")
		defer logging.FlushSentry(2 * time.Second)
	}

	ctx = logger.AttachArgsToLogger(ctx, "profile", profile.String())

	id, err := readCard(ctx, cfg, profile)
	if err != nil {
		logger.FromContext(ctx).Errorf("Failed to read card: %v", err)
		logging.CaptureError(err, "read_card", map[string]interface{}{"profile": profile.String()})
		return exitCard
	}
	fmt.Println(id.Primary)

	if *dryRun {
		logger.FromContext(ctx).Info("Dry run, workbook left untouched")
		return exitOK
	}

	w := workbook.Writer{
		Path:       cfg.Workbook.Path,
		Sheet:      cfg.Workbook.Sheet,
		UserColumn: cfg.Workbook.UserColumn,
		IDColumn:   cfg.Workbook.IDColumn,
		MaxRows:    cfg.Workbook.MaxRows,
	}
	a, err := w.Write(id.Primary)
	if err != nil {
		if errors.Is(err, workbook.ErrNoMoreUsers) {
			logger.FromContext(ctx).Warn("No more users available")
		} else {
			logger.FromContext(ctx).Errorf("Failed to update workbook: %v", err)
			logging.CaptureError(err, "write_workbook", map[string]interface{}{"path": w.Path})
		}
		return exitWorkbook
	}
	logger.FromContext(ctx).Infof("Assigned %s to %s (row %d)", id.Primary, a.User, a.Row)

	return exitOK
}

func readCard(ctx context.Context, cfg *config.Config, profile cardid.Profile) (cardid.Identifier, error) {
	channel := cardid.NewChannel(cardid.PCSC{},
		cardid.WithReaderName(cfg.Reader.Name),
		cardid.WithRetry(cardid.RetryPolicy{
			Attempts: cfg.Reader.OpenAttempts,
			Delay:    cfg.Reader.OpenRetryDelay.Duration,
		}),
	)

	reader := cardid.NewReader(channel, profile,
		cardid.WithLogger(logger.FromContext(ctx)),
		cardid.WithStrictSelect(cfg.StrictSelect),
	)

	return reader.ReadIdentifier(ctx)
}
