// Command mha fetches the transport headers of an Outlook message through
// the REST API and prints them, either raw or as a parsed report.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/credential"
	"github.com/nhle/mail-headers/internal/headers"
	"github.com/nhle/mail-headers/internal/host"
	"github.com/nhle/mail-headers/internal/model"
	"github.com/nhle/mail-headers/internal/outlook"
	"github.com/nhle/mail-headers/internal/store"
	"github.com/nhle/mail-headers/internal/theme"
)

type options struct {
	configPath  string
	itemID      string
	hostName    string
	restURL     string
	token       string
	storeToken  bool
	writeConfig bool
	raw         bool
	history     int
	pruneDays   int
	debug       bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("mha", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	fs.StringVar(&opts.itemID, "item-id", "", "EWS item id of the message")
	fs.StringVar(&opts.hostName, "host-name", "", "host platform name (overrides config)")
	fs.StringVar(&opts.restURL, "rest-url", "", "REST endpoint (overrides config)")
	fs.StringVar(&opts.token, "token", "", "bearer token (skips the keyring)")
	fs.BoolVar(&opts.storeToken, "store-token", false, "read a token from stdin into the keyring and exit")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "write the effective config to --config and exit")
	fs.BoolVar(&opts.raw, "raw", false, "print the header blob unparsed")
	fs.IntVar(&opts.history, "history", 0, "list the N most recent fetches and exit")
	fs.IntVar(&opts.pruneDays, "prune-days", 0, "delete history older than N days and exit")
	fs.BoolVar(&opts.debug, "debug", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := newLogger(opts.debug)
	defer logger.Sync() //nolint:errcheck

	if err := run(opts, logger); err != nil {
		logger.Error("mha failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(opts *options, logger *zap.Logger) error {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.writeConfig:
		if err := model.SaveConfig(opts.configPath, cfg); err != nil {
			return err
		}
		logger.Info("config written", zap.String("path", opts.configPath))
		return nil
	case opts.storeToken:
		return storeToken(cfg.TokenKey)
	case opts.history > 0:
		return listHistory(ctx, cfg, opts.history)
	case opts.pruneDays > 0:
		return pruneHistory(ctx, cfg, opts.pruneDays, logger)
	}

	if opts.itemID == "" {
		return fmt.Errorf("--item-id is required")
	}

	var tokens host.TokenSource = host.KeyringToken{Key: cfg.TokenKey}
	if opts.token != "" {
		tokens = host.StaticToken(opts.token)
	}

	env := &host.Environment{
		Platform: cfg.HostName,
		ItemID:   opts.itemID,
		RestURL:  cfg.RestURL,
		Tokens:   tokens,
		Logger:   logger,
	}
	cb := &cliCallbacks{
		out:    os.Stdout,
		errOut: os.Stderr,
		raw:    opts.raw,
		logger: logger,
	}
	fetcher := headers.New(env, outlook.NewClient(cfg.HTTPTimeout(), logger), cb, logger)

	outcome, fetchErr := fetcher.FetchHeaders(ctx)

	if cfg.History.Enabled {
		recordHistory(cfg.History.Path, newFetchRecord(outcome, fetchErr), logger)
	}
	return fetchErr
}

func applyOverrides(cfg *model.AppConfig, opts *options) {
	if opts.hostName != "" {
		cfg.HostName = opts.hostName
	}
	if opts.restURL != "" {
		cfg.RestURL = opts.restURL
	}
}

func storeToken(key string) error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading token from stdin: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return fmt.Errorf("empty token on stdin")
	}
	return credential.Set(key, token)
}

// recordHistory is best effort: a history failure never fails the fetch.
func recordHistory(path string, rec model.FetchRecord, logger *zap.Logger) {
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("opening fetch history", zap.Error(err))
		return
	}
	defer s.Close()

	// The fetch context may already be cancelled; the row is still wanted.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RecordFetch(ctx, rec); err != nil {
		logger.Warn("recording fetch history", zap.Error(err))
	}
}

func listHistory(ctx context.Context, cfg *model.AppConfig, limit int) error {
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.RecentFetches(ctx, limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Println(formatRecord(rec))
	}
	return nil
}

func pruneHistory(ctx context.Context, cfg *model.AppConfig, days int, logger *zap.Logger) error {
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := s.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logger.Info("fetch history pruned",
		zap.Int64("removed", removed),
		zap.Time("cutoff", cutoff),
	)
	return nil
}

func formatRecord(rec model.FetchRecord) string {
	detail := fmt.Sprintf("%d bytes", rec.HeaderBytes)
	if rec.Outcome != model.OutcomeSucceeded {
		detail = rec.ErrorKind
		if rec.StatusCode != 0 {
			detail = fmt.Sprintf("%s %d", detail, rec.StatusCode)
		}
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		theme.DimmedStyle.Render(rec.FetchedAt.Local().Format(time.DateTime)),
		theme.OutcomeStyle(rec.Outcome).Render(fmt.Sprintf("%-9s", rec.Outcome)),
		rec.MessageID,
		detail,
	)
}
