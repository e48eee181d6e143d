package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/cli"
	"github.com/stephencockerill/oink/internal/config"
	"github.com/stephencockerill/oink/internal/logger"
	"github.com/stephencockerill/oink/internal/store"
	"github.com/stephencockerill/oink/internal/tui/theme"
)

var (
	flagDBPath   string
	flagLogLevel string
	flagJSON     bool
)

// appConfig is loaded once before any command runs.
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:               "oink",
	Short:             "Exercise piggy bank",
	Long:              "Every workout feeds the pig. Every missed day halves what's inside.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		cfg.General.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	appConfig = cfg

	theme.SetActive(cfg.Appearance.Theme)
	cli.ApplyTheme()
	return nil
}

// session is everything a command needs to talk to the bank.
type session struct {
	cfg   config.Config
	log   zerolog.Logger
	store *store.Store
	bank  *bank.Service
}

// openSession is the shared setup path: logger, store, seeded settings, bank.
func openSession(ctx context.Context) (*session, error) {
	log := logger.New(logger.Config{
		Level:  appConfig.Log.Level,
		Pretty: appConfig.Log.Pretty,
	})

	st, err := store.Open(appConfig.DBPath())
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSettings(ctx, appConfig.RewardRate()); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("seeding settings: %w", err)
	}
	log.Debug().Str("db", appConfig.DBPath()).Msg("database opened")

	svc := bank.New(st, bank.Options{
		MaxFreezes: appConfig.Freezes.Max,
		Logger:     log,
	})
	return &session{cfg: appConfig, log: log, store: st, bank: svc}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn().Err(err).Msg("closing database")
	}
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(ctx, sess)
}
