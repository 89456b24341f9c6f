package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/rtfeed/internal/adapters/log"
	"github.com/bft-labs/rtfeed/internal/adapters/schema"
	"github.com/bft-labs/rtfeed/internal/adapters/sqlite"
	"github.com/bft-labs/rtfeed/internal/cliconfig"
	"github.com/bft-labs/rtfeed/internal/ports"
	"github.com/bft-labs/rtfeed/internal/sink"
	"github.com/bft-labs/rtfeed/pkg/realtime"
	"github.com/bft-labs/rtfeed/plugins/journalretention"
	"github.com/bft-labs/rtfeed/plugins/schemawatcher"
)

const helpDescription = `
Follow row changes of one database table over a realtime channel.

Highlights:
  - Joins realtime:{schema}-{table}-changes and keeps the channel alive with heartbeats.
  - Reconnects on its own after every close or error.
  - Optionally validates change records against a JSON Schema file, reloaded on edit.
  - Optionally journals every message to a local SQLite file.
`

var longHelp = "rtfeed\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  rtfeed --host project.supabase.co --api-key <anon-key> --table settlements --event INSERT
  rtfeed --config $HOME/.rtfeed/config.toml --journal feed.db --payload-schema settlement.schema.json
  rtfeed validate settlement.schema.json record.json
  rtfeed journal recent --journal feed.db --limit 20
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := cliconfig.Logger()
		log.Error().Err(err).Msg("rtfeed")
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags bind into a fresh Config.
func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "rtfeed",
		Short:         "Follow row changes of a database table over a realtime channel",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	// Shared by the journal subcommands.
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.rtfeed/config.toml)")
	root.PersistentFlags().StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "SQLite file receiving every message (disabled when empty)")

	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "realtime host, e.g. project.supabase.co")
	root.Flags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key sent as the apikey query parameter")
	root.Flags().BoolVar(&cfg.Insecure, "insecure", cfg.Insecure, "dial ws:// instead of wss:// (local stacks)")

	root.Flags().StringVar(&cfg.Schema, "schema", cfg.Schema, "database schema")
	root.Flags().StringVar(&cfg.Table, "table", cfg.Table, "table to follow")
	root.Flags().StringVar(&cfg.Event, "event", cfg.Event, "change event filter: INSERT, UPDATE, DELETE or *")

	root.Flags().DurationVar(&cfg.HeartbeatInterval, "heartbeat", cfg.HeartbeatInterval, "heartbeat interval while joined")
	root.Flags().DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "delay before reconnecting")
	root.Flags().DurationVar(&cfg.ReconnectMaxDelay, "reconnect-max-delay", cfg.ReconnectMaxDelay, "cap for exponential reconnect delays (fixed delay when unset)")
	root.Flags().DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "websocket handshake timeout")

	root.Flags().DurationVar(&cfg.JournalMaxAge, "journal-max-age", cfg.JournalMaxAge, "journal entries older than this are pruned")
	root.Flags().StringVar(&cfg.PayloadSchema, "payload-schema", cfg.PayloadSchema, "JSON Schema file that change records must satisfy")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newJournalCmd(&cfg, &cfgPath))

	return root
}

// loadConfig layers file, then env, then flags onto cfg.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	// RTFEED_* override the file but not flags.
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func run(cfg cliconfig.Config) error {
	log := cliconfig.Logger()
	log.Info().Interface("config", cfg.Masked()).Msg("configuration")

	logger := logAdapter.NewZerologAdapterWithLogger(log)
	opts := []realtime.Option{realtime.WithLogger(logger)}

	// Handlers run log, then validate, then journal.
	var next ports.ChangeHandler

	if cfg.JournalPath != "" {
		journal, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer journal.Close()

		next = &sink.JournalHandler{Journal: journal, Logger: logger}
		opts = append(opts, journalretention.WithJournalRetention(journal, journalretention.Config{
			MaxAge:         cfg.JournalMaxAge,
			RunImmediately: true,
		}))
	}

	if cfg.PayloadSchema != "" {
		holder := sink.NewSchemaHolder(nil)
		validator := schema.NewValidator(schema.DefaultCacheSize)

		next = &sink.ValidatingHandler{Schema: holder, Validator: validator, Logger: logger, Next: next}
		opts = append(opts, schemawatcher.WithSchemaWatcher(schemawatcher.Config{Path: cfg.PayloadSchema}, holder, validator))
	}

	opts = append(opts, realtime.WithChangeHandler(&sink.LogHandler{Logger: logger, Next: next}))

	feed, err := realtime.New(cfg.Realtime(), opts...)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := feed.Start(ctx); err != nil {
		return fmt.Errorf("start feed: %w", err)
	}

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Uint64("messages", feed.Messages()).Msg("received signal, stopping...")

	if err := feed.Stop(); err != nil {
		return fmt.Errorf("stop feed: %w", err)
	}
	return nil
}
