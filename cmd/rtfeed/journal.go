package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/rtfeed/internal/adapters/sqlite"
	"github.com/bft-labs/rtfeed/internal/cliconfig"
)

// journalLine is the output shape of one journal entry.
type journalLine struct {
	ID         int64           `json:"id"`
	ReceivedAt time.Time       `json:"received_at"`
	Topic      string          `json:"topic"`
	Event      string          `json:"event"`
	Ref        string          `json:"ref,omitempty"`
	Frame      json.RawMessage `json:"frame"`
}

func newJournalCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect or prune the message journal",
	}

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Print the newest journal entries as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(cmd, cfg, *cfgPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			entries, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				line := journalLine{
					ID:         e.ID,
					ReceivedAt: e.ReceivedAt.UTC(),
					Topic:      e.Topic,
					Event:      e.Event,
					Ref:        e.Ref,
					Frame:      e.Frame,
				}
				if err := enc.Encode(line); err != nil {
					return fmt.Errorf("write entry %d: %w", e.ID, err)
				}
			}
			return nil
		},
	}
	recent.Flags().IntVar(&limit, "limit", 20, "number of entries to print")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			journal, err := openJournal(cmd, cfg, *cfgPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			n, err := journal.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age beyond which entries are deleted")

	cmd.AddCommand(recent, prune)
	return cmd
}

// openJournal resolves the journal path through the usual config layers.
func openJournal(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) (*sqlite.Journal, error) {
	if err := loadConfig(cmd, cfg, cfgPath); err != nil {
		return nil, err
	}
	if cfg.JournalPath == "" {
		return nil, fmt.Errorf("no journal configured: set --journal")
	}
	return sqlite.Open(cfg.JournalPath)
}
