package journalretention

import "github.com/bft-labs/rtfeed/pkg/realtime"

// WithJournalRetention returns a realtime Option that prunes the journal
// while the feed runs.
//
// Usage:
//
//	feed, err := realtime.New(cfg,
//	    journalretention.WithJournalRetention(journal, journalretention.Config{
//	        MaxAge:        24 * time.Hour,
//	        CheckInterval: 10 * time.Minute,
//	    }),
//	)
func WithJournalRetention(pruner Pruner, cfg Config) realtime.Option {
	return realtime.WithPlugin(New(pruner, cfg))
}

// WithDefaultJournalRetention keeps seven days of entries, checking hourly.
func WithDefaultJournalRetention(pruner Pruner) realtime.Option {
	return WithJournalRetention(pruner, DefaultConfig())
}
