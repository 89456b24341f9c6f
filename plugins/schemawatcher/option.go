package schemawatcher

import "github.com/bft-labs/rtfeed/pkg/realtime"

// WithSchemaWatcher returns a realtime Option that loads the schema file on
// start and reloads it whenever it changes.
//
// Usage:
//
//	feed, err := realtime.New(cfg,
//	    schemawatcher.WithSchemaWatcher(schemawatcher.Config{
//	        Path: "settlement.schema.json",
//	    }, holder, validator),
//	)
func WithSchemaWatcher(cfg Config, target Target, compiler Compiler) realtime.Option {
	return realtime.WithPlugin(New(cfg, target, compiler))
}
