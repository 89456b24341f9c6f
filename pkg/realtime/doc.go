// Package realtime provides an embeddable client for a Supabase-style
// realtime change feed.
//
// A Feed joins one Phoenix channel for one table, keeps the subscription
// alive with heartbeats and reconnects after every close or error until
// it is stopped.
//
// # Basic Usage
//
//	cfg := realtime.Config{
//	    Host:   "project.supabase.co",
//	    APIKey: "anon-key",
//	    Table:  "settlements",
//	    Event:  "INSERT",
//	}
//
//	feed, err := realtime.New(cfg, realtime.WithChangeHandler(
//	    realtime.ChangeHandlerFunc(func(msg realtime.Message) {
//	        fmt.Println(string(msg.Raw))
//	    }),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := feed.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer feed.Stop()
//
// # Delivery
//
// Every well-formed inbound frame is passed to the change handler, including
// channel replies. Frames that are not valid JSON are logged and dropped.
// Delivery is at-most-once: nothing is replayed after a reconnect.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for the methods you
// do not need) and pass it via [WithEventHandler] to observe state changes.
// Events are called synchronously from socket and timer goroutines and
// should return quickly.
//
// # Dependency Injection
//
// The transport and the timer source can be replaced for tests:
//
//	feed, err := realtime.New(cfg,
//	    realtime.WithDialer(fakeDialer),
//	    realtime.WithScheduler(manualScheduler),
//	    realtime.WithLogger(logger),
//	)
//
// # Connection States
//
// A Feed is in one of [StateIdle], [StateConnecting], [StateJoined],
// [StateAwaitingRetry] or, briefly during Stop, [StateClosing].
//
// # Plugins
//
// Plugins are initialized in registration order when the feed starts and
// shut down in reverse order when it stops:
//
//	import "github.com/bft-labs/rtfeed/plugins/schemawatcher"
//	import "github.com/bft-labs/rtfeed/plugins/journalretention"
package realtime
