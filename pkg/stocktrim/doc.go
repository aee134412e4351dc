// Package stocktrim provides types, interfaces, and helpers for working with
// the StockTrim inventory management API.
//
// # Overview
//
// The stocktrim package defines the client configuration (Config), the
// Client facade interface, the Logger abstraction used by the transport
// layer, and the error types returned by API calls (ConfigError,
// ProblemDetails, StatusError). A concrete client is provided by the
// stocktrimclient package.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
//	  "github.com/fivetwenty-io/stocktrim-client/pkg/stocktrimclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  err := stocktrimclient.Use(ctx, &stocktrim.Config{}, func(ctx context.Context, cli stocktrim.Client) error {
//	    resp, err := cli.Get(ctx, "/api/Products", nil)
//	    if err != nil { return err }
//	    log.Printf("products: %s", resp.Body)
//	    return nil
//	  })
//	  if err != nil { log.Fatal(err) }
//	}
//
// # Logging
//
// Supply a Logger in Config to observe requests. NewLogger returns a
// zerolog-backed implementation; LevelDebug adds response summaries and
// LevelTrace adds full response bodies. Authentication header values are
// never written to logs.
//
// # Optional fields
//
// Optional[T] distinguishes a JSON member that was absent from one that was
// explicitly null. ProblemDetails uses it for every member.
package stocktrim
