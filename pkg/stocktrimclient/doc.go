// Package stocktrimclient provides the primary entry point for constructing a
// StockTrim API client that implements the stocktrim.Client interface.
//
// It resolves configuration, validates the credential pair and builds the
// transport chain on top of the types defined in the stocktrim package. No
// network activity happens until the first request.
//
// Quick start
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
//
//	  // Credentials from STOCKTRIM_API_AUTH_ID / STOCKTRIM_API_AUTH_SIGNATURE
//	  // or a .env file in the working directory.
//	  cli, err := stocktrimclient.NewFromEnvironment()
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  resp, err := cli.Get(ctx, "/api/Products", nil)
//	  if err != nil { log.Fatal(err) }
//	  log.Printf("status %d, %d bytes", resp.StatusCode, len(resp.Body))
//	}
//
// Scoped use
//
// Use closes the client on every exit path:
//
//	err := stocktrimclient.Use(ctx, &stocktrim.Config{
//	  APIAuthID:        "tenant-id",
//	  APIAuthSignature: "tenant-signature",
//	  MaxRetries:       3,
//	}, func(ctx context.Context, cli stocktrim.Client) error {
//	  _, err := cli.Get(ctx, "/api/Products", nil)
//	  return err
//	})
//
// Raw HTTP access
//
// HTTPClient returns the shared *http.Client. Requests sent through it get
// the same authentication, retry and logging as those sent through Do.
package stocktrimclient
