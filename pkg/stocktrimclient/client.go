package stocktrimclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/stocktrim-client/internal/client"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
)

// New creates a StockTrim API client. A nil config is treated as empty, so
// every setting comes from the environment or the defaults.
func New(config *stocktrim.Config) (stocktrim.Client, error) {
	c, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewFromEnvironment creates a client configured only from STOCKTRIM_*
// environment variables and the default .env file.
func NewFromEnvironment() (stocktrim.Client, error) {
	return New(nil)
}

// NewWithCredentials creates a client for the default API root.
func NewWithCredentials(authID, authSignature string) (stocktrim.Client, error) {
	return New(&stocktrim.Config{
		APIAuthID:        authID,
		APIAuthSignature: authSignature,
	})
}

// Use creates a client, passes it to fn, and closes it when fn returns,
// fails or panics.
func Use(ctx context.Context, config *stocktrim.Config, fn func(context.Context, stocktrim.Client) error) (err error) {
	c, err := New(config)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := c.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing client: %w", closeErr)
		}
	}()

	return fn(ctx, c)
}
