package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrimclient"
	"github.com/spf13/cobra"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// NewRequestCommand creates the request command
func NewRequestCommand() *cobra.Command {
	var (
		data    string
		queries []string
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a request to the StockTrim API",
		Long: `Send an authenticated request through the client's retry and logging chain
and print the response body.

Examples:
  stocktrim request GET /api/Products --query code=WIDGET
  stocktrim request POST /api/Products --data '{"productCode":"WIDGET"}'
  stocktrim request DELETE /api/Products --query productId=p-1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			if !allowedMethods[method] {
				return fmt.Errorf("%w: %s", constants.ErrInvalidMethod, args[0])
			}

			req, err := buildRequest(method, args[1], data, queries, headers)
			if err != nil {
				return err
			}

			return runRequest(cmd, req)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as Name: value (repeatable)")

	return cmd
}

// NewGetCommand creates the get command, a shorthand for request GET
func NewGetCommand() *cobra.Command {
	var queries []string

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Fetch a StockTrim API resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(http.MethodGet, args[0], "", queries, nil)
			if err != nil {
				return err
			}

			return runRequest(cmd, req)
		},
	}

	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "query parameter as key=value (repeatable)")

	return cmd
}

func buildRequest(method, path, data string, queries, headers []string) (*stocktrim.Request, error) {
	query, err := parseQuery(queries)
	if err != nil {
		return nil, err
	}

	req := &stocktrim.Request{
		Method: method,
		Path:   path,
		Query:  query,
	}

	if data != "" {
		if !json.Valid([]byte(data)) {
			return nil, constants.ErrInvalidJSONData
		}

		req.Body = json.RawMessage(data)
	}

	if len(headers) > 0 {
		req.Headers = make(map[string]string, len(headers))

		for _, header := range headers {
			name, value, ok := strings.Cut(header, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, header)
			}

			req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	return req, nil
}

func runRequest(cmd *cobra.Command, req *stocktrim.Request) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	config, err := clientConfig()
	if err != nil {
		return err
	}

	return stocktrimclient.Use(cmd.Context(), config, func(ctx context.Context, client stocktrim.Client) error {
		resp, err := client.Do(ctx, req)
		if resp == nil {
			return err
		}

		printStatus(cmd.ErrOrStderr(), resp)

		printErr := printBody(cmd.OutOrStdout(), format, resp.Body)
		if err != nil {
			return err
		}

		return printErr
	})
}
