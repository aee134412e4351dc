package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/stocktrim-client/internal/constants"
	"github.com/fivetwenty-io/stocktrim-client/pkg/stocktrim"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Viper keys shared by the root command and its subcommands.
const (
	KeyBaseURL       = "base_url"
	KeyAuthID        = "auth_id"
	KeyAuthSignature = "auth_signature"
	KeyEnvFile       = "env_file"
	KeyTimeout       = "timeout"
	KeyMaxRetries    = "max_retries"
	KeyRateLimit     = "rate_limit"
	KeyOutput        = "output"
	KeyLogLevel      = "log_level"
	KeyNoColor       = "no_color"
	KeyPrompt        = "prompt_signature"
)

// clientConfig builds the client configuration from flags. Anything left
// empty is resolved from the environment by the client itself.
func clientConfig() (*stocktrim.Config, error) {
	config := &stocktrim.Config{
		BaseURL:           viper.GetString(KeyBaseURL),
		APIAuthID:         viper.GetString(KeyAuthID),
		APIAuthSignature:  viper.GetString(KeyAuthSignature),
		EnvFile:           viper.GetString(KeyEnvFile),
		Timeout:           viper.GetDuration(KeyTimeout),
		MaxRetries:        viper.GetInt(KeyMaxRetries),
		RequestsPerSecond: viper.GetFloat64(KeyRateLimit),
		Logger:            newLogger(),
		UserAgent:         constants.DefaultUserAgent + "-cli",
	}

	if viper.GetBool(KeyPrompt) && config.APIAuthSignature == "" {
		signature, err := promptSignature()
		if err != nil {
			return nil, err
		}

		config.APIAuthSignature = signature
	}

	return config, nil
}

// promptSignature reads the signature without echo. It needs a terminal.
func promptSignature() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", constants.ErrNotATerminal
	}

	fmt.Fprint(os.Stderr, "API auth signature: ")

	signature, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}

	return strings.TrimSpace(string(signature)), nil
}

// newLogger writes to stderr, pretty when stderr is a terminal. The flag wins
// over STOCKTRIM_LOG_LEVEL. Defaults to warn.
func newLogger() stocktrim.Logger {
	level := viper.GetString(KeyLogLevel)
	if level == "" {
		level = os.Getenv(constants.EnvLogLevel)
	}

	if level == "" {
		level = "warn"
	}

	return stocktrim.NewLogger(os.Stderr, stocktrim.ParseLevel(level), term.IsTerminal(int(os.Stderr.Fd())))
}

func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString(KeyOutput))
	if format == "" {
		format = constants.FormatJSON
	}

	switch format {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}
}

// parseQuery turns repeated key=value flags into url.Values.
func parseQuery(params []string) (url.Values, error) {
	query := url.Values{}

	for _, param := range params {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQueryParam, param)
		}

		query.Add(key, value)
	}

	return query, nil
}

// maskSecret hides all but the first few characters of a credential.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}

	if len(value) <= 4 {
		return constants.MaskValue
	}

	return value[:4] + constants.MaskValue
}

// printStatus writes the colored status line to w.
func printStatus(w io.Writer, resp *stocktrim.Response) {
	if viper.GetBool(KeyNoColor) {
		color.NoColor = true
	}

	statusColor := color.New(color.FgGreen)

	switch {
	case resp.StatusCode >= 500:
		statusColor = color.New(color.FgRed, color.Bold)
	case resp.StatusCode >= 400:
		statusColor = color.New(color.FgYellow)
	case resp.StatusCode >= 300:
		statusColor = color.New(color.FgCyan)
	}

	_, _ = statusColor.Fprintf(w, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
}

// printBody renders a response body in the requested format. Bodies that are
// not JSON are written verbatim.
func printBody(w io.Writer, format string, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		_, err = fmt.Fprintln(w, string(body))

		return err
	}

	return printValue(w, format, value)
}

func printValue(w io.Writer, format string, value interface{}) error {
	switch format {
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable:
		return printTable(w, value)
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	}
}

func printTable(w io.Writer, value interface{}) error {
	table := tablewriter.NewWriter(w)

	switch typed := value.(type) {
	case []interface{}:
		columns := collectColumns(typed)
		if len(columns) == 0 {
			table.Header("Value")

			for _, item := range typed {
				_ = table.Append(cell(item))
			}

			break
		}

		header := make([]interface{}, len(columns))
		for i, column := range columns {
			header[i] = headerLabel(column)
		}

		table.Header(header...)

		for _, item := range typed {
			row, _ := item.(map[string]interface{})
			cells := make([]interface{}, len(columns))

			for i, column := range columns {
				cells[i] = cell(row[column])
			}

			_ = table.Append(cells...)
		}
	case map[string]interface{}:
		table.Header("Property", "Value")

		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			_ = table.Append(headerLabel(key), cell(typed[key]))
		}
	default:
		table.Header("Value")
		_ = table.Append(cell(typed))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// collectColumns returns the sorted union of keys of the objects in items.
func collectColumns(items []interface{}) []string {
	seen := map[string]bool{}

	for _, item := range items {
		object, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		for key := range object {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

var titleCaser = cases.Title(language.English, cases.NoLower)

func headerLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func cell(value interface{}) string {
	var text string

	switch typed := value.(type) {
	case nil:
		text = ""
	case string:
		text = typed
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(typed)
		if err != nil {
			text = fmt.Sprint(typed)
		} else {
			text = string(data)
		}
	default:
		text = fmt.Sprint(typed)
	}

	if len(text) > constants.MaxCellWidth {
		text = text[:constants.MaxCellWidth-3] + "..."
	}

	return text
}
