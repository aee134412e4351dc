package constants

import "time"

// API endpoint and authentication.
const (
	// DefaultBaseURL is the production StockTrim API endpoint.
	DefaultBaseURL = "https://api.stocktrim.com"

	// HeaderAuthID carries the tenant identifier on every request.
	HeaderAuthID = "api-auth-id"

	// HeaderAuthSignature carries the tenant signature on every request.
	HeaderAuthSignature = "api-auth-signature"

	// HeaderRequestID is read to correlate log records of one call.
	HeaderRequestID = "X-Request-ID"

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "stocktrim-client-go"
)

// Environment variables.
const (
	EnvAuthID        = "STOCKTRIM_API_AUTH_ID"
	EnvAuthSignature = "STOCKTRIM_API_AUTH_SIGNATURE"
	EnvBaseURL       = "STOCKTRIM_BASE_URL"
	EnvMaxRetries    = "STOCKTRIM_MAX_RETRIES"
	EnvTimeout       = "STOCKTRIM_TIMEOUT"
	EnvLogLevel      = "STOCKTRIM_LOG_LEVEL"

	// DefaultEnvFile is the dotenv file consulted for missing variables.
	DefaultEnvFile = ".env"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout bounds a single attempt, not the retry sequence.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the first backoff delay.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps every backoff delay.
	DefaultRetryWaitMax = 60 * time.Second
)

// Response logging limits.
const (
	// BodyExcerptLength bounds the DEBUG body excerpt.
	BodyExcerptLength = 500

	// RawExcerptLength bounds the TRACE excerpt of non-JSON bodies.
	RawExcerptLength = 1000

	// ErrorBodyLength bounds response bodies logged on 4xx/5xx.
	ErrorBodyLength = 2000

	// MaskValue replaces credential header values in logs.
	MaskValue = "***"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Table rendering.
const (
	// MaxCellWidth truncates long values in table output.
	MaxCellWidth = 60
)
