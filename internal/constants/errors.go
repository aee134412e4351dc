package constants

import "errors"

// Transport errors.
var ErrRequestBody = errors.New("request body could not be encoded")

// CLI errors.
var (
	ErrInvalidQueryParam = errors.New("query parameter must be key=value")
	ErrInvalidMethod     = errors.New("unsupported HTTP method")
	ErrInvalidOutput     = errors.New("unsupported output format")
	ErrInvalidJSONData   = errors.New("--data must be valid JSON")
	ErrNotATerminal      = errors.New("signature prompt requires a terminal")
	ErrInvalidHeader     = errors.New("header must be Name: value")
)
