package llm

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrMissingAPIKey   = errors.New("llm api key is required")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrUnknownDomain   = errors.New("unknown council domain")
	ErrNoChoices       = errors.New("llm returned no choices")
)
