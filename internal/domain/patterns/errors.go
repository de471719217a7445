package patterns

import "errors"

// Sentinel kinds for rule table errors.
var (
	ErrInvalidRule = errors.New("invalid pattern rule")
	ErrLoadRules   = errors.New("load pattern rules failed")
)
