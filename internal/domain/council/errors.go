package council

import "errors"

// Sentinel kinds for council errors.
var (
	ErrConsultation = errors.New("council consultation failed")
	ErrEmptyReply   = errors.New("council returned no synthesis")
)
