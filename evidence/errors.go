package evidence

import "errors"

var (
	// ErrOracleUnavailable indicates the evidence source could not be reached.
	ErrOracleUnavailable = errors.New("evidence oracle unavailable")

	// ErrMalformedResponse indicates the evidence source returned an
	// unparseable payload.
	ErrMalformedResponse = errors.New("malformed oracle response")
)
