package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Identity provider errors
	ErrInvalidCredential  = fmt.Errorf("invalid credential")
	ErrNetworkUnavailable = fmt.Errorf("network unavailable")
	ErrProviderRejected   = fmt.Errorf("provider rejected request")
	ErrUnknown            = fmt.Errorf("unknown identity failure")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrStoreClosed        = fmt.Errorf("session store closed")

	// Artifact API errors
	ErrNotFound        = fmt.Errorf("artifact not found")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrUnauthorized    = fmt.Errorf("unauthorized")
	ErrUnreachable     = fmt.Errorf("artifact API unreachable")
	ErrInvalidResponse = fmt.Errorf("invalid API response")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
