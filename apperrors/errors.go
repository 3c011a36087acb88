// Package apperrors defines the error kinds shared by the service layer.
// Controllers map each kind to an HTTP status; services never return bare
// strings for failures a caller needs to branch on.
package apperrors

import "fmt"

// GeoKind tags a geolocation failure so the caller can render guidance
// specific to what went wrong.
type GeoKind string

const (
	GeoPermissionDenied    GeoKind = "permission_denied"
	GeoPositionUnavailable GeoKind = "position_unavailable"
	GeoTimeout             GeoKind = "timeout"
	GeoUnknown             GeoKind = "unknown"
)

// ValidationError reports the first unmet requirement of a request.
// Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError reports a failed capability check.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func Authorization(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// TransientError wraps a collaborator hiccup (network, backend). Callers may
// retry once before surfacing it.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func Transient(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// UploadError aborts a submission; a partially created issue must never
// reference a broken image.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload failed: %v", e.Err) }

func (e *UploadError) Unwrap() error { return e.Err }

// GeolocationError is always recoverable via manual map selection.
type GeolocationError struct {
	Kind GeoKind
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("geolocation failed: %s", e.Kind)
}
