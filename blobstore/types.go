package blobstore

import (
	"time"

	"github.com/code19m/errx"
)

// FileReference is a named handle to a stored object. It is a value,
// not a stored resource: it is created by a successful upload and
// consumed by LastModified, and has no independent lifecycle.
type FileReference struct {
	// Name is the blob name within the container.
	Name string

	// Container is the container the blob was written to.
	Container string

	// Properties is an open property bag populated by the backend
	// (etag, size, content type, provider location and so on).
	Properties map[string]any
}

// ContainerSpec carries the container-creation policy derived from the
// upload call options. It is passed opaquely to ContainerOps.Create.
type ContainerSpec struct {
	CORS   *CORSPolicy
	Public bool
}

// CORSPolicy is a provider-neutral CORS rule applied on container
// creation. Backends translate it into their native representation.
type CORSPolicy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAgeSeconds  int
}

// DefaultCORSPolicy returns the permissive policy used when a caller
// asks for CORS without supplying specifics.
func DefaultCORSPolicy() *CORSPolicy {
	return &CORSPolicy{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD"},
		AllowedHeaders: []string{"*"},
		MaxAgeSeconds:  3600,
	}
}

// Window is the validity window of a signed URL. The zero value means
// "use the default window", which is evaluated at call time, not at
// definition time.
type Window struct {
	Start  time.Time
	Expiry time.Time
}

// DefaultWindow returns a window from now until one day from now.
func DefaultWindow() Window {
	now := time.Now()
	return Window{Start: now, Expiry: now.Add(24 * time.Hour)}
}

// IsZero reports whether the window was left unset by the caller.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.Expiry.IsZero()
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.Expiry.Sub(w.Start)
}

// Validate rejects partially set windows and windows whose start is
// after the expiry.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.Expiry.IsZero() {
		return errx.New(
			"signed url window requires both start and expiry",
			errx.WithCode(CodeInvalidURLWindow),
			errx.WithType(errx.T_Validation),
		)
	}
	if w.Start.After(w.Expiry) {
		return errx.New(
			"signed url window start is after expiry",
			errx.WithCode(CodeInvalidURLWindow),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{
				"start":  w.Start.Format(time.RFC3339),
				"expiry": w.Expiry.Format(time.RFC3339),
			}),
		)
	}
	return nil
}
