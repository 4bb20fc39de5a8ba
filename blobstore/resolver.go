package blobstore

import (
	"strings"

	"github.com/code19m/errx"
	"github.com/samber/lo"
)

// Resolver maps a connection name to the backend kind that serves it.
// Implementations must fail loudly for unconfigured names rather than
// silently defaulting; the facade treats the result as authoritative
// per call and never caches it.
type Resolver interface {
	Resolve(connection string) (Kind, error)
}

// StaticResolver resolves connections from a fixed name-to-kind map.
type StaticResolver struct {
	kinds map[string]Kind
}

// NewStaticResolver builds a resolver over the given connection map.
func NewStaticResolver(kinds map[string]Kind) *StaticResolver {
	return &StaticResolver{kinds: kinds}
}

// Resolve returns the kind configured for the connection name.
func (r *StaticResolver) Resolve(connection string) (Kind, error) {
	kind, ok := r.kinds[connection]
	if !ok {
		return "", errx.New(
			"storage connection is not configured",
			errx.WithCode(CodeUnknownConnection),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{
				"connection": connection,
				"configured": strings.Join(lo.Keys(r.kinds), ", "),
			}),
		)
	}
	return kind, nil
}
