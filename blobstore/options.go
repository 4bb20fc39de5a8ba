package blobstore

// Option configures a single facade call. Options that are not
// relevant to an operation are ignored.
type Option func(*callOptions)

type callOptions struct {
	connection     string
	forceContainer bool
	cors           *CORSPolicy
	public         bool
}

func newCallOptions(defaultConnection string, opts []Option) callOptions {
	o := callOptions{
		connection:     defaultConnection,
		forceContainer: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// containerSpec derives the container-creation policy from the call
// options.
func (o callOptions) containerSpec() ContainerSpec {
	return ContainerSpec{CORS: o.cors, Public: o.public}
}

// WithConnection routes the call through the named connection instead
// of the store's default.
func WithConnection(name string) Option {
	return func(o *callOptions) {
		o.connection = name
	}
}

// WithoutContainerCreate disables the automatic create-and-retry
// behavior for uploads that fail because the container is missing.
func WithoutContainerCreate() Option {
	return func(o *callOptions) {
		o.forceContainer = false
	}
}

// WithCORSPolicy sets the CORS policy applied if the upload has to
// create the container. A nil policy selects DefaultCORSPolicy.
func WithCORSPolicy(policy *CORSPolicy) Option {
	return func(o *callOptions) {
		if policy == nil {
			policy = DefaultCORSPolicy()
		}
		o.cors = policy
	}
}

// WithPublicAccess marks a container created by the upload as publicly
// readable.
func WithPublicAccess() Option {
	return func(o *callOptions) {
		o.public = true
	}
}
