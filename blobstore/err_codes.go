package blobstore

// Error codes for blobstore operations.
const (
	// CodeContainerNotFound is reported by a backend when the target
	// container does not exist. It is the only condition the upload
	// state machine retries.
	CodeContainerNotFound = "CONTAINER_NOT_FOUND"

	// CodeUploadFailed wraps any upload failure after the retry policy
	// is exhausted or inapplicable.
	CodeUploadFailed = "UPLOAD_FAILED"

	// CodeUnsupportedOperation is returned when an operation is invoked
	// against a backend kind that has no implementation for it. This is
	// a programming or configuration error, not a network error.
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"

	// CodeUnknownConnection is returned when a connection name is not
	// configured, either at the resolver or inside a backend.
	CodeUnknownConnection = "UNKNOWN_CONNECTION"

	// CodeInvalidURLWindow is returned for signed-URL windows whose
	// start is after the expiry or that are only partially set.
	CodeInvalidURLWindow = "INVALID_URL_WINDOW"
)
