package blobstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robbplo/file-storage-api/logger"
)

const tracerName = "github.com/robbplo/file-storage-api/blobstore"

// Store is the storage facade. It resolves the backend pair for a
// connection on every call and exposes the uniform operation surface.
//
// Store holds no per-call state and no connection cache, so concurrent
// calls are independent.
type Store struct {
	resolver          Resolver
	backends          map[Kind]Backend
	defaultConnection string
	log               logger.Logger
	tracer            trace.Tracer
}

// New creates a Store over the given resolver and backend registry.
// Calls that do not name a connection use defaultConnection. A nil
// log falls back to a no-op logger.
func New(resolver Resolver, backends map[Kind]Backend, defaultConnection string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		resolver:          resolver,
		backends:          backends,
		defaultConnection: defaultConnection,
		log:               log.Named("blobstore"),
		tracer:            otel.Tracer(tracerName),
	}
}

// Upload writes the file at sourcePath to the named blob.
//
// When the backend reports the container as missing and container
// creation is allowed (the default), the container is created with the
// policy derived from the call options and the upload is retried once.
// retry.Attempts(2) caps the state machine at that single retry, so the
// call terminates even if the backend keeps reporting the container as
// missing. Any terminal failure is returned wrapped with
// CodeUploadFailed.
func (s *Store) Upload(ctx context.Context, container, sourcePath, blobName string, opts ...Option) (*FileReference, error) {
	o := newCallOptions(s.defaultConnection, opts)

	ctx, span := s.tracer.Start(ctx, "blobstore.Upload", trace.WithAttributes(
		attribute.String("storage.container", container),
		attribute.String("storage.connection", o.connection),
		attribute.String("storage.blob", blobName),
	))
	defer span.End()

	backend, kind, err := s.backendFor(o.connection)
	if err != nil {
		span.RecordError(err)
		return nil, errx.Wrap(err)
	}
	span.SetAttributes(attribute.String("storage.kind", string(kind)))

	var ref *FileReference
	err = retry.Do(
		func() error {
			uploaded, uploadErr := backend.Files.Upload(ctx, container, o.connection, sourcePath, blobName)
			if uploadErr != nil {
				return uploadErr
			}
			ref = uploaded
			return nil
		},
		retry.Attempts(2),
		retry.Delay(0),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// A missing container is retryable only until the one
			// allowed creation attempt has been spent.
			return o.forceContainer && errx.IsCodeIn(err, CodeContainerNotFound)
		}),
		retry.OnRetry(func(_ uint, _ error) {
			// Creation completes before the terminal attempt starts.
			// Its failure is never surfaced: the retried upload's own
			// outcome is what the caller sees. forceContainer is
			// cleared here because OnRetry also fires after the last
			// failed attempt; without it a persistently missing
			// container would be created twice.
			o.forceContainer = false
			createErr := backend.Containers.Create(ctx, container, o.connection, o.containerSpec())
			if createErr != nil {
				s.log.Warnw("container creation failed during upload retry",
					"container", container,
					"connection", o.connection,
					"error", createErr,
				)
			}
		}),
		retry.Context(ctx),
	)
	if err != nil {
		err = errx.Wrap(err, errx.WithCode(CodeUploadFailed), errx.WithDetails(errx.D{
			"container":  container,
			"blob":       blobName,
			"connection": o.connection,
		}))
		span.RecordError(err)
		return nil, err
	}

	s.log.Debugw("uploaded blob",
		"container", container,
		"blob", blobName,
		"connection", o.connection,
	)
	return ref, nil
}

// UploadContent materializes content in a transient file and uploads
// it via Upload with the same options. The transient file's name
// embeds the sanitized blob name for diagnostic traceability and the
// file is removed on every exit path before the call returns.
func (s *Store) UploadContent(ctx context.Context, container string, content []byte, blobName string, opts ...Option) (*FileReference, error) {
	tmpPath, err := materializeContent(content, blobName)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	defer func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.log.Warnw("failed to remove transient upload file",
				"path", tmpPath,
				"error", removeErr,
			)
		}
	}()

	ref, err := s.Upload(ctx, container, tmpPath, blobName, opts...)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return ref, nil
}

// Delete removes the object at blobPath, passing the backend's result
// through unchanged.
func (s *Store) Delete(ctx context.Context, container, blobPath string, opts ...Option) (map[string]any, error) {
	o := newCallOptions(s.defaultConnection, opts)

	ctx, span := s.tracer.Start(ctx, "blobstore.Delete", trace.WithAttributes(
		attribute.String("storage.container", container),
		attribute.String("storage.connection", o.connection),
	))
	defer span.End()

	backend, _, err := s.backendFor(o.connection)
	if err != nil {
		span.RecordError(err)
		return nil, errx.Wrap(err)
	}

	result, err := backend.Files.Delete(ctx, container, blobPath, o.connection)
	if err != nil {
		span.RecordError(err)
		return nil, errx.Wrap(err)
	}
	return result, nil
}

// PublicURL produces a time-bounded URL for the object at filePath.
// A zero window defaults to now .. now+24h, evaluated here, at call
// time. Invalid windows are rejected before any backend call.
func (s *Store) PublicURL(ctx context.Context, container, filePath string, window Window, opts ...Option) (string, error) {
	o := newCallOptions(s.defaultConnection, opts)

	ctx, span := s.tracer.Start(ctx, "blobstore.PublicURL", trace.WithAttributes(
		attribute.String("storage.container", container),
		attribute.String("storage.connection", o.connection),
	))
	defer span.End()

	if window.IsZero() {
		window = DefaultWindow()
	}
	if err := window.Validate(); err != nil {
		span.RecordError(err)
		return "", errx.Wrap(err)
	}

	backend, _, err := s.backendFor(o.connection)
	if err != nil {
		span.RecordError(err)
		return "", errx.Wrap(err)
	}

	url, err := backend.Files.PublicURL(ctx, container, filePath, window, o.connection)
	if err != nil {
		span.RecordError(err)
		return "", errx.Wrap(err)
	}
	return url, nil
}

// LastModified returns the provider's last-modified timestamp for the
// referenced object.
func (s *Store) LastModified(ctx context.Context, ref *FileReference, opts ...Option) (time.Time, error) {
	if ref == nil {
		return time.Time{}, errx.New(
			"file reference is required",
			errx.WithType(errx.T_Validation),
		)
	}

	o := newCallOptions(s.defaultConnection, opts)

	ctx, span := s.tracer.Start(ctx, "blobstore.LastModified", trace.WithAttributes(
		attribute.String("storage.container", ref.Container),
		attribute.String("storage.blob", ref.Name),
		attribute.String("storage.connection", o.connection),
	))
	defer span.End()

	backend, _, err := s.backendFor(o.connection)
	if err != nil {
		span.RecordError(err)
		return time.Time{}, errx.Wrap(err)
	}

	ts, err := backend.Files.LastModified(ctx, ref, o.connection)
	if err != nil {
		span.RecordError(err)
		return time.Time{}, errx.Wrap(err)
	}
	return ts, nil
}

// backendFor resolves the connection to its backend pair. Resolution
// happens fresh on every call; a later call may observe a different
// kind if the resolver's configuration changed.
func (s *Store) backendFor(connection string) (Backend, Kind, error) {
	kind, err := s.resolver.Resolve(connection)
	if err != nil {
		return Backend{}, "", errx.Wrap(err)
	}

	backend, ok := s.backends[kind]
	if !ok {
		return Backend{}, "", errx.New(
			"no backend registered for storage kind",
			errx.WithCode(CodeUnknownConnection),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{
				"connection": connection,
				"kind":       string(kind),
			}),
		)
	}
	return backend, kind, nil
}

// materializeContent writes content to a transient file whose name
// embeds the target blob name.
func materializeContent(content []byte, blobName string) (string, error) {
	pattern := fmt.Sprintf("%s_%s_*", Sanitize(blobName), uuid.New().String())

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", errx.Wrap(err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", errx.Wrap(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errx.Wrap(err)
	}

	return f.Name(), nil
}
