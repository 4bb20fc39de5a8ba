package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbplo/file-storage-api/logger"
)

func TestNew(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "debug", Encoding: "json"})

	require.NoError(t, err)
	require.NotNil(t, log)

	log.Named("test").With("key", "value").Infow("constructed")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logger.New(logger.Config{Level: "verbose", Encoding: "json"})

	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	log := logger.NewNop()

	log.Debugw("dropped")
	log.Errorw("dropped too", "key", "value")
	assert.NoError(t, log.Sync())
}
