package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"patientdesk/internal/config"
)

func TestRunReturnsStoreSetupErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	err := run(config.Config{
		ListenAddr:      "127.0.0.1:0",
		DatabaseURL:     "postgres://%zz",
		ShutdownTimeout: time.Second,
	}, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "patient store setup")
}

func TestRunReturnsListenErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()

	err := run(config.Config{
		ListenAddr:      "127.0.0.1:not-a-port",
		StaticDir:       "internal/web/static",
		MetricsPath:     "/metrics",
		ShutdownTimeout: time.Second,
	}, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve")
	assert.NotEmpty(t, hook.AllEntries())
}
