package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// writeConfig writes a configuration that enables download without credentials.
func writeConfig(t *testing.T, logFile string) string {
	t.Helper()
	t.Setenv("RNU_ACCESS_TOKEN", "")
	t.Setenv("RNU_VERSIONS", "")
	t.Setenv("RNU_LOG_FILE", logFile)

	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	body := "organization: dnceng\nproject: internal\ndownload: true\nsync: false\n" +
		"output_dir: " + filepath.Join(root, "output") + "\n" +
		"download_dir: " + filepath.Join(root, "downloads") + "\n" +
		"versions:\n  - runtime: 8.0.15\n    build: \"2661524\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCommandErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	orig := newLogger
	newLogger = func(string) (*zap.Logger, error) { return zap.New(core), nil }
	t.Cleanup(func() { newLogger = orig })

	path := writeConfig(t, "")
	err := execute(context.Background(), []string{"--config", path})
	require.Error(t, err)
	assert.ErrorContains(t, err, "access_token")

	failed := logs.FilterMessageSnippet("release-notes-updater failed")
	require.Equal(t, 1, failed.Len())
	entry := failed.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Message, "download requires: access_token")
}

func TestCommandErrorReachesLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "updater.log")
	path := writeConfig(t, logFile)

	require.Error(t, execute(context.Background(), []string{"--config", path, "download"}))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "release-notes-updater failed: download requires: access_token")
}
