package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Options{App: "otodom_listing_crawler", RunLabel: "local", Dir: dir})
	require.NoError(t, err)

	logger.Info("starting run")
	_ = logger.Sync() // stdout sync can fail on some platforms

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "otodom_listing_crawler_local_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".log"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "starting run")
}

func TestNewWithoutDirSkipsFileCore(t *testing.T) {
	logger, err := New(Options{App: "otodom_offers_scrapper"})
	require.NoError(t, err)
	logger.Info("console only")
}

func TestNewCreatesMissingLogDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	_, err := New(Options{App: "otodom_listing_crawler", Dir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
