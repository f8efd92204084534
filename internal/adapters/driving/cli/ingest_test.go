package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func TestIngestCmd_RequiresArgs(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_HasFlags(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("ticker")
	require.NotNil(t, flag)
	assert.Equal(t, "t", flag.Shorthand)
	assert.NotNil(t, ingestCmd.Flags().Lookup("id"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("json"))
}

func TestIngestCmd_FileThenQuery(t *testing.T) {
	setupTestRuntime(t)
	path := writeFile(t, t.TempDir(), "npn.txt", "Naspers core headline earnings rose.")

	out, err := execute(t, "ingest", path, "--ticker", "NPN", "--id", "npn")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ npn.txt")
	assert.Contains(t, out, "(npn)")

	resetFlags()
	out, err = execute(t, "query", "headline earnings", "--ticker", "npn")
	require.NoError(t, err)
	assert.Contains(t, out, "[Source 1]")
	assert.Contains(t, out, "npn.txt")
}

func TestIngestCmd_Directory(t *testing.T) {
	setupTestRuntime(t)
	dir := t.TempDir()
	writeFile(t, dir, "sens/trading.txt", "Trading statement")
	writeFile(t, dir, "notes.md", "# Notes")
	writeFile(t, dir, ".hidden/secret.txt", "skip")

	out, err := execute(t, "ingest", dir, "--json")
	require.NoError(t, err)

	var results []ingestResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "notes.md", results[0].DocumentID)
	assert.Equal(t, "sens/trading.txt", results[1].DocumentID)
	assert.Empty(t, results[0].Error)
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	setupTestRuntime(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "fine")
	bad := writeFile(t, dir, "broken.pdf", "not a pdf")

	out, err := execute(t, "ingest", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, "✓ good.txt")
	assert.Contains(t, out, "✗ broken.pdf")
}

func TestIngestCmd_IDWithManyFiles(t *testing.T) {
	setupTestRuntime(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "b.txt", "b")

	_, err := execute(t, "ingest", a, b, "--id", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--id can only be used with a single file")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "ingest", "/does/not/exist.pdf")
	assert.Error(t, err)
}

func TestRootCmd_RejectsUnknownBackend(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "--backend", "mongo", "documents", "list")
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestIngestCmd_RejectsInvalidTicker(t *testing.T) {
	setupTestRuntime(t)
	dir := t.TempDir()

	_, err := execute(t, "ingest", writeFile(t, dir, "npn.txt", "Naspers."), "--ticker", "NASPERS")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "query", "Naspers", "--ticker", "N1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
