package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePair(t *testing.T, dir, name, original, transaction string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))
	require.NoError(t, os.WriteFile(path+TransactionSuffix, []byte(transaction), 0o644))
	return path
}

func backdate(t *testing.T, path string, d time.Duration) {
	t.Helper()
	at := time.Now().Add(d)
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestCommitPromotes(t *testing.T) {
	dir := t.TempDir()
	path := writePair(t, dir, "hosts.cfg", "old\n", "new\n")
	backdate(t, path, -time.Hour)

	results := Commit([]string{path}, true)
	require.Len(t, results, 1)
	assert.Equal(t, Promoted, results[0].Outcome)
	require.NoError(t, results[0].Err)

	assert.Equal(t, "new\n", readAll(t, path))
	_, err := os.Stat(path + TransactionSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestCommitSkipsWhenOriginalNewer(t *testing.T) {
	dir := t.TempDir()
	path := writePair(t, dir, "hosts.cfg", "old\n", "new\n")
	backdate(t, path+TransactionSuffix, -time.Hour)

	results := Commit([]string{path}, true)
	require.Len(t, results, 1)
	assert.Equal(t, Skipped, results[0].Outcome)

	// Both files still exist, untouched.
	assert.Equal(t, "old\n", readAll(t, path))
	assert.Equal(t, "new\n", readAll(t, path+TransactionSuffix))
}

func TestCommitWithoutCheckIgnoresTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := writePair(t, dir, "hosts.cfg", "old\n", "new\n")
	backdate(t, path+TransactionSuffix, -time.Hour)

	results := Commit([]string{path}, false)
	require.Len(t, results, 1)
	assert.Equal(t, Promoted, results[0].Outcome)
	assert.Equal(t, "new\n", readAll(t, path))
}

func TestCommitNoTransactionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.cfg")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	results := Commit([]string{path}, true)
	require.Len(t, results, 1)
	assert.Equal(t, NoTransaction, results[0].Outcome)
	assert.Equal(t, "old\n", readAll(t, path))
}

func TestCommitRenameFailure(t *testing.T) {
	dir := t.TempDir()

	// A directory in the original's place makes the rename fail while
	// the transaction file itself is perfectly readable.
	path := filepath.Join(dir, "hosts.cfg")
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(path+TransactionSuffix, []byte("new\n"), 0o644))

	results := Commit([]string{path}, false)
	require.Len(t, results, 1)
	assert.Equal(t, Failed, results[0].Outcome)
	require.Error(t, results[0].Err)

	// The transaction file survives the failed promotion.
	assert.Equal(t, "new\n", readAll(t, path+TransactionSuffix))
}

func TestCommitHandlesEachPathIndependently(t *testing.T) {
	dir := t.TempDir()
	a := writePair(t, dir, "a.cfg", "old\n", "new\n")
	backdate(t, a, -time.Hour)
	b := filepath.Join(dir, "b.cfg")
	require.NoError(t, os.WriteFile(b, []byte("old\n"), 0o644))

	results := Commit([]string{a, b}, true)
	require.Len(t, results, 2)
	assert.Equal(t, Promoted, results[0].Outcome)
	assert.Equal(t, NoTransaction, results[1].Outcome)
}
