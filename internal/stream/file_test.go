package stream

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/brine/internal/expr"
	"github.com/roach88/brine/internal/objdef"
)

const fixtureConfig = "# Fleet hosts\r\n" +
	"\r\n" +
	"define host {\n" +
	"    host_name\tweb01   # primary\n" +
	"    register  1\n" +
	"}\n" +
	"\n" +
	"# trailing commentary\n" +
	"define host {\n" +
	"    host_name  db01\n" +
	"}\n" +
	"; footer without newline"

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// drain makes one decision per definition and returns the identifiers seen.
func drain(t *testing.T, f *File, decide func(d *objdef.Definition) error) []string {
	t.Helper()
	var ids []string
	for {
		d, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, d.Identifier())
		require.NoError(t, decide(d))
	}
	return ids
}

func TestReadOnlySession(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{})
	require.NoError(t, err)
	defer f.Close()

	ids := drain(t, f, func(*objdef.Definition) error { return f.Unchanged() })
	assert.Equal(t, []string{"web01", "db01"}, ids)
	assert.False(t, f.Updated())
}

func TestUpdateSessionNoChangesIsByteIdentical(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	drain(t, f, func(*objdef.Definition) error { return f.Unchanged() })
	require.NoError(t, f.Close())

	// CRLF line endings, inline comments and the missing final newline
	// all survive untouched.
	assert.Equal(t, fixtureConfig, readAll(t, f.outName))
}

func TestUpdateRewritesMatchedBlockOnly(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	drain(t, f, func(d *objdef.Definition) error {
		if d.Identifier() != "web01" {
			return f.Unchanged()
		}
		if err := d.Set("register", expr.Int(0)); err != nil {
			return err
		}
		return f.Update(d)
	})
	require.NoError(t, f.Finalize(StrategyOverwrite))

	out := readAll(t, path)
	assert.Contains(t, out, "# Fleet hosts")
	assert.Contains(t, out, "# trailing commentary")
	assert.Contains(t, out, "; footer without newline")
	assert.Contains(t, out, "define host {\n    host_name                      web01\n    register                       0\n}\n")
	assert.Contains(t, out, "host_name  db01")
	assert.NotContains(t, out, "register  1")
	assert.True(t, f.Updated())
}

func TestDeleteRemovesBlockKeepsSurroundings(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	drain(t, f, func(d *objdef.Definition) error {
		if d.Identifier() == "db01" {
			return f.Delete()
		}
		return f.Unchanged()
	})
	require.NoError(t, f.Finalize(StrategyOverwrite))

	out := readAll(t, path)
	assert.NotContains(t, out, "db01")
	assert.Contains(t, out, "web01")
	assert.Contains(t, out, "# trailing commentary")
	assert.Contains(t, out, "; footer without newline")
}

func TestFinalizeBackupPreservesOriginal(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	drain(t, f, func(d *objdef.Definition) error {
		if d.Identifier() == "db01" {
			return f.Delete()
		}
		return f.Unchanged()
	})
	require.NoError(t, f.Finalize(StrategyBackup))

	assert.Equal(t, fixtureConfig, readAll(t, path+BackupSuffix))
	assert.NotContains(t, readAll(t, path), "db01")
}

func TestFinalizeTransactionLeavesOriginalUntouched(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	drain(t, f, func(d *objdef.Definition) error {
		if d.Identifier() == "db01" {
			return f.Delete()
		}
		return f.Unchanged()
	})
	require.NoError(t, f.Finalize(StrategyTransaction))

	assert.Equal(t, fixtureConfig, readAll(t, path))
	assert.NotContains(t, readAll(t, path+TransactionSuffix), "db01")
}

func TestReadTransactionComposesEdits(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	// First pass deletes db01 into a transaction file.
	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	drain(t, f, func(d *objdef.Definition) error {
		if d.Identifier() == "db01" {
			return f.Delete()
		}
		return f.Unchanged()
	})
	require.NoError(t, f.Finalize(StrategyTransaction))

	// Second pass reads the transaction file and edits on top of it.
	f, err = Open(objdef.DefaultRegistry(), path, Options{Update: true, ReadTransaction: true})
	require.NoError(t, err)
	defer f.Discard()
	ids := drain(t, f, func(d *objdef.Definition) error {
		if err := d.Set("register", expr.Int(0)); err != nil {
			return err
		}
		return f.Update(d)
	})
	require.NoError(t, f.Finalize(StrategyTransaction))

	assert.Equal(t, []string{"web01"}, ids)
	txn := readAll(t, path+TransactionSuffix)
	assert.Contains(t, txn, "register                       0")
	assert.NotContains(t, txn, "db01")

	// The original is still pristine.
	assert.Equal(t, fixtureConfig, readAll(t, path))
}

func TestWriteFailureSurfacesAndBlocksFinalize(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	// Kill the output sink; the prefix flush ahead of the first block
	// must fail loudly rather than parse on with a broken side file.
	require.NoError(t, f.out.Close())

	_, err = f.Next()
	require.Error(t, err)

	// The session stays failed: nothing can be promoted and further
	// decisions report the same error.
	require.Error(t, f.Unchanged())
	require.Error(t, f.Finalize(StrategyOverwrite))
	assert.Equal(t, fixtureConfig, readAll(t, path))
}

func TestDiscardRemovesTempFile(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)

	_, err = f.Next()
	require.NoError(t, err)
	f.Discard()

	_, err = os.Stat(f.outName)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(objdef.DefaultRegistry(), filepath.Join(t.TempDir(), "nope.cfg"), Options{})
	require.Error(t, err)
}

func TestOpenUnknownEncoding(t *testing.T) {
	path := writeFixture(t, fixtureConfig)

	_, err := Open(objdef.DefaultRegistry(), path, Options{Encoding: "no-such-charset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown encoding")
}

func TestLatin1RoundTrip(t *testing.T) {
	// "café" in ISO 8859-1: é is a single 0xE9 byte.
	content := []byte("define host {\n    host_name caf\xe9\n}\n")
	path := filepath.Join(t.TempDir(), "hosts.cfg")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	f, err := Open(objdef.DefaultRegistry(), path, Options{Encoding: "ISO-8859-1", Update: true})
	require.NoError(t, err)
	defer f.Discard()

	ids := drain(t, f, func(d *objdef.Definition) error { return f.Update(d) })
	require.NoError(t, f.Finalize(StrategyOverwrite))

	assert.Equal(t, []string{"café"}, ids)
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "caf\xe9")
}

func TestParseStrategy(t *testing.T) {
	for spelling, want := range map[string]Strategy{
		"overwrite":   StrategyOverwrite,
		"backup":      StrategyBackup,
		"transaction": StrategyTransaction,
	} {
		got, err := ParseStrategy(spelling)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("inplace")
	require.Error(t, err)
}

func TestStreamReader(t *testing.T) {
	s := New(objdef.DefaultRegistry(), strings.NewReader(fixtureConfig))

	d, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "web01", d.Identifier())

	d, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "db01", d.Identifier())

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}
