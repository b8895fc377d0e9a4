package stream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/brine/internal/expr"
	"github.com/roach88/brine/internal/objdef"
)

// rewriteFixture copies the shared fixture into a temp dir, runs one edit
// session over it with decide choosing per definition, and returns the
// promoted file content.
func rewriteFixture(t *testing.T, decide func(f *File, d *objdef.Definition) error) []byte {
	t.Helper()

	src, err := os.ReadFile(filepath.Join("testdata", "rewrite.cfg"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rewrite.cfg")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	f, err := Open(objdef.DefaultRegistry(), path, Options{Update: true})
	require.NoError(t, err)
	defer f.Discard()

	for {
		d, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, decide(f, d))
	}
	require.NoError(t, f.Finalize(StrategyOverwrite))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	return out
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGoldenRewriteUnchanged(t *testing.T) {
	out := rewriteFixture(t, func(f *File, d *objdef.Definition) error {
		return f.Unchanged()
	})
	newGoldie(t).Assert(t, "rewrite_unchanged", out)
}

func TestGoldenRewriteUpdate(t *testing.T) {
	out := rewriteFixture(t, func(f *File, d *objdef.Definition) error {
		if d.Type() == "host" && d.Identifier() == "web01" {
			if err := d.Set("register", expr.Int(0)); err != nil {
				return err
			}
			return f.Update(d)
		}
		return f.Unchanged()
	})
	newGoldie(t).Assert(t, "rewrite_update", out)
}

func TestGoldenRewriteDelete(t *testing.T) {
	out := rewriteFixture(t, func(f *File, d *objdef.Definition) error {
		if d.Type() == "host" {
			return f.Delete()
		}
		return f.Unchanged()
	})
	newGoldie(t).Assert(t, "rewrite_delete", out)
}
