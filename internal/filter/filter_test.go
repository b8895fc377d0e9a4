package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/brine/internal/expr"
)

func TestSetMatching(t *testing.T) {
	var s Set
	require.NoError(t, s.AddText("type == 'host'"))
	require.NoError(t, s.AddText("register == 0"))
	assert.False(t, s.Empty())

	env := expr.MapEnv{"type": expr.Str("host"), "register": expr.Int(0)}
	matched, err := s.Matching(env)
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	env = expr.MapEnv{"type": expr.Str("service"), "register": expr.Int(0)}
	matched, err = s.Matching(env)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "register == 0", matched[0].Source())

	env = expr.MapEnv{"type": expr.Str("service")}
	matched, err = s.Matching(env)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestSetAddTextSyntaxError(t *testing.T) {
	var s Set
	err := s.AddText("host_name ==")
	require.Error(t, err)
	assert.True(t, expr.IsSyntaxError(err))
}

func TestEmptySet(t *testing.T) {
	var s Set
	assert.True(t, s.Empty())

	matched, err := s.Matching(expr.MapEnv{})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `it\'s`, Escape("it's"))
	assert.Equal(t, `say \"hi\"`, Escape(`say "hi"`))
	assert.Equal(t, `a\\b`, Escape(`a\b`))
	assert.Equal(t, "trimmed", Escape("  trimmed  "))
}

func TestHostMacro(t *testing.T) {
	text := Host("web01")
	assert.Equal(t, "type == 'host' and host_name == 'web01'", text)

	e, err := expr.Compile(text)
	require.NoError(t, err)

	env := expr.MapEnv{"type": expr.Str("host"), "host_name": expr.Str("web01")}
	v, err := e.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, expr.Bool(true), v)
}

func TestHostMacroEscapesQuotes(t *testing.T) {
	text := Host("o'brien")
	e, err := expr.Compile(text)
	require.NoError(t, err)

	env := expr.MapEnv{"type": expr.Str("host"), "host_name": expr.Str("o'brien")}
	v, err := e.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, expr.Bool(true), v)
}

func TestServiceMacro(t *testing.T) {
	assert.Equal(t,
		"type == 'service' and host_name == 'web01' and service_description == 'HTTP'",
		Service("web01;HTTP"))

	assert.Equal(t,
		"type == 'service' and service_description == 'HTTP'",
		Service("HTTP"))
}

func TestSimpleMacros(t *testing.T) {
	assert.Equal(t, "type == 'command' and command_name == 'check_ping'", Command("check_ping"))
	assert.Equal(t, "type == 'contact' and contact_name == 'ops'", Contact("ops"))
	assert.Equal(t, "type == 'hostgroup' and hostgroup_name == 'web'", Hostgroup("web"))
	assert.Equal(t, "type == 'servicegroup' and servicegroup_name == 'db'", Servicegroup("db"))
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.txt")
	content := "type == 'host'\n\n  register == 0  \n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"type == 'host'", "register == 0"}, lines)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
