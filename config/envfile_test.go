package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEnv = `# Deployment environment
DJANGO_SETTINGS_MODULE=msgvis.settings.prod

# DEBUG=
DEBUG_JS=
SERVER_HOST = 0.0.0.0
PORT=8000
DATABASE_URL=mysql://u:p@h:3306/n
# MEMCACHED_LOCATION=127.0.0.1:11211
SECRET_KEY=s3cr3t=with=equals
ALLOWED_HOSTS=localhost,example.com
`

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_SkipsCommentsAndBlankLines(t *testing.T) {
	set, err := Parse(strings.NewReader(sampleEnv), "sample")
	require.NoError(t, err)

	assert.Equal(t, 8, set.Len())
	_, ok := set.Lookup("DEBUG")
	assert.False(t, ok, "commented key must be absent")
	_, ok = set.Lookup("MEMCACHED_LOCATION")
	assert.False(t, ok)

	v, ok := set.Lookup("DEBUG_JS")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParse_RoundTripsTrimmedValues(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
	}{
		{"PORT=8000", "PORT", "8000"},
		{"  SERVER_HOST =  0.0.0.0  ", "SERVER_HOST", "0.0.0.0"},
		{"SECRET_KEY=a=b=c", "SECRET_KEY", "a=b=c"},
		{"STATIC_ROOT=", "STATIC_ROOT", ""},
		{`QUOTED="kept as is"`, "QUOTED", `"kept as is"`},
		{"URL=http://x/#frag", "URL", "http://x/#frag"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			set, err := Parse(strings.NewReader(tt.line+"\n"), "line")
			require.NoError(t, err)
			v, ok := set.Lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("PORT=1\n\nGARBAGE\n"), "bad.env")
	require.Error(t, err)

	var mle *MalformedLineError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, "bad.env", mle.Path)
	assert.Equal(t, 3, mle.Line)
	assert.Equal(t, "GARBAGE", mle.Text)
}

func TestParse_EmptyKeyIsMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("=value\n"), "bad.env")
	var mle *MalformedLineError
	assert.ErrorAs(t, err, &mle)
}

func TestParse_LastWriteWins(t *testing.T) {
	set, err := Parse(strings.NewReader("PORT=1\nPORT=2\n"), "dup")
	require.NoError(t, err)
	assert.Equal(t, "2", set.Get("PORT"))
}

func TestParse_IgnoresByteOrderMark(t *testing.T) {
	set, err := Parse(strings.NewReader("\ufeffPORT=1\n"), "bom")
	require.NoError(t, err)
	assert.Equal(t, "1", set.Get("PORT"))
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeEnv(t, sampleEnv)

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Keys(), second.Keys())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromEnviron(t *testing.T) {
	set := FromEnviron([]string{"A=1", "B=x=y", "broken", "=nokey"})
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, set.Map())
}

func TestSet_MapIsACopy(t *testing.T) {
	set := NewSet(map[string]string{"A": "1"})
	m := set.Map()
	m["A"] = "2"
	assert.Equal(t, "1", set.Get("A"))
}
