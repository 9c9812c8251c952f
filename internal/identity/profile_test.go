package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_SaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	saved := Profile{Name: "小明", Char: "🐢"}
	require.NoError(t, SaveProfile(saved))

	loaded := LoadProfile()
	assert.Equal(t, saved, loaded)
}

func TestLoadProfile_MissingFileFallsBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := LoadProfile()
	assert.NotEmpty(t, p.Name)
	assert.True(t, ValidChar(p.Char))
}

func TestLoadProfile_InvalidCharFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, profileDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, profileFileName),
		[]byte("name: 小明\nchar: 💣\n"), 0o644))

	p := LoadProfile()
	assert.True(t, ValidChar(p.Char), "invalid char should be replaced")
	assert.NotEmpty(t, p.Name)
}
