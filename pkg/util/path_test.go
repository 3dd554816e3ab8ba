package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArchivePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"backslashes", `folder\sub\note.md`, "folder/sub/note.md"},
		{"duplicate slashes", "folder//sub///note.md", "folder/sub/note.md"},
		{"leading slash", "/folder/note.md", "folder/note.md"},
		{"trailing slash", "folder/sub/", "folder/sub"},
		{"mixed", `\folder\\sub/`, "folder/sub"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArchivePath(tt.in))
		})
	}
}

func TestSplitArchivePath(t *testing.T) {
	assert.Equal(t, []string{"a", "b.md"}, SplitArchivePath("a/b.md"))
	assert.Equal(t, []string{"a", "b.md"}, SplitArchivePath(`a\b.md`))
	// Dot and dot-dot segments invalidate the whole path.
	assert.Nil(t, SplitArchivePath(`a\.\b.md`))
	assert.Nil(t, SplitArchivePath("a/../b.md"))
	assert.Nil(t, SplitArchivePath(""))
	assert.Nil(t, SplitArchivePath("/"))
	assert.Nil(t, SplitArchivePath("./.."))
}

func TestSkipArchiveEntry(t *testing.T) {
	assert.True(t, SkipArchiveEntry([]string{"__MACOSX", "note.md"}))
	assert.True(t, SkipArchiveEntry([]string{".DS_Store"}))
	assert.True(t, SkipArchiveEntry([]string{"folder", ".hidden", "note.md"}))
	assert.True(t, SkipArchiveEntry(nil))
	assert.False(t, SkipArchiveEntry([]string{"folder", "note.md"}))
}
