package seenset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FileSet_AddAndContains(t *testing.T) {

	path := filepath.Join(t.TempDir(), "processed_urls.txt")

	set, err := Open(path)
	assert.NoError(t, err)
	defer func() { _ = set.Close() }()

	url := "https://fresheropenings.com/acme-hiring/"
	assert.False(t, set.Contains(url))

	assert.NoError(t, set.Add(url))
	assert.True(t, set.Contains(url))
	assert.Equal(t, 1, set.Len())

	// adding again must not duplicate the entry
	assert.NoError(t, set.Add(url))
	assert.Equal(t, 1, set.Len())
}

func Test_FileSet_SurvivesReopen(t *testing.T) {

	path := filepath.Join(t.TempDir(), "processed_urls.txt")
	urls := []string{
		"https://fresheropenings.com/a/",
		"https://freshersrecruitment.co.in/b/",
	}

	set, err := Open(path)
	assert.NoError(t, err)
	for _, url := range urls {
		assert.NoError(t, set.Add(url))
	}
	assert.NoError(t, set.Close())

	reopened, err := Open(path)
	assert.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	for _, url := range urls {
		assert.True(t, reopened.Contains(url))
	}
	assert.Equal(t, len(urls), reopened.Len())
}

func Test_FileSet_IgnoresBlankLines(t *testing.T) {

	path := filepath.Join(t.TempDir(), "processed_urls.txt")
	err := os.WriteFile(path, []byte("https://fresheropenings.com/a/\n\n  \nhttps://fresheropenings.com/b/\n"), 0644)
	assert.NoError(t, err)

	set, err := Open(path)
	assert.NoError(t, err)
	defer func() { _ = set.Close() }()

	assert.Equal(t, 2, set.Len())
}

func Test_Open_FailsWhenFileIsUnavailable(t *testing.T) {

	// a path whose parent is a regular file can never be opened
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	assert.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(filepath.Join(blocker, "processed_urls.txt"))
	assert.Error(t, err)
}
