package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talentflow/ats/internal/config"
)

func testStore(t *testing.T, maxBytes int64) *ResumeStore {
	t.Helper()
	store, err := NewResumeStore(config.StorageConfig{
		ResumeDir:      t.TempDir(),
		MaxUploadBytes: maxBytes,
	})
	assert.NoError(t, err)
	return store
}

func Test_Save_ShouldStoreFileAndReturnURLPath(t *testing.T) {

	store := testStore(t, 1024)

	url, err := store.Save("resume.pdf", bytes.NewReader([]byte("%PDF-1.4 fake")))

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/resumes/"))
	assert.True(t, strings.HasSuffix(url, "_resume.pdf"))
}

func Test_Save_WhenExtensionUnsupported_ShouldReject(t *testing.T) {

	store := testStore(t, 1024)

	_, err := store.Save("malware.exe", bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save("noextension", bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func Test_Save_WhenFileTooLarge_ShouldRejectAndCleanUp(t *testing.T) {

	store := testStore(t, 10)

	_, err := store.Save("resume.pdf", bytes.NewReader(make([]byte, 11)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(store.dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Save_WhenExactlyAtLimit_ShouldAccept(t *testing.T) {

	store := testStore(t, 10)

	_, err := store.Save("resume.pdf", bytes.NewReader(make([]byte, 10)))
	assert.NoError(t, err)
}

func Test_Save_ShouldSanitizeFilename(t *testing.T) {

	store := testStore(t, 1024)

	url, err := store.Save("../weird name!.pdf", bytes.NewReader([]byte("data")))

	assert.NoError(t, err)
	assert.NotContains(t, url, "..")
	assert.NotContains(t, url, " ")
}

func Test_Open_ShouldServeSavedFile(t *testing.T) {

	store := testStore(t, 1024)

	url, err := store.Save("resume.pdf", bytes.NewReader([]byte("content")))
	assert.NoError(t, err)

	file, contentType, err := store.Open(filepath.Base(url))
	assert.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	assert.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.Equal(t, "application/pdf", contentType)
}

func Test_Open_WhenNameTraverses_ShouldReturnNotFound(t *testing.T) {

	store := testStore(t, 1024)

	_, _, err := store.Open("../../etc/passwd")
	assert.ErrorIs(t, err, ErrResumeNotFound)
}

func Test_Open_WhenMissing_ShouldReturnNotFound(t *testing.T) {

	store := testStore(t, 1024)

	_, _, err := store.Open("12345_ghost.pdf")
	assert.ErrorIs(t, err, ErrResumeNotFound)
}
