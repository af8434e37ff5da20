package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/config"
)

var (
	ErrFileTooLarge    = errors.New("resume exceeds the size limit")
	ErrUnsupportedType = errors.New("resume must be a pdf, doc or docx file")
	ErrResumeNotFound  = errors.New("resume not found")
)

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ResumeStore keeps uploaded resumes on the local filesystem and hands
// out URL paths for serving them back.
type ResumeStore struct {
	dir      string
	maxBytes int64
}

func NewResumeStore(cfg config.StorageConfig) (*ResumeStore, error) {

	if err := os.MkdirAll(cfg.ResumeDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create resume directory")
	}

	return &ResumeStore{dir: cfg.ResumeDir, maxBytes: cfg.MaxUploadBytes}, nil
}

// Save validates and stores one upload, returning the URL path the file
// is served under. The original filename survives in the stored name,
// prefixed with the upload time so names never collide.
func (s *ResumeStore) Save(name string, r io.Reader) (string, error) {

	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	stored := fmt.Sprintf("%d_%s", time.Now().Unix(), sanitize(name))
	path := filepath.Join(s.dir, stored)

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create resume file")
	}
	defer file.Close()

	// One extra byte past the limit distinguishes "exactly at the cap"
	// from "over it" without buffering the whole upload.
	written, err := io.Copy(file, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "write resume file")
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return "/resumes/" + stored, nil
}

// Open returns the stored file and its content type for serving.
func (s *ResumeStore) Open(stored string) (io.ReadCloser, string, error) {

	// The stored name never contains separators, so a traversal attempt
	// simply fails the lookup.
	if stored != filepath.Base(stored) {
		return nil, "", ErrResumeNotFound
	}

	file, err := os.Open(filepath.Join(s.dir, stored))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrResumeNotFound
		}
		return nil, "", errors.Wrap(err, "open resume file")
	}

	contentType := allowedExtensions[strings.ToLower(filepath.Ext(stored))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

func sanitize(name string) string {
	return unsafeChars.ReplaceAllString(filepath.Base(name), "_")
}
