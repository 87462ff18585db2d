package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultMaxUploadSize = 10 * 1024 * 1024

var (
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrTypeNotSupported = errors.New("file type not supported")
	ErrFileNotFound     = errors.New("file not found")
)

// allowedMimeTypes lists the upload types accepted for chat attachments:
// common image formats, documents, and plain-text payloads.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":       {},
	"image/png":        {},
	"image/gif":        {},
	"image/webp":       {},
	"application/pdf":  {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain":       {},
	"text/csv":         {},
	"application/json": {},
}

// LocalStore writes uploads to a directory on local disk under generated
// filenames. Validation happens before any byte reaches disk.
type LocalStore struct {
	dir     string
	maxSize int64
	log     zerolog.Logger
}

type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

func NewLocalStore(dir string, maxSize int64, log zerolog.Logger) (*LocalStore, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory failed: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		maxSize: maxSize,
		log:     log.With().Str("component", "local-store").Logger(),
	}, nil
}

func (s *LocalStore) MaxSize() int64 {
	return s.maxSize
}

// Save validates MIME type and declared size, then streams the content to a
// freshly generated filename. The copy is capped as well, so an understated
// size declaration cannot smuggle an oversize body.
func (s *LocalStore) Save(originalName, mimeType string, size int64, r io.Reader) (*StoredFile, error) {
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return nil, ErrTypeNotSupported
	}
	if size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	filename := uuid.NewString()
	if ext := filepath.Ext(originalName); ext != "" && len(ext) <= 16 {
		filename += strings.ToLower(ext)
	}
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file failed: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file failed: %w", err)
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return nil, ErrFileTooLarge
	}

	s.log.Debug().Str("filename", filename).Int64("bytes", written).Msg("upload stored")

	return &StoredFile{
		Filename: filename,
		Path:     path,
		Size:     written,
	}, nil
}

// Path resolves a stored filename to its on-disk path, or ErrFileNotFound.
// Names carrying path separators never resolve.
func (s *LocalStore) Path(filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", ErrFileNotFound
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrFileNotFound
	}
	return path, nil
}

// Open reads back a stored file.
func (s *LocalStore) Open(filename string) (io.ReadCloser, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file failed: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file; missing files are not an error.
func (s *LocalStore) Remove(filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove upload file failed: %w", err)
	}
	return nil
}
