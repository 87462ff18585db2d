package app

import (
	"io"

	"github.com/rs/zerolog"

	"leadchat/internal/model"
	"leadchat/internal/repository"
	"leadchat/internal/storage"
)

type FileService struct {
	store    *storage.LocalStore
	fileRepo *repository.FileRepository
	log      zerolog.Logger
}

func NewFileService(store *storage.LocalStore, fileRepo *repository.FileRepository, log zerolog.Logger) *FileService {
	return &FileService{
		store:    store,
		fileRepo: fileRepo,
		log:      log.With().Str("component", "file-service").Logger(),
	}
}

// Upload validates and stores one file, then records it. The MessageID stays
// nil until a later send names the file in its attachment list.
func (s *FileService) Upload(originalName, mimeType string, size int64, r io.Reader) (*model.File, error) {
	stored, err := s.store.Save(originalName, mimeType, size, r)
	if err != nil {
		return nil, err
	}

	record := &model.File{
		Filename:     stored.Filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         stored.Size,
		Path:         stored.Path,
	}
	if err := s.fileRepo.Create(record); err != nil {
		// Avoid a stray file on disk with no record behind it.
		_ = s.store.Remove(stored.Filename)
		return nil, err
	}
	return record, nil
}

// Resolve maps a stored filename to its on-disk path and (when recorded)
// MIME type for serving.
func (s *FileService) Resolve(filename string) (path, mimeType string, err error) {
	path, err = s.store.Path(filename)
	if err != nil {
		return "", "", err
	}

	record, repoErr := s.fileRepo.GetByFilename(filename)
	if repoErr != nil {
		s.log.Warn().Err(repoErr).Str("filename", filename).Msg("file record lookup failed")
	}
	if record != nil {
		mimeType = record.MimeType
	}
	return path, mimeType, nil
}
