package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"account-service/internal/application/command"
	"account-service/internal/domain"
	"account-service/internal/infrastructure"
)

// UploadService stores one anonymous blob per call. Nothing links the stored
// file to an account and its location is not returned.
type UploadService struct {
	store  infrastructure.UploadStore
	logger *slog.Logger
}

func NewUploadService(store infrastructure.UploadStore, logger *slog.Logger) *UploadService {
	return &UploadService{store: store, logger: logger}
}

func (s *UploadService) Upload(ctx context.Context, originalName string, src io.Reader, size int64, contentType string) (*command.MessageResult, error) {
	if src == nil {
		return nil, domain.NewValidationError("No file uploaded")
	}

	path, err := s.store.Save(ctx, generateUploadName(), src, size, contentType)
	if err != nil {
		return nil, domain.NewServerError(fmt.Errorf("upload: %w", err))
	}

	s.logger.Info("file uploaded", "originalName", originalName, "path", path, "size", size)
	return &command.MessageResult{Message: "File uploaded successfully!"}, nil
}

// generateUploadName returns 32 random hex characters.
func generateUploadName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
