package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/storage/object"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// CreateFromText stores pasted freeform text as a plain-text document.
func (s *Service) CreateFromText(ctx context.Context, userID, text string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	fileName := fmt.Sprintf("pasted-%s.txt", time.Now().UTC().Format("20060102-150405"))
	return s.Upload(ctx, userID, fileName, strings.NewReader(text))
}

// Current returns the most recently uploaded document for a user.
func (s *Service) Current(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// Get returns a document by ID for a user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns the user's upload history, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a document from the user's history.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	if userID == "" || documentID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, documentID)
}
