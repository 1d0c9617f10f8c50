package service

import (
	"context"
	"log"
	"mime/multipart"
	"time"

	"github.com/fantaballa/gamepass-api/internal/entity"
	evidenceDto "github.com/fantaballa/gamepass-api/internal/modules/evidence/dto"
	evidenceRepo "github.com/fantaballa/gamepass-api/internal/modules/evidence/repository"
	"github.com/fantaballa/gamepass-api/pkg/storage"
	"github.com/google/uuid"
)

// orphanMaxAge is how long an unattached upload survives before the
// cleanup job removes it.
const orphanMaxAge = 24 * time.Hour

type EvidenceService interface {
	UploadEvidence(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*evidenceDto.UploadEvidenceResponse, error)
	CleanupOrphanEvidence(ctx context.Context) error
}

type evidenceService struct {
	files       evidenceRepo.EvidenceRepository
	fileStorage storage.ImageStorage
}

func NewEvidenceService(files evidenceRepo.EvidenceRepository, fileStorage storage.ImageStorage) EvidenceService {
	return &evidenceService{
		files:       files,
		fileStorage: fileStorage,
	}
}

func (s *evidenceService) UploadEvidence(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*evidenceDto.UploadEvidenceResponse, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	url, err := s.fileStorage.UploadImage(ctx, f, "evidence", file.Filename)
	if err != nil {
		return nil, err
	}

	record := &entity.EvidenceFile{
		UserID:   userID,
		FileURL:  url,
		FileType: file.Header.Get("Content-Type"),
	}

	if err := s.files.Create(ctx, record); err != nil {
		return nil, err
	}

	return &evidenceDto.UploadEvidenceResponse{
		ID:       record.ID,
		FileURL:  record.FileURL,
		FileType: record.FileType,
	}, nil
}

// CleanupOrphanEvidence removes uploads that were never attached to a
// claim. Failures are logged and retried on the next run.
func (s *evidenceService) CleanupOrphanEvidence(ctx context.Context) error {
	cutoff := time.Now().Add(-orphanMaxAge)

	orphans, err := s.files.FindOrphans(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteImage(ctx, orphan.FileURL); err != nil {
			log.Printf("failed to delete orphan evidence from storage: %v", err)
			continue
		}
		if err := s.files.Delete(ctx, orphan.ID); err != nil {
			log.Printf("failed to delete orphan evidence record %d: %v", orphan.ID, err)
		}
	}
	return nil
}
