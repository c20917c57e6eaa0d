package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// CreateCleaningRecord appends a cleaning event after checking that the
// magnet (and session, when referenced) exist and the session, if given, is
// not cancelled.
func (s *gormStore) CreateCleaningRecord(ctx context.Context, rec *model.MagnetCleaningRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.Magnet{}, rec.MagnetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("magnet %d: %w", rec.MagnetID, ErrNotFound)
			}
			return err
		}

		if rec.TransferSessionID != nil {
			var session model.TransferSession
			if err := tx.First(&session, *rec.TransferSessionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("transfer session %d: %w", *rec.TransferSessionID, ErrNotFound)
				}
				return err
			}
			if session.Status == model.SessionCancelled {
				return fmt.Errorf("transfer session %d is cancelled: %w", session.ID, ErrValidation)
			}
		}

		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create cleaning record: %w", err)
		}
		return nil
	})
}
