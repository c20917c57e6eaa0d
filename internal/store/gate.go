package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// UnloadGateEntry completes a pending gate entry: the vehicle's net weight
// (gross minus tare, weighed in kg) is booked into the entry's godown as
// tons and the entry moves to unloaded.
func (s *gormStore) UnloadGateEntry(ctx context.Context, gateEntryID uint, now time.Time) (*model.GateEntry, error) {
	var entry model.GateEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, gateEntryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("gate entry %d: %w", gateEntryID, ErrNotFound)
			}
			return err
		}

		if entry.Status != model.GateEntryPending {
			return fmt.Errorf("gate entry %d is %s: %w", entry.ID, entry.Status, ErrValidation)
		}
		if entry.GodownID == nil {
			return fmt.Errorf("gate entry %d has no godown assigned: %w", entry.ID, ErrValidation)
		}

		netKg := entry.GrossWeight - entry.TareWeight
		if netKg <= 0 {
			return fmt.Errorf("gate entry %d has non-positive net weight: %w", entry.ID, ErrValidation)
		}

		var godown model.Godown
		if err := tx.First(&godown, *entry.GodownID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("godown %d: %w", *entry.GodownID, ErrNotFound)
			}
			return err
		}

		if err := tx.Model(&godown).
			Update("current_storage", godown.CurrentStorage+netKg/1000).Error; err != nil {
			return fmt.Errorf("failed to update godown %d: %w", godown.ID, err)
		}

		if err := tx.Model(&entry).Updates(map[string]any{
			"status":      model.GateEntryUnloaded,
			"unloaded_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update gate entry %d: %w", entry.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Supplier").Preload("Godown").First(&entry, gateEntryID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
