package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// checkQuantity rejects quantities that must never reach the stock totals.
func checkQuantity(qty float64) error {
	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return fmt.Errorf("quantity %v is not a non-negative finite number: %w", qty, ErrValidation)
	}
	return nil
}

// StartSession validates the endpoints, resolves a matching route
// configuration for the magnet set (falling back to the caller-supplied
// single magnet), and creates the session with its first bin-occupancy span.
func (s *gormStore) StartSession(ctx context.Context, in StartSessionInput, now time.Time) (*model.TransferSession, error) {
	var session model.TransferSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var godown model.Godown
		if err := tx.First(&godown, in.SourceGodownID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("source godown %d: %w", in.SourceGodownID, ErrNotFound)
			}
			return err
		}

		var bin model.Bin
		if err := tx.First(&bin, in.DestinationBinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("destination bin %d: %w", in.DestinationBinID, ErrNotFound)
			}
			return err
		}

		magnetStages, err := resolveRoute(tx, in.SourceGodownID, in.DestinationBinID)
		if err != nil {
			return err
		}

		session = model.TransferSession{
			SourceGodownID:      in.SourceGodownID,
			DestinationBinID:    in.DestinationBinID,
			CurrentBinID:        in.DestinationBinID,
			StartedAt:           now,
			CurrentBinStartedAt: now,
			Status:              model.SessionActive,
			Notes:               in.Notes,
			Version:             1,
			BranchID:            in.BranchID,
		}

		if len(magnetStages) > 0 {
			// Route match wins: the first magnet doubles as the session's
			// primary magnet reference.
			session.MagnetID = &magnetStages[0].ComponentID
			session.IntervalSecs = magnetStages[0].IntervalSecs
		} else if in.MagnetID != nil {
			if err := tx.First(&model.Magnet{}, *in.MagnetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("magnet %d: %w", *in.MagnetID, ErrNotFound)
				}
				return err
			}
			session.MagnetID = in.MagnetID
			session.IntervalSecs = in.IntervalSecs
		}

		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create transfer session: %w", err)
		}

		if len(magnetStages) > 0 {
			sessionMagnets := make([]model.TransferSessionMagnet, 0, len(magnetStages))
			for i, stage := range magnetStages {
				sessionMagnets = append(sessionMagnets, model.TransferSessionMagnet{
					TransferSessionID: session.ID,
					MagnetID:          stage.ComponentID,
					IntervalSecs:      stage.IntervalSecs,
					SequenceNo:        i + 1,
				})
			}
			if err := tx.Create(&sessionMagnets).Error; err != nil {
				return fmt.Errorf("failed to create session magnets: %w", err)
			}
		} else if session.MagnetID != nil {
			sm := model.TransferSessionMagnet{
				TransferSessionID: session.ID,
				MagnetID:          *session.MagnetID,
				IntervalSecs:      session.IntervalSecs,
				SequenceNo:        1,
			}
			if err := tx.Create(&sm).Error; err != nil {
				return fmt.Errorf("failed to create session magnet: %w", err)
			}
		}

		firstSpan := model.BinTransfer{
			TransferSessionID: session.ID,
			BinID:             in.DestinationBinID,
			SequenceNo:        1,
			StartedAt:         now,
		}
		if err := tx.Create(&firstSpan).Error; err != nil {
			return fmt.Errorf("failed to open bin transfer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, session.ID)
}

// resolveRoute scans the route configurations for one whose first stage is
// the given godown and whose last stage is the given bin, and returns its
// magnet stages in line order. When several routes match, the most recently
// created wins; that ordering is a deliberate, tested contract.
func resolveRoute(tx *gorm.DB, sourceGodownID, destinationBinID uint) ([]model.RouteStage, error) {
	var routes []model.RouteConfiguration
	if err := tx.Preload("Stages", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_no ASC")
	}).Order("created_at DESC, id DESC").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to load route configurations: %w", err)
	}

	for _, route := range routes {
		if len(route.Stages) < 2 {
			continue
		}
		first := route.Stages[0]
		last := route.Stages[len(route.Stages)-1]
		if first.ComponentType != model.StageGodown || first.ComponentID != sourceGodownID {
			continue
		}
		if last.ComponentType != model.StageBin || last.ComponentID != destinationBinID {
			continue
		}

		var magnets []model.RouteStage
		for _, stage := range route.Stages {
			if stage.ComponentType == model.StageMagnet {
				magnets = append(magnets, stage)
			}
		}
		return magnets, nil
	}

	return nil, nil
}

// DivertSession redirects an active session into a new bin: the open
// occupancy span is closed with the quantity moved so far, stock totals are
// booked, and a new span is opened. The cleaning-interval clock is not
// touched; intervals always run from session start.
func (s *gormStore) DivertSession(ctx context.Context, sessionID, newBinID uint, quantity float64, now time.Time) (*model.TransferSession, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockActiveSession(tx, sessionID)
		if err != nil {
			return err
		}

		var newBin model.Bin
		if err := tx.First(&newBin, newBinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("bin %d: %w", newBinID, ErrNotFound)
			}
			return err
		}

		lastSeq, err := closeOpenSpan(tx, session.ID, quantity, now)
		if err != nil {
			return err
		}

		if err := addToBin(tx, session.CurrentBinID, quantity); err != nil {
			return err
		}
		if err := drainGodown(tx, session.SourceGodownID, quantity); err != nil {
			return err
		}

		nextSpan := model.BinTransfer{
			TransferSessionID: session.ID,
			BinID:             newBinID,
			SequenceNo:        lastSeq + 1,
			StartedAt:         now,
		}
		if err := tx.Create(&nextSpan).Error; err != nil {
			return fmt.Errorf("failed to open bin transfer: %w", err)
		}

		return bumpSession(tx, session, map[string]any{
			"current_bin_id":         newBinID,
			"current_bin_started_at": now,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// StopSession closes an active session. The quantity is the session total:
// the open span is closed with whatever the earlier diverts have not yet
// accounted for, stock totals are booked, and the session moves to
// completed. Completed sessions never transition again.
func (s *gormStore) StopSession(ctx context.Context, sessionID uint, quantity float64, now time.Time) (*model.TransferSession, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockActiveSession(tx, sessionID)
		if err != nil {
			return err
		}

		booked, err := closedSpanTotal(tx, session.ID)
		if err != nil {
			return err
		}
		remainder := quantity - booked
		if remainder < 0 {
			return fmt.Errorf("transfer session %d: total %.4f is below the %.4f already diverted: %w",
				session.ID, quantity, booked, ErrValidation)
		}

		if _, err := closeOpenSpan(tx, session.ID, remainder, now); err != nil {
			return err
		}

		if err := addToBin(tx, session.CurrentBinID, remainder); err != nil {
			return err
		}
		if err := drainGodown(tx, session.SourceGodownID, remainder); err != nil {
			return err
		}

		return bumpSession(tx, session, map[string]any{
			"stopped_at":           now,
			"transferred_quantity": quantity,
			"status":               model.SessionCompleted,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// CancelSession administratively closes an active session without booking
// any quantities. The open span is closed with a zero quantity.
func (s *gormStore) CancelSession(ctx context.Context, sessionID uint, now time.Time) (*model.TransferSession, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockActiveSession(tx, sessionID)
		if err != nil {
			return err
		}

		if _, err := closeOpenSpan(tx, session.ID, 0, now); err != nil {
			return err
		}

		return bumpSession(tx, session, map[string]any{
			"stopped_at": now,
			"status":     model.SessionCancelled,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// GetSession loads a session with its endpoints, magnets and spans.
func (s *gormStore) GetSession(ctx context.Context, sessionID uint) (*model.TransferSession, error) {
	var session model.TransferSession
	err := s.db.WithContext(ctx).
		Preload("SourceGodown").
		Preload("DestinationBin").
		Preload("CurrentBin").
		Preload("Magnets", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Preload("Magnets.Magnet").
		Preload("BinTransfers", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Preload("BinTransfers.Bin").
		First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transfer session %d: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns sessions newest first, optionally filtered by status
// and branch.
func (s *gormStore) ListSessions(ctx context.Context, status string, branchID *uint) ([]model.TransferSession, error) {
	q := s.db.WithContext(ctx).
		Preload("SourceGodown").
		Preload("DestinationBin").
		Preload("CurrentBin").
		Preload("Magnets", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Order("started_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}

	var sessions []model.TransferSession
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// lockActiveSession fetches a session and rejects anything not active.
func lockActiveSession(tx *gorm.DB, sessionID uint) (*model.TransferSession, error) {
	var session model.TransferSession
	if err := tx.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transfer session %d: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, fmt.Errorf("transfer session %d is %s: %w", sessionID, session.Status, ErrValidation)
	}
	return &session, nil
}

// bumpSession applies updates guarded by the session's version stamp. A
// concurrent divert/stop that moved the version first makes this write a
// conflict instead of a lost update.
func bumpSession(tx *gorm.DB, session *model.TransferSession, updates map[string]any) error {
	updates["version"] = session.Version + 1
	res := tx.Model(&model.TransferSession{}).
		Where("id = ? AND version = ?", session.ID, session.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update transfer session %d: %w", session.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transfer session %d was modified concurrently: %w", session.ID, ErrConflict)
	}
	return nil
}

// closedSpanTotal sums the quantities already booked by closed spans.
func closedSpanTotal(tx *gorm.DB, sessionID uint) (float64, error) {
	var total float64
	err := tx.Model(&model.BinTransfer{}).
		Where("transfer_session_id = ? AND ended_at IS NOT NULL", sessionID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum bin transfers for session %d: %w", sessionID, err)
	}
	return total, nil
}

// closeOpenSpan closes the session's open bin-occupancy span and returns its
// sequence number.
func closeOpenSpan(tx *gorm.DB, sessionID uint, quantity float64, now time.Time) (int, error) {
	var span model.BinTransfer
	err := tx.Where("transfer_session_id = ? AND ended_at IS NULL", sessionID).
		Order("sequence_no DESC").
		First(&span).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("no open bin transfer for session %d: %w", sessionID, ErrValidation)
		}
		return 0, err
	}

	if err := tx.Model(&span).Updates(map[string]any{
		"ended_at": now,
		"quantity": quantity,
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to close bin transfer: %w", err)
	}
	return span.SequenceNo, nil
}

// addToBin books quantity into a bin and flips it to Full when the running
// quantity reaches capacity.
func addToBin(tx *gorm.DB, binID uint, quantity float64) error {
	var bin model.Bin
	if err := tx.First(&bin, binID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bin %d: %w", binID, ErrNotFound)
		}
		return err
	}

	updates := map[string]any{"current_quantity": bin.CurrentQuantity + quantity}
	if bin.CurrentQuantity+quantity >= bin.Capacity {
		updates["status"] = model.BinFull
	}
	if err := tx.Model(&bin).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update bin %d: %w", binID, err)
	}
	return nil
}

// drainGodown subtracts quantity from a godown's running storage, floored
// at zero.
func drainGodown(tx *gorm.DB, godownID uint, quantity float64) error {
	var godown model.Godown
	if err := tx.First(&godown, godownID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("godown %d: %w", godownID, ErrNotFound)
		}
		return err
	}

	remaining := godown.CurrentStorage - quantity
	if remaining < 0 {
		remaining = 0
	}
	if err := tx.Model(&godown).Update("current_storage", remaining).Error; err != nil {
		return fmt.Errorf("failed to update godown %d: %w", godownID, err)
	}
	return nil
}
