package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// MagnetIntervalStatus is the evaluated cleaning-interval state of one
// magnet within one active session. The evaluation is stateless: callers
// may poll it as often as they like.
type MagnetIntervalStatus struct {
	SessionID      uint       `json:"session_id"`
	MagnetID       uint       `json:"magnet_id"`
	MagnetName     string     `json:"magnet_name"`
	IntervalSecs   int64      `json:"interval_secs"`
	IntervalNumber int64      `json:"interval_number"`
	IntervalStart  time.Time  `json:"-"`
	LastCleanedAt  *time.Time `json:"-"`
	Overdue        bool       `json:"overdue"`
}

// CleaningDue evaluates the overdue predicate for one magnet. A magnet is
// due within a session once at least one full interval has elapsed since
// session start and no cleaning is recorded at or after the start of the
// current interval window.
func CleaningDue(startedAt time.Time, intervalSecs int64, lastCleanedAt *time.Time, now time.Time) (due bool, intervalNumber int64, intervalStart time.Time) {
	if intervalSecs <= 0 {
		return false, 0, startedAt
	}

	elapsed := int64(now.Sub(startedAt) / time.Second)
	intervalNumber = elapsed / intervalSecs
	intervalStart = startedAt.Add(time.Duration(intervalNumber*intervalSecs) * time.Second)

	if intervalNumber < 1 {
		return false, intervalNumber, intervalStart
	}
	if lastCleanedAt != nil && !lastCleanedAt.Before(intervalStart) {
		return false, intervalNumber, intervalStart
	}
	return true, intervalNumber, intervalStart
}

// SessionMagnetStatus evaluates the cleaning state of every magnet on one
// active session.
func (s *gormStore) SessionMagnetStatus(ctx context.Context, sessionID uint, now time.Time) ([]MagnetIntervalStatus, error) {
	var session model.TransferSession
	err := s.db.WithContext(ctx).
		Preload("Magnets", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Preload("Magnets.Magnet").
		First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transfer session %d: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}

	return s.evaluateSession(ctx, &session, now)
}

// ActiveOverdueMagnets evaluates every magnet of every active session and
// returns only the overdue ones. This backs both the report endpoint and
// the background monitor.
func (s *gormStore) ActiveOverdueMagnets(ctx context.Context, now time.Time) ([]MagnetIntervalStatus, error) {
	var sessions []model.TransferSession
	err := s.db.WithContext(ctx).
		Preload("Magnets", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_no ASC") }).
		Preload("Magnets.Magnet").
		Where("status = ?", model.SessionActive).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	var overdue []MagnetIntervalStatus
	for i := range sessions {
		statuses, err := s.evaluateSession(ctx, &sessions[i], now)
		if err != nil {
			return nil, err
		}
		for _, st := range statuses {
			if st.Overdue {
				overdue = append(overdue, st)
			}
		}
	}
	return overdue, nil
}

// evaluateSession runs the interval predicate for each of a session's
// magnets. A cleaning record satisfies the check for its magnet regardless
// of which session it was recorded under: cleaning is a physical act on the
// equipment, not per-session bookkeeping.
func (s *gormStore) evaluateSession(ctx context.Context, session *model.TransferSession, now time.Time) ([]MagnetIntervalStatus, error) {
	statuses := make([]MagnetIntervalStatus, 0, len(session.Magnets))
	for _, sm := range session.Magnets {
		lastCleanedAt, err := s.lastCleaning(ctx, sm.MagnetID, session.StartedAt)
		if err != nil {
			return nil, err
		}

		due, n, windowStart := CleaningDue(session.StartedAt, sm.IntervalSecs, lastCleanedAt, now)

		status := MagnetIntervalStatus{
			SessionID:      session.ID,
			MagnetID:       sm.MagnetID,
			IntervalSecs:   sm.IntervalSecs,
			IntervalNumber: n,
			IntervalStart:  windowStart,
			LastCleanedAt:  lastCleanedAt,
			Overdue:        due,
		}
		if sm.Magnet != nil {
			status.MagnetName = sm.Magnet.Name
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// lastCleaning returns the latest cleaning timestamp for a magnet at or
// after the session start, or nil when none exists.
func (s *gormStore) lastCleaning(ctx context.Context, magnetID uint, since time.Time) (*time.Time, error) {
	var rec model.MagnetCleaningRecord
	err := s.db.WithContext(ctx).
		Where("magnet_id = ? AND cleaned_at >= ?", magnetID, since).
		Order("cleaned_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec.CleanedAt, nil
}
