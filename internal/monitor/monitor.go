package monitor

import (
	"context"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"millops-backend/config"
	"millops-backend/internal/notification"
	"millops-backend/internal/store"
)

// Service periodically evaluates cleaning intervals on active transfer
// sessions and pushes an alert the moment a magnet crosses into overdue.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool

	// alerted tracks which (session, magnet) pairs have already been
	// notified so an alert fires once per overdue interval window.
	alerted map[alertKey]int64
}

type alertKey struct {
	sessionID uint
	magnetID  uint
}

// NewService creates and initializes a new monitor service.
func NewService(cfg *config.Config, store store.Store) *Service {
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, store.DB(), &webpushOptions)

	return &Service{
		cfg:        cfg,
		store:      store,
		workerPool: workerPool,
		alerted:    make(map[alertKey]int64),
	}
}

// Run starts the monitoring process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Monitor.Enabled {
		log.Println("Overdue monitor is disabled. Not starting.")
		return
	}
	log.Println("Starting overdue-cleaning monitor...")

	// Start the worker pool
	s.workerPool.Start(ctx)

	s.CheckOnce(ctx)

	timer := time.NewTimer(s.cfg.Monitor.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Overdue monitor shutting down.")
			return
		case <-timer.C:
			s.CheckOnce(ctx)
			timer.Reset(s.cfg.Monitor.Interval)
		}
	}
}

// CheckOnce performs a single evaluation pass over all active sessions and
// dispatches alert jobs for magnets that newly became overdue.
func (s *Service) CheckOnce(ctx context.Context) {
	now := time.Now().UTC()

	overdue, err := s.store.ActiveOverdueMagnets(ctx, now)
	if err != nil {
		log.Printf("Error evaluating overdue magnets: %v", err)
		return
	}

	current := make(map[alertKey]int64, len(overdue))
	for _, st := range overdue {
		key := alertKey{sessionID: st.SessionID, magnetID: st.MagnetID}
		current[key] = st.IntervalNumber

		// A cleaning resets the window; a later interval number means the
		// magnet lapsed again and deserves a fresh alert.
		if prev, seen := s.alerted[key]; seen && prev == st.IntervalNumber {
			continue
		}
		log.Printf("Magnet %d on session %d is overdue (interval %d), dispatching alert",
			st.MagnetID, st.SessionID, st.IntervalNumber)
		s.workerPool.Dispatch(notification.Job{MagnetID: st.MagnetID, SessionID: st.SessionID})
	}

	s.alerted = current
}
