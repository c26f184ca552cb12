package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"senate-lobbyist-source/config"
	"senate-lobbyist-source/internal/source"
	"senate-lobbyist-source/internal/store"
)

// Reader is the part of source.Source the syncer depends on.
type Reader interface {
	Streams() []source.Stream
	Read(ctx context.Context, stream source.Stream, emit func(source.Record) error) (source.ReadStats, error)
}

// Status summarises the most recent sync run.
type Status struct {
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Pages      int       `json:"pages"`
	Records    int       `json:"records"`
	Stored     int       `json:"stored"`
	Error      string    `json:"error,omitempty"`
}

// Service copies every stream of the source into the store.
type Service struct {
	cfg    *config.SyncConfig
	reader Reader
	store  store.Store

	mu       sync.RWMutex
	status   Status
	onSynced []func()
}

// NewService creates a sync service.
func NewService(cfg *config.SyncConfig, reader Reader, s store.Store) *Service {
	return &Service{
		cfg:    cfg,
		reader: reader,
		store:  s,
	}
}

// Status returns a copy of the last run summary.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// OnSynced registers fn to run after every sync that stored records.
func (s *Service) OnSynced(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSynced = append(s.onSynced, fn)
}

// Run syncs once immediately and then every configured interval until ctx is
// done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Sync is disabled. Not starting.")
		return
	}
	log.Println("Starting sync service...")

	if err := s.SyncOnce(ctx); err != nil {
		log.Printf("Sync cycle failed: %v", err)
	}

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync service shutting down.")
			return
		case <-timer.C:
			if err := s.SyncOnce(ctx); err != nil {
				log.Printf("Sync cycle failed: %v", err)
			}
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SyncOnce reads every stream to the end and stores the records in batches.
// Records read before a failure are still stored.
func (s *Service) SyncOnce(ctx context.Context) error {
	log.Println("Executing sync cycle...")
	run := Status{Running: true, StartedAt: time.Now().UTC()}
	s.setStatus(run)

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var errs []error
	for _, stream := range s.reader.Streams() {
		batch := make([]source.Record, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n, err := s.store.UpsertRecords(ctx, batch)
			run.Stored += n
			batch = batch[:0]
			if err != nil {
				return fmt.Errorf("%s: failed to store records: %w", stream.Name(), err)
			}
			return nil
		}

		stats, readErr := s.reader.Read(ctx, stream, func(r source.Record) error {
			batch = append(batch, r)
			if len(batch) >= batchSize {
				return flush()
			}
			return nil
		})
		run.Pages += stats.Pages
		run.Records += stats.Records

		// Keep whatever was read even when the read failed part way.
		if err := flush(); err != nil {
			errs = append(errs, err)
		}
		if readErr != nil {
			errs = append(errs, readErr)
		}
		log.Printf("%s: %d pages, %d records read", stream.Name(), stats.Pages, stats.Records)
	}

	err := errors.Join(errs...)
	run.Running = false
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Error = err.Error()
	}
	s.setStatus(run)
	if run.Stored > 0 {
		s.notifySynced()
	}

	log.Printf("Sync cycle finished: %d records read, %d stored.", run.Records, run.Stored)
	return err
}

func (s *Service) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *Service) notifySynced() {
	s.mu.RLock()
	hooks := append([]func(){}, s.onSynced...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}
