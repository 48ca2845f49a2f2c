// Package viewer owns the currently served strategy collection and
// orchestrates the rescan cycle: optional remote sync, the sequential
// parse-and-aggregate pipeline, persistence, snapshot, and event fan-out.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/export"
	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/remote"
	"github.com/rebrag/GTOLite-Helper-Script/internal/scanner"
	"github.com/rebrag/GTOLite-Helper-Script/internal/store"
)

// Event is published to subscribers after each completed rescan.
type Event struct {
	BuildID string    `json:"build_id"`
	Nodes   int       `json:"nodes"`
	Hands   int       `json:"hands"`
	Files   int       `json:"files"`
	BuiltAt time.Time `json:"built_at"`
}

// Service holds the current collection and runs rescans. The pipeline
// itself is strictly sequential; the service only guards the swap of the
// finished, immutable collection so API readers never see a partial build.
type Service struct {
	scanner  *scanner.Scanner
	repo     *store.Repository // optional
	syncer   *remote.Syncer    // optional
	exporter *export.Exporter
	log      zerolog.Logger

	mu      sync.RWMutex
	current *nodes.Collection
	report  *scanner.RunReport

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int

	rescanMu sync.Mutex // serializes rescans triggered by cron and API
}

// New creates the viewer service. repo and syncer may be nil when
// persistence or remote sync are not configured.
func New(sc *scanner.Scanner, repo *store.Repository, syncer *remote.Syncer, exporter *export.Exporter, log zerolog.Logger) *Service {
	return &Service{
		scanner:     sc,
		repo:        repo,
		syncer:      syncer,
		exporter:    exporter,
		log:         log.With().Str("component", "viewer").Logger(),
		subscribers: make(map[int]chan Event),
	}
}

// Collection returns the currently served collection, or nil before the
// first successful rescan.
func (s *Service) Collection() *nodes.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LastReport returns the report of the most recent rescan.
func (s *Service) LastReport() *scanner.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// RestoreSnapshot loads the msgpack snapshot from the export directory and
// serves it until the first rescan completes. Missing snapshots are not an
// error.
func (s *Service) RestoreSnapshot() error {
	col, err := export.ReadSnapshot(s.snapshotPath())
	if err != nil {
		return err
	}
	if col == nil {
		return nil
	}

	s.mu.Lock()
	s.current = col
	s.mu.Unlock()

	s.log.Info().Str("build_id", col.BuildID).Int("nodes", len(col.Nodes)).Msg("Restored collection from snapshot")
	return nil
}

// Rescan runs one full cycle and swaps in the resulting collection.
func (s *Service) Rescan(ctx context.Context) (*scanner.RunReport, error) {
	s.rescanMu.Lock()
	defer s.rescanMu.Unlock()

	if s.syncer != nil {
		if _, err := s.syncer.Sync(ctx); err != nil {
			// A sync failure leaves the previous local files in place;
			// the scan still reflects the last known inputs.
			s.log.Warn().Err(err).Msg("Remote sync failed, scanning existing local files")
		}
	}

	col, report, err := s.scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("rescan failed: %w", err)
	}

	if s.repo != nil {
		if err := s.repo.SaveBuild(col, s.scanner.Dir(), report.Files); err != nil {
			s.log.Error().Err(err).Str("build_id", col.BuildID).Msg("Failed to persist build")
		}
	}

	if err := export.WriteSnapshot(s.snapshotPath(), col); err != nil {
		s.log.Warn().Err(err).Msg("Failed to write snapshot")
	}

	s.mu.Lock()
	s.current = col
	s.report = report
	s.mu.Unlock()

	s.publish(Event{
		BuildID: col.BuildID,
		Nodes:   len(col.Nodes),
		Hands:   col.HandCount(),
		Files:   report.Files,
		BuiltAt: col.BuiltAt,
	})

	return report, nil
}

// Export writes the current collection's JSON documents and returns the
// paths written.
func (s *Service) Export() ([]string, error) {
	col := s.Collection()
	if col == nil {
		return nil, fmt.Errorf("no collection available yet")
	}
	return s.exporter.WriteAll(col)
}

// Subscribe registers a rescan-event listener. The returned cancel function
// must be called to release the subscription. Slow subscribers miss events
// rather than blocking a rescan.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 4)
	s.subscribers[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotPath() string {
	return filepath.Join(s.exporter.OutDir(), export.SnapshotFilename)
}
