// Package service hosts widget instances: it owns the dataset registry and
// the per-session selection state, and exposes the operations the HTTP
// adapters call.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/samemean/internal/adapters/session"
	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/render"
	"github.com/okian/samemean/internal/domain/selection"
	"github.com/okian/samemean/pkg/logger"
	"github.com/okian/samemean/pkg/metrics"
)

// Service implements the API dependencies for the widget.
type Service struct {
	mu sync.RWMutex
	// serializes read-modify-write of a session's state
	applyMu sync.Mutex

	// Core components
	catalog  *catalog.Catalog
	sessions session.Store

	// Configuration
	sessionTTL      time.Duration
	maxSessions     int
	cleanupInterval time.Duration
	tolerance       float64

	// State
	started         bool
	startedAt       time.Time
	inconsistencies []catalog.Consistency

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the dataset registry. The embedded table is used otherwise.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSessionStore replaces the default expiring session store.
func WithSessionStore(store session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithSessionTTL sets how long an idle widget instance is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions bounds the number of widget instances held in memory.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithCleanupInterval sets how often expired sessions are reclaimed.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// WithConsistencyTolerance sets the allowed gap between authored and
// bin-derived statistics before a dataset is reported as inconsistent.
func WithConsistencyTolerance(tol float64) Option {
	return func(s *Service) {
		if tol >= 0 {
			s.tolerance = tol
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessionTTL:      30 * time.Minute,
		maxSessions:     10000,
		cleanupInterval: time.Minute,
		tolerance:       0.5,
		logger:          nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads defaults for anything not injected, checks the registry and
// starts the session store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting widget service...")

	if s.catalog == nil {
		s.catalog = catalog.Default()
		s.logger.Info(ctx, "using embedded dataset table")
	}
	if s.sessions == nil {
		s.sessions = session.NewExpiringStore(
			session.WithTTL(s.sessionTTL),
			session.WithMaxSessions(s.maxSessions),
			session.WithCleanupInterval(s.cleanupInterval),
		)
	}

	s.inconsistencies = s.inconsistencies[:0]
	for _, report := range s.catalog.Consistency(s.tolerance) {
		if report.Consistent {
			continue
		}
		s.inconsistencies = append(s.inconsistencies, report)
		s.logger.Warn(ctx, "authored statistics disagree with bins",
			logger.String("dataset", report.DatasetID),
			logger.String("detail", report.Summary()),
		)
	}

	metrics.UpdateCatalogDatasets(s.catalog.Len())
	metrics.UpdateCatalogInconsistencies(len(s.inconsistencies))
	metrics.UpdateSessionsActive(s.sessions.Len())

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "widget service started",
		logger.Int("datasets", s.catalog.Len()),
		logger.Int("inconsistent", len(s.inconsistencies)),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxSessions", s.maxSessions),
	)

	return nil
}

// Stop marks the service stopped. Session state is kept in memory and is
// reclaimed by expiry.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "widget service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SessionTTL is how long an idle widget instance is kept.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Mount returns the state of the widget instance sid, creating a fresh
// instance when sid is empty or unknown. The returned id is the one to hand
// back to the client. A live instance has its time to live restarted, so an
// active visitor never loses state.
func (s *Service) Mount(ctx context.Context, sid string) (string, selection.State, bool, error) {
	if err := s.ready(); err != nil {
		return "", selection.State{}, false, err
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.mount(ctx, sid)
}

// mount requires applyMu so a refresh never overwrites a concurrent Apply.
func (s *Service) mount(ctx context.Context, sid string) (string, selection.State, bool, error) {
	if sid == "" {
		sid = session.NewID()
	}
	if st, ok := s.sessions.Get(ctx, sid); ok {
		s.sessions.Put(ctx, sid, st)
		return sid, st, false, nil
	}

	st := selection.Initial(s.catalog.First().ID)
	s.sessions.Put(ctx, sid, st)
	metrics.RecordSessionCreated()
	metrics.UpdateSessionsActive(s.sessions.Len())
	s.logger.Debug(ctx, "widget mounted", logger.String("session", sid))
	return sid, st, true, nil
}

// Unmount discards the instance's state; the next Mount starts fresh.
func (s *Service) Unmount(ctx context.Context, sid string) {
	if s.ready() != nil || sid == "" {
		return
	}
	s.sessions.Delete(ctx, sid)
	s.logger.Debug(ctx, "widget unmounted", logger.String("session", sid))
}

// Apply runs one user action against the instance sid and stores the result.
// datasetID is only read by the select action.
func (s *Service) Apply(ctx context.Context, sid string, action selection.Action, datasetID string) (selection.State, error) {
	if err := s.ready(); err != nil {
		return selection.State{}, err
	}
	if action == selection.ActionSelect && !s.catalog.Contains(datasetID) {
		return selection.State{}, fmt.Errorf("%w: %q", ErrUnknownDataset, datasetID)
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	_, current, _, err := s.mount(ctx, sid)
	if err != nil {
		return selection.State{}, err
	}
	next, err := selection.Apply(current, action, datasetID)
	if err != nil {
		return selection.State{}, err
	}
	s.sessions.Put(ctx, sid, next)

	switch action {
	case selection.ActionSelect:
		metrics.RecordSelection(datasetID)
	case selection.ActionToggleStats:
		metrics.RecordToggle("stats", next.StatsVisible)
	case selection.ActionToggleInterpretation:
		metrics.RecordToggle("interpretation", next.InterpretationVisible)
	}

	s.logger.Debug(ctx, "widget action applied",
		logger.String("session", sid),
		logger.String("action", string(action)),
		logger.String("selected", next.SelectedID),
		logger.Bool("statsVisible", next.StatsVisible),
		logger.Bool("interpretationVisible", next.InterpretationVisible),
	)
	return next, nil
}

// SelectDataset selects id and collapses the interpretation panel.
func (s *Service) SelectDataset(ctx context.Context, sid, id string) (selection.State, error) {
	return s.Apply(ctx, sid, selection.ActionSelect, id)
}

// ToggleStats flips the statistics panel.
func (s *Service) ToggleStats(ctx context.Context, sid string) (selection.State, error) {
	return s.Apply(ctx, sid, selection.ActionToggleStats, "")
}

// ToggleInterpretation flips the interpretation panel.
func (s *Service) ToggleInterpretation(ctx context.Context, sid string) (selection.State, error) {
	return s.Apply(ctx, sid, selection.ActionToggleInterpretation, "")
}

// Page composes the widget view for st.
func (s *Service) Page(_ context.Context, st selection.State) (render.PageView, error) {
	if err := s.ready(); err != nil {
		return render.PageView{}, err
	}
	return render.Page(s.catalog, st)
}

// Datasets returns the registry in order.
func (s *Service) Datasets() []catalog.Dataset {
	if s.ready() != nil {
		return nil
	}
	return s.catalog.Datasets()
}

// Dataset returns one record.
func (s *Service) Dataset(id string) (catalog.Dataset, error) {
	if err := s.ready(); err != nil {
		return catalog.Dataset{}, err
	}
	ds, ok := s.catalog.Lookup(id)
	if !ok {
		return catalog.Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return ds, nil
}

// Consistency compares a record's authored statistics with its bins.
func (s *Service) Consistency(id string) (catalog.Consistency, error) {
	ds, err := s.Dataset(id)
	if err != nil {
		return catalog.Consistency{}, err
	}
	return catalog.Check(ds, s.tolerance), nil
}

// Chart lays out a record's histogram with its statistics attached.
func (s *Service) Chart(id string) (render.ChartView, error) {
	ds, err := s.Dataset(id)
	if err != nil {
		return render.ChartView{}, err
	}
	return render.Chart(ds, true), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"sessionTTL":     s.sessionTTL.String(),
		"maxSessions":    s.maxSessions,
		"tolerance":      s.tolerance,
		"inconsistentIn": inconsistentIDs(s.inconsistencies),
	}

	if s.started {
		sessions := s.sessions.Len()
		stats["sessions"] = sessions
		stats["datasets"] = s.catalog.Len()
		stats["startedAt"] = s.startedAt.UTC().Format(time.RFC3339)
		stats["uptime"] = strings.TrimSpace(humanize.RelTime(s.startedAt, time.Now(), "", ""))

		metrics.UpdateSessionsActive(sessions)
	}

	return stats
}

func inconsistentIDs(reports []catalog.Consistency) []string {
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.DatasetID)
	}
	return ids
}
