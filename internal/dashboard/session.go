package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/filter"
	"github.com/sells-group/flightdelay/internal/model"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = eris.New("dashboard: session not found")

// Session owns one analyst's filter state and the report computed from it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	ds     *model.Dataset
	opts   aggregate.Options
	state  filter.State
	report *aggregate.Report
}

// NewSession starts a session on ds with both filters on All.
func NewSession(ds *model.Dataset, opts aggregate.Options) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		ds:        ds,
		opts:      opts,
		state:     filter.NewState(),
	}
	s.report = Compute(ds, s.state, opts)
	return s
}

// ApplyFilter updates one dimension from a raw widget selection. When the
// effective selection changes the report is recomputed. It reports whether a
// recomputation happened.
func (s *Session) ApplyFilter(dim filter.Dimension, raw []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Set(dim, dim.Domain(s.ds), raw) {
		return false
	}
	s.report = Compute(s.ds, s.state, s.opts)
	return true
}

// State returns a copy of the current filter state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Report returns the report for the current filter state.
func (s *Session) Report() *aggregate.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Dataset returns the dataset the session currently reads.
func (s *Session) Dataset() *model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

func (s *Session) rebase(ds *model.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.state.Rebase(ds)
	s.report = Compute(ds, s.state, s.opts)
}

// DatasetSource yields the shared dataset. dataset.Cache satisfies it.
type DatasetSource interface {
	Get(ctx context.Context) (*model.Dataset, error)
	Reload(ctx context.Context) (*model.Dataset, error)
}

// Manager tracks live sessions over one shared, read-only dataset.
type Manager struct {
	source DatasetSource
	opts   aggregate.Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager reading datasets from source.
func NewManager(source DatasetSource, opts aggregate.Options) *Manager {
	return &Manager{
		source:   source,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session. It holds the write lock across the dataset
// fetch so a concurrent Reload either finishes first or sees the session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, err := m.source.Get(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load dataset")
	}
	s := NewSession(ds, m.opts)
	m.sessions[s.ID] = s

	zap.L().Info("dashboard: session created", zap.String("session", s.ID))
	return s, nil
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, eris.Wrapf(ErrSessionNotFound, "id %s", id)
	}
	return s, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrSessionNotFound, "id %s", id)
	}
	delete(m.sessions, id)
	return nil
}

// IDs returns the ids of live sessions in ascending order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dataset returns the shared dataset.
func (m *Manager) Dataset(ctx context.Context) (*model.Dataset, error) {
	return m.source.Get(ctx)
}

// Reload reloads the dataset and recomputes every session against it. On
// failure the previous dataset stays in place.
func (m *Manager) Reload(ctx context.Context) (*model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, err := m.source.Reload(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: reload dataset")
	}

	for _, s := range m.sessions {
		s.rebase(ds)
	}
	zap.L().Info("dashboard: dataset reloaded",
		zap.Int("flights", len(ds.Flights)),
		zap.Int("sessions", len(m.sessions)),
	)
	return ds, nil
}
