// Package store keeps extracted statements and their audit trails in a
// registry keyed by ID. The in-memory implementation is the only backend;
// data is lost on service restart.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-editor/internal/audit"
	"github.com/dvloznov/statement-editor/internal/domain"
)

// ErrNotFound is returned when no statement exists under the requested ID.
var ErrNotFound = errors.New("statement not found")

// Record is a registered statement together with its provenance and audit
// trail. The trail is shared across snapshots; it is append-only and safe
// for concurrent use.
type Record struct {
	ID        string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Statement *domain.Statement
	Trail     *audit.Trail
}

// StatementStore defines the registry operations the API is built on.
type StatementStore interface {
	// Create registers a statement and returns the new record.
	Create(ctx context.Context, st *domain.Statement, source string) (*Record, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Update replaces the stored statement for an existing record.
	Update(ctx context.Context, id string, st *domain.Statement) error

	// List returns all records.
	List(ctx context.Context) ([]*Record, error)
}

// Memory is an in-memory implementation of StatementStore.
// It is safe for concurrent use. Statements are cloned on the way in and out
// so callers can never mutate registry state through a shared pointer.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory statement registry.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]*Record),
	}
}

// Create implements the StatementStore interface.
func (m *Memory) Create(ctx context.Context, st *domain.Statement, source string) (*Record, error) {
	if st == nil {
		return nil, fmt.Errorf("store: statement is required")
	}

	now := time.Now()
	rec := &Record{
		ID:        uuid.New().String(),
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
		Statement: st.Clone(),
		Trail:     audit.NewTrail(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec

	return m.snapshot(rec), nil
}

// Get implements the StatementStore interface.
func (m *Memory) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[id]
	if !exists {
		return nil, fmt.Errorf("store: %w: %s", ErrNotFound, id)
	}
	return m.snapshot(rec), nil
}

// Update implements the StatementStore interface.
func (m *Memory) Update(ctx context.Context, id string, st *domain.Statement) error {
	if st == nil {
		return fmt.Errorf("store: statement is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[id]
	if !exists {
		return fmt.Errorf("store: %w: %s", ErrNotFound, id)
	}

	rec.Statement = st.Clone()
	rec.UpdatedAt = time.Now()
	return nil
}

// List implements the StatementStore interface.
func (m *Memory) List(ctx context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, m.snapshot(rec))
	}
	return result, nil
}

// snapshot copies a record with a cloned statement. The trail pointer is
// shared on purpose: appends from any snapshot land in the one canonical
// trail for the statement.
func (m *Memory) snapshot(rec *Record) *Record {
	cp := *rec
	cp.Statement = rec.Statement.Clone()
	return &cp
}

// Ensure Memory implements StatementStore interface.
var _ StatementStore = (*Memory)(nil)
