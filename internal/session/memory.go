package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

type entry struct {
	ID        string
	ExpiresAt time.Time
	State     *domain.WizardState
}

// MemoryStore keeps sessions in process. Expired entries are dropped on read.
type MemoryStore struct {
	db  *memdb.MemDB
	now func() time.Time
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(&memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"session": {
				Name: "session",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("session schema: %w", err)
	}
	return &MemoryStore{db: db, now: time.Now}, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state *domain.WizardState, ttl time.Duration) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("session", &entry{ID: id, ExpiresAt: s.now().Add(ttl), State: state.Clone()}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*domain.WizardState, error) {
	raw, err := s.db.Txn(false).First("session", "id", id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	e := raw.(*entry)
	if !s.now().Before(e.ExpiresAt) {
		txn := s.db.Txn(true)
		_ = txn.Delete("session", e)
		txn.Commit()
		return nil, ErrNotFound
	}
	return e.State.Clone(), nil
}
