package memstore

import (
	"context"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// EmailAddresses returns the allocation ledger view of the store.
func (s *Store) EmailAddresses() repository.EmailAddressRepository { return ledger{s} }

type ledger struct{ s *Store }

func (l ledger) Exists(_ context.Context, email string) (bool, error) {
	raw, err := l.s.db.Txn(false).First(tableEmailAddress, indexID, email)
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// Insert checks and writes inside one write transaction, so concurrent
// inserts of the same address see ErrConflict.
func (l ledger) Insert(_ context.Context, record *domain.EmailAddressRecord) error {
	txn := l.s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableEmailAddress, indexID, record.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return repository.ErrConflict
	}
	record.CreatedAt = l.s.now()
	row := *record
	if err := txn.Insert(tableEmailAddress, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
