// Package memstore is an in-memory implementation of the repository
// interfaces, backed by go-memdb. Write transactions are serialized, so
// uniqueness checks inside one transaction behave like a storage constraint.
package memstore

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

const (
	tableSubmission     = "submission"
	tableEmailAddress   = "email_address"
	tableTask           = "task"
	tableTaskAssignment = "task_assignment"
	tableTeam           = "team"
	tableDepartment     = "department"
	tableManager        = "manager"
	tableRecruiter      = "recruiter"

	indexID = "id"
)

func schema() *memdb.DBSchema {
	byID := func(field string) *memdb.IndexSchema {
		return &memdb.IndexSchema{Name: indexID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: field}}
	}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableSubmission: {
				Name: tableSubmission,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: byID("ID"),
					"generated_email": {
						Name:         "generated_email",
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "GeneratedEmail"},
					},
				},
			},
			tableEmailAddress: {
				Name:    tableEmailAddress,
				Indexes: map[string]*memdb.IndexSchema{indexID: byID("Email")},
			},
			tableTask: {
				Name: tableTask,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: byID("ID"),
					"manager_team": {
						Name: "manager_team",
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "ManagerID"},
							&memdb.StringFieldIndex{Field: "TeamID"},
						}},
					},
				},
			},
			tableTaskAssignment: {
				Name: tableTaskAssignment,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: byID("ID"),
					"pair": {
						Name:   "pair",
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "TaskID"},
							&memdb.StringFieldIndex{Field: "SubmissionID"},
						}},
					},
					"submission": {
						Name:    "submission",
						Indexer: &memdb.StringFieldIndex{Field: "SubmissionID"},
					},
				},
			},
			tableTeam: {
				Name:    tableTeam,
				Indexes: map[string]*memdb.IndexSchema{indexID: byID("ID")},
			},
			tableDepartment: {
				Name:    tableDepartment,
				Indexes: map[string]*memdb.IndexSchema{indexID: byID("ID")},
			},
			tableManager: {
				Name: tableManager,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: byID("ID"),
					"email": {
						Name:    "email",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
					},
				},
			},
			tableRecruiter: {
				Name:    tableRecruiter,
				Indexes: map[string]*memdb.IndexSchema{indexID: byID("ID")},
			},
		},
	}
}

// Store holds every table.
type Store struct {
	db  *memdb.MemDB
	now func() time.Time
}

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("memdb schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// submissionRow flattens the generated email so it can be indexed.
type submissionRow struct {
	ID             string
	GeneratedEmail string
	Submission     domain.OnboardingSubmission
}

// PutTeam inserts or replaces a team.
func (s *Store) PutTeam(team domain.Team) error { return s.put(tableTeam, &team) }

// PutDepartment inserts or replaces a department.
func (s *Store) PutDepartment(dept domain.Department) error { return s.put(tableDepartment, &dept) }

// PutManager inserts or replaces a manager.
func (s *Store) PutManager(m domain.Manager) error { return s.put(tableManager, &m) }

// PutRecruiter inserts or replaces a recruiter.
func (s *Store) PutRecruiter(r domain.Recruiter) error { return s.put(tableRecruiter, &r) }

func (s *Store) put(table string, obj any) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(table, obj); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
