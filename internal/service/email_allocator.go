package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/observability"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

const (
	maxEmailSuffix    = 99
	maxNamePartLength = 20
)

var (
	// ErrAllocationExhausted means the base address and all 99 suffixes are taken.
	ErrAllocationExhausted = errors.New("company email allocation exhausted")
	// ErrNameNotAllocatable means a name part has no [a-z0-9] characters left after normalizing.
	ErrNameNotAllocatable = errors.New("name has no characters usable in an email address")
)

// EmailAllocator derives unique company addresses from applicant names.
type EmailAllocator struct {
	ledger  repository.EmailAddressRepository
	domain  string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewEmailAllocator builds an allocator for companyDomain.
func NewEmailAllocator(ledger repository.EmailAddressRepository, companyDomain string, logger *zap.Logger, metrics *observability.Metrics) *EmailAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailAllocator{
		ledger:  ledger,
		domain:  strings.ToLower(strings.TrimPrefix(companyDomain, "@")),
		logger:  logger,
		metrics: metrics,
	}
}

// NormalizeNamePart lowercases, drops everything outside [a-z0-9] and
// truncates to 20 characters.
func NormalizeNamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxNamePartLength {
				break
			}
		}
	}
	return b.String()
}

// Candidate returns the address for suffix n; n == 0 is the bare base.
func (a *EmailAllocator) Candidate(first, last string, n int) string {
	local := first + "." + last
	if n > 0 {
		local += strconv.Itoa(n)
	}
	return local + "@" + a.domain
}

// Allocate records and returns the first free address for the name pair.
// A uniqueness conflict on insert is treated as "taken" and the next suffix is tried.
func (a *EmailAllocator) Allocate(ctx context.Context, firstName, lastName string) (string, error) {
	first, last := NormalizeNamePart(firstName), NormalizeNamePart(lastName)
	if first == "" || last == "" {
		a.metrics.RecordAllocation("invalid_name")
		return "", ErrNameNotAllocatable
	}

	for n := 0; n <= maxEmailSuffix; n++ {
		candidate := a.Candidate(first, last, n)
		taken, err := a.ledger.Exists(ctx, candidate)
		if err != nil {
			a.metrics.RecordAllocation("error")
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		if taken {
			continue
		}

		err = a.ledger.Insert(ctx, &domain.EmailAddressRecord{
			Email:     candidate,
			FirstName: strings.TrimSpace(firstName),
			LastName:  strings.TrimSpace(lastName),
			Active:    true,
		})
		if errors.Is(err, repository.ErrConflict) {
			a.logger.Debug("email candidate claimed concurrently", zap.String("email", candidate))
			continue
		}
		if err != nil {
			a.metrics.RecordAllocation("error")
			return "", fmt.Errorf("record %s: %w", candidate, err)
		}
		a.metrics.RecordAllocation("allocated")
		return candidate, nil
	}

	a.metrics.RecordAllocation("exhausted")
	return "", fmt.Errorf("%w: %s.%s@%s", ErrAllocationExhausted, first, last, a.domain)
}
