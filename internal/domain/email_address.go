package domain

import "time"

// EmailAddressRecord is a ledger entry for an allocated company address.
type EmailAddressRecord struct {
	Email     string
	FirstName string
	LastName  string
	Active    bool
	CreatedAt time.Time
}
