package lending

import "Gin_postgres_redis_library/models"

// LoanFilter holds the optional read-side filters supplied by a caller.
type LoanFilter struct {
	IsActive   *bool
	BorrowerID *string
}

// LoanQuery is a LoanFilter resolved against a requester. Stores apply it as-is.
type LoanQuery struct {
	// BorrowerID restricts results to one borrower; empty means all borrowers.
	BorrowerID string
	// Active restricts results to active (true) or closed (false) loans; nil means both.
	Active *bool
}

// Resolve scopes the filter to what requester may see.
// Regular requesters always get their own loans; a supplied BorrowerID is ignored.
func (f LoanFilter) Resolve(requester Requester) LoanQuery {
	q := LoanQuery{Active: f.IsActive}
	switch {
	case !requester.Privileged():
		q.BorrowerID = requester.ID
	case f.BorrowerID != nil:
		q.BorrowerID = *f.BorrowerID
	}
	return q
}

// Matches evaluates the query against a single loan.
func (q LoanQuery) Matches(l models.Loan) bool {
	if q.BorrowerID != "" && l.UserID != q.BorrowerID {
		return false
	}
	if q.Active != nil && l.Active() != *q.Active {
		return false
	}
	return true
}
