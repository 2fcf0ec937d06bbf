// Package postgres implements the domain repositories on database/sql
// with the lib/pq driver. Uniqueness invariants (invitation access
// tokens, one confirmation per invitation) are enforced here by the
// database constraints, surfaced through unique-violation mapping.
package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
