package db

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories translate into domain errors.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeExclusionViolation  = "23P01"
	CodeNumericOutOfRange   = "22003"
)

// PQCode returns the SQLSTATE of a lib/pq error, or "" for other errors.
func PQCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// Constraint returns the violated constraint name of a lib/pq error.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func IsUniqueViolation(err error) bool     { return PQCode(err) == CodeUniqueViolation }
func IsForeignKeyViolation(err error) bool { return PQCode(err) == CodeForeignKeyViolation }
func IsCheckViolation(err error) bool      { return PQCode(err) == CodeCheckViolation }
func IsExclusionViolation(err error) bool  { return PQCode(err) == CodeExclusionViolation }
func IsNumericOutOfRange(err error) bool   { return PQCode(err) == CodeNumericOutOfRange }
