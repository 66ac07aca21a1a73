package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/tfshrms/worktracker/pkg/errors"
)

// Constraint names referenced by the migrations.
const (
	ConstraintActiveMonthlyTarget = "ux_monthly_targets_active"
)

// MonthlyTargetExistsMessage is returned when an employee already has an
// active target for the month.
const MonthlyTargetExistsMessage = "Monthly target already exists for this user and month"

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "working_days"):
		return errors.Invalid("working_days", "must not be negative")
	case strings.Contains(constraint, "month_year"):
		return errors.Invalid("month_year", "must look like Jan2025")
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

func formatConstraintMessage(pqErr *pq.Error) string {
	switch {
	case pqErr.Constraint == ConstraintActiveMonthlyTarget:
		return MonthlyTargetExistsMessage
	default:
		return "a record with these values already exists"
	}
}
