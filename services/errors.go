package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the catalog services. Controllers translate
// these into HTTP statuses; nothing below the controller layer knows about
// status codes.
var (
	// ErrNotFound covers both "row absent" and "row invisible to caller".
	ErrNotFound = errors.New("not found")
	// ErrNotOwned means the caller lacks write access to the entity.
	ErrNotOwned = errors.New("not owned by household")
)

// ActivePlanError blocks deletion while plan entries still reference the
// recipe. The caller can recover by removing the plan entries first.
type ActivePlanError struct {
	Count int64
}

func (e *ActivePlanError) Error() string {
	return fmt.Sprintf("recipe is referenced by %d active plan entries", e.Count)
}
