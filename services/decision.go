package services

// Outcome is the terminal state the deletion engine drives a recipe to.
type Outcome string

const (
	// OutcomeBlocked means live plan entries reference the recipe and the
	// caller must remove them before retrying.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeArchived means shopping history exists, so the recipe row is
	// preserved and only hidden from the household's collections.
	OutcomeArchived Outcome = "archived"
	// OutcomeDeleted means nothing references the recipe and it is fully
	// removed, along with ingredients that end up unreferenced.
	OutcomeDeleted Outcome = "deleted"
)

// DecideOutcome maps reference counts to a deletion outcome. Plan entries
// block everything; shopping history forces archive; otherwise the recipe is
// hard-deleted. Pure function of its inputs so the branching is testable
// without a database.
func DecideOutcome(activePlans, shoppingRefs int64) Outcome {
	if activePlans > 0 {
		return OutcomeBlocked
	}
	if shoppingRefs > 0 {
		return OutcomeArchived
	}
	return OutcomeDeleted
}
