package services

import "context"

// LifecycleSvcFacade runs the periodic account state sweeps. Both sweeps are
// idempotent batch operations: they select every account matching the trigger
// condition, apply the transition under a row lock, and report how many
// accounts changed. Re-running a sweep never produces double side effects.
type LifecycleSvcFacade interface {
	// RunBlockedToArchivedSweep archives every blocked account whose block
	// window end has elapsed, together with all of its transactions.
	RunBlockedToArchivedSweep(ctx context.Context) (int, error)

	// RunBlockedToActiveSweep unblocks every blocked savings account whose
	// block window end has elapsed, clearing the window fields.
	RunBlockedToActiveSweep(ctx context.Context) (int, error)
}
