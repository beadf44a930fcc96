// Package sessionorchestrator implements the Session Orchestrator inside the
// contest-live context.
//
// The module owns the live contest lifecycle: the single room per contest,
// the monotonic stage cursor, stage activation through the stage registry,
// folding reconciled stage results into participant totals, and closing the
// contest. Stage transitions run transactionally so a failed remote
// activation never leaves half-applied scores behind; closing a contest
// tolerates unreachable remote services.
package sessionorchestrator
