// Package stageregistry implements the Stage Registry inside the
// contest-live context.
//
// The module owns per-stage-type behaviour behind a strategy table built at
// process start: structural validation on create and patch, replay-safe
// activation of remote quiz and survey rooms, settings projections, and
// end-of-stage reconciliation of votes and leaderboards into weighted
// per-participant score deltas. Remote session services sit behind ports; a
// failed remote call surfaces as a wrapped upstream error.
package stageregistry
