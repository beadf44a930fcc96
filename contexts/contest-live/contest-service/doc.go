// Package contestservice implements the Contest Service inside the
// contest-live context.
//
// The module owns the contest aggregate: contest creation and organizer
// edits, the typed stage line-up (validated and built through the stage
// registry), membership with per-contest roles, and the submission lifecycle
// from entry through review to withdrawal.
package contestservice
