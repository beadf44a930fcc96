// Package votingengine implements the Voting Engine inside the contest-live
// context.
//
// The module owns vote recording for jury and audience stages: the full
// precondition chain (active contest, running stage, participant membership,
// submission ownership, per-type score rules), the durable vote marker whose
// unique key settles duplicate races, the Redis-backed live tally, and the
// stage leaderboard read with a durable fallback when the tally is empty or
// unreachable.
package votingengine
