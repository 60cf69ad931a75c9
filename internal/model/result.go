package model

import "time"

// ArmyResult is a single reporter's claim about one army's outcome. Equality
// is by value across all fields, which is what "most-reported" grouping
// needs (spec §3).
type ArmyResult struct {
	ArmyID  int
	Outcome Outcome
	Score   int
}

// Complete reports carry both an outcome and a score; an ArmyResult whose
// outcome is UNKNOWN is a score-only placeholder and is excluded from
// most-reported voting (spec §4.6).
func (r ArmyResult) Complete() bool {
	return r.Outcome != "" && r.Outcome != OutcomeUnknown
}

// GamePlayerStats is the per-game record snapshotted at launch and filled
// in with the result at end processing (spec §3).
type GamePlayerStats struct {
	PlayerID  int
	Team      int
	Faction   int
	Color     int
	StartSpot int
	Mean      float64
	Deviation float64

	Score     *int
	ScoreTime *time.Time
}
