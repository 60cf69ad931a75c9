// Package reconcile implements the Result Reconciler (spec §4.6): it turns
// multiple untrusted per-reporter ArmyResult claims into a single
// "most-reported" truth per army, and maps that truth onto players.
//
// No direct teacher analog exists (dashdice has no multi-reporter voting);
// built directly from spec.md's description, grounded structurally on
// engine.go's checkMatchEnd/endMatch sequencing for where this sits in the
// end-of-game pipeline.
package reconcile

import "github.com/faforever/game-session-engine/internal/model"

// MostReportedPerArmy computes, for each army id, the ArmyResult value that
// appears most often across reports restricted to reporters still present
// in connectedPlayers and to complete reports (outcome != UNKNOWN). Ties
// are broken in insertion order: among the values at the maximum count, the
// one first reported (earliest in reporterOrder) wins (spec §4.6).
//
// reported is reportedArmyResults: reporterID -> armyID -> ArmyResult.
// reporterOrder must list reporter ids in the order their first report for
// any army arrived, so insertion-order tie-breaking is well defined.
// The second return value counts how many armies were decided by the
// insertion-order tie-break rather than a clear majority.
func MostReportedPerArmy(reported map[int]map[int]model.ArmyResult, reporterOrder []int, connected map[int]bool) (map[int]model.ArmyResult, int) {
	type tally struct {
		result model.ArmyResult
		count  int
		order  int
	}

	counts := map[int]map[model.ArmyResult]*tally{} // armyID -> result -> tally
	nextOrder := 0

	for _, reporterID := range reporterOrder {
		if !connected[reporterID] {
			continue
		}
		perArmy, ok := reported[reporterID]
		if !ok {
			continue
		}
		for armyID, result := range perArmy {
			if !result.Complete() {
				continue
			}
			bucket, ok := counts[armyID]
			if !ok {
				bucket = map[model.ArmyResult]*tally{}
				counts[armyID] = bucket
			}
			t, ok := bucket[result]
			if !ok {
				t = &tally{result: result, order: nextOrder}
				nextOrder++
				bucket[result] = t
			}
			t.count++
		}
	}

	out := make(map[int]model.ArmyResult, len(counts))
	ties := 0
	for armyID, bucket := range counts {
		maxCount := 0
		for _, t := range bucket {
			if t.count > maxCount {
				maxCount = t.count
			}
		}

		// Map iteration order is randomized per run, so the winner among
		// entries tied at maxCount must be picked by the lowest insertion
		// order explicitly rather than by whichever this range visits last.
		var best *tally
		tiedCount := 0
		for _, t := range bucket {
			if t.count != maxCount {
				continue
			}
			tiedCount++
			if best == nil || t.order < best.order {
				best = t
			}
		}
		if best != nil {
			out[armyID] = best.result
			if tiedCount > 1 {
				ties++
			}
		}
	}
	return out, ties
}

// ApplyScore updates a reporter's ArmyResult for armyID to carry the given
// score, preserving any existing outcome or defaulting to UNKNOWN
// (reportArmyScore semantics, spec §4.6).
func ApplyScore(bucket map[int]model.ArmyResult, armyID, score int) {
	existing, ok := bucket[armyID]
	outcome := model.OutcomeUnknown
	if ok {
		outcome = existing.Outcome
	}
	bucket[armyID] = model.ArmyResult{ArmyID: armyID, Outcome: outcome, Score: score}
}

// ApplyOutcome replaces a reporter's whole ArmyResult for armyID
// (reportArmyOutcome semantics, spec §4.6).
func ApplyOutcome(bucket map[int]model.ArmyResult, armyID int, outcome model.Outcome, score int) {
	bucket[armyID] = model.ArmyResult{ArmyID: armyID, Outcome: outcome, Score: score}
}

// PlayerResults maps each player-stats entry onto the most-reported result
// for its Army option. Players without an Army option are omitted (spec
// §4.6 "Player result mapping").
func PlayerResults(stats map[int]*model.GamePlayerStats, armyOf func(playerID int) (int, bool), truth map[int]model.ArmyResult) map[int]model.ArmyResult {
	out := map[int]model.ArmyResult{}
	for playerID := range stats {
		armyID, ok := armyOf(playerID)
		if !ok {
			continue
		}
		result, ok := truth[armyID]
		if !ok {
			continue
		}
		out[playerID] = result
	}
	return out
}

// AnyDraw reports whether any surviving player result has outcome DRAW,
// which controls the broadcast GameResult message's draw flag (spec §4.6).
func AnyDraw(results map[int]model.ArmyResult) bool {
	for _, r := range results {
		if r.Outcome == model.OutcomeDraw {
			return true
		}
	}
	return false
}
