// Package options implements the Option Store (spec §4.5): host-only
// mutation of global/player/AI option bags, ScenarioFile map-folder
// parsing, and clearSlot.
//
// Grounded structurally on shared/models/device.go's map-of-maps
// GameModeSettings shape, generalized to the engine's three option
// buckets.
package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/faforever/game-session-engine/internal/model"
)

// ErrScenarioFileTooShort is returned when a ScenarioFile path has fewer
// than three '/'-delimited segments. Per spec §9 open question (b), this is
// rejected explicitly rather than guessing a fallback.
var ErrScenarioFileTooShort = fmt.Errorf("ScenarioFile path has fewer than three segments")

// ApplyGlobalOption applies a global option update to g, interpreting the
// recognized keys with side effects (spec §4.5) and storing everything else
// verbatim. Caller must hold g's write lock.
func ApplyGlobalOption(g *model.Game, key string, value model.OptionValue) error {
	switch key {
	case model.OptionVictoryCondition:
		if s, ok := value.(string); ok {
			g.VictoryCond = s
		}
	case model.OptionSlots:
		n, err := asInt(value)
		if err != nil {
			return err
		}
		g.MaxPlayers = n
	case model.OptionScenarioFile:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("ScenarioFile value is not a string")
		}
		folder, err := parseScenarioFolder(s)
		if err != nil {
			return err
		}
		g.MapFolder = folder
		g.MapFile = s
	case model.OptionTitle:
		if s, ok := value.(string); ok {
			g.Title = s
		}
	}
	g.Options[key] = value
	return nil
}

// parseScenarioFolder derives the map folder name as the third '/'-delimited
// segment of a ScenarioFile path, after normalizing backslashes and
// doubled slashes (spec §4.5).
func parseScenarioFolder(path string) (string, error) {
	normalized := strings.ReplaceAll(path, `\`, "/")
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}
	segments := strings.Split(normalized, "/")
	if len(segments) < 3 {
		return "", ErrScenarioFileTooShort
	}
	return segments[2], nil
}

// ApplyPlayerOption records a player-scoped option. Requires the game be
// OPEN; callers enforce that and the host-only guard before calling this.
func ApplyPlayerOption(g *model.Game, playerID int, key string, value model.OptionValue) {
	bag, ok := g.PlayerOptions[playerID]
	if !ok {
		bag = model.OptionBag{}
		g.PlayerOptions[playerID] = bag
	}
	bag[key] = value
}

// ApplyAIOption records an AI-scoped option. Only the Army key is kept:
// other keys arrive before the AI's final name is known and must be
// dropped (spec §4.5, open question (a)).
func ApplyAIOption(g *model.Game, aiName string, key string, value model.OptionValue) bool {
	if key != model.OptionArmy {
		return false
	}
	bag, ok := g.AIOptions[aiName]
	if !ok {
		bag = model.OptionBag{}
		g.AIOptions[aiName] = bag
	}
	bag[key] = value
	return true
}

// ClearSlot removes every player-options entry whose StartSpot equals
// slotID. AI entries are untouched: AIs are keyed by name, not slot (spec
// §4.5). Idempotent: a second call with the same slotID is a no-op.
func ClearSlot(g *model.Game, slotID int) {
	for playerID, bag := range g.PlayerOptions {
		spot, ok := bag[model.OptionStartSpot]
		if !ok {
			continue
		}
		n, err := asInt(spot)
		if err != nil {
			continue
		}
		if n == slotID {
			delete(g.PlayerOptions, playerID)
		}
	}
}

// ArmyForPlayer returns the army id a player is assigned to, if the player's
// player-options bucket records an Army key. ai-options are not consulted:
// they are keyed by AI name, not player id (see KnownArmyIDs for the set of
// armies occupied by players and AIs together).
func ArmyForPlayer(g *model.Game, playerID int) (int, bool) {
	bag, ok := g.PlayerOptions[playerID]
	if !ok {
		return 0, false
	}
	v, ok := bag[model.OptionArmy]
	if !ok {
		return 0, false
	}
	n, err := asInt(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// KnownArmyIDs returns the set of army ids occupied by either a player or
// an AI option bucket.
func KnownArmyIDs(g *model.Game) map[int]bool {
	known := map[int]bool{}
	for _, bag := range g.PlayerOptions {
		if v, ok := bag[model.OptionArmy]; ok {
			if n, err := asInt(v); err == nil {
				known[n] = true
			}
		}
	}
	for _, bag := range g.AIOptions {
		if v, ok := bag[model.OptionArmy]; ok {
			if n, err := asInt(v); err == nil {
				known[n] = true
			}
		}
	}
	return known
}

func asInt(v model.OptionValue) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(t)
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}
