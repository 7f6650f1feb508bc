package war

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/house-wars/internal/battle"
	"github.com/talgya/house-wars/internal/faction"
)

// Minimum army sizes to take part in any war at all, independent of scale.
const (
	minAttackerSoldiers = 100
	minDefenderSoldiers = 50
)

// CheckEligibility reports whether attacker may declare war on defender at
// the requested battle scale. It reads faction and war state only; no side
// effects. The returned message is the human-readable confirmation or
// rejection reason. err is non-nil only on a store failure.
func (s *Service) CheckEligibility(attackerID, defenderID faction.ID, scaleTag string) (bool, string, error) {
	if attackerID == defenderID {
		return false, "you cannot declare war on your own house", nil
	}

	active, err := s.store.ActiveWars(0)
	if err != nil {
		return false, "", fmt.Errorf("list active wars: %w", err)
	}
	for _, w := range active {
		if (w.AttackerID == attackerID && w.DefenderID == defenderID) ||
			(w.AttackerID == defenderID && w.DefenderID == attackerID) {
			return false, "these houses are already at war", nil
		}
	}

	attacker, err := s.store.Faction(attackerID)
	if err != nil {
		return false, "", fmt.Errorf("load attacker: %w", err)
	}
	if attacker == nil || attacker.Soldiers < minAttackerSoldiers {
		return false, fmt.Sprintf("declaring war requires at least %d soldiers", minAttackerSoldiers), nil
	}

	defender, err := s.store.Faction(defenderID)
	if err != nil {
		return false, "", fmt.Errorf("load defender: %w", err)
	}
	if defender == nil {
		return false, "target house not found", nil
	}
	if defender.Soldiers < minDefenderSoldiers {
		return false, "the target house has too few soldiers to fight", nil
	}

	scale, ok := battle.ScaleByTag(scaleTag)
	if !ok {
		return false, "invalid battle scale (small/medium/large/total)", nil
	}
	if attacker.Soldiers < int64(scale.MinSoldiers) || defender.Soldiers < int64(scale.MinSoldiers) {
		return false, fmt.Sprintf("a %s requires at least %s soldiers on both sides",
			scale.Description, humanize.Comma(int64(scale.MinSoldiers))), nil
	}

	return true, fmt.Sprintf("a %s may be declared", scale.Description), nil
}
