package war

import (
	"fmt"

	"github.com/talgya/house-wars/internal/faction"
)

// Limits on post-war transfers.
const (
	minAttackerGoldGain = 100 // Floor on plunder when the attacker wins.
	minDefenderGoldGain = 50  // Floor on tribute when the defense holds.
	minSoldierSpoils    = 50
	maxSoldierSpoils    = 1000
	maxSeizedHoldings   = 2
)

// buildEnding computes the economic consequences of a war's end: resource
// transfers between the houses and holding seizures. The store applies the
// returned Ending atomically with the status change, so consequences can
// never run twice or half-complete. The spoils string summarizes the
// transfer for report text.
func (s *Service) buildEnding(winnerID *faction.ID, attacker, defender *faction.Faction) (*Ending, string, error) {
	if winnerID == nil {
		// Draw: the war ends with no transfer.
		return &Ending{}, "", nil
	}

	switch *winnerID {
	case attacker.ID:
		goldGain := defender.Treasury / 4
		if goldGain < minAttackerGoldGain {
			goldGain = minAttackerGoldGain
		}
		soldierGain := defender.Soldiers / 10
		if soldierGain < minSoldierSpoils {
			soldierGain = minSoldierSpoils
		}
		if soldierGain > maxSoldierSpoils {
			soldierGain = maxSoldierSpoils
		}
		// The loser's gold loss is capped at half its treasury.
		goldLoss := goldGain
		if limit := defender.Treasury / 2; goldLoss > limit {
			goldLoss = limit
		}

		ending := &Ending{
			WinnerID: winnerID,
			Transfers: []ResourceDelta{
				{FactionID: attacker.ID, Gold: goldGain, Soldiers: soldierGain},
				{FactionID: defender.ID, Gold: -goldLoss, Soldiers: -soldierGain},
			},
		}

		seizures, err := s.seizableHoldings(defender.ID, attacker.ID)
		if err != nil {
			return nil, "", err
		}
		ending.Seizures = seizures

		return ending, describeSpoils(goldGain, soldierGain), nil

	case defender.ID:
		// A successful defense earns tribute only: no soldier transfer,
		// no holding seizure.
		goldGain := attacker.Treasury / 8
		if goldGain < minDefenderGoldGain {
			goldGain = minDefenderGoldGain
		}
		goldLoss := goldGain
		if limit := attacker.Treasury / 3; goldLoss > limit {
			goldLoss = limit
		}

		return &Ending{
			WinnerID: winnerID,
			Transfers: []ResourceDelta{
				{FactionID: defender.ID, Gold: goldGain},
				{FactionID: attacker.ID, Gold: -goldLoss},
			},
		}, describeSpoils(goldGain, 0), nil

	default:
		return nil, "", fmt.Errorf("winner %d is not a belligerent", *winnerID)
	}
}

// seizableHoldings picks up to maxSeizedHoldings of the loser's unseized
// holdings, in encounter order.
func (s *Service) seizableHoldings(loserID, winnerID faction.ID) ([]Seizure, error) {
	holdings, err := s.store.Holdings(loserID)
	if err != nil {
		return nil, fmt.Errorf("load holdings of house %d: %w", loserID, err)
	}

	var seizures []Seizure
	for _, h := range holdings {
		if h.Seized {
			continue
		}
		seizures = append(seizures, Seizure{HoldingID: h.ID, ByID: winnerID})
		if len(seizures) == maxSeizedHoldings {
			break
		}
	}
	return seizures, nil
}
