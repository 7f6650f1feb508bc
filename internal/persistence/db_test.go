package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/house-wars/internal/battle"
	"github.com/talgya/house-wars/internal/faction"
	"github.com/talgya/house-wars/internal/war"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seededDB(t *testing.T) *DB {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, db.Seed(faction.SeedHouses(), faction.SeedHoldings()))
	return db
}

func countHoldings(t *testing.T, db *DB) int {
	t.Helper()
	total := 0
	for _, h := range faction.SeedHouses() {
		hs, err := db.Holdings(h.ID)
		require.NoError(t, err)
		total += len(hs)
	}
	return total
}

func TestSeedIsIdempotent(t *testing.T) {
	db := seededDB(t)

	houses, err := db.Factions()
	require.NoError(t, err)
	assert.Len(t, houses, len(faction.SeedHouses()))
	firstHoldings := countHoldings(t, db)
	assert.Equal(t, len(faction.SeedHoldings()), firstHoldings)

	// A second seed pass must not duplicate anything or reset resources.
	_, err = db.UpdateFactionResources(houses[0].ID, 500, -100)
	require.NoError(t, err)
	require.NoError(t, db.Seed(faction.SeedHouses(), faction.SeedHoldings()))

	again, err := db.Factions()
	require.NoError(t, err)
	assert.Len(t, again, len(faction.SeedHouses()))
	assert.Equal(t, firstHoldings, countHoldings(t, db))
	assert.Equal(t, houses[0].Treasury+500, again[0].Treasury)
}

func TestFactionLookup(t *testing.T) {
	db := seededDB(t)

	f, err := db.Faction(1)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.NotEmpty(t, f.Name)
	assert.Positive(t, f.Soldiers)

	missing, err := db.Faction(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateFactionResourcesFloorsAtZero(t *testing.T) {
	db := seededDB(t)

	before, err := db.Faction(1)
	require.NoError(t, err)

	ok, err := db.UpdateFactionResources(1, -before.Treasury*2, -before.Soldiers*2)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := db.Faction(1)
	require.NoError(t, err)
	assert.Zero(t, after.Treasury)
	assert.Zero(t, after.Soldiers)

	ok, err = db.UpdateFactionResources(999, 10, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newWar(attacker, defender faction.ID) *war.War {
	return &war.War{
		AttackerID:        attacker,
		DefenderID:        defender,
		Status:            war.StatusActive,
		Scale:             battle.ScaleMedium,
		Weather:           battle.WeatherRain,
		Terrain:           battle.TerrainForest,
		AttackerCommitted: 1500,
		DefenderCommitted: 1200,
		StartedAt:         time.Now().UTC(),
	}
}

func TestWarRoundtrip(t *testing.T) {
	db := seededDB(t)

	id, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)
	require.Positive(t, id)

	w, err := db.War(id)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, faction.ID(1), w.AttackerID)
	assert.Equal(t, faction.ID(2), w.DefenderID)
	assert.Equal(t, war.StatusActive, w.Status)
	assert.Equal(t, battle.ScaleMedium, w.Scale)
	assert.Equal(t, battle.WeatherRain, w.Weather)
	assert.Equal(t, battle.TerrainForest, w.Terrain)
	assert.Equal(t, int64(1500), w.AttackerCommitted)
	assert.Equal(t, int64(1200), w.DefenderCommitted)
	assert.Nil(t, w.WinnerID)
	assert.Nil(t, w.EndedAt)

	missing, err := db.War(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestActiveWarsFilter(t *testing.T) {
	db := seededDB(t)

	id1, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)
	_, err = db.CreateWar(newWar(3, 4))
	require.NoError(t, err)

	all, err := db.ActiveWars(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Filter matches both sides of a war.
	ws, err := db.ActiveWars(2)
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, id1, ws[0].ID)

	none, err := db.ActiveWars(5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func turnLog(warID int64, turn int, casualties int64) *war.TurnLog {
	return &war.TurnLog{
		WarID:              warID,
		Turn:               turn,
		AttackerAction:     battle.ActionAttack,
		DefenderAction:     battle.ActionDefend,
		Outcome:            battle.Draw,
		Result:             "Stalemate.",
		AttackerCasualties: casualties,
		DefenderCasualties: casualties,
		CreatedAt:          time.Now().UTC(),
	}
}

func TestCommitTurnUpdatesLossesAndLog(t *testing.T) {
	db := seededDB(t)
	id, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		err := db.CommitTurn(&war.TurnCommit{
			WarID:          id,
			AttackerLosses: int64(i * 50),
			DefenderLosses: int64(i * 40),
			Log:            turnLog(id, i, 50),
		})
		require.NoError(t, err)
	}

	w, err := db.War(id)
	require.NoError(t, err)
	assert.Equal(t, int64(150), w.AttackerLosses)
	assert.Equal(t, int64(120), w.DefenderLosses)

	n, err := db.TurnCount(id)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := db.RecentTurns(id, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].Turn) // newest first
	assert.Equal(t, 2, recent[1].Turn)
}

func TestCommitTurnEndsWarWithConsequences(t *testing.T) {
	db := seededDB(t)
	id, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)

	attacker, err := db.Faction(1)
	require.NoError(t, err)
	defender, err := db.Faction(2)
	require.NoError(t, err)
	holdings, err := db.Holdings(2)
	require.NoError(t, err)
	require.NotEmpty(t, holdings)

	winner := faction.ID(1)
	err = db.CommitTurn(&war.TurnCommit{
		WarID:          id,
		AttackerLosses: 200,
		DefenderLosses: 1100,
		Log:            turnLog(id, 1, 200),
		End: &war.Ending{
			WinnerID: &winner,
			Transfers: []war.ResourceDelta{
				{FactionID: 1, Gold: 1000, Soldiers: 100},
				{FactionID: 2, Gold: -1000, Soldiers: -100},
			},
			Seizures: []war.Seizure{{HoldingID: holdings[0].ID, ByID: 1}},
		},
	})
	require.NoError(t, err)

	w, err := db.War(id)
	require.NoError(t, err)
	assert.Equal(t, war.StatusEnded, w.Status)
	require.NotNil(t, w.WinnerID)
	assert.Equal(t, winner, *w.WinnerID)
	assert.NotNil(t, w.EndedAt)

	attAfter, err := db.Faction(1)
	require.NoError(t, err)
	defAfter, err := db.Faction(2)
	require.NoError(t, err)
	assert.Equal(t, attacker.Treasury+1000, attAfter.Treasury)
	assert.Equal(t, attacker.Soldiers+100, attAfter.Soldiers)
	assert.Equal(t, defender.Treasury-1000, defAfter.Treasury)
	assert.Equal(t, defender.Soldiers-100, defAfter.Soldiers)

	seized, err := db.Holdings(2)
	require.NoError(t, err)
	found := false
	for _, h := range seized {
		if h.ID == holdings[0].ID {
			found = true
			assert.True(t, h.Seized)
			require.NotNil(t, h.SeizedBy)
			assert.Equal(t, faction.ID(1), *h.SeizedBy)
		}
	}
	assert.True(t, found)

	// No further commit may touch an ended war.
	err = db.CommitTurn(&war.TurnCommit{
		WarID:          id,
		AttackerLosses: 999,
		DefenderLosses: 999,
		Log:            turnLog(id, 2, 10),
	})
	require.Error(t, err)

	w, err = db.War(id)
	require.NoError(t, err)
	assert.Equal(t, int64(200), w.AttackerLosses)
	n, err := db.TurnCount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, n) // rejected commit left no partial log
}

func TestSeizureDoesNotOverwriteEarlierSeizure(t *testing.T) {
	db := seededDB(t)

	holdings, err := db.Holdings(2)
	require.NoError(t, err)
	require.NotEmpty(t, holdings)
	target := holdings[0].ID

	winner1 := faction.ID(1)
	id1, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)
	err = db.CommitTurn(&war.TurnCommit{
		WarID: id1,
		End:   &war.Ending{WinnerID: &winner1, Seizures: []war.Seizure{{HoldingID: target, ByID: 1}}},
	})
	require.NoError(t, err)

	winner3 := faction.ID(3)
	id2, err := db.CreateWar(newWar(3, 2))
	require.NoError(t, err)
	err = db.CommitTurn(&war.TurnCommit{
		WarID: id2,
		End:   &war.Ending{WinnerID: &winner3, Seizures: []war.Seizure{{HoldingID: target, ByID: 3}}},
	})
	require.NoError(t, err)

	after, err := db.Holdings(2)
	require.NoError(t, err)
	for _, h := range after {
		if h.ID == target {
			require.NotNil(t, h.SeizedBy)
			assert.Equal(t, faction.ID(1), *h.SeizedBy, "first conqueror keeps the holding")
		}
	}
}

func TestIncomeByHouseFollowsSeizure(t *testing.T) {
	db := seededDB(t)

	before, err := db.IncomeByHouse()
	require.NoError(t, err)
	var total int64
	for _, h := range faction.SeedHoldings() {
		total += h.IncomePerMinute
	}
	var sum int64
	for _, v := range before {
		sum += v
	}
	assert.Equal(t, total, sum)

	// Seize house 2's richest holding for house 1; its income moves over.
	holdings, err := db.Holdings(2)
	require.NoError(t, err)
	richest := holdings[0]

	winner := faction.ID(1)
	id, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)
	require.NoError(t, db.CommitTurn(&war.TurnCommit{
		WarID: id,
		End:   &war.Ending{WinnerID: &winner, Seizures: []war.Seizure{{HoldingID: richest.ID, ByID: 1}}},
	}))

	after, err := db.IncomeByHouse()
	require.NoError(t, err)
	assert.Equal(t, before[1]+richest.IncomePerMinute, after[1])
	assert.Equal(t, before[2]-richest.IncomePerMinute, after[2])
}

func TestCommitTurnRejectsDuplicateTurnNumber(t *testing.T) {
	db := seededDB(t)
	id, err := db.CreateWar(newWar(1, 2))
	require.NoError(t, err)

	require.NoError(t, db.CommitTurn(&war.TurnCommit{
		WarID: id, AttackerLosses: 10, DefenderLosses: 10, Log: turnLog(id, 1, 10),
	}))

	err = db.CommitTurn(&war.TurnCommit{
		WarID: id, AttackerLosses: 20, DefenderLosses: 20, Log: turnLog(id, 1, 10),
	})
	require.Error(t, err)

	// The failed commit rolled back the loss update too.
	w, err := db.War(id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), w.AttackerLosses)
}
