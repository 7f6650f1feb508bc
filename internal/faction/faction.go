// Package faction defines the great houses — the player-controlled entities
// that wage war — and their income holdings.
package faction

import (
	"time"

	"github.com/talgya/house-wars/internal/battle"
)

// ID is a unique identifier for a house.
type ID int64

// Faction represents a great house with a treasury, a standing army, and an
// optional combat trait. Houses are created once at world setup and never
// deleted; the war consequence applier and the economy mutate their resources.
type Faction struct {
	ID        ID           `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Treasury  int64        `db:"treasury" json:"treasury"`
	Soldiers  int64        `db:"soldiers" json:"soldiers"`
	Trait     battle.Trait `db:"trait" json:"trait,omitempty"`
	Region    string       `db:"region" json:"region"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Holding is an income-generating asset owned by a house. A holding can be
// seized by the victor of a war; ownership does not revert on its own.
type Holding struct {
	ID              int64  `db:"id" json:"id"`
	FactionID       ID     `db:"faction_id" json:"faction_id"`
	Kind            string `db:"kind" json:"kind"`
	Name            string `db:"name" json:"name"`
	Region          string `db:"region" json:"region"`
	IncomePerMinute int64  `db:"income_per_minute" json:"income_per_minute"`
	Seized          bool   `db:"seized" json:"seized"`
	SeizedBy        *ID    `db:"seized_by" json:"seized_by,omitempty"`
}

// SeedHouses creates the initial great houses for a fresh world.
func SeedHouses() []*Faction {
	return []*Faction{
		{ID: 1, Name: "Winterhold", Trait: battle.TraitNorthernResilience, Region: "The North", Treasury: 3000, Soldiers: 2500},
		{ID: 2, Name: "Goldcrest", Trait: battle.TraitGoldenWealth, Region: "The Westhills", Treasury: 8000, Soldiers: 2200},
		{ID: 3, Name: "Drakmor", Trait: battle.TraitAncestralFire, Region: "The Ember Isles", Treasury: 4000, Soldiers: 1800},
		{ID: 4, Name: "Stormvale", Trait: battle.TraitFuriousCharge, Region: "The Stormcoast", Treasury: 3500, Soldiers: 2000},
		{ID: 5, Name: "Greenfield", Trait: battle.TraitAgrarianNumbers, Region: "The Reachlands", Treasury: 5000, Soldiers: 3000},
		{ID: 6, Name: "Duneveil", Trait: battle.TraitDesertTactics, Region: "The Red Wastes", Treasury: 3200, Soldiers: 1500},
	}
}

// SeedHoldings creates the starting income holdings, a few per house.
func SeedHoldings() []*Holding {
	return []*Holding{
		{FactionID: 1, Kind: "mine", Name: "Frostpeak Mine", Region: "The North", IncomePerMinute: 12},
		{FactionID: 1, Kind: "farm", Name: "Coldbrook Farms", Region: "The North", IncomePerMinute: 8},
		{FactionID: 2, Kind: "mine", Name: "Goldvein Shafts", Region: "The Westhills", IncomePerMinute: 25},
		{FactionID: 2, Kind: "market", Name: "Crestport Exchange", Region: "The Westhills", IncomePerMinute: 18},
		{FactionID: 2, Kind: "farm", Name: "Westhill Orchards", Region: "The Westhills", IncomePerMinute: 10},
		{FactionID: 3, Kind: "port", Name: "Emberharbor", Region: "The Ember Isles", IncomePerMinute: 15},
		{FactionID: 3, Kind: "quarry", Name: "Obsidian Quarry", Region: "The Ember Isles", IncomePerMinute: 11},
		{FactionID: 4, Kind: "port", Name: "Galehaven Docks", Region: "The Stormcoast", IncomePerMinute: 14},
		{FactionID: 4, Kind: "farm", Name: "Valewood Pastures", Region: "The Stormcoast", IncomePerMinute: 9},
		{FactionID: 5, Kind: "farm", Name: "Goldengrain Estates", Region: "The Reachlands", IncomePerMinute: 20},
		{FactionID: 5, Kind: "market", Name: "Reachmarket", Region: "The Reachlands", IncomePerMinute: 13},
		{FactionID: 5, Kind: "farm", Name: "Southfield Granaries", Region: "The Reachlands", IncomePerMinute: 12},
		{FactionID: 6, Kind: "market", Name: "Spice Bazaar", Region: "The Red Wastes", IncomePerMinute: 16},
		{FactionID: 6, Kind: "mine", Name: "Sunscar Saltworks", Region: "The Red Wastes", IncomePerMinute: 10},
	}
}
