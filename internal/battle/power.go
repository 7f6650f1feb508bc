package battle

// Trait is a house-specific combat trait. Empty means no trait.
type Trait string

const (
	TraitNone               Trait = ""
	TraitNorthernResilience Trait = "northern-resilience" // Defensive bonus, stronger in snow.
	TraitGoldenWealth       Trait = "golden-wealth"       // Flat bonus from deep coffers.
	TraitAncestralFire      Trait = "ancestral-fire"      // Flat heritage bonus.
	TraitFuriousCharge      Trait = "furious-charge"      // Bonus only when attacking.
	TraitAgrarianNumbers    Trait = "agrarian-numbers"    // Flat numbers bonus.
	TraitDesertTactics      Trait = "desert-tactics"      // Bonus, doubled down on desert.
)

// PowerInput gathers everything the calculator needs for one side of one turn.
type PowerInput struct {
	Soldiers   int // Remaining soldiers this turn, before casualties.
	Action     Action
	Weather    Weather
	Terrain    Terrain
	Scale      Scale
	Trait      Trait
	IsAttacker bool
}

// CombatPower computes a side's deterministic power score for one turn.
// The turn resolver multiplies the result by random jitter before comparison.
func CombatPower(in PowerInput) int {
	scale, ok := scaleInfos[in.Scale]
	if !ok {
		scale = scaleInfos[ScaleMedium]
	}

	effectiveSoldiers := int(float64(in.Soldiers) * scale.SoldiersRatio)
	power := float64(effectiveSoldiers) * 10 * scale.Intensity

	action := actionEffects[in.Action]
	weather := weatherEffects[in.Weather]
	terrain := terrainEffects[in.Terrain]

	if in.IsAttacker {
		power *= action.Offense
		power *= weather.Attack
		power *= terrain.Attack
	} else {
		power *= action.Defense
		power *= weather.Defense
		power *= terrain.Defense
	}

	power *= traitMultiplier(in)

	if power < 0 {
		return 0
	}
	return int(power)
}

// traitMultiplier folds the house trait bonuses into a single factor.
func traitMultiplier(in PowerInput) float64 {
	m := 1.0
	switch in.Trait {
	case TraitNorthernResilience:
		if !in.IsAttacker {
			m *= 1.25
		}
		if in.Weather == WeatherSnow {
			m *= 1.15
		}
	case TraitGoldenWealth:
		m *= 1.15
	case TraitAncestralFire:
		m *= 1.2
	case TraitFuriousCharge:
		if in.IsAttacker {
			m *= 1.3
		}
	case TraitAgrarianNumbers:
		m *= 1.2
	case TraitDesertTactics:
		m *= 1.1
		if in.Terrain == TerrainDesert {
			m *= 1.2
		}
	}
	return m
}
