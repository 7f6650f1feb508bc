package battle

// Outcome is the discrete classification of one turn's power comparison.
type Outcome string

const (
	AttackerMajor Outcome = "attacker_major"
	AttackerMinor Outcome = "attacker_minor"
	DefenderMajor Outcome = "defender_major"
	DefenderMinor Outcome = "defender_minor"
	Draw          Outcome = "draw"
)

// PowerRatio returns attacker power divided by defender power, guarding
// against a zero denominator.
func PowerRatio(attackerPower, defenderPower float64) float64 {
	if defenderPower < 1 {
		defenderPower = 1
	}
	return attackerPower / defenderPower
}

// Classify buckets a post-jitter power comparison into an outcome category.
func Classify(attackerPower, defenderPower float64) Outcome {
	ratio := PowerRatio(attackerPower, defenderPower)
	switch {
	case ratio > 1.5:
		return AttackerMajor
	case ratio > 1.1:
		return AttackerMinor
	case ratio < 0.67:
		return DefenderMajor
	case ratio < 0.9:
		return DefenderMinor
	default:
		return Draw
	}
}

// baseCasualtyRate is the per-turn casualty fraction before band scaling.
const baseCasualtyRate = 0.05

// CasualtyRates maps an outcome to the per-side casualty rates. The favored
// side bleeds less; the rates mirror the classifier's five bands.
func CasualtyRates(o Outcome) (attackerRate, defenderRate float64) {
	switch o {
	case AttackerMajor:
		return baseCasualtyRate * 0.5, baseCasualtyRate * 1.5
	case AttackerMinor:
		return baseCasualtyRate * 0.7, baseCasualtyRate * 1.3
	case DefenderMinor:
		return baseCasualtyRate * 1.3, baseCasualtyRate * 0.7
	case DefenderMajor:
		return baseCasualtyRate * 1.5, baseCasualtyRate * 0.5
	default:
		return baseCasualtyRate, baseCasualtyRate
	}
}

var resultTexts = map[Outcome]string{
	AttackerMajor: "The attackers won a crushing victory!",
	AttackerMinor: "The attackers carried the day.",
	DefenderMajor: "The defenders won a crushing victory!",
	DefenderMinor: "The defenders held the field.",
	Draw:          "Stalemate — both sides bled for nothing.",
}

// ResultText returns the human-readable description of an outcome.
func ResultText(o Outcome) string {
	if t, ok := resultTexts[o]; ok {
		return t
	}
	return "The battle rages on."
}

var flavorTexts = map[Outcome][]string{
	AttackerMajor: {
		"The enemy lines have collapsed!",
		"Victory is within reach!",
		"Panic spreads through the enemy host!",
		"A heroic advance!",
	},
	AttackerMinor: {
		"The advance continues.",
		"A small edge, hard won.",
		"The enemy gives ground.",
	},
	DefenderMajor: {
		"The assault shattered against the shield wall!",
		"The attackers flee the field in disarray!",
		"Not one step back was taken!",
	},
	DefenderMinor: {
		"The line holds, barely.",
		"The assault was turned aside.",
		"Ground was held at a cost.",
	},
	Draw: {
		"Neither side could find an opening.",
		"The field is littered with the fallen of both hosts.",
		"An exhausting, indecisive clash.",
	},
}

// FlavorText picks a flavor line for an outcome. roll must be in [0, 1).
func FlavorText(o Outcome, roll float64) string {
	lines := flavorTexts[o]
	if len(lines) == 0 {
		return ""
	}
	i := int(roll * float64(len(lines)))
	if i < 0 {
		i = 0
	}
	if i >= len(lines) {
		i = len(lines) - 1
	}
	return lines[i]
}
