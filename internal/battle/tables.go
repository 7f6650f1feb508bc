// Package battle holds the pure combat model: modifier tables, the combat
// power calculator, and the outcome classifier. No I/O, no randomness —
// the turn resolver injects jitter so everything here is deterministic.
package battle

// Action is a side's chosen posture for one turn.
type Action string

const (
	ActionAttack        Action = "attack"
	ActionDefend        Action = "defend"
	ActionManeuver      Action = "maneuver"
	ActionWithdraw      Action = "withdraw"
	ActionAllOutAssault Action = "all-out-assault"
)

// ActionEffect is the role-dependent multiplier pair for an action.
type ActionEffect struct {
	Offense     float64
	Defense     float64
	Description string
}

var actionEffects = map[Action]ActionEffect{
	ActionAttack:        {Offense: 1.2, Defense: 0.8, Description: "aggressive assault"},
	ActionDefend:        {Offense: 0.7, Defense: 1.5, Description: "defensive stance"},
	ActionManeuver:      {Offense: 1.0, Defense: 1.0, Description: "tactical maneuver"},
	ActionWithdraw:      {Offense: 0.5, Defense: 1.8, Description: "strategic withdrawal"},
	ActionAllOutAssault: {Offense: 1.5, Defense: 0.5, Description: "all-out assault"},
}

// ActionByTag resolves an action tag (case-sensitive). The bool reports
// whether the tag is recognized; callers must treat false as a validation
// failure, never as a default.
func ActionByTag(tag string) (ActionEffect, bool) {
	e, ok := actionEffects[Action(tag)]
	return e, ok
}

// Actions returns the recognized action tags in a stable order.
func Actions() []Action {
	return []Action{ActionAttack, ActionDefend, ActionManeuver, ActionWithdraw, ActionAllOutAssault}
}

// Weather is the prevailing weather over a war's battlefield.
type Weather string

const (
	WeatherNormal Weather = "normal"
	WeatherRain   Weather = "rain"
	WeatherSnow   Weather = "snow"
	WeatherStorm  Weather = "storm"
	WeatherFog    Weather = "fog"
)

// ConditionEffect is the role-dependent multiplier pair for weather or terrain.
type ConditionEffect struct {
	Attack  float64
	Defense float64
}

var weatherEffects = map[Weather]ConditionEffect{
	WeatherNormal: {Attack: 1.0, Defense: 1.0},
	WeatherRain:   {Attack: 0.8, Defense: 1.1},
	WeatherSnow:   {Attack: 0.7, Defense: 1.2},
	WeatherStorm:  {Attack: 0.6, Defense: 1.3},
	WeatherFog:    {Attack: 0.9, Defense: 0.9},
}

// WeatherByTag resolves a weather tag (case-sensitive).
func WeatherByTag(tag string) (ConditionEffect, bool) {
	e, ok := weatherEffects[Weather(tag)]
	return e, ok
}

// Weathers returns the recognized weather tags in a stable order.
func Weathers() []Weather {
	return []Weather{WeatherNormal, WeatherRain, WeatherSnow, WeatherStorm, WeatherFog}
}

// Terrain is the battlefield terrain for a war.
type Terrain string

const (
	TerrainPlains   Terrain = "plains"
	TerrainForest   Terrain = "forest"
	TerrainMountain Terrain = "mountain"
	TerrainCoast    Terrain = "coast"
	TerrainDesert   Terrain = "desert"
)

var terrainEffects = map[Terrain]ConditionEffect{
	TerrainPlains:   {Attack: 1.1, Defense: 0.9},
	TerrainForest:   {Attack: 0.9, Defense: 1.1},
	TerrainMountain: {Attack: 0.8, Defense: 1.3},
	TerrainCoast:    {Attack: 1.0, Defense: 1.0},
	TerrainDesert:   {Attack: 0.9, Defense: 0.8},
}

// TerrainByTag resolves a terrain tag (case-sensitive).
func TerrainByTag(tag string) (ConditionEffect, bool) {
	e, ok := terrainEffects[Terrain(tag)]
	return e, ok
}

// Terrains returns the recognized terrain tags in a stable order.
func Terrains() []Terrain {
	return []Terrain{TerrainPlains, TerrainForest, TerrainMountain, TerrainCoast, TerrainDesert}
}

// Scale is the declared intensity tier of a war.
type Scale string

const (
	ScaleSmall  Scale = "small"
	ScaleMedium Scale = "medium"
	ScaleLarge  Scale = "large"
	ScaleTotal  Scale = "total"
)

// ScaleInfo gates army sizes and scales effective power.
type ScaleInfo struct {
	MinSoldiers   int     // Minimum army size on both sides to declare.
	SoldiersRatio float64 // Fraction of the army actually committed per turn.
	Intensity     float64 // Multiplier on base power.
	Description   string
}

var scaleInfos = map[Scale]ScaleInfo{
	ScaleSmall:  {MinSoldiers: 100, SoldiersRatio: 0.3, Intensity: 0.8, Description: "small skirmish"},
	ScaleMedium: {MinSoldiers: 500, SoldiersRatio: 0.6, Intensity: 1.0, Description: "medium engagement"},
	ScaleLarge:  {MinSoldiers: 1000, SoldiersRatio: 0.8, Intensity: 1.2, Description: "great battle"},
	ScaleTotal:  {MinSoldiers: 2000, SoldiersRatio: 1.0, Intensity: 1.5, Description: "total war"},
}

// ScaleByTag resolves a battle scale tag (case-sensitive).
func ScaleByTag(tag string) (ScaleInfo, bool) {
	s, ok := scaleInfos[Scale(tag)]
	return s, ok
}

// Scales returns the recognized scale tags in a stable order.
func Scales() []Scale {
	return []Scale{ScaleSmall, ScaleMedium, ScaleLarge, ScaleTotal}
}
