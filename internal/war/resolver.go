package war

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/house-wars/internal/battle"
	"github.com/talgya/house-wars/internal/entropy"
	"github.com/talgya/house-wars/internal/faction"
)

// outcomeEnded tags a report for a war that terminated without a combat
// exchange (one side had no soldiers left before the turn).
const outcomeEnded = battle.Outcome("ended")

// Conditions supplies battlefield weather and terrain when a declaration
// leaves them unspecified.
type Conditions interface {
	Draw() (battle.Weather, battle.Terrain)
}

// Service orchestrates war declarations and turn resolution. Turn resolution
// for one war is serialized by a per-war lock so two concurrently submitted
// turns cannot interleave their read-compute-write cycles.
type Service struct {
	store      Store
	rng        entropy.Source
	conditions Conditions // Optional; nil falls back to uniform draws.

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a war service over the given store and randomness source.
func NewService(store Store, rng entropy.Source, conditions Conditions) *Service {
	return &Service{
		store:      store,
		rng:        rng,
		conditions: conditions,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// warLock returns the mutex guarding one war's turn resolution.
func (s *Service) warLock(warID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[warID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[warID] = l
	}
	return l
}

// releaseLock drops an ended war's mutex from the map so the map stays
// bounded by the number of active wars. Callers still holding the old mutex
// are safe: any turn they submit afterwards reloads the war, sees it ended,
// and is rejected before mutating anything.
func (s *Service) releaseLock(warID int64) {
	s.mu.Lock()
	delete(s.locks, warID)
	s.mu.Unlock()
}

// DeclareWar validates eligibility and creates an active war. Empty weather
// or terrain tags are filled in from the battlefield condition source;
// non-empty tags must be recognized.
func (s *Service) DeclareWar(attackerID, defenderID faction.ID, weatherTag, terrainTag, scaleTag string) (int64, error) {
	if _, ok := battle.ScaleByTag(scaleTag); !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScale, scaleTag)
	}

	ok, msg, err := s.CheckEligibility(attackerID, defenderID, scaleTag)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotEligible, msg)
	}

	weather, terrain, err := s.resolveConditions(weatherTag, terrainTag)
	if err != nil {
		return 0, err
	}

	attacker, err := s.store.Faction(attackerID)
	if err != nil {
		return 0, fmt.Errorf("load attacker: %w", err)
	}
	defender, err := s.store.Faction(defenderID)
	if err != nil {
		return 0, fmt.Errorf("load defender: %w", err)
	}

	w := &War{
		AttackerID:        attackerID,
		DefenderID:        defenderID,
		Status:            StatusActive,
		Scale:             battle.Scale(scaleTag),
		Weather:           weather,
		Terrain:           terrain,
		AttackerCommitted: attacker.Soldiers,
		DefenderCommitted: defender.Soldiers,
		StartedAt:         time.Now().UTC(),
	}

	id, err := s.store.CreateWar(w)
	if err != nil {
		return 0, fmt.Errorf("create war: %w", err)
	}

	slog.Info("war declared",
		"war_id", id,
		"attacker", attacker.Name,
		"defender", defender.Name,
		"scale", scaleTag,
		"weather", weather,
		"terrain", terrain,
	)
	return id, nil
}

func (s *Service) resolveConditions(weatherTag, terrainTag string) (battle.Weather, battle.Terrain, error) {
	var weather battle.Weather
	var terrain battle.Terrain

	if weatherTag == "" || terrainTag == "" {
		if s.conditions != nil {
			weather, terrain = s.conditions.Draw()
		} else {
			weathers := battle.Weathers()
			terrains := battle.Terrains()
			weather = weathers[int(s.rng.Float()*float64(len(weathers)))%len(weathers)]
			terrain = terrains[int(s.rng.Float()*float64(len(terrains)))%len(terrains)]
		}
	}

	if weatherTag != "" {
		if _, ok := battle.WeatherByTag(weatherTag); !ok {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidWeather, weatherTag)
		}
		weather = battle.Weather(weatherTag)
	}
	if terrainTag != "" {
		if _, ok := battle.TerrainByTag(terrainTag); !ok {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidTerrain, terrainTag)
		}
		terrain = battle.Terrain(terrainTag)
	}
	return weather, terrain, nil
}

// ResolveTurn resolves one turn of an active war given both sides' chosen
// actions. Validation failures (unknown war, ended war, unrecognized action)
// mutate nothing. All persistence for the turn happens in one atomic commit.
func (s *Service) ResolveTurn(warID int64, attackerTag, defenderTag string) (*TurnReport, error) {
	if _, ok := battle.ActionByTag(attackerTag); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, attackerTag)
	}
	if _, ok := battle.ActionByTag(defenderTag); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, defenderTag)
	}
	attackerAction := battle.Action(attackerTag)
	defenderAction := battle.Action(defenderTag)

	lock := s.warLock(warID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.store.War(warID)
	if err != nil {
		return nil, fmt.Errorf("load war %d: %w", warID, err)
	}
	if w == nil || w.Status != StatusActive {
		return nil, ErrWarNotFound
	}

	attacker, err := s.store.Faction(w.AttackerID)
	if err != nil {
		return nil, fmt.Errorf("load attacker house: %w", err)
	}
	defender, err := s.store.Faction(w.DefenderID)
	if err != nil {
		return nil, fmt.Errorf("load defender house: %w", err)
	}
	if attacker == nil || defender == nil {
		return nil, fmt.Errorf("war %d references a missing house", warID)
	}

	turnCount, err := s.store.TurnCount(warID)
	if err != nil {
		return nil, fmt.Errorf("count turns: %w", err)
	}
	turn := turnCount + 1

	attRemaining := w.AttackerRemaining()
	defRemaining := w.DefenderRemaining()

	// A side that enters the turn with nothing left loses outright; no
	// combat power is computed and no turn log is written.
	if attRemaining <= 0 {
		return s.endWithoutCombat(w, attacker, defender, defender, turn,
			fmt.Sprintf("House %s has no soldiers left to field. House %s wins the war!", attacker.Name, defender.Name))
	}
	if defRemaining <= 0 {
		return s.endWithoutCombat(w, attacker, defender, attacker, turn,
			fmt.Sprintf("House %s has no soldiers left to field. House %s wins the war!", defender.Name, attacker.Name))
	}

	attPower := float64(battle.CombatPower(battle.PowerInput{
		Soldiers: int(attRemaining), Action: attackerAction,
		Weather: w.Weather, Terrain: w.Terrain, Scale: w.Scale,
		Trait: attacker.Trait, IsAttacker: true,
	})) * entropy.Range(s.rng, 0.8, 1.2)

	defPower := float64(battle.CombatPower(battle.PowerInput{
		Soldiers: int(defRemaining), Action: defenderAction,
		Weather: w.Weather, Terrain: w.Terrain, Scale: w.Scale,
		Trait: defender.Trait, IsAttacker: false,
	})) * entropy.Range(s.rng, 0.8, 1.2)

	outcome := battle.Classify(attPower, defPower)
	attRate, defRate := battle.CasualtyRates(outcome)

	attCasualties := clampCasualties(
		int64(float64(attRemaining)*attRate*entropy.Range(s.rng, 0.5, 1.5)), attRemaining)
	defCasualties := clampCasualties(
		int64(float64(defRemaining)*defRate*entropy.Range(s.rng, 0.5, 1.5)), defRemaining)

	attAfter := attRemaining - attCasualties
	defAfter := defRemaining - defCasualties

	result := battle.ResultText(outcome) + "\n" + battle.FlavorText(outcome, s.rng.Float())

	// Termination conditions, in order: turn limit, attacker broken,
	// defender broken. The 10% thresholds compare against the soldiers
	// committed at declaration.
	var ending *Ending
	var endReason string
	switch {
	case turn >= MaxTurns:
		ending = &Ending{}
		endReason = "The war dragged on too long and ends in a weary draw."
	case attAfter*10 <= w.AttackerCommitted:
		win := defender.ID
		e, spoils, err := s.buildEnding(&win, attacker, defender)
		if err != nil {
			return nil, err
		}
		ending = e
		endReason = fmt.Sprintf("House %s has won the war! The enemy host is broken! %s", defender.Name, spoils)
	case defAfter*10 <= w.DefenderCommitted:
		win := attacker.ID
		e, spoils, err := s.buildEnding(&win, attacker, defender)
		if err != nil {
			return nil, err
		}
		ending = e
		endReason = fmt.Sprintf("House %s has won the war! The enemy host is broken! %s", attacker.Name, spoils)
	}

	if ending != nil {
		result += "\n\n" + endReason
	}

	log := &TurnLog{
		WarID:              warID,
		Turn:               turn,
		AttackerAction:     attackerAction,
		DefenderAction:     defenderAction,
		Outcome:            outcome,
		Result:             result,
		AttackerCasualties: attCasualties,
		DefenderCasualties: defCasualties,
		CreatedAt:          time.Now().UTC(),
	}

	commit := &TurnCommit{
		WarID:          warID,
		AttackerLosses: w.AttackerLosses + attCasualties,
		DefenderLosses: w.DefenderLosses + defCasualties,
		Log:            log,
		End:            ending,
	}
	if err := s.store.CommitTurn(commit); err != nil {
		return nil, fmt.Errorf("commit turn %d of war %d: %w", turn, warID, err)
	}
	if ending != nil {
		s.releaseLock(warID)
	}

	report := &TurnReport{
		WarID:              warID,
		Turn:               turn,
		Attacker:           attacker.Name,
		Defender:           defender.Name,
		AttackerAction:     attackerAction,
		DefenderAction:     defenderAction,
		AttackerCasualties: attCasualties,
		DefenderCasualties: defCasualties,
		AttackerRemaining:  attAfter,
		DefenderRemaining:  defAfter,
		Outcome:            outcome,
		Result:             result,
		Weather:            w.Weather,
		Terrain:            w.Terrain,
	}
	if ending != nil {
		report.WarEnded = true
		report.WinnerID = ending.WinnerID
		if ending.WinnerID != nil {
			if *ending.WinnerID == attacker.ID {
				report.Winner = attacker.Name
			} else {
				report.Winner = defender.Name
			}
		}
	}

	slog.Info("turn resolved",
		"war_id", warID,
		"turn", turn,
		"outcome", outcome,
		"attacker_casualties", attCasualties,
		"defender_casualties", defCasualties,
		"ended", ending != nil,
	)
	return report, nil
}

// clampCasualties bounds a turn's casualties to [0, 20% of remaining].
func clampCasualties(casualties, remaining int64) int64 {
	if casualties < 0 {
		return 0
	}
	if limit := remaining / 5; casualties > limit {
		return limit
	}
	return casualties
}

// endWithoutCombat terminates a war whose loser cannot field a single
// soldier. Consequences apply in the same commit that ends the war.
func (s *Service) endWithoutCombat(w *War, attacker, defender, winner *faction.Faction, turn int, reason string) (*TurnReport, error) {
	win := winner.ID
	ending, spoils, err := s.buildEnding(&win, attacker, defender)
	if err != nil {
		return nil, err
	}
	if spoils != "" {
		reason += " " + spoils
	}

	commit := &TurnCommit{
		WarID:          w.ID,
		AttackerLosses: w.AttackerLosses,
		DefenderLosses: w.DefenderLosses,
		End:            ending,
	}
	if err := s.store.CommitTurn(commit); err != nil {
		return nil, fmt.Errorf("end war %d: %w", w.ID, err)
	}
	s.releaseLock(w.ID)

	slog.Info("war ended without combat", "war_id", w.ID, "winner", winner.Name)

	return &TurnReport{
		WarID:             w.ID,
		Turn:              turn,
		Attacker:          attacker.Name,
		Defender:          defender.Name,
		AttackerRemaining: w.AttackerRemaining(),
		DefenderRemaining: w.DefenderRemaining(),
		Outcome:           outcomeEnded,
		Result:            reason,
		WarEnded:          true,
		WinnerID:          &win,
		Winner:            winner.Name,
		Weather:           w.Weather,
		Terrain:           w.Terrain,
	}, nil
}

// Status returns the current cumulative state of a war plus its last 10 turn
// log entries, or nil if the war does not exist.
func (s *Service) Status(warID int64) (*StatusView, error) {
	w, err := s.store.War(warID)
	if err != nil {
		return nil, fmt.Errorf("load war %d: %w", warID, err)
	}
	if w == nil {
		return nil, nil
	}

	attacker, err := s.store.Faction(w.AttackerID)
	if err != nil {
		return nil, fmt.Errorf("load attacker house: %w", err)
	}
	defender, err := s.store.Faction(w.DefenderID)
	if err != nil {
		return nil, fmt.Errorf("load defender house: %w", err)
	}

	turns, err := s.store.RecentTurns(warID, 10)
	if err != nil {
		return nil, fmt.Errorf("load recent turns: %w", err)
	}

	view := &StatusView{War: w, RecentTurns: turns}
	if attacker != nil {
		view.Attacker = attacker.Name
	}
	if defender != nil {
		view.Defender = defender.Name
	}
	return view, nil
}

// describeSpoils renders the victor's plunder for the end-of-war report.
func describeSpoils(gold, soldiers int64) string {
	if gold <= 0 && soldiers <= 0 {
		return ""
	}
	if soldiers > 0 {
		return fmt.Sprintf("%s gold and %s soldiers taken as spoils.",
			humanize.Comma(gold), humanize.Comma(soldiers))
	}
	return fmt.Sprintf("%s gold claimed in tribute.", humanize.Comma(gold))
}
