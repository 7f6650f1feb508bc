package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/house-wars/internal/battle"
	"github.com/talgya/house-wars/internal/faction"
	"github.com/talgya/house-wars/internal/war"
)

// handleHouses returns every great house with treasury, soldiers and trait.
func (s *Server) handleHouses(w http.ResponseWriter, r *http.Request) {
	factions, err := s.DB.Factions()
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"count":  len(factions),
		"houses": factions,
	})
}

// handleHouseDetail returns one house plus its holdings and active wars.
// GET /api/v1/house/:id
func (s *Server) handleHouseDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/house/")
	if idStr == "" {
		http.Error(w, "missing house id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid house id", http.StatusBadRequest)
		return
	}

	house, err := s.DB.Faction(faction.ID(id))
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if house == nil {
		http.Error(w, "house not found", http.StatusNotFound)
		return
	}

	holdings, err := s.DB.Holdings(house.ID)
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	wars, err := s.DB.ActiveWars(house.ID)
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"house":    house,
		"holdings": holdings,
		"wars":     wars,
	})
}

// handleEligibility answers whether a declaration would be accepted,
// without declaring anything.
// GET /api/v1/wars/eligibility?attacker=1&defender=2&scale=medium
func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	attacker, err1 := strconv.ParseInt(r.URL.Query().Get("attacker"), 10, 64)
	defender, err2 := strconv.ParseInt(r.URL.Query().Get("defender"), 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "attacker and defender must be house ids", http.StatusBadRequest)
		return
	}
	scale := r.URL.Query().Get("scale")
	if scale == "" {
		scale = string(battle.ScaleMedium)
	}

	eligible, reason, err := s.Wars.CheckEligibility(faction.ID(attacker), faction.ID(defender), scale)
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"eligible": eligible,
		"reason":   reason,
	})
}

// handleCatalog lists the action, weather, terrain and scale tables so
// clients can render pickers without hardcoding tags.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type actionEntry struct {
		Tag         string  `json:"tag"`
		Offense     float64 `json:"offense"`
		Defense     float64 `json:"defense"`
		Description string  `json:"description"`
	}
	type conditionEntry struct {
		Tag     string  `json:"tag"`
		Attack  float64 `json:"attack"`
		Defense float64 `json:"defense"`
	}
	type scaleEntry struct {
		Tag         string  `json:"tag"`
		MinSoldiers int64   `json:"min_soldiers"`
		Ratio       float64 `json:"soldiers_ratio"`
		Intensity   float64 `json:"intensity"`
		Description string  `json:"description"`
	}

	var actions []actionEntry
	for _, tag := range battle.Actions() {
		eff, _ := battle.ActionByTag(string(tag))
		actions = append(actions, actionEntry{string(tag), eff.Offense, eff.Defense, eff.Description})
	}
	var weathers []conditionEntry
	for _, tag := range battle.Weathers() {
		eff, _ := battle.WeatherByTag(string(tag))
		weathers = append(weathers, conditionEntry{string(tag), eff.Attack, eff.Defense})
	}
	var terrains []conditionEntry
	for _, tag := range battle.Terrains() {
		eff, _ := battle.TerrainByTag(string(tag))
		terrains = append(terrains, conditionEntry{string(tag), eff.Attack, eff.Defense})
	}
	var scales []scaleEntry
	for _, tag := range battle.Scales() {
		info, _ := battle.ScaleByTag(string(tag))
		scales = append(scales, scaleEntry{string(tag), int64(info.MinSoldiers), info.SoldiersRatio, info.Intensity, info.Description})
	}

	writeJSON(w, map[string]any{
		"actions":  actions,
		"weathers": weathers,
		"terrains": terrains,
		"scales":   scales,
	})
}

// handleWars dispatches /api/v1/wars: GET lists active wars, POST declares one.
func (s *Server) handleWars(declareLimiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleListWars(w, r)
		case http.MethodPost:
			s.adminOnly(RateLimitMiddleware(declareLimiter, s.handleDeclareWar))(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleListWars returns active wars, optionally filtered to one house.
// GET /api/v1/wars?house=3
func (s *Server) handleListWars(w http.ResponseWriter, r *http.Request) {
	var houseID faction.ID
	if q := r.URL.Query().Get("house"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			http.Error(w, "invalid house id", http.StatusBadRequest)
			return
		}
		houseID = faction.ID(id)
	}

	wars, err := s.DB.ActiveWars(houseID)
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"count": len(wars),
		"wars":  wars,
	})
}

// handleDeclareWar opens a new war between two houses.
// POST /api/v1/wars {"attacker_id":1,"defender_id":2,"scale":"large"}
// Weather and terrain may be supplied; omitted ones come from the
// battlefield generator.
func (s *Server) handleDeclareWar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackerID int64  `json:"attacker_id"`
		DefenderID int64  `json:"defender_id"`
		Weather    string `json:"weather"`
		Terrain    string `json:"terrain"`
		Scale      string `json:"scale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Scale == "" {
		req.Scale = string(battle.ScaleMedium)
	}

	warID, err := s.Wars.DeclareWar(faction.ID(req.AttackerID), faction.ID(req.DefenderID), req.Weather, req.Terrain, req.Scale)
	if err != nil {
		writeWarError(w, err)
		return
	}

	status, err := s.Wars.Status(warID)
	if err != nil || status == nil {
		// Declared but unreadable; report the ID at least.
		writeJSON(w, map[string]any{"war_id": warID})
		return
	}
	writeJSON(w, status)
}

// handleWarRoutes dispatches /api/v1/war/:id (GET status) and
// /api/v1/war/:id/turn (POST resolve).
func (s *Server) handleWarRoutes(turnLimiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/war/")
		parts := strings.SplitN(rest, "/", 2)
		if parts[0] == "" {
			http.Error(w, "missing war id", http.StatusBadRequest)
			return
		}
		warID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			http.Error(w, "invalid war id", http.StatusBadRequest)
			return
		}

		if len(parts) == 1 {
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.handleWarStatus(w, warID)
			return
		}

		if parts[1] == "turn" {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.adminOnly(RateLimitMiddleware(turnLimiter, func(w http.ResponseWriter, r *http.Request) {
				s.handleResolveTurn(w, r, warID)
			}))(w, r)
			return
		}

		http.Error(w, "usage: /api/v1/war/:id or /api/v1/war/:id/turn", http.StatusBadRequest)
	}
}

// handleWarStatus returns the war record, both houses and recent turns.
func (s *Server) handleWarStatus(w http.ResponseWriter, warID int64) {
	status, err := s.Wars.Status(warID)
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if status == nil {
		http.Error(w, "war not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status)
}

// handleResolveTurn plays one battle turn of an active war.
// POST /api/v1/war/:id/turn {"attacker_action":"attack","defender_action":"defend"}
func (s *Server) handleResolveTurn(w http.ResponseWriter, r *http.Request, warID int64) {
	var req struct {
		AttackerAction string `json:"attacker_action"`
		DefenderAction string `json:"defender_action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	report, err := s.Wars.ResolveTurn(warID, req.AttackerAction, req.DefenderAction)
	if err != nil {
		writeWarError(w, err)
		return
	}
	writeJSON(w, report)
}

// writeWarError maps engine errors onto HTTP status codes.
func writeWarError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, war.ErrWarNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, war.ErrNotEligible),
		errors.Is(err, war.ErrInvalidAction),
		errors.Is(err, war.ErrInvalidWeather),
		errors.Is(err, war.ErrInvalidTerrain),
		errors.Is(err, war.ErrInvalidScale):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("war engine error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
