package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/house-wars/internal/battle"
)

func TestHandleCatalog(t *testing.T) {
	s := &Server{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)

	s.handleCatalog(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Actions []struct {
			Tag         string  `json:"tag"`
			Offense     float64 `json:"offense"`
			Defense     float64 `json:"defense"`
			Description string  `json:"description"`
		} `json:"actions"`
		Weathers []struct {
			Tag string `json:"tag"`
		} `json:"weathers"`
		Terrains []struct {
			Tag string `json:"tag"`
		} `json:"terrains"`
		Scales []struct {
			Tag         string  `json:"tag"`
			MinSoldiers int64   `json:"min_soldiers"`
			Ratio       float64 `json:"soldiers_ratio"`
			Intensity   float64 `json:"intensity"`
		} `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Actions, len(battle.Actions()))
	require.Len(t, body.Weathers, len(battle.Weathers()))
	require.Len(t, body.Terrains, len(battle.Terrains()))
	require.Len(t, body.Scales, len(battle.Scales()))

	assert.Equal(t, "attack", body.Actions[0].Tag)
	assert.Equal(t, 1.2, body.Actions[0].Offense)
	assert.NotEmpty(t, body.Actions[0].Description)

	// Scale thresholds survive the trip through the wire type.
	for i, tag := range battle.Scales() {
		info, ok := battle.ScaleByTag(string(tag))
		require.True(t, ok)
		assert.Equal(t, string(tag), body.Scales[i].Tag)
		assert.Equal(t, int64(info.MinSoldiers), body.Scales[i].MinSoldiers)
		assert.Equal(t, info.SoldiersRatio, body.Scales[i].Ratio)
		assert.Equal(t, info.Intensity, body.Scales[i].Intensity)
	}
}
