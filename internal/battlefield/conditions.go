// Package battlefield derives weather and terrain for newly declared wars
// from layered simplex noise. Conditions drift over time instead of
// reshuffling uniformly at every declaration, so back-to-back wars tend to
// share a weather front.
package battlefield

import (
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/house-wars/internal/battle"
)

// Generator samples battlefield conditions from two independent noise layers.
type Generator struct {
	weatherNoise opensimplex.Noise
	terrainNoise opensimplex.Noise
	epoch        time.Time

	mu    sync.Mutex
	draws int
}

// New creates a condition generator from a world seed.
func New(seed int64) *Generator {
	return &Generator{
		weatherNoise: opensimplex.NewNormalized(seed),
		terrainNoise: opensimplex.NewNormalized(seed + 1),
		epoch:        time.Now(),
	}
}

// Draw samples the current weather front and a theatre terrain. Each draw
// advances a secondary axis so simultaneous declarations still differ.
func (g *Generator) Draw() (battle.Weather, battle.Terrain) {
	g.mu.Lock()
	g.draws++
	n := float64(g.draws)
	g.mu.Unlock()

	// Weather drifts on a ~3h cycle; terrain varies mostly per draw.
	t := time.Since(g.epoch).Hours() / 3

	w := g.weatherNoise.Eval2(t, n*0.61)
	tr := g.terrainNoise.Eval2(n*1.37, t*0.25)

	return weatherFor(w), terrainFor(tr)
}

// weatherFor maps a normalized noise value to a weather tag. Clear skies are
// the widest band; storms the narrowest.
func weatherFor(v float64) battle.Weather {
	switch {
	case v < 0.35:
		return battle.WeatherNormal
	case v < 0.55:
		return battle.WeatherRain
	case v < 0.72:
		return battle.WeatherFog
	case v < 0.88:
		return battle.WeatherSnow
	default:
		return battle.WeatherStorm
	}
}

// terrainFor maps a normalized noise value to a terrain tag in even bands.
func terrainFor(v float64) battle.Terrain {
	terrains := battle.Terrains()
	i := int(v * float64(len(terrains)))
	if i < 0 {
		i = 0
	}
	if i >= len(terrains) {
		i = len(terrains) - 1
	}
	return terrains[i]
}
