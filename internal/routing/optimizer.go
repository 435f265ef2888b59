package routing

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"neurofleetx/internal/models"
)

// Average fleet speed the time estimate is derived from, in km/h
const baseSpeedKmh = 40

// Optimizer produces demo route plans. Distances and savings are randomly
// drawn; delays come from the mock traffic/weather readings. There is no
// road graph behind this.
type Optimizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an optimizer with the given random source; a nil source
// falls back to a time-seeded one.
func New(rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Optimizer{rng: rng}
}

// demoWaypoints is the fixed three-point path every plan returns
// (Delhi, Gurugram, Faridabad).
var demoWaypoints = []models.Location{
	{Lat: 28.6139, Lng: 77.2090},
	{Lat: 28.4595, Lng: 77.0266},
	{Lat: 28.4089, Lng: 77.3178},
}

// Optimize builds a route plan for the request under the given
// environmental readings.
func (o *Optimizer) Optimize(req models.RouteRequest, w models.Weather, t models.Traffic) models.RouteResult {
	o.mu.Lock()
	distance := 20 + o.rng.Intn(100)
	savings := 5 + o.rng.Intn(15)
	o.mu.Unlock()

	baseTime := math.Floor(float64(distance) / baseSpeedKmh * 60)

	var trafficDelay float64
	switch t.CongestionLevel {
	case models.CongestionHigh:
		trafficDelay = baseTime * 0.3
	case models.CongestionModerate:
		trafficDelay = baseTime * 0.15
	}

	var weatherDelay float64
	if w.Condition == "Rain" {
		weatherDelay = baseTime * 0.2
	}

	waypoints := make([]models.Location, len(demoWaypoints))
	copy(waypoints, demoWaypoints)

	return models.RouteResult{
		DistanceKM:         distance,
		EstimatedTimeMin:   int(baseTime + trafficDelay + weatherDelay),
		FuelSavingsPct:     savings,
		RecommendedVehicle: req.VehicleType,
		TrafficDelayMin:    int(trafficDelay),
		WeatherImpact:      weatherDelay > 0,
		Waypoints:          waypoints,
		CO2ReductionKG:     int(float64(distance) * 0.12 * float64(savings) / 100),
	}
}
