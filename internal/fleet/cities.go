package fleet

import (
	"fmt"
	"math"

	"neurofleetx/internal/models"
)

type city struct {
	name string
	lat  float64
	lng  float64
}

var cities = []city{
	{"New Delhi", 28.6139, 77.2090},
	{"Mumbai", 19.0760, 72.8777},
	{"Bangalore", 12.9716, 77.5946},
	{"Chennai", 13.0827, 80.2707},
	{"Kolkata", 22.5726, 88.3639},
	{"Hyderabad", 17.3850, 78.4867},
	{"Pune", 18.5204, 73.8567},
	{"Ahmedabad", 23.0225, 72.5714},
	{"Jaipur", 26.9124, 75.7873},
	{"Lucknow", 26.8467, 80.9462},
	{"Gurugram", 28.4595, 77.0266},
	{"Noida", 28.5355, 77.3910},
}

// cityCutoffDeg is roughly 150km; beyond it raw coordinates are shown
const cityCutoffDeg = 1.5

// NearestCity maps a location to the closest known city name, or to a
// formatted coordinate pair when nothing is near enough.
func NearestCity(l models.Location) string {
	closest := cities[0]
	min := math.MaxFloat64
	for _, c := range cities {
		d := math.Hypot(c.lat-l.Lat, c.lng-l.Lng)
		if d < min {
			min = d
			closest = c
		}
	}
	if min < cityCutoffDeg {
		return closest.name
	}
	return fmt.Sprintf("%.4f, %.4f", l.Lat, l.Lng)
}
