package models

// CongestionLevel is the mock traffic congestion reading
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "low"
	CongestionModerate CongestionLevel = "moderate"
	CongestionHigh     CongestionLevel = "high"
)

// Weather is the mock weather reading for the whole region
type Weather struct {
	Temperature float64 `json:"temperature"` // Celsius
	Condition   string  `json:"condition"`   // e.g. "Partly Cloudy", "Rain"
	Humidity    float64 `json:"humidity"`    // percentage
	WindSpeed   float64 `json:"wind_speed"`  // km/h
}

// Traffic is the mock traffic reading for the whole region
type Traffic struct {
	CongestionLevel CongestionLevel `json:"congestion_level"`
	AverageSpeed    float64         `json:"average_speed"` // km/h
	Incidents       int             `json:"incidents"`
}

// Analytics is the fleet-wide performance snapshot
type Analytics struct {
	TotalDistanceKM  float64 `json:"total_distance_km"`
	FuelSavedL       float64 `json:"fuel_saved_l"`
	EmissionsReduced float64 `json:"emissions_reduced_kg"`
	TripsCompleted   int     `json:"trips_completed"`
	AverageSpeed     float64 `json:"average_speed"`
	UtilizationRate  float64 `json:"utilization_rate"` // percentage
	ActiveVehicles   int     `json:"active_vehicles"`
	Revenue          float64 `json:"revenue"`
}

// RoutePriority is the requested optimization preference
type RoutePriority string

const (
	PriorityFastest  RoutePriority = "fastest"
	PriorityShortest RoutePriority = "shortest"
	PriorityEco      RoutePriority = "eco"
	PrioritySafe     RoutePriority = "safe"
)

// RouteRequest describes a route optimization request
type RouteRequest struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	VehicleType VehicleType   `json:"vehicle_type"`
	Priority    RoutePriority `json:"priority"`
}

// RouteResult is the outcome of a route optimization
type RouteResult struct {
	DistanceKM         int         `json:"distance_km"`
	EstimatedTimeMin   int         `json:"estimated_time_min"`
	FuelSavingsPct     int         `json:"fuel_savings_pct"`
	RecommendedVehicle VehicleType `json:"recommended_vehicle"`
	TrafficDelayMin    int         `json:"traffic_delay_min"`
	WeatherImpact      bool        `json:"weather_impact"`
	Waypoints          []Location  `json:"waypoints"`
	CO2ReductionKG     int         `json:"co2_reduction_kg"`
}
