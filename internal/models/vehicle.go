package models

// VehicleType classifies a fleet vehicle
type VehicleType string

const (
	TypeCar     VehicleType = "car"
	TypeVan     VehicleType = "van"
	TypeTruck   VehicleType = "truck"
	TypeScooter VehicleType = "scooter"
)

// Valid reports whether the type is one of the known categories
func (t VehicleType) Valid() bool {
	switch t {
	case TypeCar, TypeVan, TypeTruck, TypeScooter:
		return true
	}
	return false
}

// VehicleStatus is the operational state of a vehicle
type VehicleStatus string

const (
	StatusIdle        VehicleStatus = "idle"
	StatusInUse       VehicleStatus = "in_use"
	StatusMaintenance VehicleStatus = "maintenance"
)

// Valid reports whether the status is one of the known states
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// Display returns the human-readable status label
func (s VehicleStatus) Display() string {
	switch s {
	case StatusIdle:
		return "Available"
	case StatusInUse:
		return "In Use"
	case StatusMaintenance:
		return "Needs Service"
	default:
		return string(s)
	}
}

// Location is a geographic point
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoBounds is the bounding box new vehicles are placed in
type GeoBounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the location falls inside the box
func (b GeoBounds) Contains(l Location) bool {
	return l.Lat >= b.MinLat && l.Lat <= b.MaxLat &&
		l.Lng >= b.MinLng && l.Lng <= b.MaxLng
}

// TirePressure holds the four per-wheel pressure readings in PSI
type TirePressure struct {
	FrontLeft  float64 `json:"front_left"`
	FrontRight float64 `json:"front_right"`
	RearLeft   float64 `json:"rear_left"`
	RearRight  float64 `json:"rear_right"`
}

// Telemetry is the live sensor sub-record of a vehicle
type Telemetry struct {
	Temperature  float64      `json:"temperature"` // Celsius
	RPM          float64      `json:"rpm"`
	FuelLevel    float64      `json:"fuel_level"` // percentage
	TirePressure TirePressure `json:"tire_pressure"`
}

// Maintenance is the component-health sub-record of a vehicle.
// Health values are percentages in [0,100]; mileage is cumulative km.
type Maintenance struct {
	Engine        float64 `json:"engine"`
	Tires         float64 `json:"tires"`
	Brakes        float64 `json:"brakes"`
	BatteryHealth float64 `json:"battery_health"`
	Mileage       float64 `json:"mileage"`
}

// AverageHealth is the mean of the four component health percentages
func (m Maintenance) AverageHealth() float64 {
	return (m.Engine + m.Tires + m.Brakes + m.BatteryHealth) / 4
}

// Vehicle represents a fleet vehicle and its current state
type Vehicle struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Type         VehicleType   `json:"type"`
	Status       VehicleStatus `json:"status"`
	Battery      float64       `json:"battery"` // percentage
	Location     Location      `json:"location"`
	Speed        float64       `json:"speed"` // km/h
	LicensePlate string        `json:"license_plate"`
	Driver       string        `json:"driver"`
	Phone        string        `json:"phone"`
	LastService  string        `json:"last_service"` // YYYY-MM-DD
	NextService  string        `json:"next_service"` // YYYY-MM-DD
	Maintenance  Maintenance   `json:"maintenance"`
	Telemetry    Telemetry     `json:"telemetry"`
}

// MaintenanceGrade buckets a vehicle's average component health
type MaintenanceGrade string

const (
	GradeHealthy  MaintenanceGrade = "Healthy"
	GradeDue      MaintenanceGrade = "Due"
	GradeCritical MaintenanceGrade = "Critical"
)

// VehicleSpec holds the static capabilities of a vehicle type
type VehicleSpec struct {
	MaxSpeed       float64 `json:"max_speed"`       // km/h
	Capacity       int     `json:"capacity"`        // passengers
	FuelEfficiency float64 `json:"fuel_efficiency"` // km/l equivalent
	RangeKM        float64 `json:"range_km"`
}

// VehicleSpecs maps each vehicle type to its capabilities
var VehicleSpecs = map[VehicleType]VehicleSpec{
	TypeCar:     {MaxSpeed: 120, Capacity: 4, FuelEfficiency: 15, RangeKM: 300},
	TypeVan:     {MaxSpeed: 100, Capacity: 8, FuelEfficiency: 12, RangeKM: 250},
	TypeTruck:   {MaxSpeed: 80, Capacity: 2, FuelEfficiency: 8, RangeKM: 400},
	TypeScooter: {MaxSpeed: 60, Capacity: 1, FuelEfficiency: 40, RangeKM: 80},
}
