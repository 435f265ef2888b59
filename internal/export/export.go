package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"neurofleetx/internal/fleet"
)

// Dataset names an exportable view of the store
type Dataset string

const (
	DatasetFleet       Dataset = "fleet"
	DatasetMaintenance Dataset = "maintenance"
	DatasetAnalytics   Dataset = "analytics"
)

// Valid reports whether the dataset is known
func (d Dataset) Valid() bool {
	switch d {
	case DatasetFleet, DatasetMaintenance, DatasetAnalytics:
		return true
	}
	return false
}

// Format is an export serialization format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Valid reports whether the format is known
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatPDF:
		return true
	}
	return false
}

// ErrAcknowledgedOnly marks formats that only confirm the request and
// write nothing (PDF in this demo).
var ErrAcknowledgedOnly = errors.New("format acknowledged without output")

// MaintenanceRecord is one row of the maintenance dataset
type MaintenanceRecord struct {
	Name              string `json:"name" csv:"name"`
	MaintenanceStatus string `json:"maintenance_status" csv:"maintenance_status"`
	LastService       string `json:"last_service" csv:"last_service"`
	NextService       string `json:"next_service" csv:"next_service"`
}

// FleetRecord is one flattened CSV row of the fleet dataset
type FleetRecord struct {
	ID           int     `csv:"id"`
	Name         string  `csv:"name"`
	Type         string  `csv:"type"`
	Status       string  `csv:"status"`
	Battery      float64 `csv:"battery"`
	Lat          float64 `csv:"lat"`
	Lng          float64 `csv:"lng"`
	Speed        float64 `csv:"speed"`
	LicensePlate string  `csv:"license_plate"`
	Driver       string  `csv:"driver"`
	Mileage      float64 `csv:"mileage"`
	NextService  string  `csv:"next_service"`
}

// analyticsRow flattens the analytics snapshot for CSV output
type analyticsRow struct {
	TotalDistanceKM  float64 `csv:"total_distance_km"`
	FuelSavedL       float64 `csv:"fuel_saved_l"`
	EmissionsReduced float64 `csv:"emissions_reduced_kg"`
	TripsCompleted   int     `csv:"trips_completed"`
	AverageSpeed     float64 `csv:"average_speed"`
	UtilizationRate  float64 `csv:"utilization_rate"`
	ActiveVehicles   int     `csv:"active_vehicles"`
	Revenue          float64 `csv:"revenue"`
}

// Exporter serializes store datasets for download
type Exporter struct {
	store *fleet.Store
}

// New creates an exporter over the store
func New(store *fleet.Store) *Exporter {
	return &Exporter{store: store}
}

// Filename builds the download name the dashboard uses. Analytics alone
// carries no _data infix.
func (e *Exporter) Filename(d Dataset, f Format, now time.Time) string {
	if d == DatasetAnalytics {
		return fmt.Sprintf("%s_%s.%s", d, now.Format("2006-01-02"), f)
	}
	return fmt.Sprintf("%s_data_%s.%s", d, now.Format("2006-01-02"), f)
}

// Write serializes the dataset to w. PDF returns ErrAcknowledgedOnly and
// writes nothing.
func (e *Exporter) Write(w io.Writer, d Dataset, f Format) error {
	if !d.Valid() {
		return fmt.Errorf("unknown dataset: %s", d)
	}
	switch f {
	case FormatJSON:
		return e.writeJSON(w, d)
	case FormatCSV:
		return e.writeCSV(w, d)
	case FormatPDF:
		return ErrAcknowledgedOnly
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

func (e *Exporter) writeJSON(w io.Writer, d Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	switch d {
	case DatasetFleet:
		return enc.Encode(e.store.Vehicles())
	case DatasetMaintenance:
		return enc.Encode(e.maintenanceRecords())
	default:
		return enc.Encode(e.store.Analytics())
	}
}

func (e *Exporter) writeCSV(w io.Writer, d Dataset) error {
	switch d {
	case DatasetFleet:
		rows := e.fleetRecords()
		return gocsv.Marshal(&rows, w)
	case DatasetMaintenance:
		rows := e.maintenanceRecords()
		return gocsv.Marshal(&rows, w)
	default:
		a := e.store.Analytics()
		rows := []analyticsRow{{
			TotalDistanceKM:  a.TotalDistanceKM,
			FuelSavedL:       a.FuelSavedL,
			EmissionsReduced: a.EmissionsReduced,
			TripsCompleted:   a.TripsCompleted,
			AverageSpeed:     a.AverageSpeed,
			UtilizationRate:  a.UtilizationRate,
			ActiveVehicles:   a.ActiveVehicles,
			Revenue:          a.Revenue,
		}}
		return gocsv.Marshal(&rows, w)
	}
}

func (e *Exporter) fleetRecords() []FleetRecord {
	vehicles := e.store.Vehicles()
	rows := make([]FleetRecord, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, FleetRecord{
			ID:           v.ID,
			Name:         v.Name,
			Type:         string(v.Type),
			Status:       string(v.Status),
			Battery:      v.Battery,
			Lat:          v.Location.Lat,
			Lng:          v.Location.Lng,
			Speed:        v.Speed,
			LicensePlate: v.LicensePlate,
			Driver:       v.Driver,
			Mileage:      v.Maintenance.Mileage,
			NextService:  v.NextService,
		})
	}
	return rows
}

func (e *Exporter) maintenanceRecords() []MaintenanceRecord {
	vehicles := e.store.Vehicles()
	rows := make([]MaintenanceRecord, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, MaintenanceRecord{
			Name:              v.Name,
			MaintenanceStatus: string(e.store.Grade(v)),
			LastService:       v.LastService,
			NextService:       v.NextService,
		})
	}
	return rows
}
