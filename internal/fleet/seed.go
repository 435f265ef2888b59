package fleet

import "neurofleetx/internal/models"

// SeedDemo loads the demo fleet and mock environmental readings a session
// starts with.
func (s *Store) SeedDemo() {
	s.mu.Lock()
	s.vehicles = demoVehicles()
	s.weather = models.Weather{
		Temperature: 28,
		Condition:   "Partly Cloudy",
		Humidity:    65,
		WindSpeed:   12,
	}
	s.traffic = models.Traffic{
		CongestionLevel: models.CongestionModerate,
		AverageSpeed:    35,
		Incidents:       3,
	}
	s.analytics = models.Analytics{
		TotalDistanceKM:  12500,
		FuelSavedL:       450,
		EmissionsReduced: 1200,
		TripsCompleted:   345,
		AverageSpeed:     42,
		UtilizationRate:  78,
		Revenue:          125000,
	}
	s.mu.Unlock()

	s.AddAlert(models.AlertMaintenance, "Vehicle #3 needs immediate service", models.PriorityHigh)
	s.AddAlert(models.AlertBattery, "Vehicle #1 battery below 20%", models.PriorityMedium)
}

func demoVehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID:           1,
			Name:         "Tata Nexon EV",
			Type:         models.TypeCar,
			Status:       models.StatusInUse,
			Battery:      78,
			Location:     models.Location{Lat: 28.6139, Lng: 77.2090}, // New Delhi
			Speed:        45,
			LicensePlate: "DL01AB1234",
			Driver:       "Raj Kumar",
			Phone:        "+91 9876543210",
			LastService:  "2024-01-15",
			NextService:  "2024-04-15",
			Maintenance:  models.Maintenance{Engine: 85, Tires: 70, Brakes: 90, BatteryHealth: 78, Mileage: 12500},
			Telemetry: models.Telemetry{
				Temperature: 24, RPM: 2200, FuelLevel: 78,
				TirePressure: models.TirePressure{FrontLeft: 32, FrontRight: 31, RearLeft: 33, RearRight: 32},
			},
		},
		{
			ID:           2,
			Name:         "Mahindra eVerito",
			Type:         models.TypeCar,
			Status:       models.StatusIdle,
			Battery:      92,
			Location:     models.Location{Lat: 28.4595, Lng: 77.0266}, // Gurugram
			Speed:        0,
			LicensePlate: "HR26BR4567",
			Driver:       "Priya Sharma",
			Phone:        "+91 9876543211",
			LastService:  "2024-02-20",
			NextService:  "2024-05-20",
			Maintenance:  models.Maintenance{Engine: 92, Tires: 85, Brakes: 88, BatteryHealth: 92, Mileage: 8700},
			Telemetry: models.Telemetry{
				Temperature: 26, RPM: 0, FuelLevel: 92,
				TirePressure: models.TirePressure{FrontLeft: 33, FrontRight: 33, RearLeft: 32, RearRight: 32},
			},
		},
		{
			ID:           3,
			Name:         "Ashok Leyland Dost",
			Type:         models.TypeTruck,
			Status:       models.StatusMaintenance,
			Battery:      34,
			Location:     models.Location{Lat: 12.9716, Lng: 77.5946}, // Bangalore
			Speed:        0,
			LicensePlate: "KA01CD7890",
			Driver:       "Anil Patel",
			Phone:        "+91 9876543212",
			LastService:  "2023-12-10",
			NextService:  "2024-03-10",
			Maintenance:  models.Maintenance{Engine: 45, Tires: 30, Brakes: 60, BatteryHealth: 34, Mileage: 32500},
			Telemetry: models.Telemetry{
				Temperature: 28, RPM: 0, FuelLevel: 34,
				TirePressure: models.TirePressure{FrontLeft: 28, FrontRight: 29, RearLeft: 27, RearRight: 28},
			},
		},
		{
			ID:           4,
			Name:         "Ola S1 Pro",
			Type:         models.TypeScooter,
			Status:       models.StatusIdle,
			Battery:      100,
			Location:     models.Location{Lat: 19.0760, Lng: 72.8777}, // Mumbai
			Speed:        0,
			LicensePlate: "MH02EF3456",
			Driver:       "Suresh Kumar",
			Phone:        "+91 9876543213",
			LastService:  "2024-01-30",
			NextService:  "2024-04-30",
			Maintenance:  models.Maintenance{Engine: 95, Tires: 90, Brakes: 92, BatteryHealth: 100, Mileage: 3200},
			Telemetry: models.Telemetry{
				Temperature: 30, RPM: 0, FuelLevel: 100,
				TirePressure: models.TirePressure{FrontLeft: 25, FrontRight: 25, RearLeft: 28, RearRight: 28},
			},
		},
		{
			ID:           5,
			Name:         "Tata Tigor EV",
			Type:         models.TypeCar,
			Status:       models.StatusInUse,
			Battery:      65,
			Location:     models.Location{Lat: 13.0827, Lng: 80.2707}, // Chennai
			Speed:        38,
			LicensePlate: "TN09GH6789",
			Driver:       "Deepa Reddy",
			Phone:        "+91 9876543214",
			LastService:  "2024-02-05",
			NextService:  "2024-05-05",
			Maintenance:  models.Maintenance{Engine: 80, Tires: 75, Brakes: 82, BatteryHealth: 65, Mileage: 15200},
			Telemetry: models.Telemetry{
				Temperature: 32, RPM: 1800, FuelLevel: 65,
				TirePressure: models.TirePressure{FrontLeft: 31, FrontRight: 32, RearLeft: 30, RearRight: 31},
			},
		},
		{
			ID:           6,
			Name:         "Mahindra eSupro",
			Type:         models.TypeVan,
			Status:       models.StatusIdle,
			Battery:      88,
			Location:     models.Location{Lat: 22.5726, Lng: 88.3639}, // Kolkata
			Speed:        0,
			LicensePlate: "WB05IJ9012",
			Driver:       "Amit Verma",
			Phone:        "+91 9876543215",
			LastService:  "2024-01-25",
			NextService:  "2024-04-25",
			Maintenance:  models.Maintenance{Engine: 88, Tires: 80, Brakes: 85, BatteryHealth: 88, Mileage: 18500},
			Telemetry: models.Telemetry{
				Temperature: 29, RPM: 0, FuelLevel: 88,
				TirePressure: models.TirePressure{FrontLeft: 34, FrontRight: 34, RearLeft: 33, RearRight: 33},
			},
		},
	}
}
