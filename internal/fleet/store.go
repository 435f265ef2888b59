package fleet

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"neurofleetx/internal/config"
	"neurofleetx/internal/models"
)

// ErrNotFound is returned when an entity id does not exist in the store
var ErrNotFound = errors.New("not found")

// Store is the in-memory session state: vehicles, alerts, notifications and
// the mock environmental readings. All state is volatile and owned
// exclusively by the store; every mutation goes through a method under the
// lock so readers never observe a partially-updated fleet.
type Store struct {
	mu  sync.RWMutex
	cfg *config.Config
	rng *rand.Rand
	now func() time.Time

	vehicles      []models.Vehicle
	alerts        []models.Alert
	notifications []models.Notification
	weather       models.Weather
	traffic       models.Traffic
	analytics     models.Analytics

	lastEventID int64
}

// Option configures a Store
type Option func(*Store)

// WithRand injects the random source used for vehicle placement
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

// WithNow injects the clock used for event timestamps
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store
func New(cfg *config.Config, opts ...Option) *Store {
	s := &Store{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextEventID derives an id from the wall clock, bumping on collision so
// ids stay unique within a session even when events land in the same
// millisecond. Callers must hold the lock.
func (s *Store) nextEventID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastEventID {
		id = s.lastEventID + 1
	}
	s.lastEventID = id
	return id
}

// Vehicles returns a copy of the current fleet
func (s *Store) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// Vehicle returns a single vehicle by id
func (s *Store) Vehicle(id int) (models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
}

// NewVehicleInput is the user-supplied part of a vehicle record
type NewVehicleInput struct {
	Name         string               `json:"name"`
	Type         models.VehicleType   `json:"type"`
	Status       models.VehicleStatus `json:"status"`
	LicensePlate string               `json:"license_plate"`
}

// AddVehicle creates a vehicle from user input. The id is one plus the
// current maximum (1 for an empty fleet), battery starts full, and the
// vehicle is placed at a random point inside the configured bounding box.
func (s *Store) AddVehicle(in NewVehicleInput) models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := 1
	for _, v := range s.vehicles {
		if v.ID >= id {
			id = v.ID + 1
		}
	}

	today := s.now()
	b := s.cfg.Bounds
	v := models.Vehicle{
		ID:           id,
		Name:         in.Name,
		Type:         in.Type,
		Status:       in.Status,
		Battery:      100,
		Location: models.Location{
			Lat: b.MinLat + s.rng.Float64()*(b.MaxLat-b.MinLat),
			Lng: b.MinLng + s.rng.Float64()*(b.MaxLng-b.MinLng),
		},
		Speed:        0,
		LicensePlate: in.LicensePlate,
		Driver:       "Unassigned",
		Phone:        "+91 0000000000",
		LastService:  today.Format("2006-01-02"),
		NextService:  today.AddDate(0, 0, 90).Format("2006-01-02"),
		Maintenance: models.Maintenance{
			Engine:        100,
			Tires:         100,
			Brakes:        100,
			BatteryHealth: 100,
			Mileage:       0,
		},
		Telemetry: models.Telemetry{
			Temperature: 25,
			RPM:         0,
			FuelLevel:   100,
			TirePressure: models.TirePressure{
				FrontLeft: 32, FrontRight: 32, RearLeft: 32, RearRight: 32,
			},
		},
	}

	s.vehicles = append(s.vehicles, v)
	return v
}

// UpdateVehicle replaces the record with the same id
func (s *Store) UpdateVehicle(v models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vehicles {
		if s.vehicles[i].ID == v.ID {
			s.vehicles[i] = v
			return nil
		}
	}
	return fmt.Errorf("vehicle %d: %w", v.ID, ErrNotFound)
}

// DeleteVehicle removes a vehicle and returns the removed record
func (s *Store) DeleteVehicle(id int) (models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return v, nil
		}
	}
	return models.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
}

// ReplaceVehicles atomically swaps in a new fleet
func (s *Store) ReplaceVehicles(vs []models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = vs
}

// Advance recomputes the fleet by applying fn under the write lock, so
// adds, deletes and edits serialized against it are never lost. fn must
// not call back into the store. Returns a copy of the resulting fleet.
func (s *Store) Advance(fn func([]models.Vehicle) []models.Vehicle) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = fn(s.vehicles)
	out := make([]models.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// SetStatusAll applies one status to every vehicle
func (s *Store) SetStatusAll(status models.VehicleStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vehicles {
		s.vehicles[i].Status = status
	}
}

// ScheduleService sets a vehicle's next service date
func (s *Store) ScheduleService(id int, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vehicles {
		if s.vehicles[i].ID == id {
			s.vehicles[i].NextService = date
			return nil
		}
	}
	return fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
}

// Search filters the fleet by a free-text term (name, plate, driver) and
// optional status/type filters. Empty or "all" filters match everything.
func (s *Store) Search(term string, status, vtype string) []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(term)
	matches := func(v models.Vehicle) bool {
		if term != "" &&
			!strings.Contains(strings.ToLower(v.Name), term) &&
			!strings.Contains(strings.ToLower(v.LicensePlate), term) &&
			!strings.Contains(strings.ToLower(v.Driver), term) {
			return false
		}
		if status != "" && status != "all" && string(v.Status) != status {
			return false
		}
		if vtype != "" && vtype != "all" && string(v.Type) != vtype {
			return false
		}
		return true
	}

	var out []models.Vehicle
	for _, v := range s.vehicles {
		if matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// Alerts returns a copy of the open alerts
func (s *Store) Alerts() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// AddAlert appends a new alert and returns it
func (s *Store) AddAlert(t models.AlertType, message string, priority models.AlertPriority) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Alert{
		ID:        s.nextEventID(),
		Type:      t,
		Message:   message,
		Priority:  priority,
		Timestamp: s.now(),
	}
	s.alerts = append(s.alerts, a)
	return a
}

// HasAlertMessage reports whether any open alert message contains the
// given substring. Used for tick-level alert dedup.
func (s *Store) HasAlertMessage(substr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if strings.Contains(a.Message, substr) {
			return true
		}
	}
	return false
}

// DismissAlert removes exactly the alert with the given id
func (s *Store) DismissAlert(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("alert %d: %w", id, ErrNotFound)
}

// Notify prepends a notification, dropping the oldest beyond the cap
func (s *Store) Notify(message string, t models.NotificationType) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := models.Notification{
		ID:        s.nextEventID(),
		Message:   message,
		Type:      t,
		Timestamp: s.now(),
	}
	s.notifications = append([]models.Notification{n}, s.notifications...)
	if len(s.notifications) > s.cfg.NotificationCap {
		s.notifications = s.notifications[:s.cfg.NotificationCap]
	}
	return n
}

// Notifications returns a copy of the notification list, newest first
func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// MarkNotificationRead flips the read flag on one notification
func (s *Store) MarkNotificationRead(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, ErrNotFound)
}

// ClearNotifications removes all notifications
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// Weather returns the current mock weather reading
func (s *Store) Weather() models.Weather {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weather
}

// SetWeather replaces the mock weather reading
func (s *Store) SetWeather(w models.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = w
}

// Traffic returns the current mock traffic reading
func (s *Store) Traffic() models.Traffic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.traffic
}

// SetTraffic replaces the mock traffic reading
func (s *Store) SetTraffic(t models.Traffic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic = t
}

// Analytics returns the fleet analytics snapshot
func (s *Store) Analytics() models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.analytics
	a.ActiveVehicles = s.countActiveLocked()
	return a
}

// SetAnalytics replaces the analytics snapshot
func (s *Store) SetAnalytics(a models.Analytics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = a
}

func (s *Store) countActiveLocked() int {
	n := 0
	for _, v := range s.vehicles {
		if v.Status == models.StatusInUse {
			n++
		}
	}
	return n
}

// Stats returns session-level counters
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unread := 0
	for _, n := range s.notifications {
		if !n.Read {
			unread++
		}
	}

	return map[string]interface{}{
		"total_vehicles":       len(s.vehicles),
		"active_trips":         s.countActiveLocked(),
		"open_alerts":          len(s.alerts),
		"unread_notifications": unread,
	}
}
