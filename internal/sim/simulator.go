package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"neurofleetx/internal/config"
	"neurofleetx/internal/fleet"
	"neurofleetx/internal/metrics"
	"neurofleetx/internal/models"
)

// Snapshot is the state published after a completed tick
type Snapshot struct {
	Tick     int64            `json:"tick"`
	At       time.Time        `json:"at"`
	Vehicles []models.Vehicle `json:"vehicles"`
	Alerts   []models.Alert   `json:"alerts"`
}

// Simulator advances the fleet on a fixed period while enabled. Each tick
// recomputes every in-use vehicle with bounded random perturbations scaled
// by the mock weather/traffic readings under the store lock, then runs
// the low-battery alert check.
type Simulator struct {
	store *fleet.Store
	cfg   *config.Config
	clock Clock

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	enabled atomic.Bool
	ticks   atomic.Int64
	onTick  func(Snapshot)
}

// Option configures a Simulator
type Option func(*Simulator)

// WithRand injects the random source so ticks are reproducible
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithClock injects the clock driving the tick loop
func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithOnTick registers a hook called with the snapshot of every tick
func WithOnTick(fn func(Snapshot)) Option {
	return func(s *Simulator) { s.onTick = fn }
}

// New creates a simulator in the disabled state
func New(store *fleet.Store, cfg *config.Config, opts ...Option) *Simulator {
	s := &Simulator{
		store: store,
		cfg:   cfg,
		clock: SystemClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := cfg.SimSeed
		if seed == 0 {
			seed = s.clock.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	return s
}

// SetEnabled toggles simulation mode. Disabling stops future ticks from
// taking effect; a tick already in progress always completes.
func (s *Simulator) SetEnabled(on bool) {
	s.enabled.Store(on)
	if on {
		metrics.SimulationEnabled.Set(1)
	} else {
		metrics.SimulationEnabled.Set(0)
	}
}

// Enabled reports whether simulation mode is on
func (s *Simulator) Enabled() bool {
	return s.enabled.Load()
}

// Ticks returns the number of completed ticks
func (s *Simulator) Ticks() int64 {
	return s.ticks.Load()
}

// TickInterval returns the configured tick period
func (s *Simulator) TickInterval() time.Duration {
	return s.cfg.TickInterval
}

// Run drives the tick loop until the context is cancelled. Timer firings
// while the simulation is disabled are no-ops.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if !s.enabled.Load() {
				continue
			}
			s.Tick()
		}
	}
}

// Tick advances the fleet once and returns the resulting snapshot
func (s *Simulator) Tick() Snapshot {
	weather := s.store.Weather()
	traffic := s.store.Traffic()

	advanced := 0
	s.mu.Lock()
	updated := s.store.Advance(func(vehicles []models.Vehicle) []models.Vehicle {
		out := make([]models.Vehicle, len(vehicles))
		for i, v := range vehicles {
			if v.Status != models.StatusInUse {
				out[i] = v
				continue
			}
			out[i] = s.advance(v, weather, traffic)
			advanced++
		}
		return out
	})
	s.mu.Unlock()

	s.raiseAlerts(updated)

	metrics.TicksTotal.Inc()
	metrics.VehiclesAdvanced.Add(float64(advanced))

	tick := s.ticks.Add(1)
	log.Debug().Int64("tick", tick).Int("advanced", advanced).Msg("Simulation tick complete")

	snap := Snapshot{
		Tick:     tick,
		At:       s.clock.Now(),
		Vehicles: updated,
		Alerts:   s.store.Alerts(),
	}
	if s.onTick != nil {
		s.onTick(snap)
	}
	return snap
}

// advance recomputes one in-use vehicle. Draw order is fixed (battery,
// speed, lat, lng, temperature, rpm, four tires) so seeded runs are
// reproducible. Callers must hold s.mu.
func (s *Simulator) advance(v models.Vehicle, w models.Weather, t models.Traffic) models.Vehicle {
	wf := weatherFactor(w)
	tf := trafficFactor(t)

	batteryDelta := s.uniform(-1, 1) * wf
	speedDelta := s.uniform(-5, 5) * tf
	latDelta := s.uniform(-0.0005, 0.0005) * tf
	lngDelta := s.uniform(-0.0005, 0.0005) * tf

	oldSpeed := v.Speed

	v.Battery = clamp(v.Battery-batteryDelta, 0, 100)
	v.Speed = max0(v.Speed + speedDelta)
	v.Location.Lat += latDelta
	v.Location.Lng += lngDelta

	v.Maintenance.BatteryHealth = clamp(v.Maintenance.BatteryHealth-batteryDelta/10, 0, 100)
	v.Maintenance.Mileage += oldSpeed / 60

	v.Telemetry.Temperature = s.uniform(20, 35)
	v.Telemetry.RPM = s.uniform(1500, 3500)
	v.Telemetry.TirePressure = models.TirePressure{
		FrontLeft:  s.uniform(30, 34),
		FrontRight: s.uniform(30, 34),
		RearLeft:   s.uniform(30, 34),
		RearRight:  s.uniform(30, 34),
	}

	return v
}

// raiseAlerts appends one low-battery alert per qualifying vehicle unless
// an open alert already references that vehicle's battery.
func (s *Simulator) raiseAlerts(vehicles []models.Vehicle) {
	for _, v := range vehicles {
		if v.Status != models.StatusInUse {
			continue
		}
		if v.Battery >= s.cfg.BatteryAlertThreshold {
			continue
		}
		ref := fmt.Sprintf("Vehicle #%d battery", v.ID)
		if s.store.HasAlertMessage(ref) {
			continue
		}
		s.store.AddAlert(models.AlertBattery, ref+" critically low", models.PriorityHigh)
		s.store.Notify(fmt.Sprintf("Vehicle %s battery critically low", v.Name), models.NotifyWarning)
		metrics.AlertsGenerated.Inc()
		log.Warn().Int("vehicle", v.ID).Float64("battery", v.Battery).Msg("Battery critically low")
	}
}

func (s *Simulator) uniform(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

func weatherFactor(w models.Weather) float64 {
	if w.Condition == "Rain" {
		return 0.8
	}
	return 1.0
}

func trafficFactor(t models.Traffic) float64 {
	switch t.CongestionLevel {
	case models.CongestionHigh:
		return 0.7
	case models.CongestionModerate:
		return 0.9
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
