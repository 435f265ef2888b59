package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neurofleetx_sim_ticks_total",
		Help: "Simulation ticks executed.",
	})
	VehiclesAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neurofleetx_sim_vehicles_advanced_total",
		Help: "Vehicle records recomputed by the simulation.",
	})
	AlertsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neurofleetx_alerts_generated_total",
		Help: "Alerts raised by the tick threshold checks.",
	})
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neurofleetx_login_failures_total",
		Help: "Rejected login attempts.",
	})
	SimulationEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neurofleetx_simulation_enabled",
		Help: "Whether the simulation tick is currently enabled (0 or 1).",
	})
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neurofleetx_stream_clients",
		Help: "Connected websocket stream clients.",
	})
)

// Handler exposes the default registry in prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
