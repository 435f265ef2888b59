package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"neurofleetx/internal/auth"
	"neurofleetx/internal/export"
	"neurofleetx/internal/fleet"
	"neurofleetx/internal/metrics"
	"neurofleetx/internal/models"
	"neurofleetx/internal/routing"
	"neurofleetx/internal/sim"
)

// Server represents the API server
type Server struct {
	store     *fleet.Store
	sim       *sim.Simulator
	auth      *auth.Manager
	optimizer *routing.Optimizer
	exporter  *export.Exporter
	hub       *Hub
	router    *mux.Router
}

// NewServer creates a new API server
func NewServer(store *fleet.Store, simulator *sim.Simulator, authMgr *auth.Manager, optimizer *routing.Optimizer, exporter *export.Exporter, hub *Hub) *Server {
	s := &Server{
		store:     store,
		sim:       simulator,
		auth:      authMgr,
		optimizer: optimizer,
		exporter:  exporter,
		hub:       hub,
		router:    mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check and metrics
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Auth endpoints, reachable without a session token
	s.router.HandleFunc("/api/v1/auth/login", s.handleLogin).Methods("POST")
	s.router.HandleFunc("/api/v1/auth/signup", s.handleSignup).Methods("POST")
	s.router.HandleFunc("/api/v1/auth/logout", s.handleLogout).Methods("POST")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)

	// Vehicle endpoints
	api.HandleFunc("/vehicles", s.handleListVehicles).Methods("GET")
	api.HandleFunc("/vehicles", s.handleCreateVehicle).Methods("POST")
	api.HandleFunc("/vehicles/status", s.handleBatchStatus).Methods("POST")
	api.HandleFunc("/vehicles/specs", s.handleVehicleSpecs).Methods("GET")
	api.HandleFunc("/vehicles/{id}", s.handleGetVehicle).Methods("GET")
	api.HandleFunc("/vehicles/{id}", s.handleUpdateVehicle).Methods("PUT")
	api.HandleFunc("/vehicles/{id}", s.handleDeleteVehicle).Methods("DELETE")
	api.HandleFunc("/vehicles/{id}/maintenance", s.handleScheduleMaintenance).Methods("POST")

	// Alert and notification endpoints
	api.HandleFunc("/alerts", s.handleListAlerts).Methods("GET")
	api.HandleFunc("/alerts/{id}", s.handleDismissAlert).Methods("DELETE")
	api.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	api.HandleFunc("/notifications", s.handleClearNotifications).Methods("DELETE")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods("POST")

	// Simulation control
	api.HandleFunc("/simulation", s.handleGetSimulation).Methods("GET")
	api.HandleFunc("/simulation", s.handleSetSimulation).Methods("PUT")

	// Route optimization
	api.HandleFunc("/routes/optimize", s.handleOptimizeRoute).Methods("POST")

	// Environment, maintenance and analytics endpoints
	api.HandleFunc("/environment", s.handleEnvironment).Methods("GET")
	api.HandleFunc("/maintenance", s.handleMaintenance).Methods("GET")
	api.HandleFunc("/analytics", s.handleAnalytics).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Export and live stream
	api.HandleFunc("/export/{dataset}", s.handleExport).Methods("GET")
	api.HandleFunc("/stream", s.handleStream).Methods("GET")

	// Add middleware
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// Middleware
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

// respondStoreError maps store lookup failures to 404
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, fleet.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// vehicleView decorates a vehicle with the derived fields the dashboard
// renders alongside the raw state.
type vehicleView struct {
	models.Vehicle
	StatusText        string                  `json:"status_text"`
	LocationName      string                  `json:"location_name"`
	MaintenanceStatus models.MaintenanceGrade `json:"maintenance_status"`
}

func (s *Server) viewOf(v models.Vehicle) vehicleView {
	return vehicleView{
		Vehicle:           v,
		StatusText:        v.Status.Display(),
		LocationName:      fleet.NearestCity(v.Location),
		MaintenanceStatus: s.store.Grade(v),
	}
}

func (s *Server) viewsOf(vehicles []models.Vehicle) []vehicleView {
	views := make([]vehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		views = append(views, s.viewOf(v))
	}
	return views
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vehicles := s.store.Search(q.Get("q"), q.Get("status"), q.Get("type"))
	respondJSON(w, http.StatusOK, s.viewsOf(vehicles))
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermManageFleet) {
		return
	}

	var in fleet.NewVehicleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if in.Type == "" {
		in.Type = models.TypeCar
	}
	if in.Status == "" {
		in.Status = models.StatusIdle
	}
	if msg, ok := validateVehicleInput(in); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	v := s.store.AddVehicle(in)
	s.store.Notify("Vehicle "+v.Name+" added to fleet", models.NotifySuccess)
	respondJSON(w, http.StatusCreated, s.viewOf(v))
}

func (s *Server) handleVehicleSpecs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.VehicleSpecs)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	v, err := s.store.Vehicle(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.viewOf(v))
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermManageFleet) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	var v models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	v.ID = id

	if !v.Type.Valid() {
		respondError(w, http.StatusBadRequest, "unknown vehicle type")
		return
	}
	if !v.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown vehicle status")
		return
	}

	if err := s.store.UpdateVehicle(v); err != nil {
		respondStoreError(w, err)
		return
	}
	s.store.Notify("Vehicle "+v.Name+" updated", models.NotifySuccess)
	respondJSON(w, http.StatusOK, s.viewOf(v))
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermManageFleet) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	v, err := s.store.DeleteVehicle(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.store.Notify("Vehicle "+v.Name+" removed from fleet", models.NotifyWarning)
	respondJSON(w, http.StatusOK, map[string]int{"deleted": id})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermManageFleet) {
		return
	}

	var body struct {
		Status models.VehicleStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !body.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown vehicle status")
		return
	}

	s.store.SetStatusAll(body.Status)
	s.store.Notify("All vehicles status updated to "+body.Status.Display(), models.NotifySuccess)
	respondJSON(w, http.StatusOK, s.viewsOf(s.store.Vehicles()))
}

func (s *Server) handleScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermManageFleet) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	var body struct {
		NextService string `json:"next_service"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := time.Parse("2006-01-02", body.NextService); err != nil {
		respondError(w, http.StatusBadRequest, "next_service must be YYYY-MM-DD")
		return
	}

	if err := s.store.ScheduleService(id, body.NextService); err != nil {
		respondStoreError(w, err)
		return
	}
	s.store.Notify("Maintenance scheduled for vehicle #"+strconv.Itoa(id), models.NotifyInfo)
	respondJSON(w, http.StatusOK, map[string]string{"next_service": body.NextService})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Alerts())
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := s.store.DismissAlert(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"dismissed": id})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Notifications())
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.store.ClearNotifications()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := s.store.MarkNotificationRead(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"read": id})
}

type simulationState struct {
	Enabled        bool  `json:"enabled"`
	TickIntervalMS int64 `json:"tick_interval_ms"`
	Ticks          int64 `json:"ticks"`
}

func (s *Server) simulationState() simulationState {
	return simulationState{
		Enabled:        s.sim.Enabled(),
		TickIntervalMS: s.sim.TickInterval().Milliseconds(),
		Ticks:          s.sim.Ticks(),
	}
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.simulationState())
}

func (s *Server) handleSetSimulation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.sim.SetEnabled(body.Enabled)
	if body.Enabled {
		s.store.Notify("Simulation mode enabled", models.NotifyInfo)
	} else {
		s.store.Notify("Simulation mode disabled", models.NotifyInfo)
	}
	respondJSON(w, http.StatusOK, s.simulationState())
}

func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermOptimizeRoutes) {
		return
	}

	var req models.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.VehicleType == "" {
		req.VehicleType = models.TypeCar
	}
	if !req.VehicleType.Valid() {
		respondError(w, http.StatusBadRequest, "unknown vehicle type")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityFastest
	}

	result := s.optimizer.Optimize(req, s.store.Weather(), s.store.Traffic())
	s.store.Notify("Route optimized successfully", models.NotifySuccess)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"weather": s.store.Weather(),
		"traffic": s.store.Traffic(),
	})
}

func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":  s.store.MaintenanceSummary(),
		"vehicles": s.viewsOf(s.store.Vehicles()),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Analytics())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requirePermission(w, r, models.PermExportData) {
		return
	}

	dataset := export.Dataset(mux.Vars(r)["dataset"])
	if !dataset.Valid() {
		respondError(w, http.StatusBadRequest, "unknown dataset")
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}
	if !format.Valid() {
		respondError(w, http.StatusBadRequest, "unknown format")
		return
	}

	if format == export.FormatPDF {
		// the dashboard only confirms PDF requests, no file is produced
		s.store.Notify(string(dataset)+" data exported as PDF", models.NotifySuccess)
		respondJSON(w, http.StatusOK, map[string]string{"status": "export acknowledged"})
		return
	}

	filename := s.exporter.Filename(dataset, format, time.Now())
	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := s.exporter.Write(w, dataset, format); err != nil {
		log.Error().Err(err).Str("dataset", string(dataset)).Msg("Export failed")
		return
	}
	s.store.Notify(string(dataset)+" data exported as "+string(format), models.NotifySuccess)
}

func validateVehicleInput(in fleet.NewVehicleInput) (string, bool) {
	if in.Name == "" {
		return "name is required", false
	}
	if in.LicensePlate == "" {
		return "license_plate is required", false
	}
	if !in.Type.Valid() {
		return "unknown vehicle type", false
	}
	if !in.Status.Valid() {
		return "unknown vehicle status", false
	}
	return "", true
}
