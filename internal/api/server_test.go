package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurofleetx/internal/auth"
	"neurofleetx/internal/config"
	"neurofleetx/internal/export"
	"neurofleetx/internal/fleet"
	"neurofleetx/internal/models"
	"neurofleetx/internal/routing"
	"neurofleetx/internal/sim"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*Server, *fleet.Store) {
	t.Helper()
	cfg := config.Load()
	store := fleet.New(cfg, fleet.WithRand(rand.New(rand.NewSource(1))))
	store.SeedDemo()

	hub := NewHub()
	simulator := sim.New(store, cfg, sim.WithRand(rand.New(rand.NewSource(1))), sim.WithOnTick(hub.Broadcast))
	srv := NewServer(store, simulator, auth.New(cfg), routing.New(rand.New(rand.NewSource(1))), export.New(store), hub)
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func login(t *testing.T, srv *Server, email, password string) string {
	t.Helper()
	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/vehicles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/vehicles", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndListVehicles(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/vehicles", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []struct {
		models.Vehicle
		StatusText        string `json:"status_text"`
		LocationName      string `json:"location_name"`
		MaintenanceStatus string `json:"maintenance_status"`
	}
	decode(t, w, &views)
	require.Len(t, views, 6)
	assert.Equal(t, "In Use", views[0].StatusText)
	assert.Equal(t, "New Delhi", views[0].LocationName)
	assert.Equal(t, "Critical", views[2].MaintenanceStatus)
}

func TestLoginFailureMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@neurofleetx.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w, nil)
	assert.Contains(t, env.Error, "2 attempts remaining")
}

func TestLoginLockout(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "admin@neurofleetx.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@neurofleetx.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusLocked, w.Code)

	// correct credentials are rejected while locked
	w = doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@neurofleetx.com", "password": "admin123",
	})
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestSignup(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "New User", "email": "new@neurofleetx.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, w, &data)
	assert.Equal(t, models.RoleViewer, data.User.Role)

	// the fresh session works immediately
	list := doRequest(t, srv, http.MethodGet, "/api/v1/vehicles", data.Token, nil)
	assert.Equal(t, http.StatusOK, list.Code)

	dup := doRequest(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Imposter", "email": "new@neurofleetx.com", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/vehicles", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateVehicle(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/vehicles", token, map[string]string{
		"name": "Tata Ace EV", "type": "truck", "license_plate": "DL05XY9999",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var v models.Vehicle
	decode(t, w, &v)
	assert.Equal(t, 7, v.ID)
	assert.Equal(t, 100.0, v.Battery)
	assert.Len(t, store.Vehicles(), 7)

	ns := store.Notifications()
	require.NotEmpty(t, ns)
	assert.Equal(t, "Vehicle Tata Ace EV added to fleet", ns[0].Message)
}

func TestCreateVehicleValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/vehicles", token, map[string]string{
		"type": "truck", "license_plate": "DL05XY9999",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/api/v1/vehicles", token, map[string]string{
		"name": "Bad", "type": "hovercraft", "license_plate": "X",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewerCannotMutateFleet(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/vehicles", token, map[string]string{
		"name": "Nope", "type": "car", "license_plate": "X",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/vehicles/1", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// reads are still allowed
	w = doRequest(t, srv, http.MethodGet, "/api/v1/vehicles/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAndDeleteVehicle(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "manager@neurofleetx.com", "manager123")

	v, err := store.Vehicle(2)
	require.NoError(t, err)
	v.Driver = "Replacement Driver"

	w := doRequest(t, srv, http.MethodPut, "/api/v1/vehicles/2", token, v)
	require.Equal(t, http.StatusOK, w.Code)
	got, err := store.Vehicle(2)
	require.NoError(t, err)
	assert.Equal(t, "Replacement Driver", got.Driver)

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/vehicles/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.Vehicles(), 5)
	assert.Equal(t, "Vehicle Mahindra eVerito removed from fleet", store.Notifications()[0].Message)

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/vehicles/2", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatchStatus(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/vehicles/status", token, map[string]string{"status": "in_use"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, v := range store.Vehicles() {
		assert.Equal(t, models.StatusInUse, v.Status)
	}

	w = doRequest(t, srv, http.MethodPost, "/api/v1/vehicles/status", token, map[string]string{"status": "flying"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleMaintenance(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/vehicles/3/maintenance", token,
		map[string]string{"next_service": "2024-07-01"})
	require.Equal(t, http.StatusOK, w.Code)
	v, err := store.Vehicle(3)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", v.NextService)

	w = doRequest(t, srv, http.MethodPost, "/api/v1/vehicles/3/maintenance", token,
		map[string]string{"next_service": "July 1st"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVehicleSpecs(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/vehicles/specs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var specs map[models.VehicleType]models.VehicleSpec
	decode(t, w, &specs)
	assert.Equal(t, 120.0, specs[models.TypeCar].MaxSpeed)
}

func TestAlertLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/alerts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []models.Alert
	decode(t, w, &alerts)
	require.Len(t, alerts, 2)

	id := strconv.FormatInt(alerts[0].ID, 10)
	w = doRequest(t, srv, http.MethodDelete, "/api/v1/alerts/"+id, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.Alerts(), 1)

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/alerts/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "admin@neurofleetx.com", "admin123")

	// login itself raised the welcome notification
	w := doRequest(t, srv, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ns []models.Notification
	decode(t, w, &ns)
	require.NotEmpty(t, ns)
	assert.Equal(t, "Welcome back, Admin User!", ns[0].Message)

	id := strconv.FormatInt(ns[0].ID, 10)
	w = doRequest(t, srv, http.MethodPost, "/api/v1/notifications/"+id+"/read", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.Notifications()[0].Read)

	w = doRequest(t, srv, http.MethodDelete, "/api/v1/notifications", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.Notifications())
}

func TestSimulationToggle(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/simulation", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Enabled        bool  `json:"enabled"`
		TickIntervalMS int64 `json:"tick_interval_ms"`
	}
	decode(t, w, &state)
	assert.False(t, state.Enabled)
	assert.Equal(t, int64(3000), state.TickIntervalMS)

	w = doRequest(t, srv, http.MethodPut, "/api/v1/simulation", token, map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.True(t, state.Enabled)
	assert.Equal(t, "Simulation mode enabled", store.Notifications()[0].Message)
}

func TestOptimizeRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "operator@neurofleetx.com", "operator123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/routes/optimize", token, map[string]string{
		"origin": "Delhi", "destination": "Gurugram", "vehicle_type": "van",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.RouteResult
	decode(t, w, &result)
	assert.Equal(t, models.TypeVan, result.RecommendedVehicle)
	assert.Len(t, result.Waypoints, 3)
	assert.GreaterOrEqual(t, result.DistanceKM, 20)
}

func TestOptimizeRouteForbiddenForViewer(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/routes/optimize", token, map[string]string{
		"origin": "Delhi", "destination": "Gurugram",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnvironmentAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/environment", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Weather models.Weather `json:"weather"`
		Traffic models.Traffic `json:"traffic"`
	}
	decode(t, w, &env)
	assert.Equal(t, "Partly Cloudy", env.Weather.Condition)
	assert.Equal(t, models.CongestionModerate, env.Traffic.CongestionLevel)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analytics models.Analytics
	decode(t, w, &analytics)
	assert.Equal(t, 345, analytics.TripsCompleted)
	assert.Equal(t, 2, analytics.ActiveVehicles)
}

func TestMaintenanceSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/maintenance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Summary []fleet.GradeCount `json:"summary"`
	}
	decode(t, w, &data)
	require.Len(t, data.Summary, 3)
	assert.Equal(t, 4, data.Summary[0].Count)
}

func TestExportEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv, "manager@neurofleetx.com", "manager123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/export/fleet?format=json", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fleet_data_")
	var vehicles []models.Vehicle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vehicles))
	assert.Len(t, vehicles, 6)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/export/maintenance?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	w = doRequest(t, srv, http.MethodGet, "/api/v1/export/analytics?format=pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "analytics data exported as PDF", store.Notifications()[0].Message)

	w = doRequest(t, srv, http.MethodGet, "/api/v1/export/bogus?format=json", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportForbiddenWithoutPermission(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "operator@neurofleetx.com", "operator123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/export/fleet?format=json", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "viewer@neurofleetx.com", "viewer123")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]float64
	decode(t, w, &stats)
	assert.Equal(t, 6.0, stats["total_vehicles"])
	assert.Equal(t, 2.0, stats["active_trips"])
	assert.Equal(t, 2.0, stats["open_alerts"])
}
