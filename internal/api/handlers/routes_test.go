package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transport-routing-service/internal/config"
	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/ports"
	"transport-routing-service/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouteRepo struct {
	routes map[uuid.UUID]*domain.Route
}

func (f *fakeRouteRepo) GetRoute(_ context.Context, id uuid.UUID) (*domain.Route, error) {
	route, ok := f.routes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return route, nil
}

func (f *fakeRouteRepo) ListRoutesByState(_ context.Context, state domain.RouteState) ([]*domain.Route, error) {
	var out []*domain.Route
	for _, r := range f.routes {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRouteRepo) SaveRoute(_ context.Context, route *domain.Route) error {
	f.routes[route.ID] = route
	return nil
}

func (f *fakeRouteRepo) SavePartition(_ context.Context, parent *domain.Route, subRoutes []*domain.Route) error {
	f.routes[parent.ID] = parent
	for _, sub := range subRoutes {
		f.routes[sub.ID] = sub
	}
	return nil
}

type fakeShipmentRepo struct{}

func (fakeShipmentRepo) ListByRoute(context.Context, uuid.UUID) ([]*domain.Shipment, error) {
	return nil, nil
}

func (fakeShipmentRepo) SaveSplits(context.Context, []ports.ShipmentSplit, []*domain.RouteStop, []*domain.RouteStop) error {
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) Locate(context.Context, uuid.UUID) (domain.CustomerLocation, error) {
	return domain.CustomerLocation{}, domain.ErrNotFound
}

func newTestHandler(routes ...*domain.Route) (*RouteHandler, *fakeRouteRepo) {
	repo := &fakeRouteRepo{routes: map[uuid.UUID]*domain.Route{}}
	for _, r := range routes {
		repo.routes[r.ID] = r
	}
	planner := services.NewPlanner(repo, fakeShipmentRepo{}, fakeDirectory{}, config.DefaultPlanning())
	return &RouteHandler{Repo: repo, Planner: planner}, repo
}

func testRoute() *domain.Route {
	stop := &domain.RouteStop{
		ID:            uuid.New(),
		Sequence:      1,
		CustomerID:    uuid.New(),
		CustomerName:  "Bakkerij De Molen",
		City:          "Rotterdam",
		WeightKg:      180,
		VolumeM3:      1.2,
		DeliveryCount: 2,
		State:         domain.StopPending,
	}
	return &domain.Route{
		ID:    uuid.New(),
		Name:  "ZH-MAANDAG-01",
		State: domain.RouteDraft,
		Vehicle: &domain.Vehicle{
			ID:          uuid.New(),
			Name:        "VAN-01",
			MaxWeightKg: 1200,
			MaxVolumeM3: 9,
		},
		Stops: []*domain.RouteStop{stop},
	}
}

func TestGetRoute(t *testing.T) {
	route := testRoute()
	h, _ := newTestHandler(route)

	req := httptest.NewRequest(http.MethodGet, "/routes/"+route.ID.String(), nil)
	req.SetPathValue("id", route.ID.String())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RouteID     uuid.UUID `json:"route_id"`
		Name        string    `json:"name"`
		VehicleName string    `json:"vehicle_name"`
		TotalWeight float64   `json:"total_weight_kg"`
		Stops       []struct {
			CustomerName string `json:"customer_name"`
		} `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, route.ID, body.RouteID)
	assert.Equal(t, "ZH-MAANDAG-01", body.Name)
	assert.Equal(t, "VAN-01", body.VehicleName)
	assert.Equal(t, 180.0, body.TotalWeight)
	require.Len(t, body.Stops, 1)
	assert.Equal(t, "Bakkerij De Molen", body.Stops[0].CustomerName)
}

func TestGetRouteNotFound(t *testing.T) {
	h, _ := newTestHandler()

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/routes/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRouteBadID(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/routes/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionConfirmsDraft(t *testing.T) {
	route := testRoute()
	h, repo := newTestHandler(route)

	req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID.String()+"/transition",
		strings.NewReader(`{"state":"confirmed"}`))
	req.SetPathValue("id", route.ID.String())
	rec := httptest.NewRecorder()

	h.Transition(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RouteConfirmed, repo.routes[route.ID].State)
}

func TestTransitionRejectsSkip(t *testing.T) {
	route := testRoute()
	h, repo := newTestHandler(route)

	req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID.String()+"/transition",
		strings.NewReader(`{"state":"delivered"}`))
	req.SetPathValue("id", route.ID.String())
	rec := httptest.NewRecorder()

	h.Transition(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.RouteDraft, repo.routes[route.ID].State)
}

func TestTransitionRejectsUnknownField(t *testing.T) {
	route := testRoute()
	h, _ := newTestHandler(route)

	req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID.String()+"/transition",
		strings.NewReader(`{"state":"confirmed","bogus":true}`))
	req.SetPathValue("id", route.ID.String())
	rec := httptest.NewRecorder()

	h.Transition(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSplitFitsReportsNoAction(t *testing.T) {
	route := testRoute()
	h, _ := newTestHandler(route)

	req := httptest.NewRequest(http.MethodPost, "/routes/"+route.ID.String()+"/split", nil)
	req.SetPathValue("id", route.ID.String())
	rec := httptest.NewRecorder()

	h.SplitForCapacity(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Disposition string `json:"disposition"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.DispositionNoAction), body.Disposition)
}
