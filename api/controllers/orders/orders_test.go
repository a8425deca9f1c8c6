package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crumbhq/crumb-backend/api/middleware"
	internalorders "github.com/crumbhq/crumb-backend/internal/orders"
	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/crumbhq/crumb-backend/pkg/enums"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

type stubOrdersService struct {
	listParams  internalorders.ListParams
	statusInput internalorders.UpdateStatusInput
	statusErr   error
	order       *models.Order
	getErr      error
}

func (s *stubOrdersService) Place(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error) {
	s.statusInput = input
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &models.Order{ID: input.OrderID, BakeryID: input.BakeryID, Status: enums.OrderStatus(input.Status)}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.getErr
}

func (s *stubOrdersService) ListForBakery(ctx context.Context, params internalorders.ListParams) (*internalorders.ListResult, error) {
	s.listParams = params
	return &internalorders.ListResult{Orders: []models.Order{}, NextCursor: "next"}, nil
}

func newOrdersRouter(svc internalorders.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/orders/{orderId}", Detail(svc, nil))
	r.Route("/bakeries/{bakeryId}", func(r chi.Router) {
		r.Use(middleware.BakeryContext(nil))
		r.Get("/orders", List(svc, nil))
		r.Patch("/orders/{orderId}/status", UpdateStatus(svc, nil))
	})
	return r
}

func TestListParsesFiltersAndPaging(t *testing.T) {
	svc := &stubOrdersService{}
	bakeryID := uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bakeries/"+bakeryID.String()+"/orders?status=ready&payment_status=PAID&limit=5&cursor=abc", nil)
	newOrdersRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	params := svc.listParams
	if params.BakeryID != bakeryID || params.Page.Limit != 5 || params.Page.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.Filters.Status == nil || *params.Filters.Status != enums.OrderStatusReady {
		t.Fatalf("expected READY status filter, got %v", params.Filters.Status)
	}
	if params.Filters.PaymentStatus == nil || *params.Filters.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID filter, got %v", params.Filters.PaymentStatus)
	}
	if !strings.Contains(rec.Body.String(), `"next_cursor":"next"`) {
		t.Fatalf("expected next cursor in body, got %s", rec.Body.String())
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bakeries/"+uuid.NewString()+"/orders?status=BAKING", nil)
	newOrdersRouter(&stubOrdersService{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateStatusPassesOwnership(t *testing.T) {
	svc := &stubOrdersService{}
	bakeryID, orderID := uuid.New(), uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/bakeries/"+bakeryID.String()+"/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"CONFIRMED"}`))
	newOrdersRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.statusInput.BakeryID != bakeryID || svc.statusInput.OrderID != orderID || svc.statusInput.Status != "CONFIRMED" {
		t.Fatalf("unexpected input %+v", svc.statusInput)
	}
}

func TestUpdateStatusIllegalTransitionIs422(t *testing.T) {
	svc := &stubOrdersService{statusErr: pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithDetails(map[string]any{"from": "COMPLETED", "to": "PENDING", "allowed": []string{}})}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/bakeries/"+uuid.NewString()+"/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"PENDING"}`))
	newOrdersRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeStateConflict) || body.Error.Details["from"] != "COMPLETED" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
}

func TestDetail(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{order: &models.Order{ID: orderID, OrderNumber: "CMD-20260301-ABCDEF"}}
	rec := httptest.NewRecorder()
	newOrdersRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "CMD-20260301-ABCDEF") {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	svc.order, svc.getErr = nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	rec = httptest.NewRecorder()
	newOrdersRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
