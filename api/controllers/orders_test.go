package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	ordersvc "github.com/skeeper75/widget.creator-sub002/internal/orders"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	pkgerrors "github.com/skeeper75/widget.creator-sub002/pkg/errors"
)

type stubOrderService struct {
	confirm func(ctx context.Context, input ordersvc.ConfirmOrderInput) (*ordersvc.OrderResponse, error)
	get     func(ctx context.Context, orderCode string) (*ordersvc.OrderResponse, error)
	list    func(ctx context.Context, params ordersvc.ListOrdersParams) (*ordersvc.ListOrdersResult, error)
}

func (s *stubOrderService) Confirm(ctx context.Context, input ordersvc.ConfirmOrderInput) (*ordersvc.OrderResponse, error) {
	if s.confirm != nil {
		return s.confirm(ctx, input)
	}
	return &ordersvc.OrderResponse{}, nil
}

func (s *stubOrderService) Get(ctx context.Context, orderCode string) (*ordersvc.OrderResponse, error) {
	if s.get != nil {
		return s.get(ctx, orderCode)
	}
	return &ordersvc.OrderResponse{}, nil
}

func (s *stubOrderService) List(ctx context.Context, params ordersvc.ListOrdersParams) (*ordersvc.ListOrdersResult, error) {
	if s.list != nil {
		return s.list(ctx, params)
	}
	return &ordersvc.ListOrdersResult{}, nil
}

func TestCreateOrderReturnsCreatedSnapshot(t *testing.T) {
	clientTotal := decimal.NewFromInt(70000)
	svc := &stubOrderService{
		confirm: func(ctx context.Context, input ordersvc.ConfirmOrderInput) (*ordersvc.OrderResponse, error) {
			if input.ProductID != 12 {
				t.Fatalf("unexpected product id %d", input.ProductID)
			}
			if input.ClientTotal == nil || !input.ClientTotal.Equal(clientTotal) {
				t.Fatalf("client total not forwarded")
			}
			return &ordersvc.OrderResponse{
				OrderCode:  "ORD-20260831-0001",
				Status:     enums.OrderStatusConfirmed,
				TotalPrice: clientTotal,
			}, nil
		},
	}

	handler := CreateOrder(svc, testLogger())
	body := `{"product_id":12,"selections":{"quantity":200},"client_total":"70000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data ordersvc.OrderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderCode != "ORD-20260831-0001" {
		t.Fatalf("unexpected order code %q", envelope.Data.OrderCode)
	}
}

func TestCreateOrderSurfacesConstraintViolations(t *testing.T) {
	svc := &stubOrderService{
		confirm: func(ctx context.Context, input ordersvc.ConfirmOrderInput) (*ordersvc.OrderResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConstraintViolation, "configuration violates product constraints").
				WithDetails(map[string]any{"violations": []string{"paper incompatible with coating"}})
		},
	}

	handler := CreateOrder(svc, testLogger())
	body := `{"product_id":12,"selections":{"quantity":200}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "CONSTRAINT_VIOLATION" {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
	if envelope.Error.Details["violations"] == nil {
		t.Fatalf("expected violation details in payload")
	}
}

func TestListOrdersParsesFilters(t *testing.T) {
	svc := &stubOrderService{
		list: func(ctx context.Context, params ordersvc.ListOrdersParams) (*ordersvc.ListOrdersResult, error) {
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if params.Offset != 10 {
				t.Fatalf("unexpected offset %d", params.Offset)
			}
			if params.Status == nil || *params.Status != enums.OrderStatusConfirmed {
				t.Fatalf("status filter not parsed")
			}
			return &ordersvc.ListOrdersResult{
				Items: []ordersvc.OrderResponse{{OrderCode: "ORD-20260831-0042"}},
				Total: 1,
			}, nil
		},
	}

	handler := ListOrders(svc, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&offset=10&status=confirmed", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data ordersvc.ListOrdersResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != 1 || len(envelope.Data.Items) != 1 {
		t.Fatalf("unexpected list payload")
	}
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	handler := ListOrders(&stubOrderService{}, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=bogus", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetOrderByCode(t *testing.T) {
	svc := &stubOrderService{
		get: func(ctx context.Context, orderCode string) (*ordersvc.OrderResponse, error) {
			if orderCode != "ORD-20260831-0007" {
				t.Fatalf("unexpected order code %q", orderCode)
			}
			return &ordersvc.OrderResponse{OrderCode: orderCode}, nil
		},
	}

	handler := GetOrder(svc, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ORD-20260831-0007", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderCode", "ORD-20260831-0007")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubOrderService{
		get: func(ctx context.Context, orderCode string) (*ordersvc.OrderResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}

	handler := GetOrder(svc, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ORD-00000000-0000", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderCode", "ORD-00000000-0000")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
