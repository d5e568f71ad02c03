package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ordersvc "github.com/skeeper75/widget.creator-sub002/internal/orders"
	quotesvc "github.com/skeeper75/widget.creator-sub002/internal/quotes"
	"github.com/skeeper75/widget.creator-sub002/pkg/config"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubQuoteService struct{}

func (stubQuoteService) Quote(ctx context.Context, input quotesvc.QuoteInput) (*quotesvc.QuoteResult, error) {
	return &quotesvc.QuoteResult{IsValid: true}, nil
}

func (stubQuoteService) Compute(ctx context.Context, input quotesvc.QuoteInput) (*quotesvc.Computation, error) {
	return nil, nil
}

func (stubQuoteService) Recent(ctx context.Context, productID int64, limit int) ([]quotesvc.RecentQuote, error) {
	return []quotesvc.RecentQuote{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Confirm(ctx context.Context, input ordersvc.ConfirmOrderInput) (*ordersvc.OrderResponse, error) {
	return &ordersvc.OrderResponse{OrderCode: "ORD-20260831-0001"}, nil
}

func (stubOrdersService) Get(ctx context.Context, orderCode string) (*ordersvc.OrderResponse, error) {
	return &ordersvc.OrderResponse{OrderCode: orderCode}, nil
}

func (stubOrdersService) List(ctx context.Context, params ordersvc.ListOrdersParams) (*ordersvc.ListOrdersResult, error) {
	return &ordersvc.ListOrdersResult{}, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(Deps{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:     stubPinger{},
		PubSub: stubPinger{},
		Quotes: stubQuoteService{},
		Orders: stubOrdersService{},
	})
}

func TestRouterDispatch(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "health live", method: http.MethodGet, path: "/health/live", want: http.StatusOK},
		{name: "health ready", method: http.MethodGet, path: "/health/ready", want: http.StatusOK},
		{name: "quote", method: http.MethodPost, path: "/api/v1/quotes", body: `{"product_id":1,"selections":{"quantity":100}}`, want: http.StatusOK},
		{name: "recent quotes", method: http.MethodGet, path: "/api/v1/quotes/recent?product_id=1", want: http.StatusOK},
		{name: "create order", method: http.MethodPost, path: "/api/v1/orders", body: `{"product_id":1,"selections":{"quantity":100}}`, want: http.StatusCreated},
		{name: "list orders", method: http.MethodGet, path: "/api/v1/orders", want: http.StatusOK},
		{name: "order detail", method: http.MethodGet, path: "/api/v1/orders/ORD-20260831-0001", want: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/bogus", want: http.StatusNotFound},
		{name: "metrics disabled without gatherer", method: http.MethodGet, path: "/metrics", want: http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRouterEnvHeader(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-WidgetCreator-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}
