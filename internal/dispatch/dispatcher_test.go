package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

type fakeResult struct {
	id  string
	err error
}

func (r fakeResult) Get(ctx context.Context) (string, error) { return r.id, r.err }

type fakePublisher struct {
	published []*gcppubsub.Message
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.published = append(p.published, msg)
	return fakeResult{id: "msg-1", err: p.err}
}

func testOrder() *models.Order {
	return &models.Order{
		OrderCode:     "ORD-20260831-0001",
		ProductID:     1,
		RecipeVersion: 3,
		Selections:    types.Selections{"quantity": types.Number(200)},
		TotalPrice:    decimal.NewFromInt(70000),
	}
}

func TestDispatchPublishesProductionOrder(t *testing.T) {
	pub := &fakePublisher{}
	d := newDispatcherWithPublisher(pub, nil, nil)

	require.NoError(t, d.Dispatch(context.Background(), testOrder(), "HX-4417"))
	require.Len(t, pub.published, 1)

	msg := pub.published[0]
	assert.Equal(t, "ORD-20260831-0001", msg.Attributes["order_code"])
	assert.Equal(t, "HX-4417", msg.Attributes["external_production_code"])

	var payload ProductionOrder
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "HX-4417", payload.ExternalProductionCode)
	assert.Equal(t, int64(1), payload.ProductID)
	assert.True(t, payload.TotalPrice.Equal(decimal.NewFromInt(70000)))
}

func TestDispatchReturnsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	d := newDispatcherWithPublisher(pub, nil, nil)

	err := d.Dispatch(context.Background(), testOrder(), "HX-4417")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestDispatchRequiresOrder(t *testing.T) {
	d := newDispatcherWithPublisher(&fakePublisher{}, nil, nil)
	require.Error(t, d.Dispatch(context.Background(), nil, "HX-4417"))
}
