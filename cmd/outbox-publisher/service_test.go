package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/skeeper75/widget.creator-sub002/pkg/config"
	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/outbox"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublishResult struct {
	id  string
	err error
}

func (r *fakePublishResult) Get(context.Context) (string, error) {
	return r.id, r.err
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return &fakePublishResult{id: "msg-1", err: p.err}
}

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error {
	return nil
}

func (fakePubSub) Publisher(string) *gcppubsub.Publisher {
	return nil
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error {
	return nil
}

func newOutboxTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.PubSub.OrdersTopic = "wc-order-events"
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 3
	cfg.Outbox.PollIntervalMS = 5

	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:         fakeDB{},
		PubSub:     fakePubSub{},
		Repository: repo,
		PublisherFactory: func(topic string) publisher {
			if topic != "wc-order-events" {
				t.Fatalf("unexpected topic %q", topic)
			}
			return pub
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testEvent(t *testing.T, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()

	envelope := outbox.PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Source:  "test",
		Data:    json.RawMessage(`{"order_code":"ORD-20260831-0001"}`),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := testEvent(t, enums.EventOrderCreated)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newOutboxTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to be processed")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Attributes["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute")
	}
	if msg.Attributes["event_id"] == "" {
		t.Fatalf("expected event_id attribute from envelope")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("event not marked published")
	}
	if len(repo.failed) != 0 {
		t.Fatalf("no failures expected")
	}
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	bad := testEvent(t, enums.EventOrderCreated)
	repo := &fakeRepo{events: []models.OutboxEvent{bad}}
	pub := &fakePublisher{err: errors.New("topic unavailable")}
	svc := newOutboxTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to be processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != bad.ID {
		t.Fatalf("event not marked failed")
	}
	if len(repo.published) != 0 {
		t.Fatalf("failed event must not be marked published")
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	repo := &fakeRepo{}
	svc := newOutboxTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatalf("empty batch must not count as processed")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	svc := newOutboxTestService(t, repo, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	current := base
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff capped at %v, got %v", maxBackoff, current)
	}
}
