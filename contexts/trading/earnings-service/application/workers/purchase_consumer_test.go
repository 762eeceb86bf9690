package workers

import (
	"context"
	"testing"
	"time"

	"inflectiv/contexts/trading/earnings-service/adapters/memory"
	"inflectiv/contexts/trading/earnings-service/application"
	"inflectiv/contexts/trading/earnings-service/ports"
)

type fakeSubscriber struct {
	topic   string
	group   string
	handler func(context.Context, ports.EventEnvelope) error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topic string, consumerGroup string, handler func(context.Context, ports.EventEnvelope) error) error {
	f.topic = topic
	f.group = consumerGroup
	f.handler = handler
	return nil
}

func purchaseEnvelope(eventID string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     "marketplace.purchase.completed",
		OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceService: "marketplace",
		SchemaVersion: 1,
		Data: []byte(`{
			"listing_id": "mkt-1",
			"asset_handle": 1,
			"buyer": "buyer",
			"seller": "creator",
			"unit_count": 10,
			"total_price": 10000000,
			"platform_fee": 250000,
			"royalty_amount": 500000,
			"royalty_receiver": "creator",
			"seller_proceeds": 9250000
		}`),
	}
}

func TestPurchaseConsumerRecordsDeliveredEvents(t *testing.T) {
	store := memory.NewStore()
	service := application.Service{Repo: store}
	subscriber := &fakeSubscriber{}
	consumer := PurchaseConsumer{Subscriber: subscriber, Service: service}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if subscriber.topic != "marketplace.purchase.completed" {
		t.Fatalf("unexpected topic %q", subscriber.topic)
	}
	if subscriber.group == "" {
		t.Fatal("expected a default consumer group")
	}

	if err := subscriber.handler(context.Background(), purchaseEnvelope("evt-1")); err != nil {
		t.Fatalf("handle purchase: %v", err)
	}
	// Redelivery of the same event id must not double-count.
	if err := subscriber.handler(context.Background(), purchaseEnvelope("evt-1")); err != nil {
		t.Fatalf("handle redelivery: %v", err)
	}

	summary, err := service.Summary(context.Background(), "creator")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.SalesCount != 1 {
		t.Fatalf("expected one sale, got %d", summary.SalesCount)
	}
	if summary.ProceedsEarned != 9_250_000 || summary.RoyaltiesEarned != 500_000 {
		t.Fatalf("unexpected earnings: %+v", summary)
	}
}

func TestPurchaseConsumerRejectsMalformedPayload(t *testing.T) {
	store := memory.NewStore()
	service := application.Service{Repo: store}
	subscriber := &fakeSubscriber{}
	consumer := PurchaseConsumer{Subscriber: subscriber, Service: service}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	envelope := purchaseEnvelope("evt-bad")
	envelope.Data = []byte(`{"listing_id":`)
	if err := subscriber.handler(context.Background(), envelope); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}

	transactions, err := service.ListTransactions(context.Background(), "creator")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("expected no recorded transactions, got %d", len(transactions))
	}
}
