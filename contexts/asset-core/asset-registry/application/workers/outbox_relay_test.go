package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"inflectiv/contexts/asset-core/asset-registry/ports"
)

type fakeOutbox struct {
	pending []ports.OutboxMessage
	sent    []string
}

func (f *fakeOutbox) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeOutbox) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	f.sent = append(f.sent, outboxID)
	return nil
}

type fakePublisher struct {
	topics    []string
	envelopes []ports.EventEnvelope
	failOn    string
}

func (f *fakePublisher) Publish(_ context.Context, topic string, envelope ports.EventEnvelope) error {
	if f.failOn != "" && envelope.EventID == f.failOn {
		return errors.New("broker unavailable")
	}
	f.topics = append(f.topics, topic)
	f.envelopes = append(f.envelopes, envelope)
	return nil
}

func pendingRows() []ports.OutboxMessage {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []ports.OutboxMessage{
		{OutboxID: "evt-1", EventType: "asset.registered", PartitionKey: "1", Payload: []byte(`{"handle":1}`), CreatedAt: created},
		{OutboxID: "evt-2", EventType: "asset.registered", PartitionKey: "2", Payload: []byte(`{"handle":2}`), CreatedAt: created},
	}
}

func TestOutboxRelayPublishesPendingAndMarksSent(t *testing.T) {
	outbox := &fakeOutbox{pending: pendingRows()}
	publisher := &fakePublisher{}
	relay := OutboxRelay{Outbox: outbox, Publisher: publisher, BatchSize: 10}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected 2 published envelopes, got %d", len(publisher.envelopes))
	}
	for i, envelope := range publisher.envelopes {
		if publisher.topics[i] != envelope.EventType {
			t.Fatalf("expected topic to follow event type, got %q vs %q", publisher.topics[i], envelope.EventType)
		}
		if envelope.SourceService != "asset-registry" || envelope.SchemaVersion != 1 {
			t.Fatalf("unexpected envelope metadata: %+v", envelope)
		}
	}
	if publisher.envelopes[0].EventID != "evt-1" || publisher.envelopes[1].EventID != "evt-2" {
		t.Fatalf("expected outbox ids as event ids, got %+v", publisher.envelopes)
	}
	if len(outbox.sent) != 2 {
		t.Fatalf("expected both rows marked sent, got %v", outbox.sent)
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	outbox := &fakeOutbox{pending: pendingRows()}
	publisher := &fakePublisher{failOn: "evt-2"}
	relay := OutboxRelay{Outbox: outbox, Publisher: publisher, BatchSize: 10}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish failure to surface")
	}
	if len(outbox.sent) != 1 || outbox.sent[0] != "evt-1" {
		t.Fatalf("expected only the delivered row marked sent, got %v", outbox.sent)
	}
}
