package notify

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/qstash"
)

type fakePublisher struct {
	destination string
	payload     any
	err         error
}

func (f *fakePublisher) PublishJSON(_ context.Context, destination string, v any) (qstash.PublishResponse, error) {
	f.destination = destination
	f.payload = v
	if f.err != nil {
		return qstash.PublishResponse{}, f.err
	}
	return qstash.PublishResponse{MessageID: "msg_1"}, nil
}

func TestQStashNotifierPublishesOrder(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n, err := NewQStashNotifier(pub, " https://shop.example/orders ")
	if err != nil {
		t.Fatalf("NewQStashNotifier() error = %v", err)
	}

	order := contractx.FinalizedOrder{SessionID: "s1", CustomerName: "Ana", TotalCents: 5400}
	if err := n.OrderFinalized(context.Background(), order); err != nil {
		t.Fatalf("OrderFinalized() error = %v", err)
	}
	if pub.destination != "https://shop.example/orders" {
		t.Fatalf("destination = %q", pub.destination)
	}
	got, ok := pub.payload.(contractx.FinalizedOrder)
	if !ok || got.SessionID != "s1" {
		t.Fatalf("payload = %#v", pub.payload)
	}
}

func TestQStashNotifierWrapsPublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	n, err := NewQStashNotifier(&fakePublisher{err: boom}, "dest")
	if err != nil {
		t.Fatalf("NewQStashNotifier() error = %v", err)
	}
	if err := n.OrderFinalized(context.Background(), contractx.FinalizedOrder{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
	if _, err := NewQStashNotifier(nil, "dest"); err == nil {
		t.Fatalf("NewQStashNotifier(nil) error = nil")
	}
	if _, err := NewQStashNotifier(&fakePublisher{}, ""); err == nil {
		t.Fatalf("NewQStashNotifier() without destination error = nil")
	}
}
