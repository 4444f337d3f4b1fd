// Package notify delivers finalized orders outside the dialogue service.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/qstash"
)

type Publisher interface {
	PublishJSON(ctx context.Context, destination string, v any) (qstash.PublishResponse, error)
}

// QStashNotifier publishes each finalized order to a QStash destination.
type QStashNotifier struct {
	publisher   Publisher
	destination string
}

var _ contractx.OrderNotifier = (*QStashNotifier)(nil)

func NewQStashNotifier(publisher Publisher, destination string) (*QStashNotifier, error) {
	if publisher == nil {
		return nil, errors.New("qstash publisher is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashNotifier{publisher: publisher, destination: destination}, nil
}

func (n *QStashNotifier) OrderFinalized(ctx context.Context, order contractx.FinalizedOrder) error {
	resp, err := n.publisher.PublishJSON(ctx, n.destination, order)
	if err != nil {
		return fmt.Errorf("publish finalized order: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("message_id", resp.MessageID).
		Int64("total_cents", order.TotalCents).
		Msg("finalized order published")
	return nil
}

// LogNotifier only logs finalized orders.
type LogNotifier struct{}

var _ contractx.OrderNotifier = LogNotifier{}

func (LogNotifier) OrderFinalized(ctx context.Context, order contractx.FinalizedOrder) error {
	zerolog.Ctx(ctx).Info().
		Str("customer", order.CustomerName).
		Int("lines", len(order.Lines)).
		Int64("total_cents", order.TotalCents).
		Msg("order finalized")
	return nil
}
