package contract

import "context"

// CatalogQuery is the read-only view of the product catalog.
type CatalogQuery interface {
	ListFlavors(ctx context.Context) ([]RawFlavor, error)
}

// Oracle is the natural-language understanding service. Both calls are
// stateless; an empty or garbled reply means "no result", not an error.
type Oracle interface {
	ClassifyIntent(ctx context.Context, lastUserMessage string) (string, error)
	ExtractField(ctx context.Context, excerpt string, instructions string) (string, error)
}

type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, lastUserMessage string) (string, error)
}

type QuantityExtractor interface {
	ExtractQuantity(ctx context.Context, phrase string) Quantity
	ExtractRemoval(ctx context.Context, phrase string) (Removal, bool)
}

// SlotExtractor pulls one profile field out of the recent conversation.
type SlotExtractor interface {
	ExtractName(ctx context.Context, req SlotRequest) (string, bool)
	ExtractAddress(ctx context.Context, req SlotRequest) (string, bool)
	ExtractPayment(ctx context.Context, req SlotRequest) (string, bool)
}

// OrderNotifier receives finalized orders.
type OrderNotifier interface {
	OrderFinalized(ctx context.Context, order FinalizedOrder) error
}
