package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

const (
	DefaultThreshold = 0.55
	DefaultTimeout   = 3 * time.Second
)

// Entry is a catalog flavor with a validated price.
type Entry struct {
	Name        string       `json:"name"`
	Price       statex.Money `json:"price"`
	Ingredients string       `json:"ingredients,omitempty"`
}

type ResolverOption func(*Resolver)

func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithThreshold(th float64) ResolverOption {
	return func(r *Resolver) {
		if th > 0 && th <= 1 {
			r.threshold = th
		}
	}
}

// Resolver maps free-text flavor phrases onto canonical catalog entries.
type Resolver struct {
	query     contractx.CatalogQuery
	timeout   time.Duration
	threshold float64
}

func NewResolver(query contractx.CatalogQuery, opts ...ResolverOption) (*Resolver, error) {
	if query == nil {
		return nil, errors.New("catalog query is required")
	}
	r := &Resolver{
		query:     query,
		timeout:   DefaultTimeout,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Entries lists every flavor with a parseable price, in catalog order.
func (r *Resolver) Entries(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.query.ListFlavors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrCatalogUnavailable, err)
	}

	logger := zerolog.Ctx(ctx)
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		price, err := statex.ParseMoney(row.Price)
		if err != nil {
			logger.Warn().Str("flavor", row.Name).Str("price", row.Price).Msg("skipping flavor with invalid price")
			continue
		}
		entries = append(entries, Entry{
			Name:        strings.TrimSpace(row.Name),
			Price:       price,
			Ingredients: row.Ingredients,
		})
	}
	return entries, nil
}

// Resolve returns the best catalog match for phrase. An exact match wins
// immediately; otherwise the first highest scorer is returned when it reaches
// the threshold. Catalog failures resolve to not found.
func (r *Resolver) Resolve(ctx context.Context, phrase string) (Entry, bool) {
	target := textmatch.Normalize(phrase)
	if target == "" {
		return Entry{}, false
	}

	entries, err := r.Entries(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("phrase", phrase).Msg("catalog lookup failed")
		metrics.RecordCatalogLookup("error")
		return Entry{}, false
	}

	var best Entry
	bestScore := -1.0
	for _, e := range entries {
		name := textmatch.Normalize(e.Name)
		if name == "" {
			continue
		}
		score := textmatch.Score(target, name)
		if score == textmatch.ExactScore {
			metrics.RecordCatalogLookup("exact")
			return e, true
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}

	if bestScore >= r.threshold {
		zerolog.Ctx(ctx).Debug().Str("phrase", phrase).Str("flavor", best.Name).Float64("score", bestScore).Msg("fuzzy catalog match")
		metrics.RecordCatalogLookup("fuzzy")
		return best, true
	}
	metrics.RecordCatalogLookup("not_found")
	return Entry{}, false
}

// Search backs the menu tool: an empty query lists everything, otherwise
// flavors whose name matches or whose ingredients mention the query.
func (r *Resolver) Search(ctx context.Context, query string) ([]Entry, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return nil, err
	}
	q := textmatch.Normalize(query)
	if q == "" {
		return entries, nil
	}

	var out []Entry
	for _, e := range entries {
		if textmatch.Score(q, textmatch.Normalize(e.Name)) >= r.threshold ||
			strings.Contains(textmatch.Normalize(e.Ingredients), q) {
			out = append(out, e)
		}
	}
	return out, nil
}
