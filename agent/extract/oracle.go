package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
)

const DefaultOracleTimeout = 10 * time.Second

type Option func(*options)

type options struct {
	timeout time.Duration
	prompts prompt.PromptSet
}

func WithOracleTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithPrompts(p prompt.PromptSet) Option {
	return func(o *options) {
		o.prompts = p
	}
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultOracleTimeout, prompts: prompt.LoadPromptSet()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// OracleExtractor asks the oracle for a structured quantity/removal payload and
// falls back to the pattern grammar whenever the reply is unusable.
type OracleExtractor struct {
	oracle   contractx.Oracle
	fallback contractx.QuantityExtractor
	opts     options
}

var _ contractx.QuantityExtractor = (*OracleExtractor)(nil)

func NewOracleExtractor(oracle contractx.Oracle, fallback contractx.QuantityExtractor, opts ...Option) (*OracleExtractor, error) {
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}
	if fallback == nil {
		fallback = PatternExtractor{}
	}
	return &OracleExtractor{oracle: oracle, fallback: fallback, opts: buildOptions(opts)}, nil
}

func (e *OracleExtractor) ExtractQuantity(ctx context.Context, phrase string) contractx.Quantity {
	if strings.TrimSpace(phrase) == "" {
		return contractx.Quantity{}
	}
	if reply, ok := e.ask(ctx, "extract_quantity", phrase, e.opts.prompts.Quantity); ok {
		p, err := decodePayload(ctx, quantityParser, reply)
		e.discarded(ctx, "extract_quantity", reply, err)
		if flavor := strings.TrimSpace(p.Flavor); err == nil && flavor != "" {
			return contractx.Quantity{Flavor: flavor, Count: positiveInt(p.Quantity)}
		}
	}
	return e.fallback.ExtractQuantity(ctx, phrase)
}

func (e *OracleExtractor) ExtractRemoval(ctx context.Context, phrase string) (contractx.Removal, bool) {
	if strings.TrimSpace(phrase) == "" {
		return contractx.Removal{}, false
	}
	if reply, ok := e.ask(ctx, "extract_removal", phrase, e.opts.prompts.Removal); ok {
		p, err := decodePayload(ctx, removalParser, reply)
		e.discarded(ctx, "extract_removal", reply, err)
		if flavor := strings.TrimSpace(p.Flavor); err == nil && flavor != "" {
			return contractx.Removal{
				Flavor: flavor,
				Count:  positiveInt(p.QuantityToRemove),
				All:    p.RemoveAll,
			}, true
		}
	}
	return e.fallback.ExtractRemoval(ctx, phrase)
}

func (e *OracleExtractor) ask(ctx context.Context, call, phrase, instructions string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.timeout)
	defer cancel()

	reply, err := e.oracle.ExtractField(ctx, phrase, instructions)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("call", call).Msg("oracle extraction failed, using pattern fallback")
		metrics.RecordOracleFailure(call)
		return "", false
	}
	return reply, true
}

func (e *OracleExtractor) discarded(ctx context.Context, call, reply string, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, contractx.ErrNoExtraction) {
		metrics.RecordOracleFailure(call)
	}
	zerolog.Ctx(ctx).Debug().Err(err).Str("call", call).Str("reply", reply).Msg("oracle payload discarded")
}
