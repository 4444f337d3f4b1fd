package intent

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

const DefaultTimeout = 10 * time.Second

// Flags is the turn's classification. LowConfidence marks a fallback result.
type Flags struct {
	CartEdit      bool `json:"cart_edit"`
	ProvideInfo   bool `json:"provide_info"`
	ConfirmOrder  bool `json:"confirm_order"`
	Other         bool `json:"other"`
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Unknown is the result of a failed or unparseable classification.
var Unknown = Flags{Other: true, LowConfidence: true}

// Primary picks one label: cart_edit > confirm_order > provide_info > other.
func (f Flags) Primary() string {
	switch {
	case f.CartEdit:
		return contractx.IntentCartEdit
	case f.ConfirmOrder:
		return contractx.IntentConfirmOrder
	case f.ProvideInfo:
		return contractx.IntentProvideInfo
	default:
		return contractx.IntentOther
	}
}

var (
	labelCartEdit     = regexp.MustCompile(`cart[\s_-]?edit`)
	labelProvideInfo  = regexp.MustCompile(`provide[\s_-]?info`)
	labelConfirmOrder = regexp.MustCompile(`confirm[\s_-]?order`)
	labelOther        = regexp.MustCompile(`\bother\b`)
)

// ParseLabels reads one or more intent labels out of a classifier reply.
func ParseLabels(reply string) (Flags, bool) {
	s := strings.ToLower(strings.TrimSpace(reply))
	f := Flags{
		CartEdit:     labelCartEdit.MatchString(s),
		ProvideInfo:  labelProvideInfo.MatchString(s),
		ConfirmOrder: labelConfirmOrder.MatchString(s),
		Other:        labelOther.MatchString(s),
	}
	if !f.CartEdit && !f.ProvideInfo && !f.ConfirmOrder && !f.Other {
		return Unknown, false
	}
	return f, true
}

// Cache classifies the latest user message at most once per turn. A Cache
// belongs to a single turn and is not safe for concurrent use.
type Cache struct {
	classifier contractx.IntentClassifier
	timeout    time.Duration

	done  bool
	flags Flags
}

func NewCache(classifier contractx.IntentClassifier, timeout time.Duration) (*Cache, error) {
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cache{classifier: classifier, timeout: timeout}, nil
}

func (c *Cache) Classify(ctx context.Context, sess *statex.SessionState) Flags {
	if c.done {
		return c.flags
	}
	c.done = true
	c.flags = c.classify(ctx, sess.LastUserMessage())
	return c.flags
}

// Computed reports whether Classify already ran this turn.
func (c *Cache) Computed() (Flags, bool) {
	return c.flags, c.done
}

func (c *Cache) classify(ctx context.Context, message string) Flags {
	if strings.TrimSpace(message) == "" {
		return Unknown
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger := zerolog.Ctx(ctx)
	reply, err := c.classifier.ClassifyIntent(ctx, message)
	if err != nil {
		logger.Warn().Err(err).Msg("intent classification failed")
		metrics.RecordOracleFailure("classify_intent")
		return Unknown
	}
	flags, ok := ParseLabels(reply)
	if !ok {
		logger.Debug().Str("reply", reply).Msg("intent reply unparseable")
		metrics.RecordOracleFailure("classify_intent")
	}
	return flags
}
