package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/specialist"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/intent"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	nodex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/nodes"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/profile"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	logx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/logger"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

const (
	TransitionContinue = nodex.TransitionContinue
	TransitionFinalize = nodex.TransitionFinalize
)

type Result = nodex.TurnOutput

type Config struct {
	RequirePayment  bool
	ClassifyTimeout time.Duration
}

type Dependencies struct {
	Store      statex.Store
	Resolver   *catalog.Resolver
	Quantities contractx.QuantityExtractor
	Classifier contractx.IntentClassifier
	Slots      contractx.SlotExtractor
	Agent      specialist.Agent
	// Notifier is optional.
	Notifier contractx.OrderNotifier
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Diagnostics is a read-only summary of one session.
type Diagnostics struct {
	SessionID  string       `json:"session_id"`
	Stage      string       `json:"stage"`
	HasName    bool         `json:"has_name"`
	HasAddress bool         `json:"has_address"`
	HasPayment bool         `json:"has_payment"`
	Items      int          `json:"items"`
	Total      statex.Money `json:"total"`
	Confirmed  bool         `json:"confirmed"`
	Ready      bool         `json:"ready"`
	Messages   int          `json:"messages"`
	LastIntent string       `json:"last_intent,omitempty"`
}

type Orchestrator struct {
	store      statex.Store
	classifier contractx.IntentClassifier
	notifier   contractx.OrderNotifier

	engine   *cart.Engine
	policy   profile.Policy
	pipeline pipeline
	locker   *statex.KeyedLocker

	classifyTimeout time.Duration
	now             func() time.Time
}

func New(deps Dependencies, cfg Config, opts ...Option) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("state store is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("catalog resolver is required")
	}
	if deps.Quantities == nil {
		return nil, errors.New("quantity extractor is required")
	}
	if deps.Classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if deps.Slots == nil {
		return nil, errors.New("slot extractor is required")
	}
	if deps.Agent == nil {
		return nil, errors.New("sales agent is required")
	}

	policy := profile.Policy{RequirePayment: cfg.RequirePayment}
	observer := cart.ObserverFunc(func(_ context.Context, sess *statex.SessionState) error {
		policy.OnCartChanged(sess)
		return nil
	})
	engine, err := cart.NewEngine(deps.Resolver, deps.Quantities, observer)
	if err != nil {
		return nil, err
	}

	timeout := cfg.ClassifyTimeout
	if timeout <= 0 {
		timeout = intent.DefaultTimeout
	}

	o := &Orchestrator{
		store:      deps.Store,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		engine:     engine,
		policy:     policy,
		pipeline: newPipeline(cfg.RequirePayment, nodex.Deps{
			Cart:   engine,
			Slots:  deps.Slots,
			Policy: policy,
			Agent:  deps.Agent,
			Menu:   deps.Resolver,
		}),
		locker:          statex.NewKeyedLocker(),
		classifyTimeout: timeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// HandleMessage runs one dialogue turn. Input errors are returned; any
// other failure yields the apology reply and leaves the session untouched.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (Result, error) {
	started := time.Now()
	in, err := nodex.ValidateRequest(nodex.TurnInput{SessionID: sessionID, Text: text}, o.now)
	if err != nil {
		return Result{}, err
	}

	ctx = logx.WithSession(ctx, in.SessionID)
	logger := zerolog.Ctx(ctx)

	unlock := o.locker.Lock(in.SessionID)
	defer unlock()

	out, err := o.runTurn(ctx, in)
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		metrics.RecordTurn("error", started)
		return Result{Reply: prompt.Apology, Transition: TransitionContinue}, nil
	}

	metrics.RecordTurn(out.Transition, started)
	logger.Info().
		Str("transition", out.Transition).
		Str("intent", out.Intent).
		Str("asked_by", in.AskedBy).
		Msg("turn handled")

	if out.Transition == TransitionFinalize {
		metrics.RecordOrderFinalized()
		o.publishOrder(ctx, in.Session)
	}
	return out, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, in *nodex.TurnState) (out Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn panicked: %v", r)
		}
	}()

	in, err = nodex.LoadOrCreateState(ctx, in, o.store, o.classifier, o.classifyTimeout)
	if err != nil {
		return Result{}, fmt.Errorf("load state: %w", err)
	}
	if err := o.pipeline.run(ctx, in); err != nil {
		return Result{}, err
	}
	out, err = nodex.FinalizeReply(ctx, in)
	if err != nil {
		return Result{}, err
	}
	if _, err := nodex.ValidateAndSaveState(ctx, in, o.store); err != nil {
		return Result{}, fmt.Errorf("save state: %w", err)
	}
	return out, nil
}

func (o *Orchestrator) publishOrder(ctx context.Context, sess *statex.SessionState) {
	if o.notifier == nil {
		return
	}
	order := finalizedOrder(sess, o.now())
	if err := o.notifier.OrderFinalized(ctx, order); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("order notification failed")
	}
}

func finalizedOrder(sess *statex.SessionState, now time.Time) contractx.FinalizedOrder {
	order := contractx.FinalizedOrder{
		SessionID:     sess.SessionID,
		CustomerName:  sess.Profile.Name,
		Address:       sess.Profile.Address,
		PaymentMethod: sess.Profile.PaymentMethod,
		TotalCents:    int64(sess.Cart.Total()),
		ConfirmedAt:   now.UTC(),
	}
	for _, it := range sess.Cart.Items {
		order.Lines = append(order.Lines, contractx.OrderLine{
			Flavor:     it.Flavor,
			Quantity:   it.Quantity,
			UnitCents:  int64(it.UnitPrice),
			TotalCents: int64(it.Subtotal()),
		})
	}
	return order
}

func (o *Orchestrator) CartSnapshot(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	sess, err := o.peek(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return o.engine.Snapshot(&sess.Cart), nil
}

func (o *Orchestrator) Profile(ctx context.Context, sessionID string) (statex.Profile, error) {
	sess, err := o.peek(ctx, sessionID)
	if err != nil {
		return statex.Profile{}, err
	}
	return sess.Profile, nil
}

func (o *Orchestrator) IsOrderReady(ctx context.Context, sessionID string) (bool, error) {
	sess, err := o.peek(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return o.policy.IsOrderReady(sess), nil
}

func (o *Orchestrator) Diagnostics(ctx context.Context, sessionID string) (Diagnostics, error) {
	sess, err := o.peek(ctx, sessionID)
	if err != nil {
		return Diagnostics{}, err
	}
	pr := sess.Profile
	return Diagnostics{
		SessionID:  sess.SessionID,
		Stage:      string(pr.Stage),
		HasName:    strings.TrimSpace(pr.Name) != "",
		HasAddress: strings.TrimSpace(pr.Address) != "",
		HasPayment: strings.TrimSpace(pr.PaymentMethod) != "",
		Items:      len(sess.Cart.Items),
		Total:      sess.Cart.Total(),
		Confirmed:  sess.Cart.Confirmed,
		Ready:      o.policy.IsOrderReady(sess),
		Messages:   len(sess.Transcript),
		LastIntent: sess.LastIntent,
	}, nil
}

// ClearCart empties the session's cart outside of a dialogue turn.
func (o *Orchestrator) ClearCart(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	var snap cart.Snapshot
	err := o.mutate(ctx, sessionID, func(ctx context.Context, sess *statex.SessionState) {
		o.engine.Clear(ctx, sess)
		snap = o.engine.Snapshot(&sess.Cart)
	})
	return snap, err
}

// ResetProfile forgets the customer's slots and restarts name collection.
func (o *Orchestrator) ResetProfile(ctx context.Context, sessionID string) (statex.Profile, error) {
	var pr statex.Profile
	err := o.mutate(ctx, sessionID, func(_ context.Context, sess *statex.SessionState) {
		o.policy.Reset(sess)
		pr = sess.Profile
	})
	return pr, err
}

func (o *Orchestrator) mutate(
	ctx context.Context,
	sessionID string,
	fn func(ctx context.Context, sess *statex.SessionState),
) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}
	ctx = logx.WithSession(ctx, sessionID)

	unlock := o.locker.Lock(sessionID)
	defer unlock()

	sess, err := o.load(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(ctx, sess)
	sess.Touch(o.now())
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("state validation failed: %w", err)
	}
	return o.store.Save(ctx, sess)
}

// peek reads the session without locking. Unknown sessions read as new.
func (o *Orchestrator) peek(ctx context.Context, sessionID string) (*statex.SessionState, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	return o.load(ctx, sessionID)
}

func (o *Orchestrator) load(ctx context.Context, sessionID string) (*statex.SessionState, error) {
	sess, err := o.store.Load(ctx, sessionID)
	if errors.Is(err, statex.ErrStateNotFound) {
		return statex.NewSessionState(sessionID, o.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
