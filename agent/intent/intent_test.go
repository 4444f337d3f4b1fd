package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

type fakeClassifier struct {
	reply string
	err   error
	calls int
	seen  string
}

func (f *fakeClassifier) ClassifyIntent(_ context.Context, msg string) (string, error) {
	f.calls++
	f.seen = msg
	return f.reply, f.err
}

func sessionWith(msgs ...*schema.Message) *statex.SessionState {
	sess := statex.NewSessionState("intent", time.Now())
	sess.Append(msgs...)
	return sess
}

func TestPrimaryPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		flags Flags
		want  string
	}{
		{Flags{CartEdit: true, ConfirmOrder: true, ProvideInfo: true}, contractx.IntentCartEdit},
		{Flags{ConfirmOrder: true, ProvideInfo: true}, contractx.IntentConfirmOrder},
		{Flags{ProvideInfo: true, Other: true}, contractx.IntentProvideInfo},
		{Flags{}, contractx.IntentOther},
		{Unknown, contractx.IntentOther},
	}
	for _, tc := range cases {
		if got := tc.flags.Primary(); got != tc.want {
			t.Fatalf("%+v.Primary() = %q, want %q", tc.flags, got, tc.want)
		}
	}
}

func TestParseLabels(t *testing.T) {
	t.Parallel()

	cases := map[string]Flags{
		"cart_edit":                {CartEdit: true},
		" Confirm_Order. ":         {ConfirmOrder: true},
		"cart_edit, confirm_order": {CartEdit: true, ConfirmOrder: true},
		"Label: provide info":      {ProvideInfo: true},
		"other":                    {Other: true},
	}
	for reply, want := range cases {
		got, ok := ParseLabels(reply)
		if !ok || got != want {
			t.Fatalf("ParseLabels(%q) = %+v, %v; want %+v", reply, got, ok, want)
		}
	}
	if got, ok := ParseLabels("banana"); ok || got != Unknown {
		t.Fatalf("ParseLabels(banana) = %+v, %v; want Unknown", got, ok)
	}
}

func TestCacheClassifiesOncePerTurn(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{reply: "cart_edit"}
	cache, err := NewCache(fc, time.Second)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	sess := sessionWith(
		schema.UserMessage("oi"),
		schema.AssistantMessage("Olá!", nil),
		schema.UserMessage("tira o frango"),
	)

	if _, done := cache.Computed(); done {
		t.Fatalf("Computed() true before Classify")
	}
	first := cache.Classify(context.Background(), sess)
	second := cache.Classify(context.Background(), sess)
	if fc.calls != 1 {
		t.Fatalf("classifier called %d times, want 1", fc.calls)
	}
	if fc.seen != "tira o frango" {
		t.Fatalf("classifier saw %q, want last user message", fc.seen)
	}
	if first != second || !first.CartEdit {
		t.Fatalf("Classify() = %+v then %+v", first, second)
	}
}

func TestCacheFailureIsLowConfidenceOther(t *testing.T) {
	t.Parallel()

	for _, fc := range []*fakeClassifier{
		{err: errors.New("timeout")},
		{reply: "???"},
	} {
		cache, err := NewCache(fc, time.Second)
		if err != nil {
			t.Fatalf("NewCache() error = %v", err)
		}
		got := cache.Classify(context.Background(), sessionWith(schema.UserMessage("hmm")))
		if got != Unknown {
			t.Fatalf("Classify() = %+v, want %+v", got, Unknown)
		}
	}

	fc := &fakeClassifier{reply: "cart_edit"}
	cache, _ := NewCache(fc, time.Second)
	if got := cache.Classify(context.Background(), sessionWith()); got != Unknown || fc.calls != 0 {
		t.Fatalf("Classify() without user message = %+v (calls %d)", got, fc.calls)
	}
}

func TestKeywordClassifier(t *testing.T) {
	t.Parallel()

	cases := map[string]Flags{
		"quero 2 de frango":             {CartEdit: true},
		"tira o queijo":                 {CartEdit: true},
		"Sim, pode fechar o pedido":     {ConfirmOrder: true},
		"quero confirmar":               {ConfirmOrder: true},
		"meu nome é Ana":                {ProvideInfo: true},
		"Rua das Flores, 10":            {ProvideInfo: true},
		"vou pagar no pix":              {ProvideInfo: true},
		"não, troca o frango por carne": {CartEdit: true},
		"pode tirar o frango":           {CartEdit: true, ConfirmOrder: true},
		"boa tarde":                     {Other: true},
	}
	for msg, want := range cases {
		reply, err := KeywordClassifier{}.ClassifyIntent(context.Background(), msg)
		if err != nil {
			t.Fatalf("ClassifyIntent(%q) error = %v", msg, err)
		}
		got, ok := ParseLabels(reply)
		if !ok || got != want {
			t.Fatalf("ClassifyIntent(%q) = %q -> %+v, want %+v", msg, reply, got, want)
		}
	}
}
