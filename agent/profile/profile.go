package profile

import (
	"strings"

	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// Policy decides which profile slots an order needs.
type Policy struct {
	RequirePayment bool
}

// SlotsComplete reports whether every required slot is filled.
func (p Policy) SlotsComplete(pr statex.Profile) bool {
	if strings.TrimSpace(pr.Name) == "" || strings.TrimSpace(pr.Address) == "" {
		return false
	}
	return !p.RequirePayment || strings.TrimSpace(pr.PaymentMethod) != ""
}

// OnCartChanged moves the stage after a cart mutation: a complete profile
// with items goes back to awaiting confirmation, a completed order that lost
// that state drops to idle.
func (p Policy) OnCartChanged(sess *statex.SessionState) {
	if p.SlotsComplete(sess.Profile) && !sess.Cart.Empty() {
		sess.Profile.Stage = statex.StageAwaitingConfirmation
		return
	}
	if sess.Profile.Stage == statex.StageComplete {
		sess.Profile.Stage = statex.StageIdle
	}
}

func (p Policy) IsOrderReady(sess *statex.SessionState) bool {
	return p.SlotsComplete(sess.Profile) && !sess.Cart.Empty() && sess.Cart.Confirmed
}

// Reset clears every slot and restarts name collection.
func (p Policy) Reset(sess *statex.SessionState) {
	sess.Profile = statex.DefaultProfile()
}
