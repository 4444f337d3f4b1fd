package orchestratornode

import (
	"strings"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

const excerptMessages = 6

func slotRequest(sess *statex.SessionState, awaiting bool) contractx.SlotRequest {
	return contractx.SlotRequest{
		Excerpt:         sess.Excerpt(excerptMessages),
		LastUserMessage: sess.LastUserMessage(),
		Awaiting:        awaiting,
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
