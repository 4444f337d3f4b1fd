package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
)

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	SessionID  string `json:"session_id"`
	Reply      string `json:"reply"`
	Transition string `json:"transition"`
	Intent     string `json:"intent"`
}

type cartLine struct {
	Flavor    string `json:"flavor"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartLine `json:"items"`
	Total      string     `json:"total"`
	TotalCents int64      `json:"total_cents"`
}

func newCartResponse(snap cart.Snapshot) cartResponse {
	out := cartResponse{
		Items:      make([]cartLine, 0, len(snap.Items)),
		Total:      snap.Total.String(),
		TotalCents: int64(snap.Total),
	}
	for _, l := range snap.Items {
		out.Items = append(out.Items, cartLine{
			Flavor:    l.Flavor,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Subtotal:  l.Subtotal.String(),
		})
	}
	return out
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": h.newID()})
}

func (h *handler) postMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.cfg.MaxMessageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.HandleMessage(r.Context(), sessionID, req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		SessionID:  sessionID,
		Reply:      res.Reply,
		Transition: res.Transition,
		Intent:     res.Intent,
	})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.CartSnapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(snap))
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ClearCart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(snap))
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	pr, err := h.svc.Profile(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (h *handler) resetProfile(w http.ResponseWriter, r *http.Request) {
	pr, err := h.svc.ResetProfile(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (h *handler) getReady(w http.ResponseWriter, r *http.Request) {
	ready, err := h.svc.IsOrderReady(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": ready})
}

func (h *handler) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := h.svc.Diagnostics(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diag)
}
