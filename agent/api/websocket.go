package api

import (
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

type wsReply struct {
	Reply      string `json:"reply,omitempty"`
	Transition string `json:"transition,omitempty"`
	Intent     string `json:"intent,omitempty"`
	Error      string `json:"error,omitempty"`
}

// serveWS runs one turn per text frame until the client disconnects.
func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	logger := hlog.FromRequest(r).With().Str("session_id", sessionID).Logger()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.cfg.MaxMessageBytes)

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				logger.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
		if typ != websocket.MessageText {
			_ = wsjson.Write(ctx, conn, wsReply{Error: "text frames only"})
			continue
		}

		res, err := h.svc.HandleMessage(ctx, sessionID, string(data))
		out := wsReply{Reply: res.Reply, Transition: res.Transition, Intent: res.Intent}
		if err != nil {
			out = wsReply{Error: err.Error()}
		}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}
