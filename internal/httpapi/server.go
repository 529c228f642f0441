package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mzanetti/turfdesk/internal/assistant"
	"github.com/mzanetti/turfdesk/internal/booking"
	"github.com/mzanetti/turfdesk/internal/config"
	"github.com/mzanetti/turfdesk/internal/observability"
	"github.com/mzanetti/turfdesk/internal/protocol"
)

// Assistant is the conversational core the HTTP layer fronts.
type Assistant interface {
	HandleTurn(ctx context.Context, threadID, userID, text string) assistant.TurnResult
	Reservations(ctx context.Context) ([]booking.Reservation, error)
}

type Server struct {
	cfg       config.Config
	assistant Assistant
	metrics   *observability.Metrics
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, a Assistant, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		assistant: a,
		metrics:   metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless the deployment opted out. Non-browser
				// clients often omit Origin; allow them.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/chat/ws", s.handleChatWS)
	r.Get("/v1/reservations", s.handleListReservations)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode(),
	})
}

type chatRequest struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	if strings.TrimSpace(req.ThreadID) == "" {
		req.ThreadID = uuid.NewString()
	}

	res := s.assistant.HandleTurn(r.Context(), req.ThreadID, req.UserID, req.Text)
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	all, err := s.assistant.Reservations(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_unavailable", err.Error())
		return
	}
	if all == nil {
		all = []booking.Reservation{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"reservations": all})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "metrics not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.TurnSnapshot())
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		return nil
	})

	// One connection carries one conversation. A fresh thread id is minted
	// unless the first client message names one, so reconnecting clients can
	// resume a suspended negotiation.
	threadID := ""

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.countWS("outbound", string(protocol.TypeErrorEvent))
			if writeErr := s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			}); writeErr != nil {
				return
			}
			continue
		}
		s.countWS("inbound", string(msg.Type))

		if strings.TrimSpace(msg.ThreadID) != "" {
			threadID = msg.ThreadID
		} else if threadID == "" {
			threadID = uuid.NewString()
		}

		res := s.assistant.HandleTurn(ctx, threadID, msg.UserID, msg.Text)

		var out any
		if res.Pending {
			out = protocol.Question{Type: protocol.TypeQuestion, ThreadID: res.ThreadID, Question: res.Question}
			s.countWS("outbound", string(protocol.TypeQuestion))
		} else {
			out = protocol.Reply{Type: protocol.TypeReply, ThreadID: res.ThreadID, Route: string(res.Route), Text: res.Reply}
			s.countWS("outbound", string(protocol.TypeReply))
		}
		if err := s.writeWS(conn, out); err != nil {
			return
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

func (s *Server) countWS(direction, msgType string) {
	if s.metrics != nil {
		s.metrics.WSMessages.WithLabelValues(direction, msgType).Inc()
	}
}

func (s *Server) storeMode() string {
	if s.cfg.DatabaseURL != "" {
		return "postgres"
	}
	return "csv"
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
