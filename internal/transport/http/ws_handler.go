package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"sleep-quiz-service/internal/app"
	"sleep-quiz-service/internal/domain"
	"sleep-quiz-service/internal/logging"
)

// WSHandler drives one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				_, wildcard := allowed["*"]
				return ok || wildcard
			},
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Name string `json:"name"`
}

type answerPayload struct {
	OptionIndex *int `json:"optionIndex"`
}

type contactPayload struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
// Each inbound message is answered with a "state" frame, preceded by an "error"
// frame when the action was rejected.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	view, err := h.service.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("begin session failed")
		_, body := toErrorResponse(err)
		_ = conn.WriteJSON(outboundMessage[ErrorResponse]{Type: "error", Payload: body})
		return
	}
	sessionID := view.SessionID
	defer h.service.Close(ctx, sessionID)

	if err := conn.WriteJSON(outboundMessage[app.View]{Type: "state", Payload: view}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Str("session", sessionID).Msg("ws read error")
			}
			return
		}

		view, err := h.dispatch(r, sessionID, inbound)
		if err != nil {
			_, body := toErrorResponse(err)
			if werr := conn.WriteJSON(outboundMessage[ErrorResponse]{Type: "error", Payload: body}); werr != nil {
				logger.Debug().Err(werr).Msg("ws write error")
				return
			}
		}
		if view.SessionID == "" {
			continue
		}
		if err := conn.WriteJSON(outboundMessage[app.View]{Type: "state", Payload: view}); err != nil {
			logger.Debug().Err(err).Msg("ws write error")
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) (app.View, error) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return app.View{}, err
		}
		return h.service.Start(ctx, sessionID, payload.Name)
	case "answer":
		var payload answerPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return app.View{}, err
		}
		if payload.OptionIndex == nil {
			return app.View{}, errInvalidPayload
		}
		return h.service.Answer(ctx, sessionID, *payload.OptionIndex)
	case "back":
		return h.service.Back(ctx, sessionID)
	case "contact":
		var payload contactPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return app.View{}, err
		}
		return h.service.UpdateContact(ctx, sessionID, payload.respondent())
	case "submit":
		// the form may be sent along with the submit action
		if len(inbound.Payload) > 0 && string(inbound.Payload) != "null" {
			var payload contactPayload
			if err := decodePayload(inbound.Payload, &payload); err != nil {
				return app.View{}, err
			}
			// outside the form stages Submit reports the precise reason
			if view, err := h.service.UpdateContact(ctx, sessionID, payload.respondent()); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
				return view, err
			}
		}
		return h.service.Submit(ctx, sessionID)
	case "view":
		return h.service.View(ctx, sessionID)
	default:
		return app.View{}, errUnknownType
	}
}

func (p contactPayload) respondent() domain.Respondent {
	return domain.Respondent{Name: p.Name, Email: p.Email, Age: p.Age, Gender: p.Gender}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidPayload
	}
	return nil
}
