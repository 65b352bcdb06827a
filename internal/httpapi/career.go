package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akozyrev/profvibe/internal/dialogue"
	"github.com/akozyrev/profvibe/internal/llmgen"
	"github.com/akozyrev/profvibe/internal/profile"
)

type startCareerRequest struct {
	UserMessage string `json:"user_message"`
	UserID      int64  `json:"user_id,omitempty"`
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type turnResponse struct {
	SessionID    string           `json:"session_id"`
	Stage        dialogue.Stage   `json:"stage"`
	Status       dialogue.Status  `json:"status"`
	Question     string           `json:"question,omitempty"`
	Alternatives []string         `json:"alternatives,omitempty"`
	Done         bool             `json:"done"`
	Profile      *profile.Profile `json:"profile,omitempty"`
}

func turnToResponse(turn *dialogue.Turn) turnResponse {
	return turnResponse{
		SessionID:    turn.Session.ID,
		Stage:        turn.Session.Stage,
		Status:       turn.Session.Status,
		Question:     turn.Question,
		Alternatives: turn.Alternatives,
		Done:         turn.Done,
		Profile:      turn.Session.Result,
	}
}

func (s *Server) handleStartCareer(w http.ResponseWriter, r *http.Request) {
	var req startCareerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	message := strings.TrimSpace(req.UserMessage)
	if len([]rune(message)) < minStartMessageLen || len([]rune(message)) > maxStartMessageLen {
		respondError(w, http.StatusBadRequest, "invalid_message",
			"user_message must be between 5 and 500 characters")
		return
	}
	userID := ""
	if req.UserID != 0 {
		userID = strconv.FormatInt(req.UserID, 10)
	}

	turn, err := s.machine.Start(r.Context(), message, userID)
	if err != nil {
		s.respondDialogueError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, turnToResponse(turn))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "session_id is required")
		return
	}
	answer := strings.TrimSpace(req.Answer)
	if len([]rune(answer)) < minAnswerLen || len([]rune(answer)) > maxAnswerLen {
		respondError(w, http.StatusBadRequest, "invalid_answer",
			"answer must be between 1 and 200 characters")
		return
	}

	turn, err := s.machine.Answer(r.Context(), req.SessionID, answer)
	if err != nil {
		s.respondDialogueError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, turnToResponse(turn))
}

type profileResponse struct {
	SessionID string `json:"session_id"`
	profile.Profile
	CreatedAt time.Time `json:"created_at"`
}

// handleGetSession serves the finished profile for a completed session. An
// in-flight session answers 400, an unknown one 404.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.machine.Result(r.Context(), id)
	if err != nil {
		s.respondDialogueError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profileResponse{
		SessionID: sess.ID,
		Profile:   *sess.Result,
		CreatedAt: sess.CreatedAt,
	})
}

// handleProgressWS streams synthesis progress for one session. The socket
// closes when the client goes away or the subscription is replaced by a newer
// one.
func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.machine.Session(r.Context(), id); err != nil {
		s.respondDialogueError(w, err)
		return
	}

	// Subscribe before the upgrade so a successful handshake means progress
	// events are already being captured.
	events, cancel := s.hub.Subscribe(id)
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Reader only watches for the client closing the socket.
	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerGone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) respondDialogueError(w http.ResponseWriter, err error) {
	var incomplete *profile.IncompleteProfileError
	var insufficient *profile.InsufficientExamplesError
	switch {
	case errors.Is(err, dialogue.ErrNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, dialogue.ErrAlreadyCompleted):
		respondError(w, http.StatusBadRequest, "session_completed", err.Error())
	case errors.Is(err, dialogue.ErrNotCompleted):
		respondError(w, http.StatusBadRequest, "session_not_completed", err.Error())
	case errors.Is(err, dialogue.ErrRevisionConflict):
		respondError(w, http.StatusConflict, "conflict", "session was modified concurrently, retry")
	case errors.Is(err, llmgen.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "generation_unavailable", err.Error())
	case llmgen.IsMalformedOutput(err):
		respondError(w, http.StatusBadGateway, "generation_malformed", err.Error())
	case errors.As(err, &incomplete), errors.As(err, &insufficient):
		respondError(w, http.StatusBadGateway, "profile_invalid", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
