// internal/handlers/session_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_study_engine/internal/middleware"
	"go_5_study_engine/internal/model"
	"go_5_study_engine/internal/service"
	"go_5_study_engine/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SessionHandler struct {
	service service.StudyService
}

func NewSessionHandler(s service.StudyService) *SessionHandler {
	return &SessionHandler{service: s}
}

// CreateSession は POST /api/v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req model.CreateSessionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "リクエストボディが不正です。", "", model.ErrInvalidInput))
		return
	}
	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrs))
			return
		}
		webutil.HandleError(w, logger, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), tenantID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, session)
}

// ListSessions は GET /api/v1/sessions (Activeなセッションのみ、開始日時の降順)
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	// set_id クエリパラメータによる絞り込み (任意)
	var setID *uuid.UUID
	if setIDStr := r.URL.Query().Get("set_id"); setIDStr != "" {
		parsed, err := uuid.Parse(setIDStr)
		if err != nil {
			webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "セットIDの形式が正しくありません。", "set_id", model.ErrInvalidInput))
			return
		}
		setID = &parsed
	}

	sessions, err := h.service.ListActiveSessions(r.Context(), tenantID, setID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if sessions == nil {
		sessions = []*model.StudySession{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, sessions)
}

// GetSession は GET /api/v1/sessions/{session_id} (再開用にスナップショットも返す)
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID, ok := h.parseSessionID(w, r, logger)
	if !ok {
		return
	}

	session, err := h.service.GetSession(r.Context(), tenantID, sessionID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, session)
}

// RecordAnswer は POST /api/v1/sessions/{session_id}/answers
func (h *SessionHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID, ok := h.parseSessionID(w, r, logger)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "リクエストボディが不正です。", "", model.ErrInvalidInput))
		return
	}
	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrs))
			return
		}
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.RecordAnswer(r.Context(), tenantID, sessionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, progress)
}

// UpdateSnapshot は PUT /api/v1/sessions/{session_id}/snapshot
func (h *SessionHandler) UpdateSnapshot(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID, ok := h.parseSessionID(w, r, logger)
	if !ok {
		return
	}

	var req model.UpdateSnapshotRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "リクエストボディが不正です。", "", model.ErrInvalidInput))
		return
	}
	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrs))
			return
		}
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.UpdateSnapshot(r.Context(), tenantID, sessionID, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteSession は POST /api/v1/sessions/{session_id}/complete
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID, ok := h.parseSessionID(w, r, logger)
	if !ok {
		return
	}

	// ボディは省略可能 (score なしで完了できる)
	req := model.CompleteSessionRequest{}
	if r.ContentLength > 0 {
		if err := webutil.DecodeJSONBody(r, &req); err != nil {
			webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "リクエストボディが不正です。", "", model.ErrInvalidInput))
			return
		}
		if err := webutil.Validator.Struct(req); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrs))
				return
			}
			webutil.HandleError(w, logger, err)
			return
		}
	}

	session, err := h.service.CompleteSession(r.Context(), tenantID, sessionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, session)
}

// ListDueCards は GET /api/v1/reviews/due
func (h *SessionHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	tenantID, err := middleware.GetTenantIDFromContext(r.Context())
	if err != nil {
		webutil.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	dueCards, err := h.service.ListDueCards(r.Context(), tenantID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if dueCards == nil {
		dueCards = []*model.DueCardResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, dueCards)
}

// parseSessionID はURLパラメータのセッションIDを検証します
func (h *SessionHandler) parseSessionID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	sessionIDStr := chi.URLParam(r, "session_id")
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		logger.Warn("Invalid session ID format", "session_id", sessionIDStr)
		webutil.RespondWithError(w, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return sessionID, true
}
