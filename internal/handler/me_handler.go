package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/orderdesk/backend/internal/repository"
)

// MeHandler は現在のユーザー情報を返すハンドラ
type MeHandler struct {
	userRepo repository.UserRepository
}

// NewMeHandler は MeHandler を生成する（DI: UserRepository を注入）
func NewMeHandler(userRepo repository.UserRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo}
}

// Me は GET /api/me を処理する。認証ミドルウェアの後ろに置く
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if !actor.Authenticated() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "find user failed", "error", err, "user_id", actor.ID)
		writeError(w, http.StatusInternalServerError, "lookup_failed")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
