package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Simi129/pinterest-backend/internal/errors"
	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/service"
)

// BoardHandler is a thin proxy over the Pinterest board API.
type BoardHandler struct {
	boardService *service.BoardService
}

func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

func (h *BoardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListBoards)
	r.Post("/create", h.CreateBoard)
	r.Patch("/{id}", h.UpdateBoard)
	r.Delete("/{id}", h.DeleteBoard)

	return r
}

// GET /api/boards?user_id=
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	boards, err := h.boardService.List(r.Context(), userID)
	if err != nil {
		h.writeBoardError(w, err, userID, "list boards")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

type createBoardRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

// POST /api/boards/create
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if req.UserID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}
	if req.Name == "" {
		writeError(w, apperrors.MissingRequired("name"))
		return
	}
	if req.Privacy == "" {
		req.Privacy = string(model.BoardPrivacyPublic)
	}

	board, err := h.boardService.Create(r.Context(), req.UserID, pinterest.CreateBoardParams{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
	})
	if err != nil {
		h.writeBoardError(w, err, req.UserID, "create board")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"board":  board,
	})
}

type updateBoardRequest struct {
	UserID      string  `json:"user_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Privacy     *string `json:"privacy"`
}

// PATCH /api/boards/{id}
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "id")

	var req updateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if req.UserID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	board, err := h.boardService.Update(r.Context(), req.UserID, boardID, pinterest.UpdateBoardParams{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
	})
	if err != nil {
		h.writeBoardError(w, err, req.UserID, "update board")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"board":  board,
	})
}

// DELETE /api/boards/{id}?user_id=
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	if err := h.boardService.Delete(r.Context(), userID, boardID); err != nil {
		h.writeBoardError(w, err, userID, "delete board")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Board deleted",
	})
}

func (h *BoardHandler) writeBoardError(w http.ResponseWriter, err error, userID, action string) {
	switch {
	case errors.Is(err, service.ErrNotConnected):
		writeError(w, apperrors.NotConnected())
	case errors.Is(err, service.ErrTokenRefreshFailed):
		writeError(w, apperrors.TokenExpired())
	default:
		log.Error().Err(err).Str("userId", userID).Msgf("failed to %s", action)
		writeError(w, apperrors.External("pinterest", err))
	}
}
