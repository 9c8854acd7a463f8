package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eloom/holybean-server/internal/domain/menu"
)

// menuBoardResponse is the wire shape of a menu board.
type menuBoardResponse struct {
	Timestamp string      `json:"timestamp"`
	MenuList  []menu.Item `json:"menulist"`
}

// LatestMenu returns the most recently saved menu board.
func (h *Handler) LatestMenu(w http.ResponseWriter, r *http.Request) {
	board, err := h.menus.LatestBoard(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, menuBoardResponse{
		Timestamp: board.SavedAt.UTC().Format(time.RFC3339),
		MenuList:  board.Items,
	})
}

// SaveMenu stores a complete new menu board snapshot.
func (h *Handler) SaveMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuList []menu.Item `json:"menulist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.MenuList) == 0 {
		respondError(w, http.StatusBadRequest, "menulist must not be empty")
		return
	}

	board := menu.Board{
		SavedAt: time.Now().UTC(),
		Items:   req.MenuList,
	}
	if err := h.menus.SaveBoard(r.Context(), board); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "menu board saved"})
}
