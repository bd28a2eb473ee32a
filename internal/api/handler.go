package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/service"
)

// Handler serves the card REST API. Every request drives its own form
// through a BoardController, so the API validates and trims exactly like
// the interactive frontends do.
type Handler struct {
	cards *service.CardService
	log   *zap.SugaredLogger
}

// NewHandler creates a new handler over the card service.
func NewHandler(cards *service.CardService, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{cards: cards, log: log.Named("api")}
}

// RegisterRoutes sets up all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/cards", h.ListCards)
	mux.HandleFunc("POST /api/v1/cards", h.CreateCard)
	mux.HandleFunc("GET /api/v1/cards/{id}", h.GetCard)
	mux.HandleFunc("PUT /api/v1/cards/{id}", h.UpdateCard)
	mux.HandleFunc("DELETE /api/v1/cards/{id}", h.DeleteCard)

	// Static files (frontend)
	mux.Handle("/", frontend())
}

// ListCardsResponse is the JSON response for the card list.
type ListCardsResponse struct {
	Cards []model.Card `json:"cards"`
}

// CardRequest is the JSON body for creating or updating a card.
// On update, a nil field keeps the stored value.
type CardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ListCards returns every card in insertion order.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, ListCardsResponse{Cards: h.cards.Cards()})
}

// GetCard returns a single card by ID.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	card, found := h.cards.GetCardByID(id)
	if !found {
		Error(w, kanerr.CardNotFound(id))
		return
	}
	JSON(w, http.StatusOK, card)
}

// CreateCard adds a card.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	board := service.NewBoardController(h.cards, nil)
	board.StartAdd()
	h.submit(w, board, req, http.StatusCreated)
}

// UpdateCard replaces an existing card's title and/or description.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	board := service.NewBoardController(h.cards, nil)
	if err := board.StartEdit(id); err != nil {
		Error(w, err)
		return
	}
	h.submit(w, board, req, http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, board *service.BoardController, req CardRequest, status int) {
	f := board.Form()
	if req.Title != nil {
		f.SetTitle(*req.Title)
	}
	if req.Description != nil {
		f.SetDescription(*req.Description)
	}

	card, saved, err := board.Submit()
	if err != nil {
		Error(w, err)
		return
	}
	if !saved {
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: f.Errors()})
		return
	}
	if err := h.cards.PersistErr(); err != nil {
		h.log.Warnw("card saved in memory only", "id", card.ID, "error", err)
	}
	JSON(w, status, card)
}

// DeleteCard deletes a card. Deleting a missing card still succeeds.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(id); err != nil {
		Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func cardID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		BadRequest(w, "invalid card id: "+r.PathValue("id"))
		return 0, false
	}
	return id, true
}
