package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/apperr"
	"bankcards/internal/service"
)

// CardHandler serves card queries, lifecycle operations and transfers
type CardHandler struct {
	cardService *service.CardService
	logger      *logrus.Logger
}

// NewCardHandler initializes a new card handler
func NewCardHandler(cardService *service.CardService, logger *logrus.Logger) *CardHandler {
	return &CardHandler{cardService: cardService, logger: logger}
}

// RegisterRoutes attaches the self-service card routes
func (h *CardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/my", h.ListMine).Methods("GET")
	router.HandleFunc("/my/{id:[0-9]+}", h.GetMine).Methods("GET")
	router.HandleFunc("/my/{id:[0-9]+}/block", h.BlockMine).Methods("PUT")
	router.HandleFunc("/transfer", h.Transfer).Methods("POST")
}

// RegisterAdminRoutes attaches the privileged card routes
func (h *CardHandler) RegisterAdminRoutes(router *mux.Router) {
	router.HandleFunc("", h.Issue).Methods("POST")
	router.HandleFunc("", h.ListAll).Methods("GET")
	router.HandleFunc("/{id:[0-9]+}/number", h.GetNumber).Methods("GET")
	router.HandleFunc("/{id:[0-9]+}/block", h.Block).Methods("PUT")
	router.HandleFunc("/{id:[0-9]+}/activate", h.Activate).Methods("PUT")
	router.HandleFunc("/{id:[0-9]+}", h.Delete).Methods("DELETE")
}

// pageParams reads pagination and sorting query parameters, falling back to
// the first page of ten cards, newest first.
func pageParams(r *http.Request) (page, size int, sortBy, direction string) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size == 0 {
		size = 10
	}
	sortBy = q.Get("sortBy")
	if sortBy == "" {
		sortBy = "createdAt"
	}
	direction = q.Get("direction")
	if direction == "" {
		direction = "desc"
	}
	return page, size, sortBy, direction
}

func cardID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid card id")
	}
	return id, nil
}

// Issue handles card creation for a named user. Admin only.
func (h *CardHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req service.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validationf("invalid request body"))
		return
	}

	card, err := h.cardService.Issue(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// ListAll returns a page over all cards. Admin only.
func (h *CardHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, size, sortBy, direction := pageParams(r)
	result, err := h.cardService.ListAll(r.Context(), page, size, sortBy, direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetNumber returns the decrypted card number. Admin only.
func (h *CardHandler) GetNumber(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	number, err := h.cardService.GetNumber(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"number": number})
}

// Block forces a card to blocked. Admin only.
func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cardService.Block(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Activate re-activates a blocked card. Admin only.
func (h *CardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cardService.Activate(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Delete removes a card. Admin only.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.cardService.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "card deleted"})
}

// ListMine returns a page of the caller's cards.
func (h *CardHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(r)
	if !ok {
		writeError(w, h.logger, apperr.ErrUnauthenticated)
		return
	}
	page, size, sortBy, direction := pageParams(r)
	result, err := h.cardService.ListOwned(r.Context(), userID, page, size, sortBy, direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMine returns one of the caller's cards.
func (h *CardHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(r)
	if !ok {
		writeError(w, h.logger, apperr.ErrUnauthenticated)
		return
	}
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cardService.GetOwned(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// BlockMine is the caller's self-service block request.
func (h *CardHandler) BlockMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(r)
	if !ok {
		writeError(w, h.logger, apperr.ErrUnauthenticated)
		return
	}
	id, err := cardID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	card, err := h.cardService.RequestBlock(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type transferRequest struct {
	FromCardID int64           `json:"from_card_id"`
	ToCardID   int64           `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer moves money between two of the caller's cards.
func (h *CardHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(r)
	if !ok {
		writeError(w, h.logger, apperr.ErrUnauthenticated)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validationf("invalid request body"))
		return
	}

	if err := h.cardService.Transfer(r.Context(), userID, req.FromCardID, req.ToCardID, req.Amount); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "transfer completed"})
}
