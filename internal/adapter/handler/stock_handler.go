package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/core/service"
)

type reserveProductResponse struct {
	Status string `json:"status"`
	ItemID int    `json:"itemId"`
}

// StockHandler translates the per-item stock HTTP surface into service
// calls.
type StockHandler struct {
	stock *service.StockService
	log   *zap.SugaredLogger
}

func NewStockHandler(stock *service.StockService, log *zap.SugaredLogger) *StockHandler {
	return &StockHandler{stock: stock, log: log}
}

func (h *StockHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /list_products", h.ListProducts)
	mux.HandleFunc("GET /list_products/{itemId}", h.GetProduct)
	mux.HandleFunc("GET /reserve_product/{itemId}", h.ReserveProduct)
}

func (h *StockHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stock.ListProducts())
}

func (h *StockHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		writeJSON(w, http.StatusOK, statusResponse{Status: statusItemNotFound})
		return
	}

	detail, err := h.stock.GetProduct(r.Context(), itemID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusOK, statusResponse{Status: statusItemNotFound})
	case err != nil:
		h.log.Errorw("product read failed", "item_id", itemID, "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: statusStoreDown})
	default:
		writeJSON(w, http.StatusOK, detail)
	}
}

func (h *StockHandler) ReserveProduct(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(r)
	if !ok {
		writeJSON(w, http.StatusOK, statusResponse{Status: statusItemNotFound})
		return
	}

	err := h.stock.ReserveProduct(r.Context(), itemID)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusOK, statusResponse{Status: statusItemNotFound})
	case errors.Is(err, domain.ErrResourceExhausted):
		writeJSON(w, http.StatusOK, reserveProductResponse{Status: statusOutOfStock, ItemID: itemID})
	case err != nil:
		h.log.Errorw("product reservation failed", "item_id", itemID, "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: statusStoreDown})
	default:
		writeJSON(w, http.StatusOK, reserveProductResponse{Status: statusConfirmed, ItemID: itemID})
	}
}

// itemIDParam parses the itemId path segment; non-numeric ids resolve to
// no product, mirroring the list/reserve route contract.
func itemIDParam(r *http.Request) (int, bool) {
	itemID, err := strconv.Atoi(r.PathValue("itemId"))
	if err != nil {
		return 0, false
	}
	return itemID, true
}
