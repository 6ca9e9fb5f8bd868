package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/fakeapi"
	"github.com/hongminglow/storefront/internal/http/respond"
	"github.com/hongminglow/storefront/internal/middleware"
	"github.com/hongminglow/storefront/internal/models/dto"
)

// CatalogHandler serves the menu and order endpoints.
type CatalogHandler struct {
	backend *fakeapi.Backend
	tokens  *auth.TokenManager
	log     logrus.FieldLogger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(backend *fakeapi.Backend, tokens *auth.TokenManager, logger logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{backend: backend, tokens: tokens, log: logger}
}

// Register attaches menu and order routes. The menu is public.
func (h *CatalogHandler) Register(r *mux.Router) {
	r.HandleFunc("/menu/getMenu", h.handleMenu).Methods(http.MethodGet)

	authed := middleware.RequireAuth(h.tokens)
	r.Handle("/get/orders", authed(http.HandlerFunc(h.handleOrders))).Methods(http.MethodGet)
	r.Handle("/order/add", authed(http.HandlerFunc(h.handleAddOrder))).Methods(http.MethodPost)
	r.Handle("/order/item/add", authed(http.HandlerFunc(h.handleAddLine))).Methods(http.MethodPost)
}

func (h *CatalogHandler) handleMenu(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "menu fetched", h.backend.Menu())
}

func (h *CatalogHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	respond.JSON(w, http.StatusOK, "orders fetched", h.backend.Orders(userID))
}

func (h *CatalogHandler) handleAddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.TotalAmount < 0 {
		respond.Error(w, http.StatusBadRequest, "totalAmount must not be negative")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	id, err := h.backend.CreateOrder(userID, req.TotalAmount)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	h.log.WithFields(logrus.Fields{"order_id": id, "user_id": userID}).Info("order created")
	respond.JSON(w, http.StatusOK, "order created", id)
}

func (h *CatalogHandler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderLinePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	err := h.backend.AddOrderLine(userID, req)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, "order item added", nil)
	case errors.Is(err, fakeapi.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "order not found")
	case errors.Is(err, fakeapi.ErrUnavailable), errors.Is(err, fakeapi.ErrInvalidLine):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("add order line failed")
		respond.Error(w, http.StatusInternalServerError, "failed to add order item")
	}
}
