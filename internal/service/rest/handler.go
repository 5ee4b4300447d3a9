package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
)

// Handler обрабатывает HTTP-запросы REST API заказов.
type Handler struct {
	orders  *order.Service
	catalog domain.ProductCatalog
	logger  *log.Entry
}

// NewHandler создаёт HTTP handler поверх сервиса заказов и каталога.
func NewHandler(orders *order.Service, catalog domain.ProductCatalog, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest-handler")
	}
	return &Handler{
		orders:  orders,
		catalog: catalog,
		logger:  logger,
	}
}

// PlaceOrder принимает запрос на размещение нового заказа.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	orderDate, err := time.Parse(orderDateLayout, req.OrderDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "order_date must be in YYYY-MM-DD format")
		return
	}

	items := make([]order.PlaceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.PlaceItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}

	placed, err := h.orders.PlaceOrder(order.PlaceRequest{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		OrderDate:    orderDate,
		Items:        items,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(placed))
}

// ListOrders возвращает заказы, новые первыми. Параметр limit опционален.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListOrders(limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrderToResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOrder возвращает заказ по бизнес-идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	found, err := h.orders.GetOrder(orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(found))
}

// GetTimeline возвращает события жизненного цикла заказа.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	events, err := h.orders.Timeline(orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapTimelineToResponse(events))
}

// UpdateStatus меняет статус заказа. Домен статусов открытый, поэтому
// принимается любое непустое значение.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "status is required")
		return
	}

	updated, err := h.orders.UpdateStatus(orderID, domain.OrderStatus(req.Status))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(updated))
}

// AddItem добавляет позицию в существующий заказ.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	updated, err := h.orders.AddItem(orderID, req.ProductID, req.Qty)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(updated))
}

// RemoveItem удаляет позицию из заказа по её идентификатору.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "item id must be an integer")
		return
	}

	updated, err := h.orders.RemoveItem(orderID, itemID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(updated))
}

// DeleteOrder удаляет заказ вместе со всеми позициями.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.orders.DeleteOrder(orderID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProducts возвращает все товары каталога.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, mapProductToResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProduct возвращает один товар каталога.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "product id must be an integer")
		return
	}

	product, err := h.catalog.FindProductByID(productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapProductToResponse(product))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	writeError(w, status, code, err.Error())
}
