package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// orderDateLayout — формат календарной даты заказа в API.
const orderDateLayout = "2006-01-02"

type placeOrderRequest struct {
	CustomerName string                  `json:"customer_name"`
	Email        string                  `json:"email"`
	OrderDate    string                  `json:"order_date"`
	Items        []placeOrderItemRequest `json:"items"`
}

type placeOrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       int32 `json:"qty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       int32 `json:"qty"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	OrderID      string              `json:"order_id"`
	CustomerName string              `json:"customer_name"`
	Email        string              `json:"email"`
	Status       string              `json:"status"`
	OrderDate    string              `json:"order_date"`
	Items        []orderItemResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Version      int64               `json:"version"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

type orderItemResponse struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	Qty        int32           `json:"qty"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type productResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	StockQty  int32           `json:"stock_qty"`
}

type timelineEventResponse struct {
	OrderID  string `json:"order_id"`
	Type     string `json:"type"`
	Reason   string `json:"reason,omitempty"`
	Occurred string `json:"occurred_at"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			TotalPrice: item.TotalPrice,
		})
	}

	return orderResponse{
		ID:           order.ID,
		OrderID:      order.OrderID,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		Status:       string(order.Status),
		OrderDate:    order.OrderDate.Format(orderDateLayout),
		Items:        items,
		Total:        order.Total(),
		Version:      order.Version,
		CreatedAt:    order.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    order.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapProductToResponse(product domain.Product) productResponse {
	return productResponse{
		ID:        product.ID,
		Name:      product.Name,
		Brand:     product.Brand,
		Category:  product.Category,
		UnitPrice: product.UnitPrice,
		StockQty:  product.StockQty,
	}
}

func mapTimelineToResponse(events []domain.TimelineEvent) []timelineEventResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, timelineEventResponse{
			OrderID:  event.OrderID,
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error:   code,
		Message: msg,
	})
}

// statusForError отображает доменные ошибки на HTTP-статусы.
func statusForError(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsConstraintViolation(err), domain.IsVersionConflict(err):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
