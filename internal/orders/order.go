package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/internal/cart"
	"github.com/jimmynenos/ordering-backend/internal/session"
)

// DefaultPhone stands in when the customer never gave a number; the order
// desk expects the field to always be present.
const DefaultPhone = "Not provided"

// CompletedOrder is the immutable record produced at checkout. Lines are a
// deep copy taken at finalize time; later cart activity cannot touch them.
type CompletedOrder struct {
	OrderID       string          `json:"order_id"`
	SessionID     string          `json:"session_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Lines         []cart.Line     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewOrderID mints an opaque short token, "order_" plus 8 hex chars.
func NewOrderID() string {
	return fmt.Sprintf("order_%s", uuid.NewString()[:8])
}

func newCompletedOrder(checkout *session.Checkout) *CompletedOrder {
	phone := checkout.CustomerPhone
	if phone == "" {
		phone = DefaultPhone
	}
	return &CompletedOrder{
		OrderID:       NewOrderID(),
		SessionID:     checkout.SessionID,
		CustomerName:  checkout.CustomerName,
		CustomerPhone: phone,
		Lines:         checkout.Lines,
		Total:         checkout.Total,
		CreatedAt:     time.Now().UTC(),
	}
}
