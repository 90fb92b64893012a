package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/pkg/config"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

// Submitter pushes a finalized order to the order desk. The outcome is
// interpreted strictly as pass/fail by the finalizer.
type Submitter interface {
	Submit(ctx context.Context, order *CompletedOrder) error
}

// HTTPSubmitter posts orders to the upstream order endpoint in the shape it
// expects: identity fields at the top, line items nested under order_json.
type HTTPSubmitter struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPSubmitter(cfg config.CatalogConfig) *HTTPSubmitter {
	return &HTTPSubmitter{
		url:    cfg.OrderURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type submitItem struct {
	Name           string            `json:"name"`
	Size           string            `json:"size,omitempty"`
	Quantity       int               `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	Customizations []submitCustomize `json:"customizations,omitempty"`
}

type submitCustomize struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type submitPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	OrderJSON submitOrderJSON `json:"order_json"`
	Total     decimal.Decimal `json:"total"`
}

type submitOrderJSON struct {
	Items []submitItem `json:"items"`
}

func (s *HTTPSubmitter) Submit(ctx context.Context, order *CompletedOrder) error {
	payload := submitPayload{
		ID:    order.OrderID,
		Name:  order.CustomerName,
		Phone: order.CustomerPhone,
		Total: order.Total,
	}
	for _, line := range order.Lines {
		item := submitItem{
			Name:      line.DisplayName,
			Size:      line.SelectedSize,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		for _, custom := range line.Customizations {
			item.Customizations = append(item.Customizations, submitCustomize{
				Name:     custom.Name,
				Price:    custom.Price,
				Quantity: custom.Quantity,
			})
		}
		payload.OrderJSON.Items = append(payload.OrderJSON.Items, item)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building order request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("order service responded %d", resp.StatusCode))
	}
	return nil
}

var _ Submitter = (*HTTPSubmitter)(nil)
