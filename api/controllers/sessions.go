package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/api/responses"
	"github.com/jimmynenos/ordering-backend/api/validators"
	"github.com/jimmynenos/ordering-backend/internal/cart"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/orders"
	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

func requestSession(registry *session.Registry, r *http.Request) (*session.Session, error) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return registry.Get(id), nil
}

type cartView struct {
	Lines   []cart.Line     `json:"lines"`
	Total   decimal.Decimal `json:"total"`
	Summary string          `json:"summary"`
}

type sessionView struct {
	SessionID     string   `json:"session_id"`
	State         string   `json:"state"`
	CustomerName  string   `json:"customer_name,omitempty"`
	CustomerPhone string   `json:"customer_phone,omitempty"`
	Customizing   string   `json:"customizing_line_id,omitempty"`
	Cart          cartView `json:"cart"`
}

func newCartView(sess *session.Session) cartView {
	return cartView{
		Lines:   sess.CartLines(),
		Total:   sess.Total(),
		Summary: sess.Summary(),
	}
}

func newSessionView(sess *session.Session) sessionView {
	view := sessionView{
		SessionID:     sess.ID(),
		State:         string(sess.State()),
		CustomerName:  sess.CustomerName(),
		CustomerPhone: sess.CustomerPhone(),
		Cart:          newCartView(sess),
	}
	if lineID, ok := sess.CustomizingLine(); ok {
		view.Customizing = lineID.String()
	}
	return view
}

// SessionGet renders the whole conversational state for a session id,
// creating the session on first sight.
func SessionGet(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(sess))
	}
}

type addItemRequest struct {
	Item           string   `json:"item" validate:"required_without=ItemID"`
	ItemID         string   `json:"item_id" validate:"required_without=Item"`
	Size           string   `json:"size"`
	Quantity       int      `json:"quantity" validate:"omitempty,gt=0"`
	Customizations []string `json:"customizations"`
}

type addItemResponse struct {
	Line               cart.Line       `json:"line"`
	Merged             bool            `json:"merged"`
	NeedsCustomization bool            `json:"needs_customization"`
	State              string          `json:"state"`
	Total              decimal.Decimal `json:"total"`
}

// CartAddItem resolves the requested item against the menu, either by exact
// id or by fuzzy name, and adds it to the session's cart.
func CartAddItem(registry *session.Registry, menuSvc *menu.Service, cfg config.SessionConfig, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := resolveMenuItem(menuSvc, cfg, payload.ItemID, payload.Item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		result, err := sess.AddItem(item, payload.Size, quantity, payload.Customizations)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncCartMutation("add")

		responses.WriteSuccessStatus(w, http.StatusCreated, addItemResponse{
			Line:               result.Line,
			Merged:             result.Merged,
			NeedsCustomization: result.NeedsCustomization,
			State:              string(result.State),
			Total:              sess.Total(),
		})
	}
}

func resolveMenuItem(menuSvc *menu.Service, cfg config.SessionConfig, id, query string) (*menu.Item, error) {
	if id != "" {
		item, err := menuSvc.ItemByID(menu.ItemID(id))
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no menu item with id %q", id))
		}
		return item, nil
	}

	item, err := menuSvc.ResolveItem(query, cfg.ResolveScore)
	if err != nil {
		return nil, err
	}
	if item == nil {
		notFound := pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("I couldn't find %q on our menu", query))
		if suggestions, err := menuSvc.Suggestions(query, cfg.SuggestLimit, cfg.SuggestScore); err == nil && len(suggestions) > 0 {
			notFound = notFound.WithDetails(map[string]any{"suggestions": suggestions})
		}
		return nil, notFound
	}
	return item, nil
}

type updateQuantityRequest struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

func CartUpdateQuantity(registry *session.Registry, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := sess.UpdateQuantity(payload.Item, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("I couldn't find %q in your cart", payload.Item)))
			return
		}
		m.IncCartMutation("update_quantity")

		responses.WriteSuccess(w, newCartView(sess))
	}
}

type removeItemRequest struct {
	Item string `json:"item" validate:"required"`
}

func CartRemoveItem(registry *session.Registry, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		removed, ok := sess.RemoveItem(payload.Item)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("I couldn't find %q in your cart", payload.Item)))
			return
		}
		m.IncCartMutation("remove")

		responses.WriteSuccess(w, map[string]any{
			"removed": removed,
			"state":   string(sess.State()),
			"cart":    newCartView(sess),
		})
	}
}

type addCustomizationRequest struct {
	Item     string `json:"item"`
	Group    string `json:"group" validate:"required"`
	Option   string `json:"option" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,gt=0"`
}

func CartAddCustomization(registry *session.Registry, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCustomizationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		line, state, err := sess.Customize(payload.Item, payload.Group, payload.Option, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncCartMutation("add_customization")

		responses.WriteSuccess(w, map[string]any{
			"line":  line,
			"state": string(state),
			"total": sess.Total(),
		})
	}
}

type removeCustomizationRequest struct {
	Item   string `json:"item"`
	Option string `json:"option" validate:"required"`
}

func CartRemoveCustomization(registry *session.Registry, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeCustomizationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, ok := sess.RemoveCustomization(payload.Item, payload.Option)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("I couldn't find a %q customization in your cart", payload.Option)))
			return
		}
		m.IncCartMutation("remove_customization")

		responses.WriteSuccess(w, map[string]any{
			"line":  line,
			"state": string(sess.State()),
			"total": sess.Total(),
		})
	}
}

func CartGet(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(sess))
	}
}

func CartClear(registry *session.Registry, logg *logger.Logger, m *metrics.OrderingMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.ClearCart()
		m.IncCartMutation("clear")
		responses.WriteSuccess(w, newCartView(sess))
	}
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func CustomerUpdate(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(payload.Name) == "" && strings.TrimSpace(payload.Phone) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation,
				"a name or phone number is required"))
			return
		}

		sess.SetCustomer(payload.Name, payload.Phone)
		responses.WriteSuccess(w, map[string]string{
			"customer_name":  sess.CustomerName(),
			"customer_phone": sess.CustomerPhone(),
		})
	}
}

type checkoutResponse struct {
	OrderID   string          `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	Lines     []cart.Line     `json:"lines"`
	Submitted bool            `json:"submitted"`
	State     string          `json:"state"`
}

// Checkout finalizes the session's order. A remote submission failure is not
// an error here; the order is confirmed locally either way.
func Checkout(registry *session.Registry, finalizer *orders.Finalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requestSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := finalizer.Finalize(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:   result.Order.OrderID,
			Total:     result.Order.Total,
			Lines:     result.Order.Lines,
			Submitted: result.Submitted,
			State:     string(sess.State()),
		})
	}
}
