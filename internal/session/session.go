package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/internal/cart"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

// State is the conversational phase of an order session.
type State string

const (
	// StateTakingOrder accepts new items; nothing is mid-customization.
	StateTakingOrder State = "taking_order"
	// StateCustomizing means one line is actively collecting choices.
	StateCustomizing State = "customizing"
	// StateCollectingItems means the active line is done but other lines
	// still have unmet required groups.
	StateCollectingItems State = "collecting_items"
	// StateFinalizing is the transient checkout phase.
	StateFinalizing State = "finalizing"
)

// Session owns one customer's cart, identity fields and conversational
// state. All methods serialize on the session's own mutex, so concurrent
// requests against the same session id cannot interleave mutations.
type Session struct {
	mu sync.Mutex

	id       string
	resolver cart.ItemResolver

	customerName  string
	customerPhone string
	cart          *cart.Cart
	state         State
	customizing   uuid.UUID

	lastActive time.Time
}

func New(id string, resolver cart.ItemResolver) *Session {
	return &Session{
		id:         id,
		resolver:   resolver,
		cart:       cart.New(),
		state:      StateTakingOrder,
		lastActive: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CustomizingLine reports the line currently collecting choices, when any.
func (s *Session) CustomizingLine() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customizing, s.customizing != uuid.Nil
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// AddResult reports what an add did to the cart and where the conversation
// should go next.
type AddResult struct {
	Line               cart.Line
	Merged             bool
	NeedsCustomization bool
	State              State
}

// AddItem adds the item to the cart. When the new line has an unmet
// single-select group the session moves to customizing and points at it.
func (s *Session) AddItem(item *menu.Item, sizeName string, quantity int, initialCustomizations []string) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	line, merged, err := s.cart.Add(item, sizeName, quantity, initialCustomizations)
	if err != nil {
		return AddResult{}, err
	}

	if cart.NeedsCustomization(s.resolver, line) {
		s.state = StateCustomizing
		s.customizing = line.LineID
	} else {
		s.reconcile(nil)
	}

	return AddResult{
		Line:               line.Clone(),
		Merged:             merged,
		NeedsCustomization: s.customizing == line.LineID,
		State:              s.state,
	}, nil
}

// Customize applies an option to a line. With no matcher the line being
// customized is targeted first, then the cart's own fallback chain.
func (s *Session) Customize(matcher, group, option string, quantity int) (cart.Line, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if matcher == "" && s.customizing != uuid.Nil {
		matcher = s.customizing.String()
	}

	line, err := s.cart.AddCustomization(s.resolver, matcher, group, option, quantity)
	if err != nil {
		return cart.Line{}, s.state, err
	}

	s.reconcile(line)
	return line.Clone(), s.state, nil
}

// RemoveCustomization strips an option by name. A line whose required group
// reopens becomes the line being customized again.
func (s *Session) RemoveCustomization(matcher, option string) (cart.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	line, ok := s.cart.RemoveCustomization(matcher, option)
	if !ok {
		return cart.Line{}, false
	}
	s.reconcile(line)
	return line.Clone(), true
}

func (s *Session) UpdateQuantity(matcher string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.UpdateQuantity(matcher, quantity)
}

// RemoveItem removes a line. Removing the line being customized clears the
// pointer before the state is reconciled, so it never dangles.
func (s *Session) RemoveItem(matcher string) (cart.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	line, ok := s.cart.Remove(matcher)
	if !ok {
		return cart.Line{}, false
	}
	if s.customizing == line.LineID {
		s.customizing = uuid.Nil
	}
	s.reconcile(nil)
	return line.Clone(), true
}

func (s *Session) SetCustomer(name, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if name = strings.TrimSpace(name); name != "" {
		s.customerName = name
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		s.customerPhone = phone
	}
}

func (s *Session) CustomerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerName
}

func (s *Session) CustomerPhone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerPhone
}

func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.Summary()
}

func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// CartLines deep-copies the current lines for read-only views.
func (s *Session) CartLines() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

// ClearCart drops the whole order and resets the conversation.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cart.Clear()
	s.customizing = uuid.Nil
	s.state = StateTakingOrder
}

// Checkout is the snapshot-and-reset half of finalization. Preconditions are
// checked in order, the first failure wins and leaves the session untouched.
// On success the lines are deep-copied, then the cart is cleared and the
// customer fields reset regardless of how the later submission goes.
type Checkout struct {
	SessionID     string
	CustomerName  string
	CustomerPhone string
	Lines         []cart.Line
	Total         decimal.Decimal
}

func (s *Session) Checkout() (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "your cart is empty, add something before checking out").
			WithDetails(map[string]any{"reason": "EMPTY_CART"})
	}
	if strings.TrimSpace(s.customerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "I need a name for the order before checking out").
			WithDetails(map[string]any{"reason": "MISSING_CUSTOMER_NAME"})
	}

	s.state = StateFinalizing
	checkout := &Checkout{
		SessionID:     s.id,
		CustomerName:  s.customerName,
		CustomerPhone: s.customerPhone,
		Lines:         s.cart.Snapshot(),
		Total:         s.cart.Total(),
	}

	s.cart.Clear()
	s.customerName = ""
	s.customerPhone = ""
	s.customizing = uuid.Nil
	s.state = StateTakingOrder

	return checkout, nil
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// reconcile recomputes the state from the cart's pending lines. A still
// pending pointer keeps the session customizing; a pending lastTouched line
// takes the pointer over; otherwise remaining pending lines park the session
// in collecting-items until the caller addresses one of them.
func (s *Session) reconcile(lastTouched *cart.Line) {
	pending := s.cart.PendingLines(s.resolver)
	if len(pending) == 0 {
		s.state = StateTakingOrder
		s.customizing = uuid.Nil
		return
	}

	if s.customizing != uuid.Nil {
		for _, line := range pending {
			if line.LineID == s.customizing {
				s.state = StateCustomizing
				return
			}
		}
	}

	if lastTouched != nil {
		for _, line := range pending {
			if line.LineID == lastTouched.LineID {
				s.customizing = lastTouched.LineID
				s.state = StateCustomizing
				return
			}
		}
	}

	s.customizing = uuid.Nil
	s.state = StateCollectingItems
}
