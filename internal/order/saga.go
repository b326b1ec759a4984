package order

import (
	"context"
	"fmt"
	"time"

	"storefront_system/internal/domain"
	"storefront_system/internal/upstream"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// priceTolerance is the absolute difference allowed between the unit price
// the client submitted and the catalog price. Anything larger is rejected.
var priceTolerance = decimal.NewFromFloat(0.01)

// CreateOrderInput carries a customer's order request. UnitPrice is what
// the storefront showed the customer; the catalog price stays authoritative
// and is what actually gets charged.
type CreateOrderInput struct {
	UserID      uint
	ProductID   uint
	Quantity    int
	UnitPrice   decimal.Decimal
	PlayerUID   string // required for game-topup
	PhoneNumber string // required for mobile-topup
}

// Saga orchestrates order creation: validate, debit, dispatch, persist,
// and compensate with a refund when anything fails after the debit. The
// debit and the upstream call are deliberately not one atomic unit; holding
// a database transaction open across a third-party network call is not
// acceptable, so the window between them is closed by compensation here and
// by the reconciler's guarded transition later.
type Saga struct {
	users    UserStore
	orders   Store
	catalog  Catalog
	ledger   Ledger
	upstream upstream.Client
}

func NewSaga(users UserStore, orders Store, catalog Catalog, ledger Ledger, client upstream.Client) *Saga {
	return &Saga{users: users, orders: orders, catalog: catalog, ledger: ledger, upstream: client}
}

// CreateOrder runs the full saga. On success the returned order is either
// success (instant-code products, code included) or pending (everything
// else, awaiting the provider callback).
func (s *Saga) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	user, err := s.users.UserByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserActive {
		return nil, domain.ErrAccountNotActive
	}
	product, err := s.catalog.Product(in.ProductID)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	unitPrice, err := s.catalog.ResolvePrice(in.ProductID, user.Role)
	if err != nil {
		return nil, err
	}
	if in.UnitPrice.Sub(unitPrice).Abs().GreaterThan(priceTolerance) {
		return nil, domain.ErrPriceMismatch
	}
	if err := validateTypeFields(product.Type, in); err != nil {
		return nil, err
	}

	// Reservation step: the debit commits on its own before the provider is
	// contacted. Every failure beyond this point must refund it.
	total := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if total.IsPositive() {
		if _, err := s.ledger.Debit(in.UserID, total); err != nil {
			return nil, err
		}
	}

	reference := uuid.NewString()
	result, err := s.upstream.Dispatch(ctx, buildRequest(product, reference, in))
	if err != nil {
		return nil, s.compensate(in.UserID, total, reference, err)
	}

	o := &domain.Order{
		UserID:            in.UserID,
		ProductID:         product.ID,
		Quantity:          in.Quantity,
		Amount:            total,
		Status:            domain.OrderPending,
		UpstreamReference: result.Reference,
	}
	if product.Type == domain.TypeInstantCode {
		// Only instant-code fulfillment is final at creation time
		o.Status = domain.OrderSuccess
		if result.Code != "" {
			code := result.Code
			o.FulfillmentCode = &code
		}
	}
	if err := s.orders.Create(o); err != nil {
		return nil, s.compensate(in.UserID, total, reference, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   in.UserID,
		"order_id":  o.ID,
		"product":   product.ID,
		"amount":    total.String(),
		"status":    o.Status,
		"reference": o.UpstreamReference,
		"timestamp": time.Now().Format(time.RFC3339),
	}).Info("Order created")
	return o, nil
}

// CancelOrder lets the owner abort an order that is still pending. The
// guarded flip decides the race against a concurrent provider callback:
// whichever transition lands first wins, the other is a no-op.
func (s *Saga) CancelOrder(orderID, userID uint) (*domain.Order, error) {
	o, err := s.orders.ByID(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotOrderOwner
	}
	won, err := s.orders.TransitionIfPending(o.ID, domain.OrderFailed, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrOrderNotPending
	}
	o.Status = domain.OrderFailed
	if _, err := s.ledger.Credit(o.UserID, o.Amount); err != nil {
		// Status already flipped; the money needs an operator now
		logrus.WithFields(logrus.Fields{
			"event":     "unrecovered_compensation",
			"user_id":   o.UserID,
			"order_id":  o.ID,
			"amount":    o.Amount.String(),
			"reference": o.UpstreamReference,
			"error":     err.Error(),
		}).Error("Cancellation refund failed, manual reconciliation required")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   o.UserID,
		"order_id":  o.ID,
		"amount":    o.Amount.String(),
		"reference": o.UpstreamReference,
	}).Info("Order cancelled and refunded")
	return o, nil
}

// compensate refunds the reservation debit and re-raises the original
// error. A failing refund is never surfaced over the original error; it is
// logged as an operational alert and left to manual reconciliation.
func (s *Saga) compensate(userID uint, total decimal.Decimal, reference string, cause error) error {
	if !total.IsPositive() {
		return cause
	}
	if _, err := s.ledger.Credit(userID, total); err != nil {
		logrus.WithFields(logrus.Fields{
			"event":     "unrecovered_compensation",
			"user_id":   userID,
			"amount":    total.String(),
			"reference": reference,
			"cause":     cause.Error(),
			"error":     err.Error(),
		}).Error("Compensation credit failed, manual reconciliation required")
		return cause
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    total.String(),
		"reference": reference,
		"cause":     cause.Error(),
	}).Warn("Order failed after debit, wallet refunded")
	return cause
}

func validateTypeFields(productType string, in CreateOrderInput) error {
	switch productType {
	case domain.TypeGameTopup:
		if in.PlayerUID == "" {
			return fmt.Errorf("%w: player uid is required", domain.ErrValidation)
		}
	case domain.TypeMobileTopup:
		if in.PhoneNumber == "" {
			return fmt.Errorf("%w: phone number is required", domain.ErrValidation)
		}
	}
	return nil
}

// buildRequest maps a product type to its request variant.
func buildRequest(p *domain.Product, reference string, in CreateOrderInput) upstream.Request {
	switch p.Type {
	case domain.TypeInstantCode:
		return upstream.InstantCodeRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity}
	case domain.TypePreorderCode:
		return upstream.PreorderCodeRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity}
	case domain.TypeGameTopup:
		return upstream.GameTopupRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity, PlayerUID: in.PlayerUID}
	case domain.TypeMobileTopup:
		return upstream.MobileTopupRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity, PhoneNumber: in.PhoneNumber}
	case domain.TypeCashcard:
		return upstream.CashcardRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity}
	default:
		return upstream.GenericRequest{UpstreamProductID: p.UpstreamID, Reference: reference, Quantity: in.Quantity}
	}
}
