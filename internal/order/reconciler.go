package order

import (
	"storefront_system/internal/domain"

	"github.com/sirupsen/logrus"
)

// Callback outcomes reported by the provider (or by an admin override,
// which reuses the same guarded procedure).
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Reconciler closes the loop on asynchronous fulfillment: it is the only
// writer of the pending -> success/failed transition driven by callbacks.
type Reconciler struct {
	orders Store
	ledger Ledger
}

func NewReconciler(orders Store, ledger Ledger) *Reconciler {
	return &Reconciler{orders: orders, ledger: ledger}
}

// HandleCallback transitions the order the reference points at to a
// terminal state exactly once. Duplicate callbacks and callbacks for
// already-resolved orders are no-ops, not errors, so at most one refund is
// ever issued per order. The status flip happens before the refund is
// attempted.
func (r *Reconciler) HandleCallback(reference, outcome string, fulfillmentCode *string) error {
	o, err := r.orders.ByReference(reference)
	if err != nil {
		return err
	}

	status := domain.OrderFailed
	if outcome == OutcomeSuccess {
		status = domain.OrderSuccess
	}
	won, err := r.orders.TransitionIfPending(o.ID, status, fulfillmentCode)
	if err != nil {
		return err
	}
	if !won {
		if outcome == OutcomeSuccess && o.Status == domain.OrderFailed {
			// The provider confirmed an order we already failed and refunded,
			// typically after a dispatch timeout. Neither side is "right";
			// flag it for a human instead of guessing.
			logrus.WithFields(logrus.Fields{
				"event":      "late_callback_discarded",
				"order_id":   o.ID,
				"reference":  reference,
				"was_status": o.Status,
				"outcome":    outcome,
			}).Warn("Late success callback on refunded order, manual audit required")
			return nil
		}
		logrus.WithFields(logrus.Fields{
			"order_id":  o.ID,
			"reference": reference,
			"status":    o.Status,
			"outcome":   outcome,
		}).Debug("Duplicate callback ignored")
		return nil
	}

	if status == domain.OrderFailed {
		if _, err := r.ledger.Credit(o.UserID, o.Amount); err != nil {
			// The order is already failed; only the refund is missing
			logrus.WithFields(logrus.Fields{
				"event":     "unrecovered_compensation",
				"user_id":   o.UserID,
				"order_id":  o.ID,
				"amount":    o.Amount.String(),
				"reference": reference,
				"error":     err.Error(),
			}).Error("Callback refund failed, manual reconciliation required")
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"reference": reference,
		"outcome":   outcome,
		"status":    status,
	}).Info("Callback reconciled")
	return nil
}
