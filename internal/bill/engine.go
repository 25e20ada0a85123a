// Package bill holds the aggregate-maintenance logic for an open sales
// transaction: line-item merge, quantity adjustment, correction application
// and total recomputation. Totals are kept at full decimal precision; only
// presented values are rounded, so intermediate sums never drift.
package bill

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

var (
	// ErrBillTerminated is returned for any item mutation attempted on a
	// closed, paid or cancelled bill.
	ErrBillTerminated = errors.New("bill is terminated")
	// ErrItemNotFound is returned when the target line does not exist.
	ErrItemNotFound = errors.New("bill item not found")
	// ErrInvalidQuantity is returned for zero or negative added quantities.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Default rates observed in production configuration.
var (
	DefaultServiceChargeRate = decimal.RequireFromString("0.125")
	DefaultTaxRate           = decimal.RequireFromString("0.20")
)

// Engine recomputes bill aggregates under fixed numeric rules. Service charge
// and tax are both computed on the subtotal (additive, not compounding).
type Engine struct {
	serviceChargeRate decimal.Decimal
	taxRate           decimal.Decimal
}

// NewEngine builds an engine with the given rates; negative rates fall back
// to the defaults (12.5% service charge, 20% tax).
func NewEngine(serviceChargeRate, taxRate decimal.Decimal) *Engine {
	if serviceChargeRate.IsNegative() {
		serviceChargeRate = DefaultServiceChargeRate
	}
	if taxRate.IsNegative() {
		taxRate = DefaultTaxRate
	}
	return &Engine{serviceChargeRate: serviceChargeRate, taxRate: taxRate}
}

// NewBill opens a transaction, optionally tied to a table.
func (e *Engine) NewBill(tableID string) *model.Bill {
	now := model.NowMillis()
	b := &model.Bill{
		ID:        uuid.NewString(),
		TableID:   tableID,
		Items:     []model.BillItem{},
		Status:    model.BillOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.recompute(b)
	return b
}

// AddItem merges quantity into an existing line for the same product, or
// appends a new line, then recomputes totals.
func (e *Engine) AddItem(b *model.Bill, p model.Product, quantity int) error {
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrBillTerminated, b.Status)
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if item := b.ItemByProduct(p.ID); item != nil {
		item.Quantity += quantity
	} else {
		b.Items = append(b.Items, model.BillItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  quantity,
		})
	}
	e.recompute(b)
	return nil
}

// AdjustQuantity applies a signed delta to a line. The quantity floor is 1:
// a decrement that would reach 0 removes the line entirely.
func (e *Engine) AdjustQuantity(b *model.Bill, itemID string, delta int) error {
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrBillTerminated, b.Status)
	}
	item := b.Item(itemID)
	if item == nil {
		return ErrItemNotFound
	}

	next := item.Quantity + delta
	if next < 1 {
		return e.RemoveItem(b, itemID)
	}
	item.Quantity = next
	e.recompute(b)
	return nil
}

// RemoveItem drops a line unconditionally.
func (e *Engine) RemoveItem(b *model.Bill, itemID string) error {
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrBillTerminated, b.Status)
	}
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items = append(b.Items[:i:i], b.Items[i+1:]...)
			e.recompute(b)
			return nil
		}
	}
	return ErrItemNotFound
}

// Terminate moves the bill into an absorbing state. Terminating twice fails:
// a bill is closed, paid or cancelled exactly once.
func (e *Engine) Terminate(b *model.Bill, status model.BillStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("%q is not a terminal status", status)
	}
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrBillTerminated, b.Status)
	}
	b.Status = status
	b.UpdatedAt = model.NowMillis()
	return nil
}

// recompute re-derives every aggregate from the line items:
//
//	item.totalPrice = unitPrice × quantity
//	subtotal        = Σ item.totalPrice
//	serviceCharge   = subtotal × serviceChargeRate
//	tax             = subtotal × taxRate      (on subtotal, not compounded)
//	total           = subtotal + serviceCharge + tax − discounts
//
// Per-item discounts accumulate into the bill-level Discounts figure rather
// than eroding the line totals, so the subtotal invariant stays exact.
func (e *Engine) recompute(b *model.Bill) {
	subtotal := decimal.Zero
	discounts := decimal.Zero
	for i := range b.Items {
		item := &b.Items[i]
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.TotalPrice)
		discounts = discounts.Add(item.Discount)
	}
	b.Subtotal = subtotal
	b.ServiceCharge = subtotal.Mul(e.serviceChargeRate)
	b.Tax = subtotal.Mul(e.taxRate)
	b.Discounts = discounts.Add(b.Adjustments)
	b.Total = subtotal.Add(b.ServiceCharge).Add(b.Tax).Sub(b.Discounts)
	b.UpdatedAt = model.NowMillis()
}
