package model

import (
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle state of a Bill. Closed, paid and cancelled are
// absorbing: once set, no item mutation is permitted.
type BillStatus string

const (
	BillOpen      BillStatus = "open"
	BillClosed    BillStatus = "closed"
	BillPaid      BillStatus = "paid"
	BillCancelled BillStatus = "cancelled"
)

// Terminal reports whether the status forbids further item mutation.
func (s BillStatus) Terminal() bool {
	return s == BillClosed || s == BillPaid || s == BillCancelled
}

// BillItem is one line of an open transaction. TotalPrice is derived
// (UnitPrice x Quantity) and recomputed on every mutation; the per-line
// Discount accumulates into the bill-level Discounts figure instead.
type BillItem struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Discount   decimal.Decimal `json:"discount,omitempty"`
	TaxRate    *decimal.Decimal `json:"taxRate,omitempty"`
}

// Bill is the only entity with derived fields. Subtotal, ServiceCharge, Tax
// and Total are maintained by the bill engine and are never stored stale.
type Bill struct {
	ID            string          `json:"id"`
	TableID       string          `json:"tableId,omitempty"`
	TicketNumber  int             `json:"ticketNumber,omitempty"`
	Items         []BillItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	Tax           decimal.Decimal `json:"tax"`
	// Adjustments accumulates bill-level correction amounts (comps); it
	// survives recomputation, unlike the per-item discount sum.
	Adjustments decimal.Decimal `json:"adjustments"`
	Discounts   decimal.Decimal `json:"discounts"`
	Total       decimal.Decimal `json:"total"`
	Status      BillStatus      `json:"status"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
}

// Item returns a pointer to the line with the given item id, or nil.
func (b *Bill) Item(itemID string) *BillItem {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return &b.Items[i]
		}
	}
	return nil
}

// ItemByProduct returns a pointer to the line for the given product, or nil.
func (b *Bill) ItemByProduct(productID string) *BillItem {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return &b.Items[i]
		}
	}
	return nil
}

// Product is the minimal product view the bill engine needs when adding a
// line: identity and unit price. Catalogue details stay with their own kind.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
