package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// ScopeRequest replaces the tenant selection wholesale.
type ScopeRequest struct {
	CompanyID string `json:"companyId" validate:"required"`
	SiteID    string `json:"siteId"`
	SubsiteID string `json:"subsiteId"`
}

// OpenBillRequest starts a transaction, optionally tied to a table.
type OpenBillRequest struct {
	TableID string `json:"tableId"`
}

// AddItemRequest adds (or merges) a product line on an open bill.
type AddItemRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

// AdjustQuantityRequest applies a signed delta to a line's quantity.
type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CorrectionRequest applies a void/waste/edit/refund/comp to a bill or line.
type CorrectionRequest struct {
	BillItemID   string          `json:"billItemId"`
	Type         string          `json:"type" validate:"required,oneof=void waste edit refund comp"`
	Reason       string          `json:"reason"`
	CorrectedQty int             `json:"correctedQty" validate:"min=0"`
	Amount       decimal.Decimal `json:"amount"`
}

// TerminateRequest moves a bill into a terminal status.
type TerminateRequest struct {
	Status string `json:"status" validate:"required,oneof=closed paid cancelled"`
}

// BillItemResponse presents one line with money rounded to 2 decimal places.
type BillItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Name       string `json:"name,omitempty"`
	UnitPrice  string `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"totalPrice"`
}

// BillResponse presents a bill. Totals are computed at full precision and
// rounded here, at the presentation edge only.
type BillResponse struct {
	ID            string             `json:"id"`
	TableID       string             `json:"tableId,omitempty"`
	Items         []BillItemResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	ServiceCharge string             `json:"serviceCharge"`
	Tax           string             `json:"tax"`
	Discounts     string             `json:"discounts"`
	Total         string             `json:"total"`
	Status        string             `json:"status"`
	CreatedAt     int64              `json:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt"`
}

// NewBillResponse maps a bill aggregate to its presentation shape.
func NewBillResponse(b *model.Bill) *BillResponse {
	items := make([]BillItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BillItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice.StringFixed(2),
		})
	}
	return &BillResponse{
		ID:            b.ID,
		TableID:       b.TableID,
		Items:         items,
		Subtotal:      b.Subtotal.StringFixed(2),
		ServiceCharge: b.ServiceCharge.StringFixed(2),
		Tax:           b.Tax.StringFixed(2),
		Discounts:     b.Discounts.StringFixed(2),
		Total:         b.Total.StringFixed(2),
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// CorrectionResponse presents an applied correction.
type CorrectionResponse struct {
	ID         string `json:"id"`
	BillID     string `json:"billId"`
	BillItemID string `json:"billItemId,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

func NewCorrectionResponse(c *model.Correction) *CorrectionResponse {
	return &CorrectionResponse{
		ID:         c.ID,
		BillID:     c.BillID,
		BillItemID: c.BillItemID,
		Type:       string(c.Type),
		Reason:     c.Reason,
		Amount:     c.Amount.StringFixed(2),
		Status:     string(c.Status),
	}
}
