package model

import (
	"github.com/shopspring/decimal"
)

// CorrectionType classifies an operator adjustment to a bill or line item.
type CorrectionType string

const (
	CorrectionVoid   CorrectionType = "void"
	CorrectionWaste  CorrectionType = "waste"
	CorrectionEdit   CorrectionType = "edit"
	CorrectionRefund CorrectionType = "refund"
	CorrectionComp   CorrectionType = "comp"
)

// CorrectionStatus tracks the review state of an applied correction.
type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
)

// Correction records an adjustment applied to a Bill or a single BillItem,
// with the original and corrected quantity/amount for the audit trail.
type Correction struct {
	ID              string           `json:"id"`
	BillID          string           `json:"billId"`
	BillItemID      string           `json:"billItemId,omitempty"`
	Type            CorrectionType   `json:"type"`
	Reason          string           `json:"reason,omitempty"`
	OriginalQty     int              `json:"originalQty"`
	CorrectedQty    int              `json:"correctedQty"`
	OriginalAmount  decimal.Decimal  `json:"originalAmount"`
	CorrectedAmount decimal.Decimal  `json:"correctedAmount"`
	Amount          decimal.Decimal  `json:"amount"` // value removed from the bill
	Status          CorrectionStatus `json:"status"`
	AppliedBy       string           `json:"appliedBy,omitempty"`
	CreatedAt       int64            `json:"createdAt"`
	UpdatedAt       int64            `json:"updatedAt"`
}

// CorrectionRule is the per-type validation policy a correction is checked
// against before it is applied.
type CorrectionRule struct {
	Type                   CorrectionType   `json:"type"`
	RequireManagerApproval bool             `json:"requireManagerApproval"`
	RequireReason          bool             `json:"requireReason"`
	AllowPartialQuantity   bool             `json:"allowPartialQuantity"`
	MaxAmount              *decimal.Decimal `json:"maxAmount,omitempty"`
}
