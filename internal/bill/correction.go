package bill

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// RejectedError carries the specific reason a correction failed validation.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("correction rejected: %s", e.Reason)
}

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// RuleSet maps each correction type to its validation policy.
type RuleSet map[model.CorrectionType]model.CorrectionRule

// DefaultRules is the rule set shipped when the tenant configures none.
// Refunds and comps need a manager; voids and waste need a stated reason.
func DefaultRules() RuleSet {
	comp := decimal.NewFromInt(50)
	return RuleSet{
		model.CorrectionVoid: {
			Type: model.CorrectionVoid, RequireReason: true, AllowPartialQuantity: true,
		},
		model.CorrectionWaste: {
			Type: model.CorrectionWaste, RequireReason: true, AllowPartialQuantity: true,
		},
		model.CorrectionEdit: {
			Type: model.CorrectionEdit, AllowPartialQuantity: true,
		},
		model.CorrectionRefund: {
			Type: model.CorrectionRefund, RequireManagerApproval: true, RequireReason: true,
			AllowPartialQuantity: true,
		},
		model.CorrectionComp: {
			Type: model.CorrectionComp, RequireManagerApproval: true, RequireReason: true,
			AllowPartialQuantity: false, MaxAmount: &comp,
		},
	}
}

// ApplyCorrection validates the correction against its rule, mutates the
// target line (or records a bill-level adjustment) and recomputes totals.
// On success the correction's status, original/corrected figures and amount
// are filled in: approved outright, or pending when the rule requires manager
// approval that has not yet been granted.
func (e *Engine) ApplyCorrection(b *model.Bill, c *model.Correction, rules RuleSet) error {
	rule, ok := rules[c.Type]
	if !ok {
		return reject("no rule configured for correction type %q", c.Type)
	}

	// Refunds reference a settled transaction; every other type mutates an
	// open bill and hits the terminal-state guard.
	if c.Type != model.CorrectionRefund && b.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrBillTerminated, b.Status)
	}

	if rule.RequireReason && c.Reason == "" {
		return reject("%s requires a reason", c.Type)
	}

	if c.BillItemID != "" {
		item := b.Item(c.BillItemID)
		if item == nil {
			return ErrItemNotFound
		}
		if c.CorrectedQty < 0 || c.CorrectedQty > item.Quantity {
			return reject("corrected quantity %d outside 0..%d", c.CorrectedQty, item.Quantity)
		}
		if !rule.AllowPartialQuantity && c.CorrectedQty != 0 {
			return reject("%s does not allow partial quantities", c.Type)
		}

		c.OriginalQty = item.Quantity
		c.OriginalAmount = item.TotalPrice
		removed := item.Quantity - c.CorrectedQty
		c.Amount = item.UnitPrice.Mul(decimal.NewFromInt(int64(removed)))
		c.CorrectedAmount = item.UnitPrice.Mul(decimal.NewFromInt(int64(c.CorrectedQty)))

		if rule.MaxAmount != nil && c.Amount.GreaterThan(*rule.MaxAmount) {
			return reject("amount %s exceeds maximum %s", c.Amount, rule.MaxAmount)
		}

		if c.Type == model.CorrectionRefund {
			// Recorded against the settled bill; the lines stay untouched.
		} else if c.CorrectedQty == 0 {
			if err := e.RemoveItem(b, c.BillItemID); err != nil {
				return err
			}
		} else {
			item.Quantity = c.CorrectedQty
			e.recompute(b)
		}
	} else {
		// Bill-level correction: the amount is supplied by the caller.
		if c.Amount.IsNegative() || c.Amount.IsZero() {
			return reject("bill-level %s requires a positive amount", c.Type)
		}
		if rule.MaxAmount != nil && c.Amount.GreaterThan(*rule.MaxAmount) {
			return reject("amount %s exceeds maximum %s", c.Amount, rule.MaxAmount)
		}
		c.OriginalAmount = b.Total
		if c.Type == model.CorrectionComp {
			// A comp reduces what the customer pays without touching lines.
			b.Adjustments = b.Adjustments.Add(c.Amount)
			e.recompute(b)
		}
		c.CorrectedAmount = b.Total
	}

	if rule.RequireManagerApproval {
		c.Status = model.CorrectionPending
	} else {
		c.Status = model.CorrectionApproved
	}
	now := model.NowMillis()
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.BillID = b.ID
	return nil
}
