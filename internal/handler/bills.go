package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/dto"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/service"
)

// BillsHandler exposes the bill aggregate operations.
type BillsHandler struct {
	svc service.PosService
}

func NewBillsHandler(svc service.PosService) *BillsHandler {
	return &BillsHandler{svc: svc}
}

// Open starts a transaction, optionally tied to a table.
func (h *BillsHandler) Open(c *gin.Context) {
	var req dto.OpenBillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	b, err := h.svc.OpenBill(c.Request.Context(), req.TableID, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBillResponse(b))
}

// AddItem merges a product line onto the bill.
func (h *BillsHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p := model.Product{ID: req.ProductID, Name: req.Name, UnitPrice: req.UnitPrice}
	b, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), p, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBillResponse(b))
}

// AdjustItem applies a signed quantity delta; reaching zero removes the line.
func (h *BillsHandler) AdjustItem(c *gin.Context) {
	var req dto.AdjustQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	b, err := h.svc.AdjustItemQuantity(c.Request.Context(), c.Param("id"), c.Param("itemID"), req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBillResponse(b))
}

// RemoveItem drops a line unconditionally.
func (h *BillsHandler) RemoveItem(c *gin.Context) {
	b, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBillResponse(b))
}

// ApplyCorrection validates and applies a correction to the bill.
func (h *BillsHandler) ApplyCorrection(c *gin.Context) {
	var req dto.CorrectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	corr := &model.Correction{
		BillItemID:   req.BillItemID,
		Type:         model.CorrectionType(req.Type),
		Reason:       req.Reason,
		CorrectedQty: req.CorrectedQty,
		Amount:       req.Amount,
	}
	applied, err := h.svc.ApplyCorrection(c.Request.Context(), c.Param("id"), corr, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCorrectionResponse(applied))
}

// Terminate closes, pays or cancels the bill — exactly once.
func (h *BillsHandler) Terminate(c *gin.Context) {
	var req dto.TerminateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	b, err := h.svc.TerminateBill(c.Request.Context(), c.Param("id"), model.BillStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBillResponse(b))
}
