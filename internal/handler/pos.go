package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/apierror"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/dto"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/middleware"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/service"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/tenant"
)

// PosHandler exposes the snapshot read view, scope replacement, refresh
// triggers and the generic record CRUD.
type PosHandler struct {
	svc service.PosService
}

func NewPosHandler(svc service.PosService) *PosHandler {
	return &PosHandler{svc: svc}
}

// State returns the current snapshot.
func (h *PosHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Snapshot())
}

// SetScope replaces the tenant selection.
func (h *PosHandler) SetScope(c *gin.Context) {
	var req dto.ScopeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	scope := tenant.Scope{CompanyID: req.CompanyID, SiteID: req.SiteID, SubsiteID: req.SubsiteID}
	if err := h.svc.SetScope(scope); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"scope": scope})
}

// RefreshAll re-synchronizes every kind for the current scope.
func (h *PosHandler) RefreshAll(c *gin.Context) {
	if err := h.svc.RefreshAll(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Snapshot())
}

// RefreshKind re-runs the single-kind probe.
func (h *PosHandler) RefreshKind(c *gin.Context) {
	kind := model.EntityKind(c.Param("kind"))
	if err := h.svc.Refresh(c.Request.Context(), kind); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "records": h.svc.Snapshot().Collections[kind]})
}

// ListRecords serves one collection from the snapshot.
func (h *PosHandler) ListRecords(c *gin.Context) {
	kind := c.Param("kind")
	if !model.ValidKind(kind) {
		c.JSON(http.StatusNotFound, apierror.New("unknown entity kind"))
		return
	}
	recs := h.svc.Snapshot().Collections[model.EntityKind(kind)]
	if recs == nil {
		recs = []model.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "records": recs})
}

// CreateRecord writes a new record through the primary path.
func (h *PosHandler) CreateRecord(c *gin.Context) {
	kind := model.EntityKind(c.Param("kind"))
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return
	}
	rec, err := h.svc.CreateRecord(c.Request.Context(), kind, payload, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// UpdateRecord replaces a record's payload.
func (h *PosHandler) UpdateRecord(c *gin.Context) {
	kind := model.EntityKind(c.Param("kind"))
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return
	}
	if err := h.svc.UpdateRecord(c.Request.Context(), kind, c.Param("id"), payload, actor(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRecord removes a record.
func (h *PosHandler) DeleteRecord(c *gin.Context) {
	kind := model.EntityKind(c.Param("kind"))
	if err := h.svc.DeleteRecord(c.Request.Context(), kind, c.Param("id"), actor(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// actor resolves the operator identity from the JWT claims, if present.
func actor(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		if claims.Username != "" {
			return claims.Username
		}
		return claims.UserID
	}
	return ""
}
