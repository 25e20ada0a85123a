package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/apierror"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/bill"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/service"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/sync"
)

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// routed through the error-handler middleware as a 500.
func writeError(c *gin.Context, err error) {
	var rejected *bill.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(rejected.Reason))
	case errors.Is(err, bill.ErrBillTerminated):
		c.JSON(http.StatusConflict, apierror.New("bill is closed, paid or cancelled"))
	case errors.Is(err, bill.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, sync.ErrPathUnresolved):
		c.JSON(http.StatusConflict, apierror.New("no tenant scope selected"))
	case errors.Is(err, service.ErrUnknownKind):
		c.JSON(http.StatusNotFound, apierror.New("unknown entity kind"))
	case errors.Is(err, service.ErrBillNotFound),
		errors.Is(err, bill.ErrItemNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case store.IsNotFound(err):
		c.JSON(http.StatusNotFound, apierror.New("record not found"))
	default:
		_ = c.Error(err)
	}
}
