package handler

import (
	"errors"
	"net/http"
	"reflect"

	"marketrunner/internal/apierror"
	"marketrunner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeError maps a service error to its HTTP status. DomainError kinds get a
// machine-readable envelope; anything else is a 500 with no internals leaked.
func writeError(c *gin.Context, err error) {
	var de *service.DomainError
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, apierror.New("internal error"))
		return
	}

	status := http.StatusBadRequest
	switch de.Kind {
	case service.KindUnknownReference:
		status = http.StatusNotFound
	case service.KindConflictingAssignment, service.KindConflict:
		status = http.StatusConflict
	case service.KindInvalidQuantity:
		status = http.StatusUnprocessableEntity
	case service.KindNoEligibleDemand, service.KindReceiptRequired:
		status = http.StatusBadRequest
	case service.KindPartialFailure:
		status = http.StatusInternalServerError
	}
	c.JSON(status, apierror.NewKind(string(de.Kind), de.Detail))
}
