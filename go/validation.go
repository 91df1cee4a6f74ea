package ordersserver

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	apierrors "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/shared/errors"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate binds the JSON body into out and validates it.
// On failure it writes a 400 problem and returns false.
func bindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondProblem(c, apierrors.NewInvalidRequestProblem(err.Error(), nil))
		return false
	}
	if err := v.Struct(out); err != nil {
		respondProblem(c, apierrors.NewInvalidRequestProblem("request failed validation", validationErrorsToMap(err)))
		return false
	}
	return true
}

// bindOptionalBody is bindAndValidate for endpoints whose body may be omitted.
func bindOptionalBody(c *gin.Context, out interface{}, v *validatorv10.Validate) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindAndValidate(c, out, v)
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}
