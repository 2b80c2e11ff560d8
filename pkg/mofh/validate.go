package mofh

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
)

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report the wire name of a field, e.g. "contactemail" rather than "ContactEmail"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return validate
}

// checkRequest validates req and reports only the first failing field, in
// declaration order.
func (c *Client) checkRequest(req interface{}) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	return firstValidationError(err)
}

// checkRequired validates a single positional argument.
func (c *Client) checkRequired(field, value string) error {
	if err := c.validate.Var(value, "required"); err != nil {
		return pkgerrors.NewValidationError(field, "is a required option")
	}
	return nil
}

func firstValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return pkgerrors.NewValidationError("", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return pkgerrors.NewValidationError(fe.Field(), "is a required option")
	case "email":
		return pkgerrors.NewValidationError(fe.Field(), "must be a valid email address")
	default:
		return pkgerrors.NewValidationError(fe.Field(), "failed "+fe.Tag()+" check")
	}
}
