// pkg/config/options.go

package config

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
)

// DefaultUsername is the login identity used when -l is not given.
const DefaultUsername = "root"

// Options is the resolved command line. Username is optional: an empty
// login name is sent as-is and the pool rejects it.
type Options struct {
	Hostname string `validate:"required" flag:"-H/--hostname"`
	Username string `flag:"-l/--login-name"`
	Password string `validate:"required" flag:"-p/--password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("flag")
	})
	return v
}

// Validate reports the first option that was not supplied, in declaration order.
// An empty value counts as not supplied.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return check_err.NewConfigError(err.Error())
	}
	return check_err.NewConfigError(fmt.Sprintf("%s option not supplied", verrs[0].Field()))
}
