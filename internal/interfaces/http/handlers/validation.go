package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ticketKeyPattern matches tracker issue keys such as ACC-101.
var ticketKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// RegisterValidations installs custom binding validations on gin's validator
// engine. Call once before the router handles traffic.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("ticketkey", validateTicketKey)
}

func validateTicketKey(fl validator.FieldLevel) bool {
	return ticketKeyPattern.MatchString(fl.Field().String())
}
