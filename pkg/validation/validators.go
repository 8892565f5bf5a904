package validation

import (
	"errors"
	"strings"

	"job-tracker-backend/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"app_status":   AppStatus,
		"message_type": MessageType,
		"not_blank":    NotBlank,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGinValidators installs the custom tags on gin's binding engine.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterValidators(v)
}

// AppStatus accepts an application status, or empty so it composes with omitempty.
func AppStatus(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || domain.ValidApplicationStatus(val)
}

func MessageType(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == "" || domain.ValidMessageType(val)
}

// NotBlank rejects strings made only of whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
