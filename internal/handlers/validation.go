package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/minitrello-api/internal/models"
)

// RegisterValidators adds the task enum tags to gin's validator.
// Empty values pass; presence is left to "required".
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || models.TaskStatus(value).Valid()
	}); err != nil {
		return err
	}

	return v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || models.TaskPriority(value).Valid()
	})
}

// bindingMessage turns the first validation failure into a client message
func bindingMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request body"
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "A valid email is required"
	case "taskstatus":
		return "Status must be one of icebox, backlog, ongoing, waiting-review, done"
	case "taskpriority":
		return "Priority must be one of low, medium, high, critical"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
