package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"Name":            "Name",
	"Email":           "Email",
	"Password":        "Password",
	"CurrentPassword": "Current password",
	"NewPassword":     "New password",
	"Company":         "Company",
	"Role":            "Role",
	"Status":          "Status",
	"ApplicationDate": "Application date",
	"Link":            "Link",
	"Location":        "Location",
	"Salary":          "Salary",
	"Bio":             "Bio",
	"MessageType":     "Message type",
	"Message":         "Message",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{"Invalid request body"}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)

	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)

	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)

	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))

	case "app_status":
		return fmt.Sprintf("%s must be one of: Applied, Interview, Offer, Rejected", label)

	case "message_type":
		return fmt.Sprintf("%s must be one of: feedback, question, suggestion, other", label)

	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
