package order

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"foodiedelight/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)

// NormalizeContact trims the contact fields, drops empty ones and
// validates what is left.
func NormalizeContact(contact models.ContactInfo) (models.ContactInfo, error) {
	var out models.ContactInfo

	if email := trimmed(contact.Email); email != "" {
		if err := validateEmail(email); err != nil {
			return models.ContactInfo{}, err
		}
		out.Email = &email
	}

	if phone := trimmed(contact.Phone); phone != "" {
		if err := validatePhone(phone); err != nil {
			return models.ContactInfo{}, err
		}
		out.Phone = &phone
	}

	return out, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return ValidationError{
			Field:   "customer_email",
			Message: "email must not exceed 254 characters",
		}
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ValidationError{
			Field:   "customer_email",
			Message: "email is not a valid address",
		}
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ValidationError{
			Field:   "customer_phone",
			Message: "phone must be 7 to 20 digits, spaces or + - ( )",
		}
	}

	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 {
		return ValidationError{
			Field:   "customer_phone",
			Message: "phone must contain at least 7 digits",
		}
	}
	return nil
}
