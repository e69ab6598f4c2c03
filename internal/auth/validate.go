package auth

import "net/mail"

// FieldError is one entry of a validation failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidEmail reports whether s is a syntactically valid address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ValidateRegistration returns field-level errors for a registration request.
func ValidateRegistration(username, email, password string) []FieldError {
	var errs []FieldError
	if username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "Username is required"})
	}
	if !ValidEmail(email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if len(password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	return errs
}
