package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidatePhone checks a phone number is plausibly dialable. Numbers
// arrive E.164-like but are not normalized; only shape is enforced.
func ValidatePhone(phone string) error {
	if phone == "" {
		return errors.New("phone number cannot be empty")
	}
	if len(phone) > 20 {
		return errors.New("phone number exceeds maximum length")
	}
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			continue
		}
		if i == 0 && r == '+' {
			continue
		}
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			continue
		}
		return errors.New("phone number contains invalid characters")
	}
	return nil
}

// ValidateMessageBody validates an SMS body.
func ValidateMessageBody(body string) error {
	if body == "" {
		return errors.New("message body cannot be empty")
	}
	if len(body) > 1600 { // carrier concatenated-SMS ceiling
		return errors.New("message body exceeds maximum length")
	}
	if !utf8.ValidString(body) {
		return errors.New("message body must be valid UTF-8")
	}
	return nil
}

// ValidateTriggerContext validates the free-text trigger context.
func ValidateTriggerContext(context string) error {
	if len(context) > 512 {
		return errors.New("trigger context exceeds maximum length")
	}
	if !utf8.ValidString(context) {
		return errors.New("trigger context must be valid UTF-8")
	}
	return nil
}
