package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigit   = regexp.MustCompile(`\D`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Digits strips everything but 0-9.
func Digits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// WhatsAppNumber joins a country code and local number into the digits-only form WhatsApp expects.
func WhatsAppNumber(countryCode, phone string) string {
	return Digits(countryCode + phone)
}

// GroupForNTRP derives the skill band from an NTRP rating. Unparseable ratings land in D5.
func GroupForNTRP(ntrp string) string {
	score, err := strconv.ParseFloat(strings.TrimSpace(ntrp), 64)
	if err != nil {
		return GroupD5
	}
	switch {
	case score >= 4.5:
		return GroupD1
	case score >= 4.0:
		return GroupD2
	case score >= 3.5:
		return GroupD3
	case score >= 3.0:
		return GroupD4
	default:
		return GroupD5
	}
}

// ValidatePhone checks a digits-only local number.
func ValidatePhone(phone string) error {
	if len(phone) < 7 {
		return ErrValidation("valid phone number is required")
	}
	return nil
}

// ValidateOptionalEmail accepts an empty address; anything else must look like an email.
func ValidateOptionalEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return ErrValidation("invalid email format")
	}
	return nil
}
