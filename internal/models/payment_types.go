package models

import "strings"

type PaymentType struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	IsDefault bool    `json:"is_default"`
	CreatedAt *string `json:"created_at,omitempty"`
}

type PaymentTypeInput struct {
	Name string `json:"name"`
}

// NormalizePaymentTypeName trims and lowercases a user supplied name.
func NormalizePaymentTypeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
