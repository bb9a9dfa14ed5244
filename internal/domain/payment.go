package domain

import (
	"fmt"
	"strings"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "Card"
	PaymentPayPal       PaymentMethod = "PayPal"
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusSucceeded PaymentStatus = "Succeeded"
)

// NormalizePaymentMethod maps the free-form method strings accepted at the
// system boundary onto the closed PaymentMethod set. "credit card", "Card"
// and "card" all mean PaymentCard; normalization happens exactly once, here.
func NormalizePaymentMethod(raw string) (PaymentMethod, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return "", fmt.Errorf("payment method is required")
	case strings.Contains(s, "paypal"):
		return PaymentPayPal, nil
	case strings.Contains(s, "card") || strings.Contains(s, "credit"):
		return PaymentCard, nil
	case strings.Contains(s, "bank"):
		return PaymentBankTransfer, nil
	case s == "cod" || strings.Contains(s, "cash"):
		return PaymentCOD, nil
	}
	return "", fmt.Errorf("unknown payment method %q", raw)
}

// InitialPaymentStatus is Pending for cash on delivery and Succeeded for
// every other method.
func InitialPaymentStatus(m PaymentMethod) PaymentStatus {
	if m == PaymentCOD {
		return PaymentStatusPending
	}
	return PaymentStatusSucceeded
}
