package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentBankTransfer   PaymentMethod = "bank-transfer"
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentBankTransfer || m == PaymentCashOnDelivery
}

// Customer carries the contact and shipping fields collected at checkout.
type Customer struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Province       string `json:"province"`
	ZipCode        string `json:"zipCode"`
	Country        string `json:"country"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// Order is created once at checkout and never modified afterwards.
type Order struct {
	OrderID   string `json:"orderId"`
	SessionID string `json:"sessionId,omitempty"`
	Customer
	CartItems     []CartLine    `json:"cartItems"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.CartItems {
		total = total.Add(line.Subtotal())
	}
	return total
}
