package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentGateway settles mobile money charges. The production build
// talks to Daraja; tests and local development use the simulated one.
type PaymentGateway interface {
	// Charge debits the phone number and returns a gateway transaction ID.
	Charge(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error)
	// Payout credits the phone number and returns a gateway transaction ID.
	Payout(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error)
}

// SimulatedMpesaGateway approves every charge instantly and mints
// transaction IDs locally.
type SimulatedMpesaGateway struct{}

// NewSimulatedMpesaGateway creates a new simulated gateway
func NewSimulatedMpesaGateway() *SimulatedMpesaGateway {
	return &SimulatedMpesaGateway{}
}

func (g *SimulatedMpesaGateway) Charge(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error) {
	txID := mintTransactionID()
	log.Printf("✅ M-Pesa charge simulated: %s KES %s (%s)", phoneNumber, amount.StringFixed(2), txID)
	return txID, nil
}

func (g *SimulatedMpesaGateway) Payout(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error) {
	txID := mintTransactionID()
	log.Printf("✅ M-Pesa payout simulated: %s KES %s (%s)", phoneNumber, amount.StringFixed(2), txID)
	return txID, nil
}

func mintTransactionID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "MPESA-" + strings.ToUpper(hex.EncodeToString(b))
}
