package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"renterra/pkg/errors"
	"renterra/pkg/logger"
)

// PaymentGateway abstracts the payment processor. The processor's own ledger
// and card tokenization live behind this boundary.
type PaymentGateway interface {
	// Charge collects the rental price from the renter and returns a payment
	// reference.
	Charge(ctx context.Context, renterID string, amount float64, rentalID string) (string, error)

	// Transfer pays the owner out. Idempotent per rentalID: a repeated call
	// for the same rental returns the original reference without moving
	// money twice.
	Transfer(ctx context.Context, ownerID string, amount float64, rentalID string) (string, error)

	// Refund returns money against an earlier charge.
	Refund(ctx context.Context, paymentRef string, amount float64) (string, error)
}

// SimulatedPaymentGateway is a sandbox implementation for development and
// testing environments.
type SimulatedPaymentGateway struct {
	mu        sync.Mutex
	transfers map[string]string // rentalID -> transfer reference
}

func NewSimulatedPaymentGateway() *SimulatedPaymentGateway {
	return &SimulatedPaymentGateway{
		transfers: make(map[string]string),
	}
}

func (g *SimulatedPaymentGateway) Charge(ctx context.Context, renterID string, amount float64, rentalID string) (string, error) {
	if amount <= 0 {
		return "", errors.BadRequest("Charge amount must be positive", nil)
	}

	ref := fmt.Sprintf("pay-%s-%d", rentalID, time.Now().Unix())
	logger.Info("Simulated charge: renter=%s amount=%.2f rental=%s ref=%s", renterID, amount, rentalID, ref)
	return ref, nil
}

func (g *SimulatedPaymentGateway) Transfer(ctx context.Context, ownerID string, amount float64, rentalID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ref, ok := g.transfers[rentalID]; ok {
		logger.Info("Simulated transfer already settled: rental=%s ref=%s", rentalID, ref)
		return ref, nil
	}

	ref := fmt.Sprintf("trf-%s-%d", rentalID, time.Now().Unix())
	g.transfers[rentalID] = ref
	logger.Info("Simulated transfer: owner=%s amount=%.2f rental=%s ref=%s", ownerID, amount, rentalID, ref)
	return ref, nil
}

func (g *SimulatedPaymentGateway) Refund(ctx context.Context, paymentRef string, amount float64) (string, error) {
	if paymentRef == "" {
		return "", errors.BadRequest("Payment reference is required for refund", nil)
	}

	ref := fmt.Sprintf("rfd-%s-%d", paymentRef, time.Now().Unix())
	logger.Info("Simulated refund: payment=%s amount=%.2f ref=%s", paymentRef, amount, ref)
	return ref, nil
}
