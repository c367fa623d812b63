package entity

import (
	"time"
)

type ItemPhoto struct {
	ID           string `json:"id" firestore:"id"`
	URL          string `json:"url" firestore:"url"`
	DisplayOrder int    `json:"display_order" firestore:"displayOrder"`
}

type Item struct {
	ID          string  `json:"id" firestore:"id"`
	OwnerID     string  `json:"owner_id" firestore:"ownerId"`
	Title       string  `json:"title" firestore:"title"`
	Description string  `json:"description" firestore:"description"`
	Category    string  `json:"category" firestore:"category"`
	DailyRate   float64 `json:"daily_rate" firestore:"dailyRate"`
	Currency    string  `json:"currency" firestore:"currency"`

	DepositAmount float64 `json:"deposit_amount,omitempty" firestore:"depositAmount,omitempty"`

	InsuranceTiers []InsuranceTier `json:"insurance_tiers,omitempty" firestore:"insuranceTiers,omitempty"`

	Photos []ItemPhoto `json:"photos" firestore:"photos"`
	Status string      `json:"status" firestore:"status"` // active, unlisted

	RentalCount int `json:"rental_count" firestore:"rentalCount"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" firestore:"deletedAt,omitempty"`
}

// InsuranceTier is priced elsewhere; the premium and ceiling arrive as plain
// numbers from the insurance calculator.
type InsuranceTier struct {
	Name     string  `json:"name" firestore:"name"`
	Premium  float64 `json:"premium" firestore:"premium"`
	Coverage float64 `json:"coverage" firestore:"coverage"`
}
