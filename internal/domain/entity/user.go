package entity

import (
	"time"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Phone    string `json:"phone" firestore:"phone"`
	Role     string `json:"role" firestore:"role"` // user, admin
	Status   string `json:"status" firestore:"status"`

	FullName string `json:"full_name,omitempty" firestore:"fullName,omitempty"`

	OwnerRating       float64 `json:"owner_rating,omitempty" firestore:"ownerRating,omitempty"`
	OwnerReviewCount  int     `json:"owner_review_count,omitempty" firestore:"ownerReviewCount,omitempty"`
	RenterRating      float64 `json:"renter_rating,omitempty" firestore:"renterRating,omitempty"`
	RenterReviewCount int     `json:"renter_review_count,omitempty" firestore:"renterReviewCount,omitempty"`

	FCMToken string `json:"fcm_token,omitempty" firestore:"fcmToken,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
