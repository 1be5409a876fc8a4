package models

import "time"

// Role identifies what an authenticated actor is allowed to do.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
)

// Actor is the authenticated identity attached to each request by the
// auth middleware. Claims are trusted as verified upstream.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationAccepted  DonationStatus = "accepted"
	DonationCompleted DonationStatus = "completed"
	DonationCancelled DonationStatus = "cancelled"
)

// AcceptanceStatus mirrors the post-claim state of the governing donation.
type AcceptanceStatus string

const (
	AcceptanceAccepted  AcceptanceStatus = "accepted"
	AcceptanceCompleted AcceptanceStatus = "completed"
)

// Donation represents a listed quantity of food offered for pickup.
// Descriptive fields are immutable after creation; status moves only
// through the lifecycle engine.
type Donation struct {
	ID                  string         `json:"id" db:"id"`
	DonorID             string         `json:"donor_id" db:"donor_id"`
	Status              DonationStatus `json:"status" db:"status"`
	FoodType            string         `json:"food_type" db:"food_type"`
	ApproxQuantity      float64        `json:"approx_quantity" db:"approx_quantity"`
	QuantityUnit        string         `json:"quantity_unit" db:"quantity_unit"`
	Area                string         `json:"area" db:"area"`
	PickupAddress       string         `json:"pickup_address" db:"pickup_address"`
	PreferredPickupTime *time.Time     `json:"preferred_pickup_time,omitempty" db:"preferred_pickup_time"`
	ContactNumber       string         `json:"contact_number" db:"contact_number"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	AcceptedAt          *time.Time     `json:"accepted_at,omitempty" db:"accepted_at"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty" db:"completed_at"`

	Photos []Photo    `json:"photos" db:"-"`
	Donor  *DonorInfo `json:"donor,omitempty" db:"-"`
}

// Photo is an attachment URL on a donation, ordered by position.
// Written once at creation, never mutated.
type Photo struct {
	ID         string    `json:"id" db:"id"`
	DonationID string    `json:"donation_id" db:"donation_id"`
	URL        string    `json:"url" db:"url"`
	Position   int       `json:"position" db:"position"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DonorInfo is the minimal donor display block embedded in listings.
type DonorInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// User holds the display fields the listing joins in. Account
// management lives in the identity service; this side only reads.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Acceptance records a volunteer's successful claim on a donation.
type Acceptance struct {
	ID          string           `json:"id" db:"id"`
	DonationID  string           `json:"donation_id" db:"donation_id"`
	VolunteerID string           `json:"volunteer_id" db:"volunteer_id"`
	Status      AcceptanceStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}
