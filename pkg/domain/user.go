package domain

import (
	"strings"
	"time"
)

// User is the account record returned by /auth/me and the login endpoint.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	SubscriptionType   string     `json:"subscription_type"`
	NeedsSubscription  bool       `json:"needs_subscription"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DisplayName returns "First Last", falling back to the email address.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UserPatch is a partial update of a User. Nil fields are left untouched.
type UserPatch struct {
	ID                 *int64     `json:"id,omitempty"`
	Email              *string    `json:"email,omitempty"`
	FirstName          *string    `json:"first_name,omitempty"`
	LastName           *string    `json:"last_name,omitempty"`
	SubscriptionType   *string    `json:"subscription_type,omitempty"`
	NeedsSubscription  *bool      `json:"needs_subscription,omitempty"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
	IsActive           *bool      `json:"is_active,omitempty"`
	IsVerified         *bool      `json:"is_verified,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// Apply returns a copy of u with every non-nil field of p merged in.
func (u User) Apply(p UserPatch) User {
	if p.ID != nil {
		u.ID = *p.ID
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.SubscriptionType != nil {
		u.SubscriptionType = *p.SubscriptionType
	}
	if p.NeedsSubscription != nil {
		u.NeedsSubscription = *p.NeedsSubscription
	}
	if p.SubscriptionEndsAt != nil {
		t := *p.SubscriptionEndsAt
		u.SubscriptionEndsAt = &t
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.CreatedAt != nil {
		u.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
	return u
}

// User builds a full record from the patch alone.
func (p UserPatch) User() User {
	return User{}.Apply(p)
}
