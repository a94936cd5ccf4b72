// Package types provides domain models shared across segmentation components.
//
// Zero-dependency design: types.go, criteria.go and errors.go use only the
// standard library so the engine package stays import-light. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
//
// Contacts are read-only inputs to the engine: nothing in this repository
// mutates a Contact after it has been loaded from storage or decoded from JSON.
package types

import "time"

// SubscriptionStatus is the opt-in state of a contact.
// Absence of a Subscription record is read as SUBSCRIBED: no explicit opt-out
// recorded yet counts as implicit subscription. Existing campaign lists depend
// on this reading.
type SubscriptionStatus string

const (
	StatusSubscribed   SubscriptionStatus = "SUBSCRIBED"
	StatusUnsubscribed SubscriptionStatus = "UNSUBSCRIBED"
	StatusBounced      SubscriptionStatus = "BOUNCED"
	StatusComplained   SubscriptionStatus = "COMPLAINED"
)

// Subscription is the current opt-in record of a contact, zero-or-one per contact.
type Subscription struct {
	Status    SubscriptionStatus `json:"status"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Activity is the most recent recorded interaction of a contact.
type Activity struct {
	Type string    `json:"type"`
	Date time.Time `json:"date"`
}

// Contact is a single recipient record within a company's contact universe.
// Phone is the unique key; Email is optional. Pointer fields distinguish
// "absent" from zero values because the engine's null handling depends on it.
type Contact struct {
	ID    ContactID `json:"id"`
	Phone string    `json:"phone"`
	Email string    `json:"email,omitempty"`

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	Company  string `json:"company,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`

	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`

	BirthDate *time.Time `json:"birthDate,omitempty"`
	Gender    string     `json:"gender,omitempty"`

	Score         float64    `json:"score"`
	MessageCount  int        `json:"messageCount"`
	CampaignCount int        `json:"campaignCount"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	LastOpenAt    *time.Time `json:"lastOpenAt,omitempty"`

	Tags         []string       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`

	IsValid  bool `json:"isValid"`
	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`

	Subscription *Subscription `json:"subscription,omitempty"`
	LastActivity *Activity     `json:"lastActivity,omitempty"`
}

// Resource limits enforced at the criteria save boundary.
// Evaluation itself never enforces limits: a persisted criteria object is
// replayed verbatim, and malformed rules fail closed instead of erroring.
const (
	// MaxRulesPerCriteria bounds a single criteria object. 50 rules covers
	// every segmentation query observed in production exports.
	MaxRulesPerCriteria = 50

	// MaxFieldNameLength bounds rule field names, including the custom. prefix.
	MaxFieldNameLength = 128

	// MaxArrayOperatorValues limits contains_any/contains_all value lists to
	// keep per-contact evaluation linear in practice.
	MaxArrayOperatorValues = 64

	// MaxPreviewSize caps the summary preview regardless of configuration.
	MaxPreviewSize = 100

	// MaxTagsPerContact bounds the tag set accepted on import.
	MaxTagsPerContact = 64

	// MaxCustomFields bounds the custom-field map accepted on import.
	MaxCustomFields = 64
)
