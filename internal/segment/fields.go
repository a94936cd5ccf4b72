package segment

import (
	"math"
	"strings"
	"time"

	"github.com/qhosting/smsegment/internal/types"
)

/*
 * Field resolution: logical field name + contact record -> comparable value.
 *
 * Three field classes:
 *   - Direct: fixed attributes read straight off the contact.
 *   - Derived: computed at resolution time (fullName, age, daysSince*,
 *     subscription and activity projections).
 *   - Custom: "custom."-prefixed names looked up in the contact's
 *     custom-field map.
 *
 * Resolution never fails. Unknown field names resolve to nil, which every
 * comparator treats as absent. Silent-by-design: one typo'd field in a rule
 * must not abort a whole segmentation run.
 *
 * Return shape: string | float64 | bool | time.Time | []string | nil.
 * Absent optional timestamps resolve to nil, not the zero time, so date
 * comparators fail closed on them.
 */

// customFieldPrefix routes a rule field into the contact's custom-field map.
const customFieldPrefix = "custom."

// Resolve maps a logical field name to a value on the contact.
// Unknown fields resolve to nil; Resolve never panics.
func (e *Engine) Resolve(c *types.Contact, field string) any {
	if c == nil {
		return nil
	}

	if strings.HasPrefix(field, customFieldPrefix) {
		key := strings.TrimPrefix(field, customFieldPrefix)
		if c.CustomFields == nil {
			return nil
		}
		v, ok := c.CustomFields[key]
		if !ok {
			return nil
		}
		return v
	}

	switch field {
	case "phone":
		return c.Phone
	case "email":
		return c.Email
	case "firstName":
		return c.FirstName
	case "lastName":
		return c.LastName
	case "company":
		return c.Company
	case "jobTitle":
		return c.JobTitle
	case "city":
		return c.City
	case "state":
		return c.State
	case "country":
		return c.Country
	case "zipCode":
		return c.ZipCode
	case "birthDate":
		return timeOrNil(c.BirthDate)
	case "gender":
		return c.Gender
	case "score":
		return c.Score
	case "messageCount":
		return float64(c.MessageCount)
	case "campaignCount":
		return float64(c.CampaignCount)
	case "lastMessageAt":
		return timeOrNil(c.LastMessageAt)
	case "lastOpenAt":
		return timeOrNil(c.LastOpenAt)
	case "tags":
		return c.Tags
	case "isValid":
		return c.IsValid
	case "isActive":
		return c.IsActive
	case "createdAt":
		return c.CreatedAt

	case "fullName":
		return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	case "age":
		return e.age(c)
	case "daysSinceLastMessage":
		if c.LastMessageAt == nil {
			return nil
		}
		return daysBetween(e.now(), *c.LastMessageAt)
	case "daysSinceCreated":
		return daysBetween(e.now(), c.CreatedAt)
	case "subscriptionStatus":
		return string(subscriptionStatus(c))
	case "isSubscribed":
		return subscriptionStatus(c) == types.StatusSubscribed
	case "hasRecentActivity":
		return c.LastActivity != nil
	case "lastActivityType":
		if c.LastActivity == nil {
			return nil
		}
		return c.LastActivity.Type
	case "lastActivityDate":
		if c.LastActivity == nil {
			return nil
		}
		return c.LastActivity.Date

	default:
		return nil
	}
}

// age returns whole years as of the most recent birthday, not a truncated
// year fraction: decrement when the current month/day precedes the birth
// month/day. Nil when no birth date is recorded.
func (e *Engine) age(c *types.Contact) any {
	if c.BirthDate == nil {
		return nil
	}
	now := e.now()
	birth := *c.BirthDate

	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return float64(years)
}

// daysBetween returns the ceiling of absolute elapsed time in days.
func daysBetween(a, b time.Time) float64 {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return math.Ceil(d.Hours() / 24)
}

// subscriptionStatus reads the contact's current status, defaulting to
// SUBSCRIBED when no subscription record exists. Absence of an explicit
// unsubscribe record is treated as implicit subscription.
func subscriptionStatus(c *types.Contact) types.SubscriptionStatus {
	if c.Subscription == nil {
		return types.StatusSubscribed
	}
	return c.Subscription.Status
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
