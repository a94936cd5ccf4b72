// Package store implements the engine's two storage collaborators: the
// contact source (fetch a contact collection by company or list) and list
// materialization (persist a filtered subset as list membership).
//
// Thin orchestration layer over db.Queries; all segmentation decisions stay
// in internal/segment.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/core/db"
	"github.com/qhosting/smsegment/internal/types"
)

// ContactStore is the contact source collaborator.
type ContactStore struct {
	q   *db.Queries
	log *zap.Logger
}

// NewContactStore creates a contact store.
func NewContactStore(q *db.Queries, log *zap.Logger) *ContactStore {
	return &ContactStore{q: q, log: log}
}

// contactRow mirrors the joined contact select: contact columns plus the
// current subscription and the most recent activity, both nullable.
type contactRow struct {
	ContactID     string          `db:"contact_id"`
	CompanyID     string          `db:"company_id"`
	Phone         string          `db:"phone"`
	Email         sql.NullString  `db:"email"`
	FirstName     sql.NullString  `db:"first_name"`
	LastName      sql.NullString  `db:"last_name"`
	Company       sql.NullString  `db:"company"`
	JobTitle      sql.NullString  `db:"job_title"`
	City          sql.NullString  `db:"city"`
	State         sql.NullString  `db:"state"`
	Country       sql.NullString  `db:"country"`
	ZipCode       sql.NullString  `db:"zip_code"`
	BirthDate     sql.NullTime    `db:"birth_date"`
	Gender        sql.NullString  `db:"gender"`
	Score         float64         `db:"score"`
	MessageCount  int             `db:"message_count"`
	CampaignCount int             `db:"campaign_count"`
	LastMessageAt sql.NullTime    `db:"last_message_at"`
	LastOpenAt    sql.NullTime    `db:"last_open_at"`
	Tags          json.RawMessage `db:"tags"`
	CustomFields  json.RawMessage `db:"custom_fields"`
	IsValid       bool            `db:"is_valid"`
	IsActive      bool            `db:"is_active"`
	CreatedAt     time.Time       `db:"created_at"`
	SubStatus     sql.NullString  `db:"sub_status"`
	SubUpdatedAt  sql.NullTime    `db:"sub_updated_at"`
	ActivityType  sql.NullString  `db:"activity_type"`
	ActivityDate  sql.NullTime    `db:"activity_date"`
}

// ByCompany fetches a company's contact universe in creation order.
// limit bounds the collection size; callers wanting a time bound on a
// segmentation run bound the input here rather than cancelling mid-filter.
func (s *ContactStore) ByCompany(ctx context.Context, companyID string, limit int) ([]types.Contact, error) {
	var rows []contactRow
	if err := s.q.Select(ctx, "list-contacts-by-company", &rows, companyID, limit); err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	return s.toContacts(rows), nil
}

// ByList fetches the current membership of one list in creation order.
func (s *ContactStore) ByList(ctx context.Context, listID types.ListID, limit int) ([]types.Contact, error) {
	var rows []contactRow
	if err := s.q.Select(ctx, "list-contacts-by-list", &rows, string(listID), limit); err != nil {
		return nil, fmt.Errorf("failed to query list contacts: %w", err)
	}
	return s.toContacts(rows), nil
}

// toContacts converts rows, skipping ones with malformed JSON columns.
// Skip-malformed policy: one corrupt row must not fail a whole segmentation
// run; the row is logged and dropped.
func (s *ContactStore) toContacts(rows []contactRow) []types.Contact {
	contacts := make([]types.Contact, 0, len(rows))
	for _, r := range rows {
		var tags []string
		if len(r.Tags) > 0 {
			if err := json.Unmarshal(r.Tags, &tags); err != nil {
				s.log.Warn("skipping contact with malformed tags column",
					zap.String("contact_id", r.ContactID), zap.Error(err))
				continue
			}
		}

		var custom map[string]any
		if len(r.CustomFields) > 0 {
			if err := json.Unmarshal(r.CustomFields, &custom); err != nil {
				s.log.Warn("skipping contact with malformed custom_fields column",
					zap.String("contact_id", r.ContactID), zap.Error(err))
				continue
			}
		}

		c := types.Contact{
			ID:            types.ContactID(r.ContactID),
			Phone:         r.Phone,
			Email:         r.Email.String,
			FirstName:     r.FirstName.String,
			LastName:      r.LastName.String,
			Company:       r.Company.String,
			JobTitle:      r.JobTitle.String,
			City:          r.City.String,
			State:         r.State.String,
			Country:       r.Country.String,
			ZipCode:       r.ZipCode.String,
			Gender:        r.Gender.String,
			Score:         r.Score,
			MessageCount:  r.MessageCount,
			CampaignCount: r.CampaignCount,
			Tags:          tags,
			CustomFields:  custom,
			IsValid:       r.IsValid,
			IsActive:      r.IsActive,
			CreatedAt:     r.CreatedAt,
		}
		if r.BirthDate.Valid {
			t := r.BirthDate.Time
			c.BirthDate = &t
		}
		if r.LastMessageAt.Valid {
			t := r.LastMessageAt.Time
			c.LastMessageAt = &t
		}
		if r.LastOpenAt.Valid {
			t := r.LastOpenAt.Time
			c.LastOpenAt = &t
		}
		if r.SubStatus.Valid {
			c.Subscription = &types.Subscription{
				Status:    types.SubscriptionStatus(r.SubStatus.String),
				UpdatedAt: r.SubUpdatedAt.Time,
			}
		}
		if r.ActivityType.Valid && r.ActivityDate.Valid {
			c.LastActivity = &types.Activity{
				Type: r.ActivityType.String,
				Date: r.ActivityDate.Time,
			}
		}

		contacts = append(contacts, c)
	}
	return contacts
}

// Insert persists a contact with its subscription and latest activity.
// Used by the import command and test seeding; the engine never writes
// contacts. Tag and custom-field limits are enforced here, at the write
// boundary, so reads and evaluation stay unconditional.
func (s *ContactStore) Insert(ctx context.Context, companyID string, c *types.Contact) error {
	if len(c.Tags) > types.MaxTagsPerContact {
		return fmt.Errorf("%w: %d > %d", types.ErrTooManyTags, len(c.Tags), types.MaxTagsPerContact)
	}
	if len(c.CustomFields) > types.MaxCustomFields {
		return fmt.Errorf("%w: %d > %d", types.ErrTooManyCustomFields, len(c.CustomFields), types.MaxCustomFields)
	}

	tags, err := json.Marshal(orEmptyTags(c.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	custom, err := json.Marshal(orEmptyCustom(c.CustomFields))
	if err != nil {
		return fmt.Errorf("failed to encode custom fields: %w", err)
	}

	if _, err := s.q.Exec(ctx, "insert-contact",
		string(c.ID), companyID, c.Phone, c.Email, c.FirstName, c.LastName,
		c.Company, c.JobTitle, c.City, c.State, c.Country, c.ZipCode,
		c.BirthDate, c.Gender, c.Score, c.MessageCount, c.CampaignCount,
		c.LastMessageAt, c.LastOpenAt, string(tags), string(custom),
		c.IsValid, c.IsActive, c.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	if c.Subscription != nil {
		if _, err := s.q.Exec(ctx, "upsert-subscription",
			string(c.ID), string(c.Subscription.Status), c.Subscription.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
	}

	if c.LastActivity != nil {
		if _, err := s.q.Exec(ctx, "insert-activity",
			string(c.ID), c.LastActivity.Type, c.LastActivity.Date,
		); err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}
	}

	return nil
}

func orEmptyTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func orEmptyCustom(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
