package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/core/db"
	"github.com/qhosting/smsegment/internal/segment"
	"github.com/qhosting/smsegment/internal/types"
)

/*
 * List materialization collaborator.
 *
 * Criteria are validated at this save boundary and then persisted verbatim as
 * JSON on the list row; a dynamic list replays its stored criteria against
 * the company's contact universe on refresh. Membership replacement is
 * transactional: a refresh either fully swaps the member set or leaves the
 * previous one intact.
 */

// List is a stored contact list. Criteria is nil for manually curated lists.
type List struct {
	ID          types.ListID
	CompanyID   string
	Name        string
	Description string
	Criteria    *types.Criteria
	IsDynamic   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type listRow struct {
	ListID      string          `db:"list_id"`
	CompanyID   string          `db:"company_id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Criteria    json.RawMessage `db:"criteria"`
	IsDynamic   bool            `db:"is_dynamic"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// ListStore persists lists and their membership.
type ListStore struct {
	q   *db.Queries
	log *zap.Logger
}

// NewListStore creates a list store.
func NewListStore(q *db.Queries, log *zap.Logger) *ListStore {
	return &ListStore{q: q, log: log}
}

// Create persists a new list. Criteria (may be nil) is validated, then stored
// verbatim so later refreshes replay exactly what the user authored.
func (s *ListStore) Create(ctx context.Context, companyID, name, description string, criteria *types.Criteria, dynamic bool) (types.ListID, error) {
	if err := segment.Validate(criteria); err != nil {
		return "", fmt.Errorf("invalid criteria: %w", err)
	}

	var criteriaJSON any
	if criteria != nil {
		raw, err := json.Marshal(criteria)
		if err != nil {
			return "", fmt.Errorf("failed to encode criteria: %w", err)
		}
		criteriaJSON = string(raw)
	}

	id := types.NewListID()
	now := time.Now().UTC()

	if _, err := s.q.Exec(ctx, "insert-list",
		string(id), companyID, name, nullIfEmpty(description), criteriaJSON, dynamic, now, now,
	); err != nil {
		return "", fmt.Errorf("failed to insert list: %w", err)
	}

	s.log.Info("created list",
		zap.String("list_id", string(id)),
		zap.String("company_id", companyID),
		zap.Bool("dynamic", dynamic))

	return id, nil
}

// Get loads one list, decoding its stored criteria.
func (s *ListStore) Get(ctx context.Context, id types.ListID) (*List, error) {
	var row listRow
	if err := s.q.Get(ctx, "get-list", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrListNotFound
		}
		return nil, fmt.Errorf("failed to query list: %w", err)
	}

	list := &List{
		ID:          types.ListID(row.ListID),
		CompanyID:   row.CompanyID,
		Name:        row.Name,
		Description: row.Description.String,
		IsDynamic:   row.IsDynamic,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	if len(row.Criteria) > 0 {
		var criteria types.Criteria
		if err := json.Unmarshal(row.Criteria, &criteria); err != nil {
			// Malformed stored criteria degrades to a manual list rather than
			// failing the lookup
			s.log.Warn("list has malformed criteria column",
				zap.String("list_id", row.ListID), zap.Error(err))
		} else {
			list.Criteria = &criteria
		}
	}

	return list, nil
}

// UpdateCriteria replaces a list's stored criteria after validation.
func (s *ListStore) UpdateCriteria(ctx context.Context, id types.ListID, criteria *types.Criteria) error {
	if err := segment.Validate(criteria); err != nil {
		return fmt.Errorf("invalid criteria: %w", err)
	}

	var criteriaJSON any
	if criteria != nil {
		raw, err := json.Marshal(criteria)
		if err != nil {
			return fmt.Errorf("failed to encode criteria: %w", err)
		}
		criteriaJSON = string(raw)
	}

	res, err := s.q.Exec(ctx, "update-list-criteria", criteriaJSON, time.Now().UTC(), string(id))
	if err != nil {
		return fmt.Errorf("failed to update criteria: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrListNotFound
	}
	return nil
}

// ReplaceMembers swaps the full membership of a list for the given contacts.
// Delete and inserts share one transaction so a failed refresh cannot leave a
// half-replaced member set.
func (s *ListStore) ReplaceMembers(ctx context.Context, id types.ListID, contacts []types.Contact) error {
	deleteSQL, err := s.q.Raw("delete-list-members")
	if err != nil {
		return err
	}
	insertSQL, err := s.q.Raw("insert-list-member")
	if err != nil {
		return err
	}

	tx, err := s.q.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, deleteSQL, string(id)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear list members: %w", err)
	}

	now := time.Now().UTC()
	for i := range contacts {
		if _, err := tx.ExecContext(ctx, insertSQL, string(id), string(contacts[i].ID), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert list member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit membership: %w", err)
	}

	s.log.Info("replaced list members",
		zap.String("list_id", string(id)),
		zap.Int("members", len(contacts)))

	return nil
}

// MemberCount returns the current persisted membership size of a list.
func (s *ListStore) MemberCount(ctx context.Context, id types.ListID) (int, error) {
	var n int
	if err := s.q.Get(ctx, "count-list-members", &n, string(id)); err != nil {
		return 0, fmt.Errorf("failed to count list members: %w", err)
	}
	return n, nil
}

// Materialize filters a company's contacts with the given criteria and
// persists the result as a new list. Returns the list ID and the filter
// summary. The dynamic flag keeps the criteria attached for later refreshes;
// a segment keeps them for audit but is not expected to be re-run.
func (s *ListStore) Materialize(ctx context.Context, engine *segment.Engine, contacts *ContactStore,
	companyID, name, description string, criteria *types.Criteria, dynamic bool,
	contactLimit, previewSize int) (types.ListID, segment.Summary, error) {

	universe, err := contacts.ByCompany(ctx, companyID, contactLimit)
	if err != nil {
		return "", segment.Summary{}, err
	}

	matched, summary := engine.Filter(universe, criteria, previewSize)

	id, err := s.Create(ctx, companyID, name, description, criteria, dynamic)
	if err != nil {
		return "", segment.Summary{}, err
	}

	if err := s.ReplaceMembers(ctx, id, matched); err != nil {
		return "", segment.Summary{}, err
	}

	return id, summary, nil
}

// Refresh re-runs a dynamic list's stored criteria against the company's
// current contact universe and swaps the membership to the new result.
func (s *ListStore) Refresh(ctx context.Context, engine *segment.Engine, contacts *ContactStore,
	id types.ListID, contactLimit, previewSize int) (segment.Summary, error) {

	list, err := s.Get(ctx, id)
	if err != nil {
		return segment.Summary{}, err
	}
	if list.Criteria == nil {
		return segment.Summary{}, types.ErrNotDynamicList
	}

	universe, err := contacts.ByCompany(ctx, list.CompanyID, contactLimit)
	if err != nil {
		return segment.Summary{}, err
	}

	matched, summary := engine.Filter(universe, list.Criteria, previewSize)

	if err := s.ReplaceMembers(ctx, id, matched); err != nil {
		return segment.Summary{}, err
	}

	return summary, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
