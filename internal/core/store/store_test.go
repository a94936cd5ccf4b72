package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/qhosting/smsegment/internal/core/db"
	"github.com/qhosting/smsegment/internal/segment"
	"github.com/qhosting/smsegment/internal/types"
)

// testStores opens an in-memory database with the full schema applied.
// MaxOpenConns must stay at 1: every pooled sqlite connection would
// otherwise get its own private :memory: database.
func testStores(t *testing.T) (*ContactStore, *ListStore, *sqlx.DB) {
	t.Helper()

	sqldb, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	if err := db.MigrateUp(sqldb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	queries, err := db.LoadQueries(sqldb)
	if err != nil {
		t.Fatalf("failed to load queries: %v", err)
	}

	log := zap.NewNop()
	return NewContactStore(queries, log), NewListStore(queries, log), sqldb
}

func seedContact(t *testing.T, s *ContactStore, companyID, phone string, score float64, createdAt time.Time) types.Contact {
	t.Helper()

	c := types.Contact{
		ID:        types.NewContactID(),
		Phone:     phone,
		FirstName: "Ana",
		LastName:  "Torres",
		City:      "Monterrey",
		Score:     score,
		Tags:      []string{"vip"},
		CustomFields: map[string]any{
			"plan": "premium",
		},
		IsValid:   true,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	if err := s.Insert(context.Background(), companyID, &c); err != nil {
		t.Fatalf("failed to seed contact %s: %v", phone, err)
	}
	return c
}

func TestContactStoreRoundTrip(t *testing.T) {
	contacts, _, _ := testStores(t)
	ctx := context.Background()

	subUpdated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	activityDate := time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
	c := types.Contact{
		ID:        types.NewContactID(),
		Phone:     "+5218181234567",
		Email:     "ana@example.com",
		FirstName: "Ana",
		Score:     85,
		Tags:      []string{"vip", "newsletter"},
		CustomFields: map[string]any{
			"plan": "premium",
		},
		Subscription: &types.Subscription{
			Status:    types.StatusUnsubscribed,
			UpdatedAt: subUpdated,
		},
		LastActivity: &types.Activity{
			Type: "click",
			Date: activityDate,
		},
		IsValid:   true,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := contacts.Insert(ctx, "acme", &c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := contacts.ByCompany(ctx, "acme", 100)
	if err != nil {
		t.Fatalf("ByCompany failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}

	r := got[0]
	if r.ID != c.ID {
		t.Errorf("ID = %q, want %q", r.ID, c.ID)
	}
	if r.Phone != c.Phone || r.Email != c.Email || r.Score != c.Score {
		t.Errorf("field mismatch: got %+v", r)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "vip" {
		t.Errorf("Tags = %v, want [vip newsletter]", r.Tags)
	}
	if r.CustomFields["plan"] != "premium" {
		t.Errorf("CustomFields = %v, want plan=premium", r.CustomFields)
	}
	if r.Subscription == nil || r.Subscription.Status != types.StatusUnsubscribed {
		t.Errorf("Subscription = %+v, want UNSUBSCRIBED", r.Subscription)
	}
	if r.LastActivity == nil || r.LastActivity.Type != "click" {
		t.Errorf("LastActivity = %+v, want click", r.LastActivity)
	}
}

func TestByCompanySkipsMalformedRows(t *testing.T) {
	contacts, _, sqldb := testStores(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := seedContact(t, contacts, "acme", "+5211000000001", 80, base)

	// Corrupt rows go in behind the store's back; the write path would
	// reject them
	insertRaw := `INSERT INTO contacts (contact_id, company_id, phone, tags, custom_fields, created_at)
	              VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := sqldb.Exec(insertRaw,
		string(types.NewContactID()), "acme", "+5211000000002", "{not json", "{}", base.Add(time.Hour)); err != nil {
		t.Fatalf("failed to insert corrupt-tags row: %v", err)
	}
	if _, err := sqldb.Exec(insertRaw,
		string(types.NewContactID()), "acme", "+5211000000003", "[]", "[oops", base.Add(2*time.Hour)); err != nil {
		t.Fatalf("failed to insert corrupt-custom-fields row: %v", err)
	}

	got, err := contacts.ByCompany(ctx, "acme", 100)
	if err != nil {
		t.Fatalf("ByCompany failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected corrupt rows dropped, got %d contacts", len(got))
	}
	if got[0].ID != valid.ID {
		t.Errorf("surviving contact = %q, want %q", got[0].ID, valid.ID)
	}
}

func TestGetDegradesMalformedCriteria(t *testing.T) {
	_, lists, sqldb := testStores(t)
	ctx := context.Background()

	criteria := &types.Criteria{
		Operator: types.CombinatorAnd,
		Rules: []types.Rule{
			{Field: "score", Operator: types.OpGreaterEqual, Value: 80, DataType: types.DataTypeNumber},
		},
	}
	id, err := lists.Create(ctx, "acme", "high-score", "", criteria, true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := sqldb.Exec(`UPDATE lists SET criteria = ? WHERE list_id = ?`, "{bad", string(id)); err != nil {
		t.Fatalf("failed to corrupt criteria column: %v", err)
	}

	list, err := lists.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed on malformed criteria: %v", err)
	}
	if list.Criteria != nil {
		t.Errorf("Criteria = %+v, want nil (degrade to manual list)", list.Criteria)
	}

	// And a degraded list refuses to refresh
	engine := segment.NewEngine()
	contacts := NewContactStore(nil, zap.NewNop())
	if _, err := lists.Refresh(ctx, engine, contacts, id, 100, 10); !errors.Is(err, types.ErrNotDynamicList) {
		t.Errorf("Refresh error = %v, want ErrNotDynamicList", err)
	}
}

func TestInsertEnforcesLimits(t *testing.T) {
	contacts, _, _ := testStores(t)
	ctx := context.Background()

	tags := make([]string, types.MaxTagsPerContact+1)
	for i := range tags {
		tags[i] = "t"
	}
	c := types.Contact{
		ID:        types.NewContactID(),
		Phone:     "+5211000000010",
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}
	if err := contacts.Insert(ctx, "acme", &c); !errors.Is(err, types.ErrTooManyTags) {
		t.Errorf("Insert error = %v, want ErrTooManyTags", err)
	}

	custom := make(map[string]any, types.MaxCustomFields+1)
	for i := 0; i <= types.MaxCustomFields; i++ {
		custom[fmt.Sprintf("field_%d", i)] = i
	}
	c2 := types.Contact{
		ID:           types.NewContactID(),
		Phone:        "+5211000000011",
		CustomFields: custom,
		CreatedAt:    time.Now().UTC(),
	}
	if err := contacts.Insert(ctx, "acme", &c2); !errors.Is(err, types.ErrTooManyCustomFields) {
		t.Errorf("Insert error = %v, want ErrTooManyCustomFields", err)
	}
}

func TestMaterializeRefreshMemberCount(t *testing.T) {
	contacts, lists, _ := testStores(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	scores := []float64{95, 85, 70, 60, 50}
	for i, score := range scores {
		seedContact(t, contacts, "acme", fmt.Sprintf("+52110000001%02d", i), score, base.Add(time.Duration(i)*time.Hour))
	}

	criteria := &types.Criteria{
		Operator: types.CombinatorAnd,
		Rules: []types.Rule{
			{Field: "score", Operator: types.OpGreaterEqual, Value: 80, DataType: types.DataTypeNumber},
		},
	}

	engine := segment.NewEngine()
	id, summary, err := lists.Materialize(ctx, engine, contacts, "acme", "engaged", "", criteria, true, 100, 10)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if summary.Total != 5 || summary.Matched != 2 {
		t.Errorf("summary = %d/%d, want 2/5 matched", summary.Matched, summary.Total)
	}

	n, err := lists.MemberCount(ctx, id)
	if err != nil {
		t.Fatalf("MemberCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("MemberCount = %d, want 2", n)
	}

	// A new qualifying contact joins the list on refresh
	seedContact(t, contacts, "acme", "+5211000000105", 90, base.Add(6*time.Hour))

	summary, err = lists.Refresh(ctx, engine, contacts, id, 100, 10)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if summary.Matched != 3 {
		t.Errorf("refreshed matched = %d, want 3", summary.Matched)
	}

	n, err = lists.MemberCount(ctx, id)
	if err != nil {
		t.Fatalf("MemberCount after refresh failed: %v", err)
	}
	if n != 3 {
		t.Errorf("MemberCount after refresh = %d, want 3", n)
	}
}

func TestGetListNotFound(t *testing.T) {
	_, lists, _ := testStores(t)

	if _, err := lists.Get(context.Background(), types.NewListID()); !errors.Is(err, types.ErrListNotFound) {
		t.Errorf("Get error = %v, want ErrListNotFound", err)
	}
}
