package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

var (
	leadCols = []string{
		"id", "created_at", "inquiry_date", "client_name", "company_name", "phone", "email",
		"source", "channel", "product_category", "enquiring_about", "notes", "assigned_to",
		"status", "latest_update", "last_status_change_at", "deadline_at", "auto_lost",
		"doc_no", "amount", "payment_done", "lost_reason",
	}
	createdAt = time.Date(2024, 5, 9, 10, 0, 0, 0, time.UTC)
)

func setupLeadRepo(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLeadRepository(db), mock
}

func leadRow(rows *sqlmock.Rows, id, status string) *sqlmock.Rows {
	return rows.AddRow(
		id, createdAt, "2024-05-09", "Acme Buyer", nil, "+971500000000", "buyer@acme.test",
		"Website", "Inbound", "Laptops", "Bulk order", nil, "s1",
		status, nil, nil, nil, false,
		nil, nil, false, nil,
	)
}

func TestLeadCreateReturnsStoredRow(t *testing.T) {
	repo, mock := setupLeadRepo(t)
	deadline := time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC)

	lead := &entity.Lead{
		InquiryDate:     "2024-05-09",
		ClientName:      "Acme Buyer",
		Phone:           "+971500000000",
		Email:           "buyer@acme.test",
		Source:          "Website",
		Channel:         "Inbound",
		ProductCategory: "Laptops",
		EnquiringAbout:  "Bulk order",
		AssignedTo:      "s1",
		Status:          entity.StatusNew,
		DeadlineAt:      &deadline,
	}

	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs("2024-05-09", "Acme Buyer", nil, "+971500000000", "buyer@acme.test",
			"Website", "Inbound", "Laptops", "Bulk order", nil,
			"s1", "New", nil, deadline,
			nil, nil, nil).
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "l1", "New"))

	created, err := repo.Create(context.Background(), lead)

	require.NoError(t, err)
	assert.Equal(t, "l1", created.ID)
	assert.Equal(t, createdAt, created.CreatedAt)
	assert.Equal(t, entity.StatusNew, created.Status)
	assert.Equal(t, "", created.CompanyName)
	assert.False(t, created.Amount.Valid)
	assert.Nil(t, created.DeadlineAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadCreateSurfacesConstraintViolationAsStoreError(t *testing.T) {
	cases := map[string]*pq.Error{
		"foreign key":  {Code: "23503", Constraint: "leads_assigned_to_fkey"},
		"check":        {Code: "23514", Constraint: "leads_status_check"},
		"invalid text": {Code: "22P02", Message: "invalid input syntax for type uuid"},
	}

	for name, pqErr := range cases {
		t.Run(name, func(t *testing.T) {
			repo, mock := setupLeadRepo(t)
			mock.ExpectQuery(`INSERT INTO leads`).WillReturnError(pqErr)

			_, err := repo.Create(context.Background(), &entity.Lead{AssignedTo: "ghost", Status: entity.StatusNew})

			assert.True(t, entity.IsStoreError(err))
			assert.False(t, entity.IsValidationError(err), "store failures are not intake faults")

			var cause *pq.Error
			require.ErrorAs(t, err, &cause)
			assert.Equal(t, pqErr.Code, cause.Code)
		})
	}
}

func TestLeadUpdateWritesOnlyPatchedColumns(t *testing.T) {
	repo, mock := setupLeadRepo(t)
	changedAt := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	status := entity.StatusWon
	docNo := "INV-7"
	amount := decimal.NullDecimal{Decimal: decimal.RequireFromString("2500"), Valid: true}

	query := regexp.QuoteMeta("UPDATE leads SET status = $1, last_status_change_at = $2, doc_no = $3, amount = $4 WHERE id = $5 RETURNING")
	rows := sqlmock.NewRows(leadCols).AddRow(
		"l1", createdAt, "2024-05-09", "Acme Buyer", "Acme LLC", "+971500000000", nil,
		"Website", "Inbound", "Laptops", "Bulk order", nil, "s1",
		"Won", "signed", changedAt, nil, false,
		"INV-7", "2500.00", true, nil,
	)
	mock.ExpectQuery(query).
		WithArgs("Won", changedAt, "INV-7", "2500", "l1").
		WillReturnRows(rows)

	updated, err := repo.Update(context.Background(), "l1", entity.LeadPatch{
		Status:             &status,
		LastStatusChangeAt: &changedAt,
		DocNo:              &docNo,
		Amount:             &amount,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusWon, updated.Status)
	assert.Equal(t, "Acme LLC", updated.CompanyName)
	require.NotNil(t, updated.LastStatusChangeAt)
	assert.Equal(t, changedAt, *updated.LastStatusChangeAt)
	assert.True(t, updated.Amount.Decimal.Equal(decimal.RequireFromString("2500")))
	assert.True(t, updated.PaymentDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadUpdateBlankOptionalBecomesNull(t *testing.T) {
	repo, mock := setupLeadRepo(t)
	empty := ""

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leads SET company_name = $1 WHERE id = $2")).
		WithArgs(nil, "l1").
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "l1", "New"))

	_, err := repo.Update(context.Background(), "l1", entity.LeadPatch{CompanyName: &empty})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadUpdateClearsDeadline(t *testing.T) {
	repo, mock := setupLeadRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leads SET deadline_at = $1 WHERE id = $2")).
		WithArgs(nil, "l1").
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "l1", "New"))

	lead, err := repo.Update(context.Background(), "l1", entity.LeadPatch{ClearDeadline: true})

	require.NoError(t, err)
	assert.Nil(t, lead.DeadlineAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadUpdateMissingRow(t *testing.T) {
	repo, mock := setupLeadRepo(t)
	notes := "x"

	mock.ExpectQuery(`UPDATE leads`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "l404", entity.LeadPatch{Notes: &notes})

	assert.True(t, entity.IsStoreError(err))
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadFindByIDDefaultsMissingStatus(t *testing.T) {
	repo, mock := setupLeadRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1")).
		WithArgs("l1").
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "l1", ""))

	lead, err := repo.FindByID(context.Background(), "l1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, lead.Status)
}

func TestLeadListScopesAndOrders(t *testing.T) {
	repo, mock := setupLeadRepo(t)

	query := regexp.QuoteMeta("FROM leads WHERE assigned_to = ANY($1) AND status = $2 ORDER BY created_at DESC")
	rows := sqlmock.NewRows(leadCols)
	leadRow(rows, "l2", "Negotiation")
	leadRow(rows, "l1", "Negotiation")
	mock.ExpectQuery(query).
		WithArgs(pq.Array([]string{"m1", "s1"}), "Negotiation").
		WillReturnRows(rows)

	leads, err := repo.List(context.Background(), entity.LeadFilter{
		AssignedTo: []string{"m1", "s1"},
		Status:     entity.StatusNegotiation,
	})

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "l2", leads[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadListUnscoped(t *testing.T) {
	repo, mock := setupLeadRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads ORDER BY created_at DESC")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(leadCols))

	leads, err := repo.List(context.Background(), entity.LeadFilter{})

	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.NotNil(t, leads)
}

func TestLeadListConnectionError(t *testing.T) {
	repo, mock := setupLeadRepo(t)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), entity.LeadFilter{})
	assert.True(t, entity.IsStoreError(err))
}
