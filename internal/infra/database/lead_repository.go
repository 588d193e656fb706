package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

const leadColumns = `id, created_at, inquiry_date::text, client_name, company_name, phone, email,
	source, channel, product_category, enquiring_about, notes, assigned_to,
	status, latest_update, last_status_change_at, deadline_at, auto_lost,
	doc_no, amount, payment_done, lost_reason`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l                                                        entity.Lead
		company, email, notes, latest, docNo, lostReason, status sql.NullString
		lastChange, deadline                                     sql.NullTime
		amount                                                   decimal.NullDecimal
	)

	err := row.Scan(
		&l.ID, &l.CreatedAt, &l.InquiryDate, &l.ClientName, &company, &l.Phone, &email,
		&l.Source, &l.Channel, &l.ProductCategory, &l.EnquiringAbout, &notes, &l.AssignedTo,
		&status, &latest, &lastChange, &deadline, &l.AutoLost,
		&docNo, &amount, &l.PaymentDone, &lostReason,
	)
	if err != nil {
		return nil, err
	}

	l.CompanyName = company.String
	l.Email = email.String
	l.Notes = notes.String
	l.LatestUpdate = latest.String
	l.DocNo = docNo.String
	l.LostReason = lostReason.String
	l.Amount = amount

	// Linhas antigas sem status contam como New
	l.Status = entity.StatusNew
	if status.Valid && status.String != "" {
		l.Status = entity.LeadStatus(status.String)
	}
	if lastChange.Valid {
		t := lastChange.Time
		l.LastStatusChangeAt = &t
	}
	if deadline.Valid {
		t := deadline.Time
		l.DeadlineAt = &t
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	query := `
		INSERT INTO leads (
			inquiry_date, client_name, company_name, phone, email,
			source, channel, product_category, enquiring_about, notes,
			assigned_to, status, last_status_change_at, deadline_at,
			doc_no, amount, lost_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + leadColumns

	created, err := scanLead(r.DB.QueryRowContext(ctx, query,
		lead.InquiryDate,
		lead.ClientName,
		nullString(lead.CompanyName),
		lead.Phone,
		nullString(lead.Email),
		lead.Source,
		lead.Channel,
		lead.ProductCategory,
		lead.EnquiringAbout,
		nullString(lead.Notes),
		lead.AssignedTo,
		string(lead.Status),
		lead.LastStatusChangeAt,
		lead.DeadlineAt,
		nullString(lead.DocNo),
		lead.Amount,
		nullString(lead.LostReason),
	))
	if err != nil {
		return nil, classify("insert lead", err, entity.ErrLeadNotFound)
	}
	return created, nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	set := &setBuilder{}
	set.add("inquiry_date", patch.InquiryDate)
	set.add("client_name", patch.ClientName)
	set.addNullable("company_name", patch.CompanyName)
	set.add("phone", patch.Phone)
	set.addNullable("email", patch.Email)
	set.add("source", patch.Source)
	set.add("channel", patch.Channel)
	set.add("product_category", patch.ProductCategory)
	set.add("enquiring_about", patch.EnquiringAbout)
	set.addNullable("notes", patch.Notes)
	set.add("assigned_to", patch.AssignedTo)
	if patch.Status != nil {
		set.set("status", string(*patch.Status))
	}
	set.addNullable("latest_update", patch.LatestUpdate)
	if patch.LastStatusChangeAt != nil {
		set.set("last_status_change_at", *patch.LastStatusChangeAt)
	}
	if patch.ClearDeadline {
		set.set("deadline_at", nil)
	} else if patch.DeadlineAt != nil {
		set.set("deadline_at", *patch.DeadlineAt)
	}
	set.addNullable("doc_no", patch.DocNo)
	if patch.Amount != nil {
		set.set("amount", *patch.Amount)
	}
	if patch.PaymentDone != nil {
		set.set("payment_done", *patch.PaymentDone)
	}
	set.addNullable("lost_reason", patch.LostReason)

	if len(set.clauses) == 0 {
		return r.FindByID(ctx, id)
	}

	set.args = append(set.args, id)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set.clauses, ", "), len(set.args), leadColumns)

	updated, err := scanLead(r.DB.QueryRowContext(ctx, query, set.args...))
	if err != nil {
		return nil, classify("update lead", err, entity.ErrLeadNotFound)
	}
	return updated, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("find lead", err, entity.ErrLeadNotFound)
	}
	return lead, nil
}

// List returns the leads matching filter, newest first.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.AssignedTo != nil {
		args = append(args, pq.Array(filter.AssignedTo))
		where = append(where, fmt.Sprintf("assigned_to = ANY($%d)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list leads", err, entity.ErrLeadNotFound)
	}
	defer rows.Close()

	leads := make([]*entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, classify("scan lead", err, entity.ErrLeadNotFound)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list leads", err, entity.ErrLeadNotFound)
	}
	return leads, nil
}

// setBuilder accumulates "col = $n" clauses for a partial update.
type setBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *setBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) add(column string, value *string) {
	if value != nil {
		b.set(column, *value)
	}
}

// addNullable stores an empty string as NULL.
func (b *setBuilder) addNullable(column string, value *string) {
	if value != nil {
		b.set(column, nullString(*value))
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
