package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter narrows complaint listings. Nil fields are not applied.
type ComplaintFilter struct {
	UserID            *string
	AssignedHandlerID *string
	Status            *domain.ComplaintStatus
	Limit             int
	Offset            int
}

// ComplaintAggregate carries raw counts for statistics.
type ComplaintAggregate struct {
	Total              int
	Active             int
	Resolved           int
	Overdue            int
	AvgResponseSeconds *float64
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Complaint, error)
	Aggregate(ctx context.Context, now time.Time) (ComplaintAggregate, error)
}

const complaintColumns = `id, user_id, title, description, category, status, assigned_navigator_id,
       expected_resolution_date, responded_at, escalated_at, escalation_reason, created_at, updated_at`

type complaintRepository struct {
	db DBTX
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, title, description, category, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		c.UserID,
		c.Title,
		c.Description,
		c.Category,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *complaintRepository) Update(ctx context.Context, c *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, assigned_navigator_id=$2, expected_resolution_date=$3,
            responded_at=$4, escalated_at=$5, escalation_reason=$6, updated_at=$7
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		c.Status,
		c.AssignedHandlerID,
		c.ExpectedResolutionDate,
		c.RespondedAt,
		c.EscalatedAt,
		c.EscalationReason,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id)
}

func (r *complaintRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1 FOR UPDATE`, id)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, id string) (*domain.Complaint, error) {
	c, err := scanComplaint(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	var p predicates
	if filter.UserID != nil {
		p.eq("user_id", *filter.UserID)
	}
	if filter.AssignedHandlerID != nil {
		p.eq("assigned_navigator_id", *filter.AssignedHandlerID)
	}
	if filter.Status != nil {
		p.eq("status", *filter.Status)
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints` + p.where() + ` ORDER BY created_at DESC`
	query += p.page(filter.Limit, filter.Offset)
	return r.query(ctx, query, p.args...)
}

func (r *complaintRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Complaint, error) {
	var p predicates
	p.notNull("expected_resolution_date")
	p.before("expected_resolution_date", now)
	p.neq("status", domain.StatusResolved)
	query := `SELECT ` + complaintColumns + ` FROM complaints` + p.where() +
		` ORDER BY expected_resolution_date ASC` + p.page(limit, 0)
	return r.query(ctx, query, p.args...)
}

func (r *complaintRepository) Aggregate(ctx context.Context, now time.Time) (ComplaintAggregate, error) {
	const query = `
        SELECT
            COUNT(*)::int,
            (COUNT(*) FILTER (WHERE status = ANY($1)))::int,
            (COUNT(*) FILTER (WHERE status = $2))::int,
            (COUNT(*) FILTER (
                WHERE expected_resolution_date IS NOT NULL
                  AND expected_resolution_date < $3
                  AND status <> $2))::int,
            AVG(EXTRACT(EPOCH FROM (responded_at - created_at)))::float8
        FROM complaints`
	active := make([]string, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		if status.IsActive() {
			active = append(active, string(status))
		}
	}
	var agg ComplaintAggregate
	err := r.db.QueryRow(ctx, query, active, string(domain.StatusResolved), now).Scan(
		&agg.Total,
		&agg.Active,
		&agg.Resolved,
		&agg.Overdue,
		&agg.AvgResponseSeconds,
	)
	return agg, err
}

func (r *complaintRepository) query(ctx context.Context, query string, args ...any) ([]domain.Complaint, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Status,
		&c.AssignedHandlerID,
		&c.ExpectedResolutionDate,
		&c.RespondedAt,
		&c.EscalatedAt,
		&c.EscalationReason,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
