package repository

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// StatusHistoryRepository is the append-only audit log of status transitions.
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusHistory, error)
	// ListRecentByRole returns the newest entries made by users holding role.
	ListRecentByRole(ctx context.Context, role domain.Role, limit int) ([]domain.NavigatorUpdate, error)
}

type statusHistoryRepository struct {
	db DBTX
}

func (r *statusHistoryRepository) Append(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO status_history (complaint_id, old_status, new_status, updated_by, updated_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.OldStatus,
		entry.NewStatus,
		entry.UpdatedBy,
		entry.UpdatedAt,
	).Scan(&entry.ID)
}

func (r *statusHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, complaint_id, old_status, new_status, updated_by, updated_at
        FROM status_history WHERE complaint_id=$1 ORDER BY updated_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StatusHistory{}
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.UpdatedBy,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *statusHistoryRepository) ListRecentByRole(ctx context.Context, role domain.Role, limit int) ([]domain.NavigatorUpdate, error) {
	const query = `
        SELECT sh.id, sh.complaint_id, c.title, u.full_name, u.email, sh.old_status, sh.new_status, sh.updated_at
        FROM status_history sh
        INNER JOIN users u ON sh.updated_by = u.id
        INNER JOIN complaints c ON sh.complaint_id = c.id
        WHERE u.role = $1
        ORDER BY sh.updated_at DESC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, role, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.NavigatorUpdate{}
	for rows.Next() {
		var u domain.NavigatorUpdate
		if err := rows.Scan(
			&u.ID,
			&u.ComplaintID,
			&u.ComplaintTitle,
			&u.NavigatorName,
			&u.NavigatorEmail,
			&u.OldStatus,
			&u.NewStatus,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
