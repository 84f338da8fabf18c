package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-tracker/internal/domain"
)

// TicketFilter captures ticket search parameters. AccessibleTo restricts the
// result to tickets in projects the user created or is a member of.
type TicketFilter struct {
	ProjectID    *string
	AccessibleTo *string
	AssigneeID   *string
	CreatedBy    *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.Priority
	Types        []domain.TicketType
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	DueFrom      *time.Time
	DueTo        *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	AppendStatusChange(ctx context.Context, entry *domain.StatusChange) error
	ListStatusHistory(ctx context.Context, ticketID string) ([]domain.StatusChange, error)
	CountByProject(ctx context.Context, projectID string) (int64, error)
	CountReferencingUser(ctx context.Context, userID string) (int64, error)
	StatsByProject(ctx context.Context, projectID string) (map[domain.TicketStatus]int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, project_id, title, description, status, priority, type, assigned_to, created_by,
               due_date, estimated_hours, actual_hours, tags, resolved_at, closed_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (project_id, title, description, status, priority, type, assigned_to, created_by,
                             due_date, estimated_hours, actual_hours, tags, resolved_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ProjectID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.AssignedTo,
		ticket.CreatedBy,
		ticket.DueDate,
		ticket.EstimatedHours,
		ticket.ActualHours,
		ticket.Tags,
		ticket.ResolvedAt,
		ticket.ClosedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, type=$5, assigned_to=$6,
            due_date=$7, estimated_hours=$8, actual_hours=$9, tags=$10, resolved_at=$11, closed_at=$12,
            updated_at=NOW()
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.AssignedTo,
		ticket.DueDate,
		ticket.EstimatedHours,
		ticket.ActualHours,
		ticket.Tags,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ProjectID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Type,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&ticket.DueDate,
		&ticket.EstimatedHours,
		&ticket.ActualHours,
		&ticket.Tags,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("t.project_id=$%d", len(args)))
	}
	if filter.AccessibleTo != nil {
		args = append(args, *filter.AccessibleTo)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM projects p WHERE p.id=t.project_id AND
                (p.created_by=%s OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id=p.id AND m.user_id=%s)))`,
			placeholder, placeholder))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, tt := range filter.Types {
			args = append(args, tt)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.DueFrom != nil {
		args = append(args, *filter.DueFrom)
		clauses = append(clauses, fmt.Sprintf("t.due_date >= $%d", len(args)))
	}
	if filter.DueTo != nil {
		args = append(args, *filter.DueTo)
		clauses = append(clauses, fmt.Sprintf("t.due_date <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT t.id, t.project_id, t.title, t.description, t.status, t.priority, t.type,
               t.assigned_to, t.created_by, t.due_date, t.estimated_hours, t.actual_hours, t.tags,
               t.resolved_at, t.closed_at, t.created_at, t.updated_at
        FROM tickets t WHERE %s ORDER BY t.updated_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ProjectID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Type,
			&ticket.AssignedTo,
			&ticket.CreatedBy,
			&ticket.DueDate,
			&ticket.EstimatedHours,
			&ticket.ActualHours,
			&ticket.Tags,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AppendStatusChange(ctx context.Context, entry *domain.StatusChange) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, status, changed_by, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, changed_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.ChangedBy,
		entry.Comment,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *ticketRepository) ListStatusHistory(ctx context.Context, ticketID string) ([]domain.StatusChange, error) {
	const query = `
        SELECT id, ticket_id, status, changed_by, changed_at, comment
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY changed_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusChange
	for rows.Next() {
		var entry domain.StatusChange
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Status,
			&entry.ChangedBy,
			&entry.ChangedAt,
			&entry.Comment,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE project_id=$1`, projectID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountReferencingUser counts every row that would block a hard user delete:
// tickets the user created or is assigned to, plus status history entries the
// user recorded (changed_by carries a NOT NULL FK).
func (r *ticketRepository) CountReferencingUser(ctx context.Context, userID string) (int64, error) {
	const query = `
        SELECT (SELECT COUNT(*) FROM tickets WHERE created_by=$1 OR assigned_to=$1)
             + (SELECT COUNT(*) FROM ticket_status_history WHERE changed_by=$1)`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) StatsByProject(ctx context.Context, projectID string) (map[domain.TicketStatus]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM tickets WHERE project_id=$1 GROUP BY status`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
