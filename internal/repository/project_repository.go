package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/project-tracker/internal/domain"
)

// ProjectFilter captures project listing parameters. AccessibleTo restricts
// the result to projects the user created or is a member of.
type ProjectFilter struct {
	AccessibleTo *string
	Statuses     []domain.ProjectStatus
	IsActive     *bool
	Limit        int
	Offset       int
}

// ProjectRepository encapsulates project and membership persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID string, member *domain.Member) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	UpdateMemberRole(ctx context.Context, projectID, userID string, role domain.MemberRole) error
	CountReferencingUser(ctx context.Context, userID string) (int64, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, name, description, status, priority, created_by, is_active, created_at, updated_at`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, status, priority, created_by, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.CreatedBy,
		project.IsActive,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, status=$3, priority=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.IsActive,
		project.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`
	project, err := r.fetchSingle(ctx, query, id)
	if err != nil {
		return nil, err
	}
	members, err := r.listMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Members = members
	return project, nil
}

func (r *projectRepository) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	// exact, case-sensitive match
	query := `SELECT ` + projectColumns + ` FROM projects WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *projectRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Project, error) {
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Priority,
		&project.CreatedBy,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) listMembers(ctx context.Context, projectID string) ([]domain.Member, error) {
	const query = `
        SELECT user_id, role, joined_at FROM project_members
        WHERE project_id=$1 ORDER BY joined_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(&member.UserID, &member.Role, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AccessibleTo != nil {
		args = append(args, *filter.AccessibleTo)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(p.created_by=%s OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id=p.id AND m.user_id=%s))",
			placeholder, placeholder))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("p.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("p.is_active=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT p.id, p.name, p.description, p.status, p.priority, p.created_by, p.is_active, p.created_at, p.updated_at
        FROM projects p WHERE %s ORDER BY p.updated_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.Priority,
			&project.CreatedBy,
			&project.IsActive,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		members, err := r.listMembers(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Members = members
	}
	return result, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, projectID string, member *domain.Member) error {
	const query = `
        INSERT INTO project_members (project_id, user_id, role)
        VALUES ($1,$2,$3)
        RETURNING joined_at`
	return r.pool.QueryRow(ctx, query, projectID, member.UserID, member.Role).Scan(&member.JoinedAt)
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id=$1 AND user_id=$2`, projectID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) UpdateMemberRole(ctx context.Context, projectID, userID string, role domain.MemberRole) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE project_members SET role=$1 WHERE project_id=$2 AND user_id=$3`, role, projectID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) CountReferencingUser(ctx context.Context, userID string) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM projects p
        WHERE p.created_by=$1
           OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id=p.id AND m.user_id=$1)`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
