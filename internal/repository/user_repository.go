package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role     *domain.Role
	Active   *bool
	Backbone *bool
	Limit    int
	Offset   int
}

// UserRepository handles persistence for operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// ListIdleTechnicians returns active technicians with the given backbone
	// flag who hold no active assignment on a non-terminal ticket.
	ListIdleTechnicians(ctx context.Context, backbone bool, excludeID string) ([]domain.User, error)
}

type userRepository struct {
	db Database
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db Database) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_backbone_specialist, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, is_backbone_specialist, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return querierFor(ctx, r.db).QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsBackboneSpecialist,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET name=$1, email=$2, password_hash=$3, role=$4, is_backbone_specialist=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := querierFor(ctx, r.db).Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsBackboneSpecialist,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := querierFor(ctx, r.db).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsBackboneSpecialist,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	base := `SELECT ` + userColumns + ` FROM users`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.Backbone != nil {
		args = append(args, *filter.Backbone)
		clauses = append(clauses, fmt.Sprintf("is_backbone_specialist=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := querierFor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListIdleTechniciansSQL is exported for test expectations.
const ListIdleTechniciansSQL = `
        SELECT ` + userColumns + `
        FROM users u
        WHERE u.role='technician' AND u.is_active=TRUE AND u.is_backbone_specialist=$1 AND u.id<>$2
          AND NOT EXISTS (
            SELECT 1 FROM ticket_assignments a
            JOIN tickets t ON t.id = a.ticket_id
            WHERE a.user_id = u.id AND a.active=TRUE
              AND t.status NOT IN ('closed','rejected')
          )
        ORDER BY u.created_at ASC`

func (r *userRepository) ListIdleTechnicians(ctx context.Context, backbone bool, excludeID string) ([]domain.User, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, ListIdleTechniciansSQL, backbone, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.IsBackboneSpecialist,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
