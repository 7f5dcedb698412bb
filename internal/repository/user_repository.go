package repository

import (
	"database/sql"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// UserRepositoryInterface defines the user lookups used by the services
type UserRepositoryInterface interface {
	GetByID(id int) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByRole(role model.Role) ([]model.User, error)
	ListAll() ([]model.User, error)
	Create(u *model.User) error
}

// UserRepository is the concrete implementation
type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, password_hash, name, first_name, last_name, role,
        manager_first_name, manager_last_name, manager_email`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.FirstName, &u.LastName,
		&u.Role, &u.ManagerFirstName, &u.ManagerLastName, &u.ManagerEmail,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by ID; returns nil when absent
func (r *UserRepository) GetByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByEmail fetches a user by email (exact match; emails are stored lowercased)
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.DB.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByRole fetches all users holding the given role
func (r *UserRepository) GetByRole(role model.Role) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY id`
	rows, err := r.DB.Query(query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListAll fetches all users
func (r *UserRepository) ListAll() ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Create(u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleEmployee
	}
	query := `
        INSERT INTO users (email, password_hash, name, first_name, last_name, role,
            manager_first_name, manager_last_name, manager_email)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		u.Email, u.PasswordHash, u.Name, u.FirstName, u.LastName, string(u.Role),
		u.ManagerFirstName, u.ManagerLastName, u.ManagerEmail,
	).Scan(&u.ID)
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
