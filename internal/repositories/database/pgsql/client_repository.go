package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamila-bank/backoffice-api/internal/apperrors"
	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portsrepo "github.com/jamila-bank/backoffice-api/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

const clientColumns = `client_id, user_id, phone, first_name, last_name, address, created_at, last_updated_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	var address *string
	err := row.Scan(
		&c.ClientID,
		&c.UserID,
		&c.Phone,
		&c.FirstName,
		&c.LastName,
		&address,
		&c.CreatedAt,
		&c.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	if address != nil {
		c.Address = *address
	}
	return &c, nil
}

// FindClientByID retrieves a client by identifier.
func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1;`
	return scanClient(r.Pool.QueryRow(ctx, query, clientID))
}

// FindClientByUserID retrieves the client profile linked to a user.
func (r *PgxClientRepository) FindClientByUserID(ctx context.Context, userID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1;`
	return scanClient(r.Pool.QueryRow(ctx, query, userID))
}

// FindClientByPhone retrieves a client by phone number or merchant code.
func (r *PgxClientRepository) FindClientByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1;`
	return scanClient(r.Pool.QueryRow(ctx, query, phone))
}

// ListClients retrieves a paginated client listing, oldest first.
func (r *PgxClientRepository) ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at ASC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// SaveClient persists a new client.
func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (client_id, user_id, phone, first_name, last_name, address, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var address *string
	if client.Address != "" {
		address = &client.Address
	}
	_, err := r.Pool.Exec(ctx, query,
		client.ClientID,
		client.UserID,
		client.Phone,
		client.FirstName,
		client.LastName,
		address,
		client.CreatedAt,
		client.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client phone %s: %w", client.Phone, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save client %s: %w", client.ClientID, err)
	}
	return nil
}

// UpdateClient updates the mutable client fields. Phone stays out of the SET
// list; it doubles as the merchant code and is immutable once assigned.
func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients
		SET first_name = $2, last_name = $3, address = $4, last_updated_at = $5
		WHERE client_id = $1;
	`
	var address *string
	if client.Address != "" {
		address = &client.Address
	}
	tag, err := r.Pool.Exec(ctx, query,
		client.ClientID,
		client.FirstName,
		client.LastName,
		address,
		client.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %s: %w", client.ClientID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
