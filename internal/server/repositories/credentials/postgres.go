// Package credentials persists encrypted vault entries. Only the serialized
// blob ever reaches this layer; plaintext never does.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/dbx"
	"github.com/dsmelov/securekey/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const credentialColumns = `id, user_id, url, username, encrypted_secret, strength_score,
	notes, last_updated, next_reminder, created_at`

func (r *PostgresRepository) Create(ctx context.Context, record *models.CredentialRecord) (*models.CredentialRecord, error) {

	query :=
		`INSERT INTO credentials (id, user_id, url, username, encrypted_secret, strength_score, notes, last_updated, next_reminder)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.UserID, record.URL, record.Username, record.EncryptedSecret,
		record.StrengthScore, record.Notes, record.LastUpdated, record.NextReminder).Scan(&record.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.CredentialRecord, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = $1 AND id = $2`

	record, err := scanCredential(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.CredentialRecord, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = $1 ORDER BY last_updated DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListDue(ctx context.Context, userID string, now time.Time) ([]*models.CredentialRecord, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = $1 AND next_reminder <= $2 ORDER BY next_reminder`
	return r.list(ctx, query, userID, now)
}

func (r *PostgresRepository) Update(ctx context.Context, record *models.CredentialRecord) error {

	query :=
		`UPDATE credentials
		 SET url = $3, username = $4, encrypted_secret = $5, strength_score = $6,
			 notes = $7, last_updated = $8, next_reminder = $9
		 WHERE user_id = $1 AND id = $2
		 `

	result, err := r.db.ExecContext(ctx, query,
		record.UserID, record.ID, record.URL, record.Username, record.EncryptedSecret,
		record.StrengthScore, record.Notes, record.LastUpdated, record.NextReminder)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(result)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM credentials WHERE user_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return checkAffected(result)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.CredentialRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []*models.CredentialRecord
	for rows.Next() {
		record := &models.CredentialRecord{}
		err := rows.Scan(
			&record.ID, &record.UserID, &record.URL, &record.Username,
			&record.EncryptedSecret, &record.StrengthScore, &record.Notes,
			&record.LastUpdated, &record.NextReminder, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return records, nil
}

func scanCredential(row *sql.Row) (*models.CredentialRecord, error) {
	record := &models.CredentialRecord{}

	err := row.Scan(
		&record.ID, &record.UserID, &record.URL, &record.Username,
		&record.EncryptedSecret, &record.StrengthScore, &record.Notes,
		&record.LastUpdated, &record.NextReminder, &record.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
