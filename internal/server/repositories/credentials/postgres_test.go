package credentials

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var credentialRowColumns = []string{
	"id", "user_id", "url", "username", "encrypted_secret", "strength_score",
	"notes", "last_updated", "next_reminder", "created_at",
}

func sampleCredentialRow(id string, updated time.Time) []driver.Value {
	return []driver.Value{
		id, "u-1", "https://example.com", "alice",
		`{"iv":"00112233445566778899aabbccddeeff","encryptedData":"deadbeef"}`,
		85, "", updated, updated.AddDate(0, 0, 90), updated,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	q := `(?s)^\s*INSERT\s+INTO\s+credentials\s*\(id,\s*user_id,\s*url,\s*username,\s*encrypted_secret,\s*strength_score,\s*notes,\s*last_updated,\s*next_reminder\)`

	rows := sqlmock.NewRows([]string{"id"}).AddRow("c-1")
	mock.ExpectQuery(q).
		WithArgs("c-1", "u-1", "https://example.com", "alice",
			`{"iv":"00112233445566778899aabbccddeeff","encryptedData":"deadbeef"}`,
			85, "", updated, updated.AddDate(0, 0, 90)).
		WillReturnRows(rows)

	rec := &models.CredentialRecord{
		ID: "c-1", UserID: "u-1", URL: "https://example.com", Username: "alice",
		EncryptedSecret: `{"iv":"00112233445566778899aabbccddeeff","encryptedData":"deadbeef"}`,
		StrengthScore:   85, LastUpdated: updated, NextReminder: updated.AddDate(0, 0, 90),
	}
	got, err := repo.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "c-1" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+credentials`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.CredentialRecord{ID: "c-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	q := `(?s)^SELECT\s+.*\s+FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectQuery(q).
		WithArgs("u-1", "c-1").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).AddRow(sampleCredentialRow("c-1", updated)...))

	got, err := repo.GetByID(context.Background(), "u-1", "c-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "c-1" || got.StrengthScore != 85 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+credentials\s+WHERE\s+user_id`).
		WithArgs("u-1", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u-1", "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListByUser_ReturnsAllRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(credentialRowColumns).
		AddRow(sampleCredentialRow("c-2", updated.Add(time.Hour))...).
		AddRow(sampleCredentialRow("c-1", updated)...)

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+last_updated\s+DESC\s*$`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-2" || got[1].ID != "c-1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+credentials\s+WHERE\s+user_id`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(credentialRowColumns))

	got, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestListDue_FiltersByReminder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	updated := now.AddDate(0, 0, -100)

	mock.ExpectQuery(`(?s)FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+next_reminder\s*<=\s*\$2`).
		WithArgs("u-1", now).
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).AddRow(sampleCredentialRow("c-1", updated)...))

	got, err := repo.ListDue(context.Background(), "u-1", now)
	if err != nil {
		t.Fatalf("ListDue error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+credentials\s+SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.CredentialRecord{ID: "c-1", UserID: "u-1"}
	if err := repo.Update(context.Background(), rec); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+credentials\s+SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.CredentialRecord{ID: "ghost", UserID: "u-1"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+credentials\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`).
		WithArgs("u-1", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1", "c-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+credentials`).
		WithArgs("u-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-1", "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
