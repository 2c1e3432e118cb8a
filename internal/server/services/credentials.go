package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/cryptox"
	"github.com/dsmelov/securekey/internal/dbx"
	"github.com/dsmelov/securekey/internal/logging"
	"github.com/dsmelov/securekey/internal/server/models"
	"github.com/dsmelov/securekey/internal/server/repositories/repomanager"
	"github.com/dsmelov/securekey/internal/strength"
	"github.com/google/uuid"
)

// Sort orders accepted by Search.
const (
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortStrength     = "strength"
	SortAlphabetical = "alphabetical"
)

// CredentialInput carries the writable fields of a vault entry. Password is
// plaintext here and only here: it is encrypted before the record leaves the
// service. Notes is a pointer so an update can distinguish "clear the notes"
// from "field not sent".
type CredentialInput struct {
	URL      string
	Username string
	Password string
	Notes    *string
}

// SearchResult is one page of matching records plus the total match count.
type SearchResult struct {
	Records []*models.CredentialRecord
	Total   int
	Page    int
	Limit   int
}

// CredentialService orchestrates the vault: encryption engine, strength
// evaluator and the record store. Plaintext appears only in the read path
// response and is never persisted or logged.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	engine      *cryptox.Engine
	evaluator   *strength.Evaluator
	logger      logging.Logger
	now         func() time.Time
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, engine *cryptox.Engine,
	evaluator *strength.Evaluator, logger logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		engine:      engine,
		evaluator:   evaluator,
		logger:      logger.With("service", "credentials"),
		now:         time.Now,
	}
}

// Create encrypts the password, scores it, and stores the record. The
// reminder date is derived from the owner's current frequency setting.
func (s *CredentialService) Create(ctx context.Context, userID string, in CredentialInput) (*models.CredentialRecord, error) {
	if in.URL == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: url, username and password are required", common.ErrValidation)
	}

	blob, score, err := s.seal(in.Password)
	if err != nil {
		return nil, err
	}

	var record *models.CredentialRecord

	err = s.repomanager.WithinTransaction(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}

		notes := ""
		if in.Notes != nil {
			notes = *in.Notes
		}

		now := s.now()
		record = &models.CredentialRecord{
			ID:              uuid.NewString(),
			UserID:          userID,
			URL:             in.URL,
			Username:        in.Username,
			EncryptedSecret: blob,
			StrengthScore:   score,
			Notes:           notes,
			LastUpdated:     now,
			NextReminder:    now.AddDate(0, 0, user.ReminderFrequencyDays),
		}

		record, err = s.repomanager.Credentials(tx).Create(ctx, record)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error creating credential: %w", err)
	}

	s.logger.Info(ctx, "credential created", "user_id", userID, "credential_id", record.ID)
	return record, nil
}

// Get returns a record together with its decrypted secret. This is the only
// operation that exposes plaintext.
func (s *CredentialService) Get(ctx context.Context, userID, id string) (*models.CredentialRecord, string, error) {
	record, err := s.repomanager.Credentials(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	blob, err := cryptox.ParseBlob(record.EncryptedSecret)
	if err != nil {
		return nil, "", err
	}

	plaintext, err := s.engine.Decrypt(blob)
	if err != nil {
		return nil, "", err
	}

	return record, plaintext, nil
}

// List returns the user's records without plaintext, newest first.
func (s *CredentialService) List(ctx context.Context, userID string) ([]*models.CredentialRecord, error) {
	return s.repomanager.Credentials(s.db).ListByUser(ctx, userID)
}

// Search filters records by a case-insensitive substring match over url,
// username and notes, applies the requested sort, and paginates.
func (s *CredentialService) Search(ctx context.Context, userID, query, sortBy string, page, limit int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := s.repomanager.Credentials(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if query != "" {
		q := strings.ToLower(query)
		matched := records[:0]
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.URL), q) ||
				strings.Contains(strings.ToLower(r.Username), q) ||
				strings.Contains(strings.ToLower(r.Notes), q) {
				matched = append(matched, r)
			}
		}
		records = matched
	}

	sortRecords(records, sortBy)

	total := len(records)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &SearchResult{Records: records[start:end], Total: total, Page: page, Limit: limit}, nil
}

// sortRecords orders in place. Strength sorts strongest first; unknown
// values fall back to newest.
func sortRecords(records []*models.CredentialRecord, sortBy string) {
	switch sortBy {
	case SortOldest:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].LastUpdated.Before(records[j].LastUpdated)
		})
	case SortStrength:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].StrengthScore > records[j].StrengthScore
		})
	case SortAlphabetical:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].URL) < strings.ToLower(records[j].URL)
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].LastUpdated.After(records[j].LastUpdated)
		})
	}
}

// Update rewrites a record. Only the fields present in the input change:
// omitted notes stay as stored. A non-empty password re-encrypts and
// re-scores the secret and advances the reminder date; an empty one keeps
// the stored secret and its schedule untouched.
func (s *CredentialService) Update(ctx context.Context, userID, id string, in CredentialInput) (*models.CredentialRecord, error) {
	repo := s.repomanager.Credentials(s.db)

	record, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.URL != "" {
		record.URL = in.URL
	}
	if in.Username != "" {
		record.Username = in.Username
	}
	if in.Notes != nil {
		record.Notes = *in.Notes
	}

	if in.Password != "" {
		user, err := s.owner(ctx, userID)
		if err != nil {
			return nil, err
		}

		blob, score, err := s.seal(in.Password)
		if err != nil {
			return nil, err
		}

		now := s.now()
		record.EncryptedSecret = blob
		record.StrengthScore = score
		record.LastUpdated = now
		record.NextReminder = now.AddDate(0, 0, user.ReminderFrequencyDays)
	}

	if err := repo.Update(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes a record permanently.
func (s *CredentialService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repomanager.Credentials(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "credential deleted", "user_id", userID, "credential_id", id)
	return nil
}

// ListDueForReminder returns records whose reminder date has passed, oldest
// reminder first.
func (s *CredentialService) ListDueForReminder(ctx context.Context, userID string) ([]*models.CredentialRecord, error) {
	return s.repomanager.Credentials(s.db).ListDue(ctx, userID, s.now())
}

// seal encrypts a plaintext secret and scores it in one step, returning the
// serialized blob and the 0-100 score.
func (s *CredentialService) seal(password string) (string, int, error) {
	result := s.evaluator.Evaluate(password)

	blob, err := s.engine.Encrypt(password)
	if err != nil {
		return "", 0, err
	}

	serialized, err := blob.String()
	if err != nil {
		return "", 0, err
	}

	return serialized, result.Score, nil
}

func (s *CredentialService) owner(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}
