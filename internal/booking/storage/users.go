package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tolkify/booking-be/internal/booking/domain"
	"github.com/tolkify/booking-be/internal/notification"
	"github.com/tolkify/booking-be/shared/postgresql"
)

// Directory implements booking.UserDirectory on PostgreSQL. The booking
// engine only reads accounts; user management lives elsewhere.
type Directory struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewDirectory creates a Directory over the shared PostgreSQL client.
func NewDirectory(pg *postgresql.Client, logger *slog.Logger) *Directory {
	return &Directory{db: pg.GetDB(), logger: logger}
}

const userColumns = `
	id, user_type, name, email, phone, city, consumer_tier, enabled
`

// User loads an account by id.
func (d *Directory) User(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := d.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UserByEmail loads an account by email, used by the admin edit form.
func (d *Directory) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := d.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// profileRow is the flat join the profile queries scan into.
type profileRow struct {
	UserID          string                `db:"user_id"`
	Type            domain.TranslatorType `db:"translator_type"`
	Gender          domain.Gender         `db:"gender"`
	City            string                `db:"city"`
	Email           string                `db:"email"`
	Phone           string                `db:"phone"`
	OptOutAll       bool                  `db:"opt_out_all"`
	OptOutNight     bool                  `db:"opt_out_night"`
	OptOutEmergency bool                  `db:"opt_out_emergency"`
}

const profileQuery = `
	SELECT
		p.user_id, p.translator_type, p.gender,
		u.city, u.email, u.phone,
		p.opt_out_all, p.opt_out_night, p.opt_out_emergency
	FROM translator_profiles p
	JOIN users u ON u.id = p.user_id
`

// TranslatorProfile loads the matching-relevant view of one translator.
func (d *Directory) TranslatorProfile(ctx context.Context, id string) (*domain.TranslatorProfile, error) {
	var row profileRow
	err := d.db.GetContext(ctx, &row, profileQuery+` WHERE p.user_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get translator profile: %w", err)
	}

	profile := profileFromRow(row)
	if err := d.fillProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func profileFromRow(row profileRow) *domain.TranslatorProfile {
	return &domain.TranslatorProfile{
		UserID:          row.UserID,
		Type:            row.Type,
		Gender:          row.Gender,
		City:            row.City,
		Email:           row.Email,
		Phone:           row.Phone,
		OptOutAll:       row.OptOutAll,
		OptOutNight:     row.OptOutNight,
		OptOutEmergency: row.OptOutEmergency,
	}
}

// fillProfile loads the languages and certifications of one translator.
func (d *Directory) fillProfile(ctx context.Context, p *domain.TranslatorProfile) error {
	err := d.db.SelectContext(ctx, &p.Languages, `
		SELECT language_id FROM translator_languages WHERE translator_id = $1
	`, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to get translator languages: %w", err)
	}

	var certs []string
	err = d.db.SelectContext(ctx, &certs, `
		SELECT certification FROM translator_certifications WHERE translator_id = $1
	`, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to get translator certifications: %w", err)
	}
	p.Certifications = make([]domain.Certification, len(certs))
	for i, c := range certs {
		p.Certifications[i] = domain.Certification(c)
	}
	return nil
}

// NotificationPrefs returns the push preferences of any account. Accounts
// without a translator profile (customers, admins) have no opt-outs.
func (d *Directory) NotificationPrefs(ctx context.Context, userID string) (notification.Prefs, error) {
	var row struct {
		OptOutAll       bool `db:"opt_out_all"`
		OptOutNight     bool `db:"opt_out_night"`
		OptOutEmergency bool `db:"opt_out_emergency"`
	}
	err := d.db.GetContext(ctx, &row, `
		SELECT opt_out_all, opt_out_night, opt_out_emergency
		FROM translator_profiles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notification.Prefs{}, nil
		}
		return notification.Prefs{}, fmt.Errorf("failed to get notification prefs: %w", err)
	}
	return notification.Prefs{
		OptOutAll:       row.OptOutAll,
		OptOutNight:     row.OptOutNight,
		OptOutEmergency: row.OptOutEmergency,
	}, nil
}

// Blacklisted reports whether the customer excluded the translator.
func (d *Directory) Blacklisted(ctx context.Context, customerID, translatorID string) (bool, error) {
	var blocked bool
	err := d.db.GetContext(ctx, &blocked, `
		SELECT EXISTS (
			SELECT 1 FROM users_blacklist
			WHERE customer_id = $1 AND translator_id = $2
		)
	`, customerID, translatorID)
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return blocked, nil
}

// LanguageName resolves a language id to its display name. Unknown ids
// render as-is so a missing row never blocks a notification.
func (d *Directory) LanguageName(ctx context.Context, languageID string) (string, error) {
	var name string
	err := d.db.GetContext(ctx, &name, `SELECT name FROM languages WHERE id = $1`, languageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return languageID, nil
		}
		return "", fmt.Errorf("failed to get language: %w", err)
	}
	return name, nil
}

// EachTranslator streams every enabled translator profile through fn,
// batching the language and certification loads to three queries total.
func (d *Directory) EachTranslator(ctx context.Context, fn func(p *domain.TranslatorProfile) error) error {
	var rows []profileRow
	err := d.db.SelectContext(ctx, &rows, profileQuery+` WHERE u.enabled`)
	if err != nil {
		return fmt.Errorf("failed to list translators: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}

	languages, err := d.groupedValues(ctx, `
		SELECT translator_id, language_id FROM translator_languages WHERE translator_id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to list translator languages: %w", err)
	}
	certifications, err := d.groupedValues(ctx, `
		SELECT translator_id, certification FROM translator_certifications WHERE translator_id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to list translator certifications: %w", err)
	}

	for _, row := range rows {
		profile := profileFromRow(row)
		profile.Languages = languages[row.UserID]
		for _, c := range certifications[row.UserID] {
			profile.Certifications = append(profile.Certifications, domain.Certification(c))
		}
		if err := fn(profile); err != nil {
			return err
		}
	}
	return nil
}

// groupedValues runs a two-column (key, value) query and groups the values
// by key.
func (d *Directory) groupedValues(ctx context.Context, query string, ids []string) (map[string][]string, error) {
	rows, err := d.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		grouped[key] = append(grouped[key], value)
	}
	return grouped, rows.Err()
}
