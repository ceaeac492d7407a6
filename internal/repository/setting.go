package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"travelblog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepo interface {
	Get(ctx context.Context) (*models.Setting, error)
	Ensure(ctx context.Context, defaults models.Setting) (*models.Setting, error)
	Save(ctx context.Context, s *models.Setting) error
}

type settingRepo struct{ db *pgxpool.Pool }

func NewSettingRepo(db *pgxpool.Pool) SettingRepo { return &settingRepo{db: db} }

const settingColumns = `site_name, site_description, contact_email, logo, favicon, footer_text,
	articles_per_page, enable_comments, enable_registration, social_media, updated_at`

func scanSetting(row pgx.Row) (*models.Setting, error) {
	var s models.Setting
	var social []byte
	err := row.Scan(&s.SiteName, &s.SiteDescription, &s.ContactEmail, &s.Logo, &s.Favicon, &s.FooterText,
		&s.ArticlesPerPage, &s.EnableComments, &s.EnableRegistration, &social, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &s.SocialMedia); err != nil {
			return nil, fmt.Errorf("decode social_media: %w", err)
		}
	}
	return &s, nil
}

func (r *settingRepo) Get(ctx context.Context) (*models.Setting, error) {
	s, err := scanSetting(r.db.QueryRow(ctx, "SELECT "+settingColumns+" FROM settings WHERE id = 1"))
	return s, mapErr(err)
}

// Ensure создаёт строку настроек со значениями по умолчанию, если её ещё нет, и возвращает текущую.
func (r *settingRepo) Ensure(ctx context.Context, d models.Setting) (*models.Setting, error) {
	social, err := json.Marshal(d.SocialMedia)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO settings (id, site_name, site_description, contact_email, logo, favicon, footer_text,
		                      articles_per_page, enable_comments, enable_registration, social_media)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		ON CONFLICT (id) DO NOTHING`
	_, err = r.db.Exec(ctx, q, d.SiteName, d.SiteDescription, d.ContactEmail, d.Logo, d.Favicon, d.FooterText,
		d.ArticlesPerPage, d.EnableComments, d.EnableRegistration, social)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx)
}

func (r *settingRepo) Save(ctx context.Context, s *models.Setting) error {
	social, err := json.Marshal(s.SocialMedia)
	if err != nil {
		return err
	}
	const q = `
		UPDATE settings
		SET site_name = $1, site_description = $2, contact_email = $3, logo = $4, favicon = $5,
		    footer_text = $6, articles_per_page = $7, enable_comments = $8, enable_registration = $9,
		    social_media = $10::jsonb, updated_at = NOW()
		WHERE id = 1
		RETURNING updated_at`
	err = r.db.QueryRow(ctx, q, s.SiteName, s.SiteDescription, s.ContactEmail, s.Logo, s.Favicon,
		s.FooterText, s.ArticlesPerPage, s.EnableComments, s.EnableRegistration, social).Scan(&s.UpdatedAt)
	return mapErr(err)
}
