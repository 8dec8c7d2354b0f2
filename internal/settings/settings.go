// Package settings reads and writes the single store_settings row.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("store settings not found")

type StoreSettings struct {
	ID               string    `json:"id"`
	StoreName        string    `json:"store_name"`
	StoreDescription string    `json:"store_description,omitempty"`
	StoreLogoURL     string    `json:"store_logo_url,omitempty"`
	StoreEmail       string    `json:"store_email"`
	StorePhone       string    `json:"store_phone"`
	StoreAddress     string    `json:"store_address"`
	StoreCity        string    `json:"store_city"`
	StoreState       string    `json:"store_state"`
	StoreZip         string    `json:"store_zip"`
	StoreCountry     string    `json:"store_country"`
	Currency         string    `json:"currency"`
	Timezone         string    `json:"timezone"`
	FacebookURL      string    `json:"facebook_url,omitempty"`
	InstagramURL     string    `json:"instagram_url,omitempty"`
	TwitterURL       string    `json:"twitter_url,omitempty"`
	LinkedinURL      string    `json:"linkedin_url,omitempty"`
	TermsOfService   string    `json:"terms_of_service,omitempty"`
	PrivacyPolicy    string    `json:"privacy_policy,omitempty"`
	ReturnPolicy     string    `json:"return_policy,omitempty"`
	ShippingPolicy   string    `json:"shipping_policy,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context) (*StoreSettings, error)
	Update(ctx context.Context, s *StoreSettings) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const settingsCols = `id, store_name, store_description, store_logo_url,
	store_email, store_phone, store_address, store_city, store_state, store_zip,
	store_country, currency, timezone, facebook_url, instagram_url, twitter_url,
	linkedin_url, terms_of_service, privacy_policy, return_policy, shipping_policy,
	created_at, updated_at`

// Get returns the store's settings; the table holds a single row.
func (r *PGRepo) Get(ctx context.Context) (*StoreSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s StoreSettings
	row := r.db.QueryRow(ctx, `SELECT `+settingsCols+` FROM store_settings LIMIT 1`)
	if err := row.Scan(&s.ID, &s.StoreName, &s.StoreDescription, &s.StoreLogoURL,
		&s.StoreEmail, &s.StorePhone, &s.StoreAddress, &s.StoreCity, &s.StoreState,
		&s.StoreZip, &s.StoreCountry, &s.Currency, &s.Timezone, &s.FacebookURL,
		&s.InstagramURL, &s.TwitterURL, &s.LinkedinURL, &s.TermsOfService,
		&s.PrivacyPolicy, &s.ReturnPolicy, &s.ShippingPolicy,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *PGRepo) Update(ctx context.Context, s *StoreSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE store_settings
		SET store_name = $2, store_description = $3, store_logo_url = $4,
		    store_email = $5, store_phone = $6, store_address = $7,
		    store_city = $8, store_state = $9, store_zip = $10,
		    store_country = $11, currency = $12, timezone = $13,
		    facebook_url = $14, instagram_url = $15, twitter_url = $16,
		    linkedin_url = $17, terms_of_service = $18, privacy_policy = $19,
		    return_policy = $20, shipping_policy = $21, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.StoreName, s.StoreDescription, s.StoreLogoURL,
		s.StoreEmail, s.StorePhone, s.StoreAddress, s.StoreCity, s.StoreState,
		s.StoreZip, s.StoreCountry, s.Currency, s.Timezone, s.FacebookURL,
		s.InstagramURL, s.TwitterURL, s.LinkedinURL, s.TermsOfService,
		s.PrivacyPolicy, s.ReturnPolicy, s.ShippingPolicy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
