package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rintintin/internal/domain/sitters"
)

type SittersRepo struct {
	db *sql.DB
}

func NewSittersRepo(db *sql.DB) *SittersRepo {
	return &SittersRepo{db: db}
}

const profileColumns = `
	id, user_id,
	bio, price, location, neighborhood, experience,
	services, pet_types,
	property_type, has_outdoor_space, allows_pets, max_pets,
	skills, certifications,
	rating, review_count,
	created_at, updated_at`

// Upsert usa la unicidad de user_id: si ya hay perfil se actualiza en sitio
// y se conservan id, created_at y rating.
func (r *SittersRepo) Upsert(ctx context.Context, p sitters.Profile) (sitters.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sitter_profiles (`+profileColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,0,0,$16,$17)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			price = EXCLUDED.price,
			location = EXCLUDED.location,
			neighborhood = EXCLUDED.neighborhood,
			experience = EXCLUDED.experience,
			services = EXCLUDED.services,
			pet_types = EXCLUDED.pet_types,
			property_type = EXCLUDED.property_type,
			has_outdoor_space = EXCLUDED.has_outdoor_space,
			allows_pets = EXCLUDED.allows_pets,
			max_pets = EXCLUDED.max_pets,
			skills = EXCLUDED.skills,
			certifications = EXCLUDED.certifications,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		p.ID,
		p.UserID,
		p.Bio,
		p.Price,
		p.Location,
		p.Neighborhood,
		p.Experience,
		nonNilStrings(p.Services),
		nonNilStrings(p.PetTypes),
		p.PropertyType,
		p.HasOutdoorSpace,
		p.AllowsPets,
		p.MaxPets,
		p.Skills,
		p.Certifications,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return scanProfile(row)
}

func (r *SittersRepo) GetByID(ctx context.Context, id string) (sitters.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM sitter_profiles WHERE id = $1`, id)
}

func (r *SittersRepo) GetByUserID(ctx context.Context, userID string) (sitters.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM sitter_profiles WHERE user_id = $1`, userID)
}

func (r *SittersRepo) List(ctx context.Context) ([]sitters.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM sitter_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]sitters.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddReview inserta y recalcula rating/review_count en una transacción.
// El perfil se bloquea con FOR UPDATE para serializar reseñas concurrentes.
func (r *SittersRepo) AddReview(ctx context.Context, rv sitters.Review) (sitters.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return sitters.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM sitter_profiles WHERE id = $1 FOR UPDATE`, rv.SitterID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sitters.Profile{}, sitters.ErrNotFound
		}
		return sitters.Profile{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (id, sitter_id, user_id, rating, comment, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, rv.ID, rv.SitterID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt); err != nil {
		return sitters.Profile{}, err
	}

	p, err := scanProfile(tx.QueryRowContext(ctx, `
		UPDATE sitter_profiles
		SET
			rating = s.avg_rating,
			review_count = s.n
		FROM (
			SELECT COALESCE(AVG(rating), 0)::double precision AS avg_rating, COUNT(*)::int AS n
			FROM reviews
			WHERE sitter_id = $1
		) s
		WHERE sitter_profiles.id = $1
		RETURNING `+profileColumns, rv.SitterID))
	if err != nil {
		return sitters.Profile{}, err
	}

	if err := tx.Commit(); err != nil {
		return sitters.Profile{}, err
	}
	return p, nil
}

func (r *SittersRepo) ListReviews(ctx context.Context, sitterID string) ([]sitters.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sitter_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE sitter_id = $1
		ORDER BY created_at DESC
	`, sitterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]sitters.Review, 0)
	for rows.Next() {
		var rv sitters.Review
		if err := rows.Scan(&rv.ID, &rv.SitterID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *SittersRepo) getOne(ctx context.Context, query, arg string) (sitters.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sitters.Profile{}, sitters.ErrNotFound
		}
		return sitters.Profile{}, err
	}
	return p, nil
}

func scanProfile(s scanner) (sitters.Profile, error) {
	var p sitters.Profile
	if err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Bio,
		&p.Price,
		&p.Location,
		&p.Neighborhood,
		&p.Experience,
		textArray(&p.Services),
		textArray(&p.PetTypes),
		&p.PropertyType,
		&p.HasOutdoorSpace,
		&p.AllowsPets,
		&p.MaxPets,
		&p.Skills,
		&p.Certifications,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return sitters.Profile{}, err
	}
	return p, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
