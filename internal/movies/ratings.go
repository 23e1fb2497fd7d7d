package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Coddedx/MoviePx-API/internal/db"
)

var ErrRatingNotFound = errors.New("movies: rating not found")

// Rating is one user's 1-10 score for a movie. Each (movie, user) pair
// holds at most one rating; re-rating overwrites.
type Rating struct {
	ImdbID    string    `json:"imdb_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RatingRepository struct {
	db *db.DB
}

func NewRatingRepository(db *db.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Upsert(ctx context.Context, imdbID, userID string, stars int) (*Rating, error) {
	if stars < 1 || stars > 10 {
		return nil, fmt.Errorf("movies: stars must be between 1 and 10, got %d", stars)
	}

	var rating Rating
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ratings (imdb_id, user_id, stars, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (imdb_id, user_id)
		DO UPDATE SET stars = EXCLUDED.stars, updated_at = NOW()
		RETURNING imdb_id, user_id, stars, updated_at
	`, imdbID, userID, stars).
		Scan(&rating.ImdbID, &rating.UserID, &rating.Stars, &rating.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepository) Get(ctx context.Context, imdbID, userID string) (*Rating, error) {
	var rating Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT imdb_id, user_id, stars, updated_at
		FROM ratings
		WHERE imdb_id = $1 AND user_id = $2
	`, imdbID, userID).
		Scan(&rating.ImdbID, &rating.UserID, &rating.Stars, &rating.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRatingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
