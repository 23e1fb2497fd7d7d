package movies

import (
	"context"
	"time"

	"github.com/Coddedx/MoviePx-API/internal/db"
)

// Comment is one user comment on a movie.
type Comment struct {
	ID        string    `json:"id"`
	ImdbID    string    `json:"imdb_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentRepository struct {
	db *db.DB
}

func NewCommentRepository(db *db.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Add(ctx context.Context, imdbID, userID, body string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO comments (imdb_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, imdb_id, user_id, body, created_at
	`, imdbID, userID, body).
		Scan(&c.ID, &c.ImdbID, &c.UserID, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) ListByMovie(ctx context.Context, imdbID string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, imdb_id, user_id, body, created_at
		FROM comments
		WHERE imdb_id = $1
		ORDER BY created_at DESC
	`, imdbID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ImdbID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
