package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const queryTimeout = 5 * time.Second

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert writes one generation row. The id is generated here so the write
// is a plain insert of a fresh record, never an update of anyone else's.
func (s *Postgres) Insert(ctx context.Context, gen *Generation) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	query := `
		INSERT INTO generations (id, user_id, mode, topic, length_seconds, goal, language, tone, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := s.db.ExecContext(ctx, query,
		id, gen.UserID, gen.Mode, gen.Topic, gen.LengthSeconds,
		gen.Goal, gen.Language, gen.Tone, []byte(gen.Result),
	); err != nil {
		return "", fmt.Errorf("insert generation: %w", err)
	}

	return id, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, userID string) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, mode, topic, length_seconds, goal, language, tone, created_at
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(
			&sum.ID, &sum.Mode, &sum.Topic, &sum.LengthSeconds,
			&sum.Goal, &sum.Language, &sum.Tone, &sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}

	return summaries, nil
}

// GetByID fetches one generation scoped to its owner. A record owned by
// another user is reported as not found, not as forbidden.
func (s *Postgres) GetByID(ctx context.Context, userID, id string) (*Generation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, mode, topic, length_seconds, goal, language, tone, result, created_at
		FROM generations
		WHERE id = $1 AND user_id = $2
	`

	gen := &Generation{}
	var result []byte
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&gen.ID, &gen.UserID, &gen.Mode, &gen.Topic, &gen.LengthSeconds,
		&gen.Goal, &gen.Language, &gen.Tone, &result, &gen.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	gen.Result = result

	return gen, nil
}

func (s *Postgres) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, COALESCE(email, ''), COALESCE(plan, 'free'),
		       COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
		       COALESCE(subscription_status, '')
		FROM profiles
		WHERE id = $1
	`

	p := &Profile{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.Email, &p.Plan,
		&p.StripeCustomerID, &p.StripeSubscriptionID, &p.SubscriptionStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

func (s *Postgres) SetStripeCustomer(ctx context.Context, userID, email, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO profiles (id, email, stripe_customer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET stripe_customer_id = EXCLUDED.stripe_customer_id
	`

	if _, err := s.db.ExecContext(ctx, query, userID, email, customerID); err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateSubscriptionByCustomer(ctx context.Context, customerID, plan, subscriptionID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE profiles
		SET plan = $2, stripe_subscription_id = $3, subscription_status = $4
		WHERE stripe_customer_id = $1
	`

	result, err := s.db.ExecContext(ctx, query, customerID, plan, subscriptionID, status)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}
