package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// SubscriptionStore хранилище подписок пользователей на базе sqlx
type SubscriptionStore struct {
	db  *sqlx.DB
	log *logger.Logger
}

// subscriptionRow строка таблицы subscriptions
type subscriptionRow struct {
	UserID         string                  `db:"user_id"`
	Tier           domain.SubscriptionTier `db:"tier"`
	StartDate      sql.NullTime            `db:"start_date"`
	EndDate        sql.NullTime            `db:"end_date"`
	IsActive       bool                    `db:"is_active"`
	DemosRemaining int                     `db:"demos_remaining"`
}

// NewSubscriptionStore создает новое хранилище подписок
func NewSubscriptionStore(dsn string, log *logger.Logger) (*SubscriptionStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SubscriptionStore{db: db, log: log}, nil
}

// Close закрывает соединение с базой данных
func (s *SubscriptionStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.Error("Failed to close database connection: %v", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// GetByUserID возвращает подписку пользователя
func (s *SubscriptionStore) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	query := `
        SELECT user_id, tier, start_date, end_date, is_active, demos_remaining
        FROM subscriptions
        WHERE user_id = $1
    `

	var row subscriptionRow
	err := s.db.QueryRowxContext(ctx, query, userID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.UserSubscription{}, repository.ErrNotFound
		}
		s.log.Error("Failed to get subscription from database: %v", err)
		return domain.UserSubscription{}, fmt.Errorf("failed to get subscription from database: %w", err)
	}

	sub := domain.UserSubscription{
		UserID:         row.UserID,
		Tier:           row.Tier,
		IsActive:       row.IsActive,
		DemosRemaining: row.DemosRemaining,
	}
	if row.StartDate.Valid {
		sub.StartDate = row.StartDate.Time
	}
	if row.EndDate.Valid {
		sub.EndDate = row.EndDate.Time
	}

	return sub, nil
}

// Upsert создает или заменяет подписку пользователя.
// Одна строка на пользователя: конфликт по user_id перезаписывает подписку.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub domain.UserSubscription) error {
	query := `
        INSERT INTO subscriptions (user_id, tier, start_date, end_date, is_active, demos_remaining)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET
            tier = $2,
            start_date = $3,
            end_date = $4,
            is_active = $5,
            demos_remaining = $6
    `

	_, err := s.db.ExecContext(ctx, query,
		sub.UserID, sub.Tier, sub.StartDate, sub.EndDate, sub.IsActive, sub.DemosRemaining)
	if err != nil {
		s.log.Error("Failed to save subscription to database: %v", err)
		return fmt.Errorf("failed to save subscription to database: %w", err)
	}

	s.log.Debug("Subscription saved for user %s (tier %s)", sub.UserID, sub.Tier)
	return nil
}
