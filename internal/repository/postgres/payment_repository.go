package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// PostgresPaymentRepository реализация репозитория платежей через PostgreSQL
type PostgresPaymentRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresPaymentRepository создает новый репозиторий платежей через PostgreSQL
func NewPostgresPaymentRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db:  db,
		log: log,
	}
}

// Create создает новый платеж
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if payment.ID == uuid.Nil || payment.UserID == "" {
		return domain.Payment{}, repository.ErrInvalidData
	}

	query := `
		INSERT INTO payments (id, user_id, amount, currency, status, provider, provider_payment_id, subscription_tier, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	err := r.db.QueryRow(ctx, query,
		payment.ID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Provider,
		payment.ProviderPaymentID,
		payment.SubscriptionTier,
		payment.Description,
		payment.CreatedAt,
	).Scan(&payment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// Уникальный индекс по (provider, provider_payment_id)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Payment{}, repository.ErrDuplicate
		}
		return domain.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}

	return payment, nil
}

// GetByID возвращает платеж по ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, status, provider, provider_payment_id, subscription_tier, description, created_at, completed_at
		FROM payments
		WHERE id = $1
	`

	return r.scanPayment(r.db.QueryRow(ctx, query, id))
}

// GetByProviderPaymentID возвращает платеж по идентификатору провайдера
func (r *PostgresPaymentRepository) GetByProviderPaymentID(ctx context.Context, provider domain.PaymentProvider, providerPaymentID string) (domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, status, provider, provider_payment_id, subscription_tier, description, created_at, completed_at
		FROM payments
		WHERE provider = $1 AND provider_payment_id = $2
	`

	return r.scanPayment(r.db.QueryRow(ctx, query, provider, providerPaymentID))
}

// GetByUserID возвращает платежи пользователя
func (r *PostgresPaymentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, status, provider, provider_payment_id, subscription_tier, description, created_at, completed_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, err := r.scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// MarkCompleted атомарно переводит платеж из pending в completed.
// Условие по статусу в самом UPDATE заменяет блокировку строки: из двух
// конкурентных вебхуков пройдет ровно один.
func (r *PostgresPaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := r.db.Exec(ctx, query, domain.PaymentStatusCompleted, completedAt, id, domain.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Либо платеж не существует, либо уже в конечном статусе
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}

	return nil
}

// UpdateStatus обновляет статус платежа
func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresPaymentRepository) scanPayment(row pgx.Row) (domain.Payment, error) {
	payment, err := r.scanPaymentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, repository.ErrNotFound
		}
		return domain.Payment{}, err
	}
	return payment, nil
}

func (r *PostgresPaymentRepository) scanPaymentRow(row rowScanner) (domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.Provider,
		&payment.ProviderPaymentID,
		&payment.SubscriptionTier,
		&payment.Description,
		&payment.CreatedAt,
		&payment.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, err
		}
		return domain.Payment{}, fmt.Errorf("failed to scan payment: %w", err)
	}
	return payment, nil
}
