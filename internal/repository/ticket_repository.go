package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffle-service/internal/model"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation SQLSTATE，用於將 partial unique index 衝突轉為領域錯誤
const uniqueViolationCode = "23505"

const ticketColumns = `
	id, raffle_id, number, user_id,
	payment_method, payment_status, transaction_id,
	purchased_at, updated_at`

type TicketRepository interface {
	ListByRaffleID(ctx context.Context, raffleID int) ([]*model.Ticket, error)
	FindActiveByNumber(ctx context.Context, raffleID int, number int) (*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	ListLedger(ctx context.Context, tx pgx.Tx, raffleID int) ([]*model.Ticket, error)
	ListCompleted(ctx context.Context, tx pgx.Tx, raffleID int) ([]*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, raffleID int, number int, status model.PaymentStatus, transactionID *string) (*model.Ticket, error)
	CountActiveByBuyer(ctx context.Context, tx pgx.Tx, raffleID int, userID int) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID,
		&t.RaffleID,
		&t.Number,
		&t.UserID,
		&t.PaymentMethod,
		&t.PaymentStatus,
		&t.TransactionID,
		&t.PurchasedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a ledger entry. The partial unique index on
// (raffle_id, number) WHERE payment_status <> 'failed' is the atomic guard
// against two buyers landing on the same number; a violation maps to
// ErrNumberTaken rather than bubbling up as a raw constraint error.
func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		INSERT INTO tickets (
			raffle_id, number, user_id, payment_method, payment_status, transaction_id
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, ticketColumns)

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.RaffleID, ticket.Number, ticket.UserID,
		ticket.PaymentMethod, ticket.PaymentStatus, ticket.TransactionID,
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrNumberTaken
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return created, nil
}

func (r *TicketRepositoryImpl) ListByRaffleID(ctx context.Context, raffleID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE raffle_id = $1
		ORDER BY id ASC
	`, ticketColumns)

	rows, err := r.pool.Query(ctx, query, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

// ListLedger reads the full ledger inside the caller's transaction so the
// stats recomputation never observes entries written by a concurrent request.
func (r *TicketRepositoryImpl) ListLedger(ctx context.Context, tx pgx.Tx, raffleID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE raffle_id = $1
		ORDER BY id ASC
	`, ticketColumns)

	rows, err := tx.Query(ctx, query, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) ListCompleted(ctx context.Context, tx pgx.Tx, raffleID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE raffle_id = $1 AND payment_status = $2
		ORDER BY id ASC
	`, ticketColumns)

	rows, err := tx.Query(ctx, query, raffleID, model.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]*model.Ticket, error) {
	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) FindActiveByNumber(ctx context.Context, raffleID int, number int) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE raffle_id = $1 AND number = $2 AND payment_status <> $3
	`, ticketColumns)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, raffleID, number, model.PaymentStatusFailed))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

// UpdateStatus targets the single non-failed entry for a number. At most one
// such entry exists per raffle, enforced by the partial unique index.
func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, raffleID int, number int, status model.PaymentStatus, transactionID *string) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		UPDATE tickets
		SET payment_status = $1,
			transaction_id = COALESCE($2, transaction_id),
			updated_at = $3
		WHERE raffle_id = $4 AND number = $5 AND payment_status <> $6
		RETURNING %s
	`, ticketColumns)

	ticket, err := scanTicket(tx.QueryRow(ctx, query,
		status, transactionID, time.Now().UTC(),
		raffleID, number, model.PaymentStatusFailed,
	))

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) CountActiveByBuyer(ctx context.Context, tx pgx.Tx, raffleID int, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets
		WHERE raffle_id = $1
		  AND user_id = $2
		  AND payment_status <> $3
	`

	var count int
	err := tx.QueryRow(ctx, query, raffleID, userID, model.PaymentStatusFailed).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
