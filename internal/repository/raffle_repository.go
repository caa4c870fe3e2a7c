package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"raffle-service/internal/model"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const raffleColumns = `
	id, raffle_id, church_id, title, description,
	prize_description, prize_image, prize_value,
	ticket_price, total_tickets, max_per_user,
	is_public, requires_approval, status,
	starts_at, ends_at, draw_date,
	sold_tickets, total_revenue, unique_buyers, view_count, share_count,
	winner_ticket_number, winner_user_id, drawn_at, winner_claimed, claimed_at,
	created_at, updated_at`

type RaffleRepository interface {
	Create(ctx context.Context, raffle *model.Raffle) (*model.Raffle, error)
	List(ctx context.Context) ([]*model.Raffle, error)
	ListByChurchID(ctx context.Context, churchID int) ([]*model.Raffle, error)
	FindByID(ctx context.Context, id int) (*model.Raffle, error)
	FindByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error)
	Update(ctx context.Context, id int, params model.UpdateRaffleParams) (*model.Raffle, error)
	UpdateStatus(ctx context.Context, id int, status model.RaffleStatus) (*model.Raffle, error)
	AddViews(ctx context.Context, id int, delta int) error
	AddShares(ctx context.Context, id int, delta int) error

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Raffle, error)
	SaveStats(ctx context.Context, tx pgx.Tx, id int, stats model.RaffleStats, status model.RaffleStatus) error
	SetWinner(ctx context.Context, tx pgx.Tx, id int, ticketNumber int, userID int, drawnAt time.Time) error
	ClaimWinner(ctx context.Context, tx pgx.Tx, id int, claimedAt time.Time) error
}

type RaffleRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRaffleRepository(pool *pgxpool.Pool) RaffleRepository {
	return &RaffleRepositoryImpl{
		pool: pool,
	}
}

func scanRaffle(row pgx.Row) (*model.Raffle, error) {
	var r model.Raffle
	var winnerNumber, winnerUserID *int
	var drawnAt, claimedAt *time.Time
	var claimed bool

	err := row.Scan(
		&r.ID,
		&r.RaffleID,
		&r.ChurchID,
		&r.Title,
		&r.Description,
		&r.PrizeDescription,
		&r.PrizeImage,
		&r.PrizeValue,
		&r.TicketPrice,
		&r.TotalTickets,
		&r.MaxPerUser,
		&r.IsPublic,
		&r.RequiresApproval,
		&r.Status,
		&r.StartsAt,
		&r.EndsAt,
		&r.DrawDate,
		&r.Stats.SoldTickets,
		&r.Stats.TotalRevenue,
		&r.Stats.UniqueBuyers,
		&r.Stats.ViewCount,
		&r.Stats.ShareCount,
		&winnerNumber,
		&winnerUserID,
		&drawnAt,
		&claimed,
		&claimedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// winner columns are nullable until the draw happens
	if winnerNumber != nil && winnerUserID != nil && drawnAt != nil {
		r.Winner = &model.Winner{
			TicketNumber: *winnerNumber,
			UserID:       *winnerUserID,
			DrawnAt:      *drawnAt,
			Claimed:      claimed,
			ClaimedAt:    claimedAt,
		}
	}

	return &r, nil
}

func (r *RaffleRepositoryImpl) Create(ctx context.Context, raffle *model.Raffle) (*model.Raffle, error) {
	query := fmt.Sprintf(`
		INSERT INTO raffles (
			raffle_id, church_id, title, description,
			prize_description, prize_image, prize_value,
			ticket_price, total_tickets, max_per_user,
			is_public, requires_approval, status, starts_at, ends_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s
	`, raffleColumns)

	row := r.pool.QueryRow(ctx, query,
		raffle.RaffleID, raffle.ChurchID, raffle.Title, raffle.Description,
		raffle.PrizeDescription, raffle.PrizeImage, raffle.PrizeValue,
		raffle.TicketPrice, raffle.TotalTickets, raffle.MaxPerUser,
		raffle.IsPublic, raffle.RequiresApproval, raffle.Status,
		raffle.StartsAt, raffle.EndsAt,
	)

	created, err := scanRaffle(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	return created, nil
}

func (r *RaffleRepositoryImpl) List(ctx context.Context) ([]*model.Raffle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raffles
		WHERE is_public = TRUE
		ORDER BY created_at DESC
	`, raffleColumns)

	return r.queryRaffles(ctx, query)
}

func (r *RaffleRepositoryImpl) ListByChurchID(ctx context.Context, churchID int) ([]*model.Raffle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raffles
		WHERE church_id = $1
		ORDER BY created_at DESC
	`, raffleColumns)

	return r.queryRaffles(ctx, query, churchID)
}

func (r *RaffleRepositoryImpl) queryRaffles(ctx context.Context, query string, args ...interface{}) ([]*model.Raffle, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raffles := make([]*model.Raffle, 0)
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return raffles, nil
}

func (r *RaffleRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Raffle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raffles
		WHERE id = $1
	`, raffleColumns)

	raffle, err := scanRaffle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) FindByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raffles
		WHERE raffle_id = $1
	`, raffleColumns)

	raffle, err := scanRaffle(r.pool.QueryRow(ctx, query, raffleID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Raffle, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raffles
		WHERE id = $1
		FOR UPDATE
	`, raffleColumns)

	raffle, err := scanRaffle(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateRaffleParams) (*model.Raffle, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		appendSet("title", *params.Title)
	}
	if params.Description != nil {
		appendSet("description", *params.Description)
	}
	if params.PrizeDescription != nil {
		appendSet("prize_description", *params.PrizeDescription)
	}
	if params.PrizeImage != nil {
		appendSet("prize_image", *params.PrizeImage)
	}
	if params.PrizeValue != nil {
		appendSet("prize_value", *params.PrizeValue)
	}
	if params.MaxPerUser != nil {
		appendSet("max_per_user", *params.MaxPerUser)
	}
	if params.IsPublic != nil {
		appendSet("is_public", *params.IsPublic)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE raffles
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, raffleColumns)

	raffle, err := scanRaffle(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, err
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) UpdateStatus(ctx context.Context, id int, status model.RaffleStatus) (*model.Raffle, error) {
	query := fmt.Sprintf(`
		UPDATE raffles
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, raffleColumns)

	raffle, err := scanRaffle(r.pool.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to update raffle status: %w", err)
	}

	return raffle, nil
}

func (r *RaffleRepositoryImpl) SaveStats(ctx context.Context, tx pgx.Tx, id int, stats model.RaffleStats, status model.RaffleStatus) error {
	query := `
		UPDATE raffles
		SET sold_tickets = $1,
			total_revenue = $2,
			unique_buyers = $3,
			status = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := tx.Exec(ctx, query,
		stats.SoldTickets, stats.TotalRevenue, stats.UniqueBuyers,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save raffle stats: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrRaffleNotFound
	}

	return nil
}

// SetWinner writes the winner record and flips status to drawn in one statement.
// The status guard makes a second draw attempt affect zero rows.
func (r *RaffleRepositoryImpl) SetWinner(ctx context.Context, tx pgx.Tx, id int, ticketNumber int, userID int, drawnAt time.Time) error {
	query := `
		UPDATE raffles
		SET winner_ticket_number = $1,
			winner_user_id = $2,
			drawn_at = $3,
			winner_claimed = FALSE,
			draw_date = $3,
			status = $4,
			updated_at = $3
		WHERE id = $5
		  AND status IN ($6, $7)
		  AND winner_ticket_number IS NULL
	`

	result, err := tx.Exec(ctx, query,
		ticketNumber, userID, drawnAt, model.RaffleStatusDrawn,
		id, model.RaffleStatusActive, model.RaffleStatusSoldOut,
	)
	if err != nil {
		return fmt.Errorf("failed to set winner: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAlreadyDrawn
	}

	return nil
}

func (r *RaffleRepositoryImpl) ClaimWinner(ctx context.Context, tx pgx.Tx, id int, claimedAt time.Time) error {
	query := `
		UPDATE raffles
		SET winner_claimed = TRUE, claimed_at = $1, updated_at = $1
		WHERE id = $2
		  AND status = $3
		  AND winner_claimed = FALSE
	`

	result, err := tx.Exec(ctx, query, claimedAt, id, model.RaffleStatusDrawn)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrWinnerAlreadyClaimed
	}

	return nil
}

func (r *RaffleRepositoryImpl) AddViews(ctx context.Context, id int, delta int) error {
	return r.addCounter(ctx, "view_count", id, delta)
}

func (r *RaffleRepositoryImpl) AddShares(ctx context.Context, id int, delta int) error {
	return r.addCounter(ctx, "share_count", id, delta)
}

// best-effort counters, no row lock
func (r *RaffleRepositoryImpl) addCounter(ctx context.Context, column string, id int, delta int) error {
	query := fmt.Sprintf(`
		UPDATE raffles
		SET %s = %s + $1
		WHERE id = $2
	`, column, column)

	result, err := r.pool.Exec(ctx, query, delta, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrRaffleNotFound
	}

	return nil
}
