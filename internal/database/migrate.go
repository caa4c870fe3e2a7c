package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema 啟動時套用，全部採 IF NOT EXISTS 可重複執行。
// tickets 上的 partial unique index 是號碼唯一性的原子保證：
// 同一活動的同一號碼至多一筆非 failed 條目。
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS raffles (
	id SERIAL PRIMARY KEY,
	raffle_id UUID NOT NULL UNIQUE,
	church_id INT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	prize_description TEXT NOT NULL,
	prize_image TEXT,
	prize_value NUMERIC(12,2),
	ticket_price DOUBLE PRECISION NOT NULL CHECK (ticket_price >= 0.01),
	total_tickets INT NOT NULL CHECK (total_tickets > 0),
	max_per_user INT NOT NULL DEFAULT 0,
	is_public BOOLEAN NOT NULL DEFAULT TRUE,
	requires_approval BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL DEFAULT 'draft',
	starts_at TIMESTAMPTZ NOT NULL,
	ends_at TIMESTAMPTZ NOT NULL,
	draw_date TIMESTAMPTZ,
	sold_tickets INT NOT NULL DEFAULT 0,
	total_revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
	unique_buyers INT NOT NULL DEFAULT 0,
	view_count INT NOT NULL DEFAULT 0,
	share_count INT NOT NULL DEFAULT 0,
	winner_ticket_number INT,
	winner_user_id INT,
	drawn_at TIMESTAMPTZ,
	winner_claimed BOOLEAN NOT NULL DEFAULT FALSE,
	claimed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	id SERIAL PRIMARY KEY,
	raffle_id INT NOT NULL REFERENCES raffles(id),
	number INT NOT NULL,
	user_id INT NOT NULL REFERENCES users(id),
	payment_method TEXT NOT NULL,
	payment_status TEXT NOT NULL DEFAULT 'pending',
	transaction_id TEXT,
	purchased_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS tickets_active_number_uq
	ON tickets (raffle_id, number)
	WHERE payment_status <> 'failed';

CREATE INDEX IF NOT EXISTS tickets_raffle_id_idx ON tickets (raffle_id);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
