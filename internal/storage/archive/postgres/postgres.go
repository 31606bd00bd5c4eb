// Package postgres provides the PostgreSQL-backed settlement archive, for
// deployments with an external reporting database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/storage/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlements (
	seq         BIGSERIAL PRIMARY KEY,
	class       TEXT      NOT NULL,
	asset_id    BIGINT    NOT NULL,
	seller      TEXT      NOT NULL,
	winner      TEXT      NOT NULL,
	sold        BOOLEAN   NOT NULL,
	final_price BIGINT    NOT NULL,
	accrued_fee BIGINT    NOT NULL,
	listed_at   BIGINT    NOT NULL,
	ended_at    BIGINT    NOT NULL,
	settled_at  BIGINT    NOT NULL,
	detail      BYTEA     NOT NULL
);
CREATE INDEX IF NOT EXISTS settlements_class ON settlements(class, asset_id);
`

// Archive is the PostgreSQL settlement store.
type Archive struct {
	db *sql.DB
}

// Open connects with a lib/pq DSN ("postgres://..." or key=value form) and
// ensures the schema exists.
func Open(dsn string) (*Archive, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres archive: dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close implements archive.Archiver.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record implements archive.Archiver.
func (a *Archive) Record(ctx context.Context, s *archive.Settlement) error {
	detail, err := archive.EncodeDetail(s)
	if err != nil {
		return err
	}
	winner := ""
	if s.Sold {
		winner = s.Winner.String()
	}
	err = a.db.QueryRowContext(ctx,
		`INSERT INTO settlements (class, asset_id, seller, winner, sold, final_price,
		                          accrued_fee, listed_at, ended_at, settled_at, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING seq`,
		string(s.Asset.Class), int64(s.Asset.ID), s.Seller.String(), winner,
		s.Sold, int64(s.FinalPrice), int64(s.AccruedFee),
		int64(s.ListedAt), int64(s.EndedAt), s.SettledAt.Unix(), detail).Scan(&s.Seq)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// Recent implements archive.Archiver.
func (a *Archive) Recent(ctx context.Context, limit int) ([]archive.Settlement, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT seq, class, asset_id, seller, winner, sold, final_price,
		        accrued_fee, listed_at, ended_at, settled_at
		 FROM settlements ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var out []archive.Settlement
	for rows.Next() {
		var (
			s          archive.Settlement
			class      string
			assetID    int64
			seller     string
			winner     string
			price      int64
			accruedFee int64
			listedAt   int64
			endedAt    int64
			settledAt  int64
		)
		if err := rows.Scan(&s.Seq, &class, &assetID, &seller, &winner, &s.Sold,
			&price, &accruedFee, &listedAt, &endedAt, &settledAt); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		id, err := account.Parse(seller)
		if err != nil {
			return nil, fmt.Errorf("settlement %d seller: %w", s.Seq, err)
		}
		s.Seller = id
		if winner != "" {
			if s.Winner, err = account.Parse(winner); err != nil {
				return nil, fmt.Errorf("settlement %d winner: %w", s.Seq, err)
			}
		}
		s.Asset = asset.Key{Class: asset.Class(class), ID: uint64(assetID)}
		s.FinalPrice = uint64(price)
		s.AccruedFee = uint64(accruedFee)
		s.ListedAt = uint64(listedAt)
		s.EndedAt = uint64(endedAt)
		s.SettledAt = time.Unix(settledAt, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
