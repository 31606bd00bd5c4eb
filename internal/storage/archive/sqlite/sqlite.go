// Package sqlite provides the SQLite-backed settlement archive.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/storage/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlements (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	class       TEXT    NOT NULL,
	asset_id    INTEGER NOT NULL,
	seller      TEXT    NOT NULL,
	winner      TEXT    NOT NULL,
	sold        INTEGER NOT NULL,
	final_price INTEGER NOT NULL,
	accrued_fee INTEGER NOT NULL,
	listed_at   INTEGER NOT NULL,
	ended_at    INTEGER NOT NULL,
	settled_at  INTEGER NOT NULL,
	detail      BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS settlements_class ON settlements(class, asset_id);
`

// Archive is the SQLite settlement store.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path. The modernc driver
// is pure Go, so the file needs no external library.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite archive: path is required")
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite archive: %w", err)
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
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO settlements (class, asset_id, seller, winner, sold, final_price,
		                          accrued_fee, listed_at, ended_at, settled_at, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.Asset.Class), int64(s.Asset.ID), s.Seller.String(), winner,
		s.Sold, int64(s.FinalPrice), int64(s.AccruedFee),
		int64(s.ListedAt), int64(s.EndedAt), s.SettledAt.Unix(), detail)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("settlement seq: %w", err)
	}
	s.Seq = uint64(seq)
	return nil
}

// Recent implements archive.Archiver.
func (a *Archive) Recent(ctx context.Context, limit int) ([]archive.Settlement, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT seq, class, asset_id, seller, winner, sold, final_price,
		        accrued_fee, listed_at, ended_at, settled_at
		 FROM settlements ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()
	return scanSettlements(rows)
}

func scanSettlements(rows *sql.Rows) ([]archive.Settlement, error) {
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
