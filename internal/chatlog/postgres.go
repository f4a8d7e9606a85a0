package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore writes records to chat_messages and bumps chats.last_updated in the
// same transaction.
type PostgresStore struct {
	db  txBeginner
	now func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("chatlog: pgx pool required")
	}
	return newPostgresStoreWithDB(pool)
}

func newPostgresStoreWithDB(db txBeginner) *PostgresStore {
	if db == nil {
		panic("chatlog: db required")
	}
	return &PostgresStore{db: db, now: time.Now}
}

const upsertChatSQL = `
	INSERT INTO chats (phone, last_updated)
	VALUES ($1, $2)
	ON CONFLICT (phone) DO UPDATE SET last_updated = EXCLUDED.last_updated
`

const insertMessageSQL = `
	INSERT INTO chat_messages (id, phone, text, sender, direction, intent, slots, action, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (s *PostgresStore) Append(ctx context.Context, rec Record) (err error) {
	if rec.Phone == "" {
		return errors.New("chatlog: phone required")
	}
	rec = normalize(rec, s.now)

	var slots []byte
	if rec.Slots != nil {
		if slots, err = json.Marshal(rec.Slots); err != nil {
			return fmt.Errorf("chatlog: marshal slots: %w", err)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chatlog: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, upsertChatSQL, rec.Phone, rec.CreatedAt); err != nil {
		return fmt.Errorf("chatlog: upsert chat: %w", err)
	}
	if _, err = tx.Exec(ctx, insertMessageSQL,
		rec.ID, rec.Phone, rec.Text, string(rec.Sender), string(rec.Direction),
		nullable(rec.Intent), slots, nullable(rec.Action), rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("chatlog: insert message: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("chatlog: commit: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
