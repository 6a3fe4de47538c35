package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps sessions in the sessions table of the main database.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Load(ctx context.Context, id string) (Data, error) {
	var row struct {
		Data      string `db:"data"`
		ExpiresAt int64  `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT data, expires_at FROM sessions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Data{}, ErrNotFound
	}
	if err != nil {
		return Data{}, fmt.Errorf("load session: %w", err)
	}
	if row.ExpiresAt <= s.now().Unix() {
		_ = s.Destroy(ctx, id)
		return Data{}, ErrNotFound
	}
	d, err := decode([]byte(row.Data))
	if err != nil {
		return Data{}, fmt.Errorf("decode session: %w", err)
	}
	return d, nil
}

func (s *SQLStore) Save(ctx context.Context, id string, data Data, ttl time.Duration) error {
	b, err := encode(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	exp := s.now().Add(ttl).Unix()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions(id, data, expires_at) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at
	`), id, string(b), exp)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLStore) Destroy(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired row and reports how many went.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
