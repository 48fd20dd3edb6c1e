package sqlite

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	"card-codec/internal/common/errors"
	"card-codec/internal/storage"
	_ "github.com/mattn/go-sqlite3"
)

// Adapter is a storage.Storage backed by a SQLite database file.
type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return nil, errors.IOError("failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.IOError("failed to ping database", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, errors.IOError("failed to migrate database", err)
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			uid TEXT PRIMARY KEY,
			formatted_name TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_formatted_name ON cards(formatted_name)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}
	return nil
}

// PutCard keeps the created_at of a card that is replaced.
func (a *Adapter) PutCard(card *storage.Card) error {
	query := `INSERT INTO cards (uid, formatted_name, text, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(uid) DO UPDATE SET
			  formatted_name = excluded.formatted_name,
			  text = excluded.text,
			  updated_at = excluded.updated_at`

	_, err := a.db.Exec(query, card.UID, card.FormattedName, card.Text, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return errors.IOError("failed to store card", err).WithContext("uid", card.UID)
	}
	return nil
}

func (a *Adapter) GetCard(uid string) (*storage.Card, error) {
	query := `SELECT uid, formatted_name, text, created_at, updated_at FROM cards WHERE uid = ?`

	card := &storage.Card{}
	err := a.db.QueryRow(query, uid).Scan(&card.UID, &card.FormattedName, &card.Text,
		&card.CreatedAt, &card.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("card " + uid)
	}
	if err != nil {
		return nil, errors.IOError("failed to get card", err).WithContext("uid", uid)
	}
	return card, nil
}

func (a *Adapter) ListCards(limit, offset int) ([]*storage.Card, int, error) {
	var total int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&total); err != nil {
		return nil, 0, errors.IOError("failed to count cards", err)
	}

	query := `SELECT uid, formatted_name, text, created_at, updated_at FROM cards
			  ORDER BY formatted_name COLLATE NOCASE ASC, uid ASC LIMIT ? OFFSET ?`

	rows, err := a.db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, errors.IOError("failed to list cards", err)
	}
	defer rows.Close()

	var cards []*storage.Card
	for rows.Next() {
		card := &storage.Card{}
		if err := rows.Scan(&card.UID, &card.FormattedName, &card.Text,
			&card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, 0, errors.IOError("failed to scan card", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.IOError("failed to list cards", err)
	}

	return cards, total, nil
}

func (a *Adapter) DeleteCard(uid string) error {
	result, err := a.db.Exec(`DELETE FROM cards WHERE uid = ?`, uid)
	if err != nil {
		return errors.IOError("failed to delete card", err).WithContext("uid", uid)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFoundError("card " + uid)
	}
	return nil
}
