package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// Context dimension keys in user_context.
const (
	KeyProjects = "projects"
	KeyPeople   = "people"
	KeyThemes   = "themes"
)

// entropy is shared so IDs created within the same millisecond stay ordered.
var entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}

// NewID returns a new ULID string.
func NewID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides card, envelope, context and recommendation persistence.
// A Store returned inside WithTx or ReadTx is bound to that transaction.
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool

	// Now is the clock used for created_at and IDs. Tests may replace it.
	Now func() time.Time
}

// NewStore wraps an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db, Now: time.Now}
}

// WithTx runs fn inside a write transaction that holds the database write
// lock. The transaction commits if fn returns nil and rolls back otherwise.
// Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreFailure("begin transaction", err)
	}
	// A write as the first statement takes the write lock before fn reads
	// anything, so read-modify-write in fn cannot interleave with another
	// writer. Matches no rows.
	if _, err := tx.ExecContext(ctx, `UPDATE user_context SET key = key WHERE 0`); err != nil {
		_ = tx.Rollback()
		return errors.NewStoreFailure("lock database", err)
	}
	if err := fn(&Store{db: s.db, q: tx, inTx: true, Now: s.Now}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreFailure("commit transaction", err)
	}
	return nil
}

// ReadTx runs fn inside a transaction that is always rolled back, giving fn a
// consistent snapshot of the database as of its first read.
func (s *Store) ReadTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreFailure("begin read transaction", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(&Store{db: s.db, q: tx, inTx: true, Now: s.Now})
}

// AddEnvelope creates a new envelope.
func (s *Store) AddEnvelope(ctx context.Context, name string, description *string) (*card.Envelope, error) {
	now := s.Now()
	e := &card.Envelope{
		ID:          NewID(now),
		Name:        name,
		NameNorm:    card.Normalize(name),
		Description: description,
		CreatedAt:   now.Unix(),
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO envelopes (id, name, name_norm, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Name, e.NameNorm, toNullString(description), e.CreatedAt)
	if err != nil {
		return nil, errors.NewStoreFailure("add envelope", err)
	}
	return e, nil
}

// ListEnvelopes returns all envelopes, newest first.
func (s *Store) ListEnvelopes(ctx context.Context) ([]card.Envelope, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, name_norm, description, created_at
		FROM envelopes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, errors.NewStoreFailure("list envelopes", err)
	}
	defer rows.Close()

	var out []card.Envelope
	for rows.Next() {
		e, err := scanEnvelope(rows)
		if err != nil {
			return nil, errors.NewStoreFailure("list envelopes", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailure("list envelopes", err)
	}
	return out, nil
}

// GetEnvelope retrieves an envelope by ID.
func (s *Store) GetEnvelope(ctx context.Context, id string) (*card.Envelope, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, name_norm, description, created_at
		FROM envelopes WHERE id = ?
	`, id)
	e, err := scanEnvelope(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("envelope", id)
	}
	if err != nil {
		return nil, errors.NewStoreFailure("get envelope", err)
	}
	return e, nil
}

// AddCard stores a new card, assigning ID and CreatedAt.
func (s *Store) AddCard(ctx context.Context, c *card.Card) error {
	now := s.Now()
	c.ID = NewID(now)
	c.CreatedAt = now.Unix()
	c.DescriptionNorm = card.Normalize(c.Description)

	var keywordsJSON sql.NullString
	if len(c.Keywords) > 0 {
		data, err := json.Marshal(c.Keywords)
		if err != nil {
			return errors.NewInternal(err)
		}
		keywordsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var dateParsed sql.NullString
	if c.DateParsed != nil {
		dateParsed = sql.NullString{String: c.DateParsed.Format(card.DateLayout), Valid: true}
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO cards (
			id, card_type, description, description_norm, date_text,
			date_parsed, assignee, keywords_json, envelope_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, string(c.Type), c.Description, c.DescriptionNorm, toNullString(c.DateText),
		dateParsed, toNullString(c.Assignee), keywordsJSON, c.EnvelopeID, c.CreatedAt,
	)
	if err != nil {
		return errors.NewStoreFailure("add card", err)
	}
	return nil
}

const cardColumns = `id, card_type, description, description_norm, date_text,
	date_parsed, assignee, keywords_json, envelope_id, created_at`

// GetCard retrieves a card by ID.
func (s *Store) GetCard(ctx context.Context, id string) (*card.Card, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("card", id)
	}
	if err != nil {
		return nil, errors.NewStoreFailure("get card", err)
	}
	return c, nil
}

// FindCardInEnvelope returns the card in envelopeID whose normalized
// description equals descNorm, or nil if there is none.
func (s *Store) FindCardInEnvelope(ctx context.Context, envelopeID, descNorm string) (*card.Card, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE envelope_id = ? AND description_norm = ?
		ORDER BY created_at ASC, id ASC LIMIT 1
	`, envelopeID, descNorm)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreFailure("find card", err)
	}
	return c, nil
}

// ListCards returns all cards in insertion order.
func (s *Store) ListCards(ctx context.Context) ([]card.Card, error) {
	return s.listCards(ctx, "list cards", `SELECT `+cardColumns+` FROM cards ORDER BY created_at ASC, id ASC`)
}

// ListCardsByEnvelope returns the cards of one envelope in insertion order.
func (s *Store) ListCardsByEnvelope(ctx context.Context, envelopeID string) ([]card.Card, error) {
	return s.listCards(ctx, "list envelope cards",
		`SELECT `+cardColumns+` FROM cards WHERE envelope_id = ? ORDER BY created_at ASC, id ASC`, envelopeID)
}

// CountCardsByEnvelope returns the number of cards per envelope ID.
// Envelopes without cards are absent from the map.
func (s *Store) CountCardsByEnvelope(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT envelope_id, COUNT(*) FROM cards GROUP BY envelope_id`)
	if err != nil {
		return nil, errors.NewStoreFailure("count cards", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, errors.NewStoreFailure("count cards", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailure("count cards", err)
	}
	return counts, nil
}

func (s *Store) listCards(ctx context.Context, op, query string, args ...any) ([]card.Card, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreFailure(op, err)
	}
	defer rows.Close()

	var out []card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, errors.NewStoreFailure(op, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailure(op, err)
	}
	return out, nil
}

// GetContextValue returns the raw JSON stored under key. ok is false when absent.
func (s *Store) GetContextValue(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var raw string
	err = s.q.QueryRowContext(ctx, `SELECT value FROM user_context WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStoreFailure("get context", err)
	}
	return []byte(raw), true, nil
}

// SetContextValue upserts the JSON value stored under key.
func (s *Store) SetContextValue(ctx context.Context, key string, value []byte) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO user_context (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), s.Now().Unix())
	if err != nil {
		return errors.NewStoreFailure("set context", err)
	}
	return nil
}

// AppendRecommendation stores payload (marshaled to JSON) as a new recommendation.
func (s *Store) AppendRecommendation(ctx context.Context, kind card.RecommendationKind, payload any) (*card.Recommendation, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := s.Now()
	r := &card.Recommendation{ID: NewID(now), Kind: kind, Payload: data, CreatedAt: now.Unix()}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO recommendations (id, kind, payload, created_at) VALUES (?, ?, ?, ?)
	`, r.ID, string(r.Kind), string(r.Payload), r.CreatedAt)
	if err != nil {
		return nil, errors.NewStoreFailure("append recommendation", err)
	}
	return r, nil
}

// ListRecentRecommendations returns up to limit recommendations, newest first.
// limit <= 0 returns all of them.
func (s *Store) ListRecentRecommendations(ctx context.Context, limit int) ([]card.Recommendation, error) {
	query := `SELECT id, kind, payload, created_at FROM recommendations ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreFailure("list recommendations", err)
	}
	defer rows.Close()

	var out []card.Recommendation
	for rows.Next() {
		var (
			r       card.Recommendation
			kind    string
			payload string
		)
		if err := rows.Scan(&r.ID, &kind, &payload, &r.CreatedAt); err != nil {
			return nil, errors.NewStoreFailure("list recommendations", err)
		}
		r.Kind = card.RecommendationKind(kind)
		r.Payload = json.RawMessage(payload)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreFailure("list recommendations", err)
	}
	return out, nil
}

// ClearRecommendations deletes every recommendation and returns how many were removed.
func (s *Store) ClearRecommendations(ctx context.Context) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM recommendations`)
	if err != nil {
		return 0, errors.NewStoreFailure("clear recommendations", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewStoreFailure("clear recommendations", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row scanner) (*card.Envelope, error) {
	var (
		e           card.Envelope
		description sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.NameNorm, &description, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Description = fromNullString(description)
	return &e, nil
}

// scanCard scans a card row. An unparseable date_parsed leaves DateParsed nil.
func scanCard(row scanner) (*card.Card, error) {
	var (
		c            card.Card
		cardType     string
		dateText     sql.NullString
		dateParsed   sql.NullString
		assignee     sql.NullString
		keywordsJSON sql.NullString
	)

	err := row.Scan(
		&c.ID, &cardType, &c.Description, &c.DescriptionNorm, &dateText,
		&dateParsed, &assignee, &keywordsJSON, &c.EnvelopeID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = card.Type(cardType)
	c.DateText = fromNullString(dateText)
	c.Assignee = fromNullString(assignee)

	if dateParsed.Valid {
		if t, err := time.Parse(card.DateLayout, dateParsed.String); err == nil {
			c.DateParsed = &t
		}
	}

	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &c.Keywords); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
