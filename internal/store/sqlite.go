package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"idb-pricer/internal/models"
)

// SQLiteStore implements Sink using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.Mutex
	counter int
}

// NewSQLiteStore creates a new SQLite-based order store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		ticker TEXT NOT NULL,
		structure_type TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		canonical TEXT,
		tie_price REAL,
		tie_delta REAL,
		quantity INTEGER,
		quoted_price REAL,
		quoted_side TEXT,
		legs TEXT NOT NULL,
		implied_bid REAL,
		implied_offer REAL,
		implied_mid REAL,
		bid_size INTEGER,
		offer_size INTEGER,
		incomplete INTEGER DEFAULT 0,
		spot REAL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_ticker ON orders(ticker);
	CREATE INDEX IF NOT EXISTS idx_orders_type ON orders(structure_type);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// NextID generates an order ID unique within this process.
func (s *SQLiteStore) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("ORD_%d_%d", time.Now().Unix(), s.counter)
}

// SaveOrder persists one order. An empty ID is assigned on the way in.
func (s *SQLiteStore) SaveOrder(ctx context.Context, order *StoredOrder) error {
	if order.ID == "" {
		order.ID = s.NextID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	legs, err := json.Marshal(order.Structure.Legs)
	if err != nil {
		return fmt.Errorf("failed to marshal legs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders (
			id, created_at, ticker, structure_type, raw_text, canonical,
			tie_price, tie_delta, quantity, quoted_price, quoted_side,
			legs, implied_bid, implied_offer, implied_mid,
			bid_size, offer_size, incomplete, spot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CreatedAt, order.Ticker, string(order.Structure.Type),
		order.RawText, order.Canonical,
		order.Structure.TiePrice, order.Structure.TieDelta, order.Structure.Quantity,
		order.Structure.QuotedPrice, string(order.Structure.QuotedSide),
		string(legs), order.ImpliedBid, order.ImpliedOffer, order.ImpliedMid,
		order.BidSize, order.OfferSize, boolToInt(order.Incomplete), order.Spot,
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// GetOrder fetches one order by ID.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*StoredOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, ticker, structure_type, raw_text, canonical,
			tie_price, tie_delta, quantity, quoted_price, quoted_side,
			legs, implied_bid, implied_offer, implied_mid,
			bid_size, offer_size, incomplete, spot
		FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders returns saved orders matching the filter, newest first.
func (s *SQLiteStore) ListOrders(ctx context.Context, filter OrderFilter) ([]StoredOrder, error) {
	query := `
		SELECT id, created_at, ticker, structure_type, raw_text, canonical,
			tie_price, tie_delta, quantity, quoted_price, quoted_side,
			legs, implied_bid, implied_offer, implied_mid,
			bid_size, offer_size, incomplete, spot
		FROM orders WHERE 1=1`
	var args []interface{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	if filter.StructureType != "" {
		query += " AND structure_type = ?"
		args = append(args, string(filter.StructureType))
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []StoredOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// DeleteOrder removes one order by ID.
func (s *SQLiteStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*StoredOrder, error) {
	var (
		order      StoredOrder
		structType string
		quotedSide string
		legsJSON   string
		incomplete int
	)
	err := row.Scan(
		&order.ID, &order.CreatedAt, &order.Ticker, &structType,
		&order.RawText, &order.Canonical,
		&order.Structure.TiePrice, &order.Structure.TieDelta, &order.Structure.Quantity,
		&order.Structure.QuotedPrice, &quotedSide,
		&legsJSON, &order.ImpliedBid, &order.ImpliedOffer, &order.ImpliedMid,
		&order.BidSize, &order.OfferSize, &incomplete, &order.Spot,
	)
	if err != nil {
		return nil, err
	}

	order.Structure.Type = models.StructureType(structType)
	order.Structure.QuotedSide = models.QuoteSide(quotedSide)
	order.Incomplete = incomplete != 0
	if err := json.Unmarshal([]byte(legsJSON), &order.Structure.Legs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal legs: %w", err)
	}
	return &order, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
