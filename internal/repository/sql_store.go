package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour spoken by the underlying driver
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Ensure SQLStore implements AuctionDB
var _ AuctionDB = (*SQLStore)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements AuctionDB on database/sql for SQLite and PostgreSQL
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store selected by driver ("sqlite" or "postgres"),
// verifies connectivity and runs migrations.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)

	switch Dialect(driver) {
	case DialectSQLite:
		db, err = openSQLite(dsn)
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("repository: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("repository: failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: failed to ping database: %w", err)
	}

	store := &SQLStore{db: db, dialect: Dialect(driver)}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: failed to run migrations: %w", err)
	}

	return store, nil
}

// openSQLite opens a file database with write transactions taken eagerly
// (BEGIN IMMEDIATE), so that a bid transaction owns the write lock from its
// first read of the auction row.
func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)"
	return sql.Open("sqlite", dsn)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Dialect returns the SQL flavour of the store
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// WithTx runs fn in a transaction; fn's error, a panic or a failed commit roll it back
func (s *SQLStore) WithTx(ctx context.Context, fn func(tx AuctionTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation()})
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", classify(err))
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				utils.Error("repository: rollback after panic failed", map[string]any{"error": rbErr.Error()})
			}
			panic(p)
		}
	}()

	if err := fn(&sqlTx{tx: tx, store: s}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			utils.Error("repository: rollback failed", map[string]any{
				"error":          rbErr.Error(),
				"original_error": err.Error(),
			})
		}
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", classify(err))
	}
	return nil
}

func (s *SQLStore) isolation() sql.IsolationLevel {
	if s.dialect == DialectPostgres {
		return sql.LevelReadCommitted
	}
	// SQLite transactions are serializable; the driver rejects other levels
	return sql.LevelDefault
}

// bind rewrites ? placeholders into $n for PostgreSQL
func (s *SQLStore) bind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// forUpdate returns the row-locking suffix for the dialect
func (s *SQLStore) forUpdate() string {
	if s.dialect == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// classify tags driver-level contention errors as retryable
func classify(err error) error {
	if err == nil || errors.Is(err, auctionerrors.ErrTxConflict) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %w", auctionerrors.ErrTxConflict, err)
		}
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", auctionerrors.ErrTxConflict, err)
		}
	}
	return err
}

const (
	auctionColumns     = "id, seller_id, title, description, starting_price, current_price, closing_date, is_active, is_locked, ended_manually, created_at, updated_at"
	bidColumns         = "id, auction_id, user_id, amount, created_at"
	userColumns        = "id, name, balance, created_at, updated_at"
	transactionColumns = "t.id, t.user_id, t.auction_id, t.bid_id, t.type, t.amount, t.description, t.created_at, COALESCE(a.title, '')"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var (
		a                             model.Auction
		closing, createdAt, updatedAt int64
	)
	err := row.Scan(&a.AuctionID, &a.SellerID, &a.Title, &a.Description,
		&a.StartingPrice, &a.CurrentPrice, &closing,
		&a.IsActive, &a.IsLocked, &a.EndedManually, &createdAt, &updatedAt)
	if err != nil {
		return model.Auction{}, err
	}
	a.ClosingDate = fromMillis(closing)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func scanBid(row rowScanner) (model.Bid, error) {
	var (
		b         model.Bid
		createdAt int64
	)
	if err := row.Scan(&b.BidID, &b.AuctionID, &b.UserID, &b.Amount, &createdAt); err != nil {
		return model.Bid{}, err
	}
	b.CreatedAt = fromMillis(createdAt)
	return b, nil
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u                    model.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.UserID, &u.Name, &u.Balance, &createdAt, &updatedAt); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// money renders an amount the way it is stored, so that equality
// comparisons in compare-and-swap updates are exact in both dialects
func money(d decimal.Decimal) string {
	return model.FormatMoney(d)
}

// shared query implementations, run against either the pool or a transaction

func (s *SQLStore) getAuction(ctx context.Context, q querier, auctionID int64, lock bool) (model.Auction, error) {
	query := "SELECT " + auctionColumns + " FROM auctions WHERE id = ?"
	if lock {
		query += s.forUpdate()
	}
	a, err := scanAuction(q.QueryRowContext(ctx, s.bind(query), auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, classify(err))
	}
	return a, nil
}

func (s *SQLStore) getUser(ctx context.Context, q querier, userID string, lock bool) (model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	if lock {
		query += s.forUpdate()
	}
	u, err := scanUser(q.QueryRowContext(ctx, s.bind(query), userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, classify(err))
	}
	return u, nil
}

func (s *SQLStore) getTopBid(ctx context.Context, q querier, auctionID int64) (model.Bid, error) {
	// bids on one auction are inserted under its row lock, so id order is acceptance order
	query := "SELECT " + bidColumns + " FROM bids WHERE auction_id = ? ORDER BY id DESC LIMIT 1"
	b, err := scanBid(q.QueryRowContext(ctx, s.bind(query), auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get top bid for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get top bid for auction %d: %w", auctionID, classify(err))
	}
	return b, nil
}

// GetAuction returns an auction by id
func (s *SQLStore) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	return s.getAuction(ctx, s.db, auctionID, false)
}

// CreateAuction inserts a new active auction and fills in its id and timestamps
func (s *SQLStore) CreateAuction(ctx context.Context, auction *model.Auction) error {
	now := time.Now().UTC()
	if auction.CreatedAt.IsZero() {
		auction.CreatedAt = now
	}
	auction.UpdatedAt = now

	query := `INSERT INTO auctions (seller_id, title, description, starting_price, current_price,
		closing_date, is_active, is_locked, ended_manually, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := s.db.QueryRowContext(ctx, s.bind(query),
		auction.SellerID, auction.Title, auction.Description,
		money(auction.StartingPrice), money(auction.CurrentPrice),
		toMillis(auction.ClosingDate), auction.IsActive, auction.IsLocked, auction.EndedManually,
		toMillis(auction.CreatedAt), toMillis(auction.UpdatedAt),
	).Scan(&auction.AuctionID)
	if err != nil {
		return fmt.Errorf("create auction: %w", classify(err))
	}
	return nil
}

// SetAuctionLocked sets the lock flag without touching is_active
func (s *SQLStore) SetAuctionLocked(ctx context.Context, auctionID int64, locked bool) error {
	res, err := s.db.ExecContext(ctx,
		s.bind("UPDATE auctions SET is_locked = ?, updated_at = ? WHERE id = ?"),
		locked, toMillis(time.Now()), auctionID)
	if err != nil {
		return fmt.Errorf("lock auction %d: %w", auctionID, classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("lock auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// ListExpiredAuctionIDs returns active auctions whose closing date is at or before now
func (s *SQLStore) ListExpiredAuctionIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		s.bind("SELECT id FROM auctions WHERE is_active = ? AND closing_date <= ? ORDER BY id"),
		true, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("list expired auctions: %w", classify(err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired auction: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired auctions: %w", err)
	}
	return ids, nil
}

// GetTopBid returns the most recent bid for an auction
func (s *SQLStore) GetTopBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	return s.getTopBid(ctx, s.db, auctionID)
}

// GetBidsByAuction returns all bids for an auction, newest first
func (s *SQLStore) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	rows, err := s.db.QueryContext(ctx,
		s.bind("SELECT "+bidColumns+" FROM bids WHERE auction_id = ? ORDER BY id DESC"),
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, classify(err))
	}
	defer rows.Close()

	bids := []model.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return bids, nil
}

// GetUser returns a user and their balance
func (s *SQLStore) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.getUser(ctx, s.db, userID, false)
}

// EnsureUser creates the account with the given opening balance if it does not exist yet
func (s *SQLStore) EnsureUser(ctx context.Context, userID, name string, balance decimal.Decimal) error {
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx,
		s.bind(`INSERT INTO users (id, name, balance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		userID, name, money(balance), now, now)
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", userID, classify(err))
	}
	return nil
}

// ListTransactions returns a user's most recent ledger entries, newest first
func (s *SQLStore) ListTransactions(ctx context.Context, userID string, limit int) ([]model.BalanceTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		s.bind("SELECT "+transactionColumns+` FROM balance_transactions t
			LEFT JOIN auctions a ON a.id = t.auction_id
			WHERE t.user_id = ? ORDER BY t.created_at DESC, t.id DESC LIMIT ?`),
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %s: %w", userID, classify(err))
	}
	defer rows.Close()

	entries := []model.BalanceTransaction{}
	for rows.Next() {
		var (
			e         model.BalanceTransaction
			auctionID sql.NullInt64
			bidID     sql.NullInt64
			txType    string
			desc      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&e.TransactionID, &e.UserID, &auctionID, &bidID, &txType,
			&e.Amount, &desc, &createdAt, &e.AuctionTitle); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if auctionID.Valid {
			e.AuctionID = &auctionID.Int64
		}
		if bidID.Valid {
			e.BidID = &bidID.Int64
		}
		e.Type = model.TransactionType(txType)
		e.Description = desc.String
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, nil
}

// sqlTx implements AuctionTx on a *sql.Tx
type sqlTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (t *sqlTx) GetAuctionForUpdate(ctx context.Context, auctionID int64) (model.Auction, error) {
	return t.store.getAuction(ctx, t.tx, auctionID, true)
}

func (t *sqlTx) GetUserForUpdate(ctx context.Context, userID string) (model.User, error) {
	return t.store.getUser(ctx, t.tx, userID, true)
}

func (t *sqlTx) GetTopBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	return t.store.getTopBid(ctx, t.tx, auctionID)
}

func (t *sqlTx) InsertBid(ctx context.Context, bid *model.Bid) error {
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowContext(ctx,
		t.store.bind("INSERT INTO bids (auction_id, user_id, amount, created_at) VALUES (?, ?, ?, ?) RETURNING id"),
		bid.AuctionID, bid.UserID, money(bid.Amount), toMillis(bid.CreatedAt),
	).Scan(&bid.BidID)
	if err != nil {
		return fmt.Errorf("insert bid for auction %d: %w", bid.AuctionID, classify(err))
	}
	return nil
}

func (t *sqlTx) InsertTransaction(ctx context.Context, entry *model.BalanceTransaction) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowContext(ctx,
		t.store.bind(`INSERT INTO balance_transactions (user_id, auction_id, bid_id, type, amount, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		entry.UserID, nullableID(entry.AuctionID), nullableID(entry.BidID), string(entry.Type),
		money(entry.Amount), entry.Description, toMillis(entry.CreatedAt),
	).Scan(&entry.TransactionID)
	if err != nil {
		return fmt.Errorf("insert %s transaction for user %s: %w", entry.Type, entry.UserID, classify(err))
	}
	return nil
}

func (t *sqlTx) UpdateBalance(ctx context.Context, userID string, expected, balance decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		t.store.bind("UPDATE users SET balance = ?, updated_at = ? WHERE id = ? AND balance = ?"),
		money(balance), toMillis(time.Now()), userID, money(expected))
	if err != nil {
		return fmt.Errorf("update balance for user %s: %w", userID, classify(err))
	}
	return requireOneRow(res, fmt.Sprintf("update balance for user %s", userID), auctionerrors.ErrBalanceConflict)
}

func (t *sqlTx) UpdateAuctionPrice(ctx context.Context, auctionID int64, expected, price decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		t.store.bind("UPDATE auctions SET current_price = ?, updated_at = ? WHERE id = ? AND current_price = ?"),
		money(price), toMillis(time.Now()), auctionID, money(expected))
	if err != nil {
		return fmt.Errorf("update price for auction %d: %w", auctionID, classify(err))
	}
	return requireOneRow(res, fmt.Sprintf("update price for auction %d", auctionID), auctionerrors.ErrPriceConflict)
}

func (t *sqlTx) UpdateAuctionFlags(ctx context.Context, auctionID int64, flags AuctionFlags) error {
	res, err := t.tx.ExecContext(ctx,
		t.store.bind("UPDATE auctions SET is_active = ?, is_locked = ?, ended_manually = ?, updated_at = ? WHERE id = ?"),
		flags.IsActive, flags.IsLocked, flags.EndedManually, toMillis(time.Now()), auctionID)
	if err != nil {
		return fmt.Errorf("update flags for auction %d: %w", auctionID, classify(err))
	}
	return requireOneRow(res, fmt.Sprintf("update flags for auction %d", auctionID), auctionerrors.ErrAuctionNotFound)
}

func requireOneRow(res sql.Result, op string, missErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n != 1 {
		return fmt.Errorf("%s: %w", op, missErr)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
