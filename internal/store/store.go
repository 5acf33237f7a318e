// Package store implements the Store (C6): persistence for transaction
// records and policy rules, with time-windowed aggregate support for the
// Counter Cache's store-backed variant and advisory locking for the
// Confirmation Tracker (C9). Generalized from the teacher's
// internal/repository + internal/db gorm/postgres layer.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateTxHash = errors.New("duplicate transaction hash")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store wraps a gorm/postgres connection.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an already-open gorm connection, letting tests inject a
// go-sqlmock-backed *gorm.DB the same way the teacher's db_test.go did.
func NewFromDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate brings the schema up to date idempotently (§4.6).
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&Transaction{},
		&PolicyRule{},
		&NonceCursorRow{},
		&CounterEntry{},
		&Operator{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// BootstrapOperator seeds a single operator account if none exist yet and
// a bootstrap password was configured. Unlike the teacher's demo-user
// seeding (four hardcoded accounts) or the even-earlier placeholder
// "system" record the original source persisted at init, this never runs
// unless an operator explicitly opts in by setting a bootstrap password
// (§9 open question: no dummy seed record).
func (s *Store) BootstrapOperator(ctx context.Context, username, passwordHash string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Operator{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}
	op := Operator{ID: newID(), Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&op).Error; err != nil {
		return fmt.Errorf("create bootstrap operator: %w", err)
	}
	return nil
}

func (s *Store) GetOperatorByUsername(ctx context.Context, username string) (Operator, error) {
	var op Operator
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Operator{}, ErrNotFound
		}
		return Operator{}, fmt.Errorf("get operator: %w", err)
	}
	return op, nil
}

// InsertTransaction persists a new pending record. Insertion is unique on
// tx-hash and rejects duplicates (§4.6), giving §4.8 step 8's
// exactly-once-before-broadcast persistence its safety net against a
// racing duplicate insert.
func (s *Store) InsertTransaction(ctx context.Context, tx Transaction) error {
	err := s.db.WithContext(ctx).Create(&tx).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTxHash, tx.TxHash)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// TransactionUpdate carries the fields a terminal-state transition sets.
type TransactionUpdate struct {
	Status            TransactionStatus
	EffectiveGasPrice *BigInt
	ObservedGasUsed   *uint64
	BlockNumber       *uint64
	StuckSince        *time.Time
	ClearStuckSince   bool
}

// UpdateTransactionStatus applies a guarded pending -> X transition (§4.6:
// "Transitions from pending are guarded"). Updating a record already in a
// terminal state is a no-op error, since terminal states are immutable
// (§3).
func (s *Store) UpdateTransactionStatus(ctx context.Context, txHash string, update TransactionUpdate) error {
	fields := map[string]interface{}{
		"status":     string(update.Status),
		"updated_at": time.Now(),
	}
	if update.EffectiveGasPrice != nil {
		fields["effective_gas_price"] = update.EffectiveGasPrice.String()
	}
	if update.ObservedGasUsed != nil {
		fields["observed_gas_used"] = *update.ObservedGasUsed
	}
	if update.BlockNumber != nil {
		fields["block_number"] = *update.BlockNumber
	}
	if update.ClearStuckSince {
		fields["stuck_since"] = nil
	} else if update.StuckSince != nil {
		fields["stuck_since"] = *update.StuckSince
	}

	res := s.db.WithContext(ctx).Model(&Transaction{}).
		Where("tx_hash = ? AND status = ?", txHash, string(StatusPending)).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update transaction status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row doesn't exist or it's already terminal; tell
		// those apart for a clearer error.
		var existing Transaction
		err := s.db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("verify transaction state: %w", err)
		}
		return fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, txHash, existing.Status)
	}
	return nil
}

// MarkStuck records that a pending record has aged past the grace window
// with no chain advancement (§4.9: "stuck" is represented as pending plus
// a stuck-since timestamp, not a new status value).
func (s *Store) MarkStuck(ctx context.Context, txHash string, since time.Time) error {
	res := s.db.WithContext(ctx).Model(&Transaction{}).
		Where("tx_hash = ? AND status = ? AND stuck_since IS NULL", txHash, string(StatusPending)).
		Update("stuck_since", since)
	if res.Error != nil {
		return fmt.Errorf("mark stuck: %w", res.Error)
	}
	return nil
}

func (s *Store) GetTransactionByHash(ctx context.Context, txHash string) (Transaction, error) {
	var tx Transaction
	err := s.db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListByAccount returns records in which address appears as either party,
// newest first, with offset/limit (§4.6, §6).
func (s *Store) ListByAccount(ctx context.Context, address string, limit, offset int) ([]Transaction, error) {
	var txs []Transaction
	err := s.db.WithContext(ctx).
		Where("tx_from = ? OR tx_to = ?", address, address).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list by account: %w", err)
	}
	return txs, nil
}

// ListPending returns every pending record, oldest first, for the
// Confirmation Tracker's scan (§4.9).
func (s *Store) ListPending(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	err := s.db.WithContext(ctx).
		Where("status = ?", string(StatusPending)).
		Order("submitted_at ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return txs, nil
}

// ListPolicyRules lists rules, optionally filtered by kind (§6).
func (s *Store) ListPolicyRules(ctx context.Context, kind string) ([]PolicyRule, error) {
	q := s.db.WithContext(ctx).Model(&PolicyRule{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var rules []PolicyRule
	if err := q.Order("target ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list policy rules: %w", err)
	}
	return rules, nil
}

func (s *Store) CreatePolicyRule(ctx context.Context, rule PolicyRule) error {
	if err := s.db.WithContext(ctx).Create(&rule).Error; err != nil {
		return fmt.Errorf("create policy rule: %w", err)
	}
	return nil
}

func (s *Store) UpdatePolicyRule(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&PolicyRule{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update policy rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeletePolicyRule(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&PolicyRule{})
	if res.Error != nil {
		return fmt.Errorf("delete policy rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveCursor / LoadCursor implement allocator.CursorStore, the durable
// mirror of an in-memory allocator cursor (§3, §4.2).
func (s *Store) SaveCursor(ctx context.Context, network, address string, next uint64) error {
	row := NonceCursorRow{Network: network, Address: address, Next: next}
	err := s.db.WithContext(ctx).
		Clauses(upsertCursor()).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func (s *Store) LoadCursor(ctx context.Context, network, address string) (uint64, bool, error) {
	var row NonceCursorRow
	err := s.db.WithContext(ctx).Where("network = ? AND address = ?", network, address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load cursor: %w", err)
	}
	return row.Next, true, nil
}

// RecordCounterEntry / SumCounterEntries back the store-backed Counter
// Cache (C7) variant for multi-instance deployments (§4.7, §9 open
// question: real window sums, never a zero placeholder).
func (s *Store) RecordCounterEntry(ctx context.Context, dimension, identity, network string, quantity BigInt, at time.Time) error {
	entry := CounterEntry{Dimension: dimension, Identity: identity, Network: network, Quantity: quantity, Timestamp: at}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record counter entry: %w", err)
	}
	return nil
}

func (s *Store) SumCounterEntries(ctx context.Context, dimension, identity, network string, since time.Time) (BigInt, error) {
	var rows []CounterEntry
	err := s.db.WithContext(ctx).
		Where("dimension = ? AND identity = ? AND network = ? AND timestamp >= ?", dimension, identity, network, since).
		Find(&rows).Error
	if err != nil {
		return NewBigInt(nil), fmt.Errorf("sum counter entries: %w", err)
	}
	sum := NewBigInt(nil)
	for _, r := range rows {
		sum.Int.Add(sum.Int, r.Quantity.Int)
	}
	return sum, nil
}

// EvictCounterEntriesBefore deletes entries older than cutoff, the lazy
// eviction §4.7 describes ("entries older than the largest window in
// configuration are evicted lazily on read").
func (s *Store) EvictCounterEntriesBefore(ctx context.Context, cutoff time.Time) error {
	err := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&CounterEntry{}).Error
	if err != nil {
		return fmt.Errorf("evict counter entries: %w", err)
	}
	return nil
}

// TryLockForReconcile takes a postgres advisory lock keyed on the
// tx-hash, so only one Confirmation Tracker worker reconciles a given
// record at a time (§4.9: "single-instance-safe"). The returned unlock
// func must always be called when ok is true.
func (s *Store) TryLockForReconcile(ctx context.Context, txHash string) (unlock func(), ok bool, err error) {
	key := advisoryLockKey(txHash)
	var locked bool
	err = s.db.WithContext(ctx).Raw("SELECT pg_try_advisory_lock(?)", key).Scan(&locked).Error
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		return nil, false, nil
	}
	unlock = func() {
		s.db.WithContext(context.Background()).Exec("SELECT pg_advisory_unlock(?)", key)
	}
	return unlock, true, nil
}
