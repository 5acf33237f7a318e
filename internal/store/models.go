package store

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"time"
)

// BigInt persists a 256-bit unsigned integer as a decimal string column,
// the same representation the teacher used for its Value field and the
// one spec §3 mandates on the wire.
type BigInt struct {
	*big.Int
}

func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		v = new(big.Int)
	}
	return BigInt{Int: v}
}

func (b BigInt) Value() (driver.Value, error) {
	if b.Int == nil {
		return "0", nil
	}
	return b.Int.String(), nil
}

func (b *BigInt) Scan(value interface{}) error {
	if value == nil {
		b.Int = new(big.Int)
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported BigInt scan type: %T", value)
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid decimal integer: %q", s)
	}
	b.Int = i
	return nil
}

// TransactionStatus is the lifecycle state of a Transaction Record (§3).
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
	StatusDropped   TransactionStatus = "dropped"
)

// IsTerminal reports whether status cannot transition further (§3: "Terminal
// states are immutable").
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusDropped
}

// TokenKind enumerates the asset kinds a request may carry (§3).
type TokenKind string

const (
	TokenKindNone        TokenKind = ""
	TokenKindFungible    TokenKind = "fungible"
	TokenKindNonFungible TokenKind = "non-fungible"
	TokenKindMulti       TokenKind = "multi"
)

// Transaction is the durable Transaction Record (§3).
type Transaction struct {
	TxHash            string    `gorm:"primaryKey;size:66"`
	From              string    `gorm:"column:tx_from;size:42;not null;index:idx_tx_from"`
	To                string    `gorm:"column:tx_to;size:42;not null;index:idx_tx_to"`
	Network           string    `gorm:"size:64;not null;index:idx_tx_network"`
	TokenAddress      string    `gorm:"size:42"`
	TokenKind         string    `gorm:"size:16"`
	TokenAmount       BigInt    `gorm:"type:text"`
	TokenID           BigInt    `gorm:"type:text"`
	Value             BigInt    `gorm:"type:text;not null"`
	Status            string    `gorm:"size:16;not null;index:idx_tx_status"`
	DeclaredGasLimit  uint64    `gorm:"not null"`
	EffectiveGasPrice BigInt    `gorm:"type:text"`
	ObservedGasUsed   uint64
	BlockNumber       *uint64
	SequenceNumber    uint64 `gorm:"not null"`
	RelayerAddress    string `gorm:"size:42;not null"`
	StuckSince        *time.Time
	SubmittedAt       time.Time `gorm:"not null;index:idx_tx_submitted_at"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// PolicyRule is the durable Policy Rule (§3, §4.4).
type PolicyRule struct {
	ID      string `gorm:"primaryKey;size:36"`
	Kind    string `gorm:"size:16;not null;index:idx_rule_kind"`
	Target  string `gorm:"size:64;not null"`
	Value   string `gorm:"type:text;not null"` // opaque, kind-specific JSON
	Enabled bool   `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NonceCursorRow durably mirrors an allocator cursor (§3 Sequence-Number
// Cursor, durable-in-cache-backed-by-chain).
type NonceCursorRow struct {
	Network string `gorm:"primaryKey;size:64"`
	Address string `gorm:"primaryKey;size:42"`
	Next    uint64 `gorm:"not null"`
}

// CounterEntry is the store-backed fallback for the Counter Cache (C7),
// one row per recorded event.
type CounterEntry struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Dimension string `gorm:"size:32;not null;index:idx_counter_lookup"`
	Identity  string `gorm:"size:64;not null;index:idx_counter_lookup"`
	Network   string `gorm:"size:64;not null;index:idx_counter_lookup"`
	Quantity  BigInt `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null;index:idx_counter_lookup"`
}

// Operator is an admin/operator account for the Policy Rule CRUD surface
// (§6), the repurposed home for the teacher's bcrypt+JWT auth stack.
type Operator struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}
