package store

import (
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func newID() string {
	return uuid.NewString()
}

// upsertCursor makes SaveCursor an upsert keyed on (network, address),
// since a cursor is re-saved on every allocator acquire/release/resync.
func upsertCursor() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "network"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"next"}),
	}
}

// advisoryLockKey derives a stable int64 key from a tx-hash for Postgres
// advisory locking (§4.9).
func advisoryLockKey(txHash string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(txHash)))
	return int64(h.Sum64())
}

// isUniqueViolation reports whether err looks like a unique-constraint
// violation, independent of whether it came from a real postgres
// connection or go-sqlmock in tests.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
