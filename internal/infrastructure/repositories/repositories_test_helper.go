package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTollTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE toll_transactions (
		id TEXT PRIMARY KEY,
		vehicle_id TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		operator_address TEXT,
		plaza_id TEXT,
		amount TEXT NOT NULL,
		proof_hash TEXT NOT NULL UNIQUE,
		transaction_hash TEXT,
		gas_used TEXT,
		notes TEXT,
		status TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
