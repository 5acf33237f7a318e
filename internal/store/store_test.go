package store_test

import (
	"context"
	"database/sql"
	"math/big"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"relayhub/internal/store"
)

var _ = Describe("Store", func() {
	var (
		mockDB *sql.DB
		mock   sqlmock.Sqlmock
		st     *store.Store
	)

	BeforeEach(func() {
		var err error
		mockDB, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		dialector := postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"})
		gormDB, err := gorm.Open(dialector, &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		st = store.NewFromDB(gormDB)
	})

	AfterEach(func() {
		mock.ExpectClose()
		Expect(mockDB.Close()).To(Succeed())
	})

	Describe("InsertTransaction", func() {
		It("rejects a duplicate tx-hash as ErrDuplicateTxHash", func() {
			mock.ExpectQuery(`INSERT INTO "transactions"`).
				WillReturnError(&pqUniqueViolation{})

			err := st.InsertTransaction(context.Background(), store.Transaction{
				TxHash:  "0xdead",
				From:    "0xfrom",
				To:      "0xto",
				Network: "localhost",
				Value:   store.NewBigInt(big.NewInt(1)),
				Status:  string(store.StatusPending),
			})
			Expect(err).To(MatchError(store.ErrDuplicateTxHash))
		})
	})

	Describe("UpdateTransactionStatus", func() {
		It("returns ErrNotFound when no row exists at all", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "transactions" SET`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()
			mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tx_hash = \$1`).
				WillReturnError(gorm.ErrRecordNotFound)

			err := st.UpdateTransactionStatus(context.Background(), "0xdead", store.TransactionUpdate{Status: store.StatusConfirmed})
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("returns ErrInvalidTransition when the row is already terminal", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "transactions" SET`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()
			rows := sqlmock.NewRows([]string{"tx_hash", "status"}).AddRow("0xdead", "confirmed")
			mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tx_hash = \$1`).
				WillReturnRows(rows)

			err := st.UpdateTransactionStatus(context.Background(), "0xdead", store.TransactionUpdate{Status: store.StatusFailed})
			Expect(err).To(MatchError(store.ErrInvalidTransition))
		})
	})

	Describe("SumCounterEntries", func() {
		It("sums quantities exactly with 256-bit arithmetic, never floating point", func() {
			huge1 := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
			huge2 := "1"
			rows := sqlmock.NewRows([]string{"id", "dimension", "identity", "network", "quantity", "timestamp"}).
				AddRow(1, "value", "0xfrom", "localhost", huge1, time.Now()).
				AddRow(2, "value", "0xfrom", "localhost", huge2, time.Now())
			mock.ExpectQuery(`SELECT \* FROM "counter_entries"`).WillReturnRows(rows)

			sum, err := st.SumCounterEntries(context.Background(), "value", "0xfrom", "localhost", time.Now().Add(-time.Hour))
			Expect(err).NotTo(HaveOccurred())

			expected, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639936", 10)
			Expect(sum.Int.Cmp(expected)).To(Equal(0))
		})
	})
})

// pqUniqueViolation stands in for a *pgconn.PgError / *pq.Error unique
// violation without importing the postgres driver's error type directly;
// isUniqueViolation only inspects Error() text.
type pqUniqueViolation struct{}

func (e *pqUniqueViolation) Error() string {
	return "ERROR: duplicate key value violates unique constraint \"transactions_pkey\" (SQLSTATE 23505)"
}
