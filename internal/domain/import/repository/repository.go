// Package repository persists parsed statements.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/formats"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/service"
)

// PgxPool abstracts the subset of pgxpool.Pool used by the repository to allow mocking in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var _ PgxPool = (*pgxpool.Pool)(nil)

// BankFileFormat is a row of bank_file_format.
type BankFileFormat struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// UserFile is an uploaded statement.
type UserFile struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	FileName  string    `db:"file_name"`
	FormatID  int       `db:"format_id"`
	CreatedAt time.Time `db:"created_at"`
}

// StoredTransaction is a row of transaction.
type StoredTransaction struct {
	UserFileID      uuid.UUID       `db:"user_file_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	Amount          decimal.Decimal `db:"amount"`
	Remarks1        string          `db:"remarks_1"`
	Remarks2        string          `db:"remarks_2"`
}

// StatementRepository defines data access operations for parsed statements
type StatementRepository interface {
	// Formats
	ListFormats(ctx context.Context) ([]BankFileFormat, error)
	UpsertFormats(ctx context.Context, cfgs []formats.FormatConfig) error

	// User files
	CreateUserFile(ctx context.Context, file *UserFile) error
	DeleteUserFile(ctx context.Context, id uuid.UUID) error

	// Transactions
	BulkInsertTransactions(ctx context.Context, fileID uuid.UUID, txs []service.NormalizedTransaction) (int, error)
	ListTransactions(ctx context.Context, fileID uuid.UUID) ([]StoredTransaction, error)

	SaveResult(ctx context.Context, userID uuid.UUID, fileName string, res *service.ParseResult) (*UserFile, int, error)
}
