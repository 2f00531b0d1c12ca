package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/common"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/formats"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/service"
)

const (
	listFormatsQuery = `
		SELECT id, name
		FROM bank_file_format
		ORDER BY id
	`
	upsertFormatQuery = `
		INSERT INTO bank_file_format (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`
	createUserFileQuery = `
		INSERT INTO user_file (id, user_id, file_name, format_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	deleteFileTransactionsQuery = `DELETE FROM transaction WHERE user_file_id = $1`
	deleteUserFileQuery         = `DELETE FROM user_file WHERE id = $1`
	listTransactionsQuery       = `
		SELECT user_file_id, transaction_date, amount::text, remarks_1, remarks_2
		FROM transaction
		WHERE user_file_id = $1
		ORDER BY transaction_date, remarks_1
	`
)

var transactionColumns = []string{"user_file_id", "transaction_date", "amount", "remarks_1", "remarks_2"}

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStatementRepository implements StatementRepository using PostgreSQL
type PostgresStatementRepository struct {
	pgpool PgxPool
}

// NewPostgresStatementRepository creates a new PostgreSQL-backed statement repository
func NewPostgresStatementRepository(pgpool PgxPool) *PostgresStatementRepository {
	return &PostgresStatementRepository{pgpool: pgpool}
}

var _ StatementRepository = (*PostgresStatementRepository)(nil)

// ListFormats returns every stored bank file format
func (r *PostgresStatementRepository) ListFormats(ctx context.Context) ([]BankFileFormat, error) {
	rows, err := r.pgpool.Query(ctx, listFormatsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list formats: %w", err)
	}
	defer rows.Close()

	var out []BankFileFormat
	for rows.Next() {
		var f BankFileFormat
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan format: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list formats: %w", err)
	}
	return out, nil
}

// UpsertFormats mirrors the registry into bank_file_format so user files can
// reference it.
func (r *PostgresStatementRepository) UpsertFormats(ctx context.Context, cfgs []formats.FormatConfig) error {
	for _, cfg := range cfgs {
		if _, err := r.pgpool.Exec(ctx, upsertFormatQuery, cfg.ID, cfg.Name); err != nil {
			return fmt.Errorf("failed to upsert format %d: %w", cfg.ID, err)
		}
	}
	return nil
}

// CreateUserFile inserts a new user file record
func (r *PostgresStatementRepository) CreateUserFile(ctx context.Context, file *UserFile) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}

	err := r.pgpool.QueryRow(ctx, createUserFileQuery, file.ID, file.UserID, file.FileName, file.FormatID).
		Scan(&file.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("user file %s: %w", file.ID, common.ErrConflict)
		}
		return fmt.Errorf("failed to create user file: %w", err)
	}
	return nil
}

// DeleteUserFile removes a user file and its transactions.
func (r *PostgresStatementRepository) DeleteUserFile(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pgpool.Exec(ctx, deleteFileTransactionsQuery, id); err != nil {
		return fmt.Errorf("failed to delete transactions of file %s: %w", id, err)
	}
	tag, err := r.pgpool.Exec(ctx, deleteUserFileQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete user file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user file %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// BulkInsertTransactions copies normalized transactions into the transaction table
func (r *PostgresStatementRepository) BulkInsertTransactions(ctx context.Context, fileID uuid.UUID, txs []service.NormalizedTransaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	n, err := r.pgpool.CopyFrom(ctx,
		pgx.Identifier{"transaction"},
		transactionColumns,
		pgx.CopyFromSlice(len(txs), func(i int) ([]any, error) {
			tx := txs[i]
			return []any{fileID, tx.Date, tx.Amount, tx.Description, tx.Description2}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk insert transactions: %w", err)
	}
	return int(n), nil
}

// ListTransactions returns the stored transactions of one file
func (r *PostgresStatementRepository) ListTransactions(ctx context.Context, fileID uuid.UUID) ([]StoredTransaction, error) {
	rows, err := r.pgpool.Query(ctx, listTransactionsQuery, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []StoredTransaction
	for rows.Next() {
		var (
			tx     StoredTransaction
			amount string
		)
		if err := rows.Scan(&tx.UserFileID, &tx.TransactionDate, &amount, &tx.Remarks1, &tx.Remarks2); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

// SaveResult records the file and copies its transactions. A failed copy
// removes the file again.
func (r *PostgresStatementRepository) SaveResult(ctx context.Context, userID uuid.UUID, fileName string, res *service.ParseResult) (*UserFile, int, error) {
	file := &UserFile{
		ID:       res.DocumentID,
		UserID:   userID,
		FileName: fileName,
		FormatID: res.FormatID,
	}
	if err := r.CreateUserFile(ctx, file); err != nil {
		return nil, 0, err
	}

	n, err := r.BulkInsertTransactions(ctx, file.ID, res.Transactions)
	if err != nil {
		if delErr := r.DeleteUserFile(ctx, file.ID); delErr != nil {
			return nil, 0, errors.Join(err, delErr)
		}
		return nil, 0, err
	}
	return file, n, nil
}
