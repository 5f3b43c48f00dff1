package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
)

// draftLockKey is the advisory lock id guarding the one-draft-owner rule.
const draftLockKey = 0x4c454447 // "LEDG"

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same query helpers serve both the committed view and a draft.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepository is the Postgres implementation of the ledger contract.
// A draft is a database transaction: nothing a batch writes is visible to
// other readers until Commit, and Discard is a rollback.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

var _ portsrepo.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a repository over the given pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) EntriesInDateRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Entry, error) {
	return queryEntriesInDateRange(ctx, r.pool, accountID, from, to)
}

func (r *LedgerRepository) EntriesWithOrderNumber(ctx context.Context, orderNumber string) ([]domain.Entry, error) {
	return queryEntriesWithOrderNumber(ctx, r.pool, orderNumber)
}

func (r *LedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return queryTransactionByID(ctx, r.pool, transactionID)
}

func (r *LedgerRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return queryAccountByID(ctx, r.pool, accountID)
}

func (r *LedgerRepository) EntryExistsWithUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	return queryEntryExistsWithUniqueID(ctx, r.pool, uniqueID)
}

// BeginDraft opens a database transaction as the batch's draft scope. An
// advisory lock enforces the one-draft-owner rule across processes; a second
// concurrent draft fails with ErrDraftOpen instead of waiting.
func (r *LedgerRepository) BeginDraft(ctx context.Context) (portsrepo.Draft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin draft transaction: %w", err)
	}

	var acquired bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, draftLockKey).Scan(&acquired); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to acquire draft lock: %w", err)
	}
	if !acquired {
		_ = tx.Rollback(ctx)
		return nil, apperrors.ErrDraftOpen
	}
	return &pgxDraft{tx: tx}, nil
}

type pgxDraft struct {
	tx pgx.Tx
}

var _ portsrepo.Draft = (*pgxDraft)(nil)

func (d *pgxDraft) EntriesInDateRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Entry, error) {
	return queryEntriesInDateRange(ctx, d.tx, accountID, from, to)
}

func (d *pgxDraft) EntriesWithOrderNumber(ctx context.Context, orderNumber string) ([]domain.Entry, error) {
	return queryEntriesWithOrderNumber(ctx, d.tx, orderNumber)
}

func (d *pgxDraft) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return queryTransactionByID(ctx, d.tx, transactionID)
}

func (d *pgxDraft) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return queryAccountByID(ctx, d.tx, accountID)
}

func (d *pgxDraft) EntryExistsWithUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	return queryEntryExistsWithUniqueID(ctx, d.tx, uniqueID)
}

// SaveTransaction upserts the transaction row and rewrites its entries
// wholesale, preserving entry order via the position column.
func (d *pgxDraft) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	_, err := d.tx.Exec(ctx, `
		INSERT INTO transactions (transaction_id, txn_date)
		VALUES ($1, $2)
		ON CONFLICT (transaction_id) DO UPDATE SET txn_date = EXCLUDED.txn_date;
	`, t.TransactionID, t.Date)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", t.TransactionID, err)
	}

	if _, err := d.tx.Exec(ctx, `DELETE FROM entries WHERE transaction_id = $1;`, t.TransactionID); err != nil {
		return fmt.Errorf("failed to clear entries of transaction %s: %w", t.TransactionID, err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO entries (entry_id, transaction_id, account_id, amount, memo, unique_id, statement_ref, order_number, valuta_date, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for i, e := range t.Entries {
		batch.Queue(entryQuery,
			e.EntryID,
			t.TransactionID,
			e.AccountID,
			int64(e.Amount),
			e.Memo,
			e.UniqueID,
			e.StatementRef,
			e.OrderNumber,
			e.ValutaDate,
			i,
		)
	}
	br := d.tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert entries for transaction %s: %w", t.TransactionID, err)
	}
	return nil
}

func (d *pgxDraft) DeleteTransaction(ctx context.Context, transactionID string) error {
	// Entries go with it via ON DELETE CASCADE; deleting a transaction that
	// was never saved is a no-op by contract.
	if _, err := d.tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return nil
}

func (d *pgxDraft) Commit(ctx context.Context, label string) error {
	if _, err := d.tx.Exec(ctx, `INSERT INTO import_batches (label) VALUES ($1);`, label); err != nil {
		return fmt.Errorf("failed to record import batch label: %w", err)
	}
	if err := d.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit draft: %w", err)
	}
	return nil
}

func (d *pgxDraft) Discard(ctx context.Context) error {
	if err := d.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	return nil
}

const entryColumns = `e.entry_id, e.transaction_id, e.account_id, e.amount, e.memo, e.unique_id, e.statement_ref, e.order_number, e.valuta_date`

func scanEntries(rows pgx.Rows) ([]domain.Entry, error) {
	defer rows.Close()
	var out []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var amount int64
		if err := rows.Scan(&e.EntryID, &e.TransactionID, &e.AccountID, &amount, &e.Memo, &e.UniqueID, &e.StatementRef, &e.OrderNumber, &e.ValutaDate); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Amount = domain.Amount(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

func queryEntriesInDateRange(ctx context.Context, q querier, accountID string, from, to time.Time) ([]domain.Entry, error) {
	rows, err := q.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND t.txn_date >= $2 AND t.txn_date <= $3
		ORDER BY t.seq, e.position;
	`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	return scanEntries(rows)
}

func queryEntriesWithOrderNumber(ctx context.Context, q querier, orderNumber string) ([]domain.Entry, error) {
	rows, err := q.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.order_number = $1
		ORDER BY t.seq, e.position;
	`, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for order %s: %w", orderNumber, err)
	}
	return scanEntries(rows)
}

func queryTransactionByID(ctx context.Context, q querier, transactionID string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := q.QueryRow(ctx, `
		SELECT transaction_id, txn_date FROM transactions WHERE transaction_id = $1;
	`, transactionID).Scan(&t.TransactionID, &t.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries e
		WHERE e.transaction_id = $1
		ORDER BY e.position;
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of transaction %s: %w", transactionID, err)
	}
	t.Entries, err = scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryAccountByID(ctx context.Context, q querier, accountID string) (*domain.Account, error) {
	var a domain.Account
	err := q.QueryRow(ctx, `
		SELECT account_id, name, account_type, currency_code, minor_unit
		FROM accounts WHERE account_id = $1;
	`, accountID).Scan(&a.AccountID, &a.Name, &a.AccountType, &a.CurrencyCode, &a.MinorUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &a, nil
}

func queryEntryExistsWithUniqueID(ctx context.Context, q querier, uniqueID string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM entries WHERE unique_id = $1 AND unique_id <> '');
	`, uniqueID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unique id %s: %w", uniqueID, err)
	}
	return exists, nil
}
