// Package ledgerdb persists classified transactions so the activity feed
// and chart endpoints can be served without refetching the indexer.
package ledgerdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bundsx-labs/bundsx-node/internal/db"
	"github.com/bundsx-labs/bundsx-node/internal/ledger"
)

type TransactionDb interface {
	ledger.TransactionStore
	GetByBondAscending(ctx context.Context, bondID uint64) ([]ledger.ClassifiedTransaction, error)
	GetPaginatedForContract(rq db.QueryRunner, contract string, opts db.QueryOptions) (total int, txs []ledger.ClassifiedTransaction, err error)
}

func NewTransactionDb(sqlite *sql.DB) TransactionDb {
	return &TransactionDbImpl{db: sqlite}
}

type TransactionDbImpl struct {
	db *sql.DB
}

const selectColumns = `
	SELECT tx_hash, contract, chain_id, block_number, timestamp,
		from_address, to_address, status, transaction_type, bond_id, eth_amount
	FROM ledger_transactions
`

// SaveTransactions upserts one classified page. The indexer occasionally
// returns the same event twice; keying on (tx_hash, contract) makes the
// write-through tolerate that instead of growing duplicates.
func (t *TransactionDbImpl) SaveTransactions(ctx context.Context, contract string, chainID int64, txs []ledger.ClassifiedTransaction) error {
	_, err := db.TxRunner(ctx, t.db, func(tx *sql.Tx) (struct{}, error) {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO ledger_transactions (
				tx_hash, contract, chain_id, block_number, timestamp,
				from_address, to_address, status, transaction_type, bond_id, eth_amount
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return struct{}{}, err
		}
		defer stmt.Close()

		for _, record := range txs {
			var bondID sql.NullInt64
			if record.BondID != nil {
				bondID = sql.NullInt64{Int64: int64(*record.BondID), Valid: true}
			}
			if _, err := stmt.Exec(
				record.Hash, contract, chainID, record.BlockNumber, record.Timestamp,
				record.From, record.To, record.Status, record.TransactionType, bondID, record.EthAmount,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}

// GetByBondAscending returns every stored transaction for a bond, oldest
// first - the order chart synthesis replays in.
func (t *TransactionDbImpl) GetByBondAscending(ctx context.Context, bondID uint64) ([]ledger.ClassifiedTransaction, error) {
	rows, err := t.db.QueryContext(ctx, selectColumns+`
		WHERE bond_id = ?
		ORDER BY timestamp ASC, block_number ASC`, int64(bondID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetPageForContract adapts the paginated read to the feed service's
// fallback interface: newest first, a sane limit when the caller passed
// none.
func (t *TransactionDbImpl) GetPageForContract(_ context.Context, contract string, limit, offset int) ([]ledger.ClassifiedTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	_, txs, err := t.GetPaginatedForContract(t.db, contract, db.QueryOptions{Limit: limit, Offset: offset})
	return txs, err
}

func (t *TransactionDbImpl) GetPaginatedForContract(rq db.QueryRunner, contract string, opts db.QueryOptions) (int, []ledger.ClassifiedTransaction, error) {
	direction := opts.Direction
	if direction == "" {
		direction = db.QueryDirectionDesc
	}

	where := "WHERE contract = ?"
	params := []interface{}{contract}
	if opts.Where != "" {
		where += " AND " + opts.Where
	}

	query := fmt.Sprintf("%s %s ORDER BY timestamp %s, block_number %s LIMIT ? OFFSET ?",
		selectColumns, where, direction, direction)

	rows, err := rq.Query(query, append(params, opts.Limit, opts.Offset)...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return 0, nil, err
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_transactions %s", where)
	if err := rq.QueryRow(countQuery, params...).Scan(&total); err != nil {
		return 0, nil, err
	}

	return total, txs, nil
}

func scanTransactions(rows *sql.Rows) ([]ledger.ClassifiedTransaction, error) {
	var txs []ledger.ClassifiedTransaction
	for rows.Next() {
		var (
			record   ledger.ClassifiedTransaction
			contract string
			chainID  int64
			bondID   sql.NullInt64
		)
		if err := rows.Scan(
			&record.Hash, &contract, &chainID, &record.BlockNumber, &record.Timestamp,
			&record.From, &record.To, &record.Status, &record.TransactionType, &bondID, &record.EthAmount,
		); err != nil {
			return nil, err
		}
		if bondID.Valid {
			v := uint64(bondID.Int64)
			record.BondID = &v
		}
		txs = append(txs, record)
	}
	return txs, rows.Err()
}
