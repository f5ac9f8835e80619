package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartor/case-ledger/internal/core/domain"
)

// ErrStockConflict means the conditional stock update matched no row: the
// item vanished or the reject policy blocked an over-deduction.
var ErrStockConflict = errors.New("stock update conflict")

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, unit_price, unit, category, on_hand, version, created_at, updated_at
		FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.UnitPrice, &item.Unit,
			&item.Category, &item.OnHand, &item.Version, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, unit_price, unit, category, on_hand, version, created_at, updated_at
		FROM inventory_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.UnitPrice, &item.Unit,
		&item.Category, &item.OnHand, &item.Version, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) SeedItems(ctx context.Context, items []domain.InventoryItem) error {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&count); err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, item := range items {
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO inventory_items (id, name, unit_price, unit, category, on_hand, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, 0, NOW(), NOW())`,
			item.ID, item.Name, item.UnitPrice, item.Unit, item.Category, item.OnHand,
		)
		if err != nil {
			return fmt.Errorf("seed item %s: %w", item.Name, err)
		}
	}
	return nil
}

// RecordUsage appends the ledger row and deducts stock in one transaction.
// The deduction is a conditional single-row update keyed by the item's
// stable id, so a stale session snapshot can never misaddress a row.
func (m *MySQLAdapter) RecordUsage(ctx context.Context, entry domain.LogEntry, itemID string, policy domain.StockPolicy) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := appendEntryTx(ctx, tx, entry); err != nil {
		return err
	}

	var result sql.Result
	switch policy {
	case domain.PolicyReject:
		result, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET on_hand = on_hand - ?, version = version + 1, updated_at = NOW()
			WHERE id = ? AND on_hand >= ?`,
			entry.Qty, itemID, entry.Qty,
		)
	case domain.PolicyClamp:
		result, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET on_hand = GREATEST(on_hand - ?, 0), version = version + 1, updated_at = NOW()
			WHERE id = ?`,
			entry.Qty, itemID,
		)
	default:
		result, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET on_hand = on_hand - ?, version = version + 1, updated_at = NOW()
			WHERE id = ?`,
			entry.Qty, itemID,
		)
	}
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrStockConflict
	}

	return tx.Commit()
}

func (m *MySQLAdapter) AppendEntry(ctx context.Context, entry domain.LogEntry) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := appendEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func appendEntryTx(ctx context.Context, tx *sql.Tx, entry domain.LogEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO case_ledger (id, ts, case_id, item, qty, unit, category, cost, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, entry.CaseID, entry.Item, entry.Qty,
		entry.Unit, entry.Category, entry.Cost, string(entry.Source),
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListEntries(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, ts, case_id, item, qty, unit, category, cost, source
		FROM case_ledger ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var source string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.CaseID, &e.Item, &e.Qty,
			&e.Unit, &e.Category, &e.Cost, &source); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		e.Source = domain.SourceTag(source)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
