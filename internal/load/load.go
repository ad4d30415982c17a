// Package load is the persistence gateway: it writes one normalized
// snapshot into the target database.
package load

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soeborg/bikestore-etl/internal/db"
	"github.com/soeborg/bikestore-etl/internal/transform"
)

const batchSize = 500

// Replace loads a snapshot inside a single transaction, fully replacing
// the previous contents of the core tables and upserting the summary rows.
// A run either commits everything or nothing. Returns the number of rows
// written.
func Replace(ctx context.Context, gdb *gorm.DB, tables *transform.Tables, summary []db.OrderSummary) (int, error) {
	total := 0
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Purge children before parents so no foreign key breaks mid-way.
		purgeOrder := []any{
			&db.OrderSummary{},
			&db.OrderItem{},
			&db.Order{},
			&db.Stock{},
			&db.Staff{},
			&db.Product{},
			&db.Customer{},
			&db.Store{},
			&db.Category{},
			&db.Brand{},
		}
		for _, model := range purgeOrder {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("purging %T: %w", model, err)
			}
		}

		inserts := []struct {
			name string
			rows any
			n    int
		}{
			{"brands", tables.Brands, len(tables.Brands)},
			{"categories", tables.Categories, len(tables.Categories)},
			{"stores", tables.Stores, len(tables.Stores)},
			{"customers", tables.Customers, len(tables.Customers)},
			{"products", tables.Products, len(tables.Products)},
			{"staffs", tables.Staffs, len(tables.Staffs)},
			{"stocks", tables.Stocks, len(tables.Stocks)},
			{"orders", tables.Orders, len(tables.Orders)},
			{"order_items", tables.OrderItems, len(tables.OrderItems)},
		}
		for _, ins := range inserts {
			if ins.n == 0 {
				continue
			}
			if err := tx.CreateInBatches(ins.rows, batchSize).Error; err != nil {
				return fmt.Errorf("loading %s: %w", ins.name, err)
			}
			total += ins.n
		}

		// The reporting table is shared with readers that may hold rows by
		// order_id, so summary writes go through an upsert.
		if len(summary) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				CreateInBatches(summary, batchSize).Error; err != nil {
				return fmt.Errorf("loading order_summary: %w", err)
			}
			total += len(summary)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
