package db

import (
	"fmt"
)

// Migrate creates or updates the schema: the nine core tables, the derived
// order_summary table, and the run audit tables.
func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(
		&Brand{},
		&Category{},
		&Store{},
		&Customer{},
		&Product{},
		&Staff{},
		&Stock{},
		&Order{},
		&OrderItem{},
		&OrderSummary{},
		&EtlRun{},
		&SourceFile{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}
	return nil
}
