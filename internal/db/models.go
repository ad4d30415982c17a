// internal/db/models.go
package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	BrandID   int    `gorm:"primaryKey;column:brand_id"`
	BrandName string `gorm:"column:brand_name"`
}

type Category struct {
	CategoryID   int    `gorm:"primaryKey;column:category_id"`
	CategoryName string `gorm:"column:category_name"`
}

// store_id does not exist in the source extract; the normalizer assigns it
// by row position.
type Store struct {
	StoreID   int    `gorm:"primaryKey;column:store_id"`
	StoreName string `gorm:"index"`
	Phone     string
	Email     string
	Street    string
	City      string
	State     string
	ZipCode   string
}

type Customer struct {
	CustomerID int `gorm:"primaryKey;column:customer_id"`
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Street     string
	City       string
	State      string
	ZipCode    string
}

type Product struct {
	ProductID   int `gorm:"primaryKey;column:product_id"`
	ProductName string
	BrandID     int `gorm:"index"`
	CategoryID  int `gorm:"index"`
	ModelYear   int
	ListPrice   decimal.Decimal `gorm:"type:numeric(10,2)"`
}

type Staff struct {
	StaffID   int    `gorm:"primaryKey;column:staff_id"`
	FirstName string `gorm:"index"`
	LastName  string
	Email     string
	Phone     string
	Active    bool
	Street    string
	StoreID   *int `gorm:"index"` // nullable: unmatched store name in the source
	ManagerID *int
}

type Stock struct {
	StoreID   int `gorm:"primaryKey;column:store_id"`
	ProductID int `gorm:"primaryKey;column:product_id"`
	Quantity  int
}

type Order struct {
	OrderID      int `gorm:"primaryKey;column:order_id"`
	CustomerID   int `gorm:"index"`
	StoreID      int `gorm:"index"`
	StaffID      int `gorm:"index"`
	OrderStatus  int
	OrderDate    *time.Time
	RequiredDate *time.Time
	ShippedDate  *time.Time
}

type OrderItem struct {
	OrderID   int `gorm:"primaryKey;column:order_id"`
	ItemID    int `gorm:"primaryKey;column:item_id"`
	ProductID int `gorm:"index"`
	Quantity  int
	ListPrice decimal.Decimal `gorm:"type:numeric(10,2)"`
	Discount  decimal.Decimal `gorm:"type:numeric(4,2)"` // fraction in [0,1]
}

// OrderSummary is the derived reporting table, rebuilt wholesale each run.
type OrderSummary struct {
	OrderID      int `gorm:"primaryKey;column:order_id"`
	OrderDate    *time.Time
	CustomerID   int `gorm:"index"`
	CustomerName *string
	OrderTotal   decimal.Decimal `gorm:"type:numeric(12,4)"`
}

func (OrderSummary) TableName() string { return "order_summary" }

// EtlRun records one row per pipeline execution.
type EtlRun struct {
	RunID      string `gorm:"primaryKey;column:run_id"`
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string `gorm:"index"` // running | done | error
	RowsLoaded int
	LastError  string `gorm:"type:text"`
}

// SourceFile records one CSV input of a run, with its content hash.
type SourceFile struct {
	RunID     string `gorm:"primaryKey;column:run_id"`
	TableName string `gorm:"primaryKey;column:table_name"`
	Path      string
	SHA256    string `gorm:"column:sha256;index"`
	SizeBytes int64
	Rows      int
}
