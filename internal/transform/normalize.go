// Package transform converts the raw CSV tables into the relational schema
// and derives the per-order summary. It is pure in-memory computation: raw
// tables in, typed rows or an error out, nothing else touched.
package transform

import (
	"fmt"

	"github.com/soeborg/bikestore-etl/internal/db"
	"github.com/soeborg/bikestore-etl/internal/raw"
)

// Tables holds every normalized table of one run, each in source row order.
type Tables struct {
	Brands     []db.Brand
	Categories []db.Category
	Stores     []db.Store
	Customers  []db.Customer
	Products   []db.Product
	Staffs     []db.Staff
	Stocks     []db.Stock
	Orders     []db.Order
	OrderItems []db.OrderItem

	// Duplicates lists lookup-name collisions found while building the
	// store and staff indexes. The last occurrence won; callers decide
	// whether to warn or abort.
	Duplicates []DuplicateName
}

// Normalize builds the full relational table set from one raw snapshot.
//
// The work runs in two phases: first the independent tables, with stores
// and staffs also producing the name→id indexes; then the tables that
// resolve foreign keys by name (stocks, orders, order items).
func Normalize(rawTables map[string]*raw.Table) (*Tables, error) {
	get := func(name string, columns ...string) (*raw.Table, error) {
		t := rawTables[name]
		if t == nil {
			return nil, fmt.Errorf("missing raw table %q", name)
		}
		for _, c := range columns {
			if !t.HasColumn(c) {
				return nil, fmt.Errorf("table %q: missing column %q", name, c)
			}
		}
		return t, nil
	}

	out := &Tables{}

	// Phase 1: independent tables and the name indexes.
	brands, err := get("brands", "brand_id", "brand_name")
	if err != nil {
		return nil, err
	}
	if out.Brands, err = normalizeBrands(brands); err != nil {
		return nil, err
	}

	categories, err := get("categories", "category_id", "category_name")
	if err != nil {
		return nil, err
	}
	if out.Categories, err = normalizeCategories(categories); err != nil {
		return nil, err
	}

	stores, err := get("stores", "name")
	if err != nil {
		return nil, err
	}
	var storeIndex *nameIndex
	out.Stores, storeIndex = normalizeStores(stores)

	customers, err := get("customers", "customer_id")
	if err != nil {
		return nil, err
	}
	if out.Customers, err = normalizeCustomers(customers); err != nil {
		return nil, err
	}

	products, err := get("products", "product_id", "brand_id", "category_id", "list_price")
	if err != nil {
		return nil, err
	}
	if out.Products, err = normalizeProducts(products); err != nil {
		return nil, err
	}

	staffs, err := get("staffs", "name", "active")
	if err != nil {
		return nil, err
	}
	var staffIndex *nameIndex
	if out.Staffs, staffIndex, err = normalizeStaffs(staffs, storeIndex); err != nil {
		return nil, err
	}

	// Phase 2: tables that resolve foreign keys through the indexes.
	stocks, err := get("stocks", "store_name", "product_id", "quantity")
	if err != nil {
		return nil, err
	}
	if out.Stocks, err = normalizeStocks(stocks, storeIndex); err != nil {
		return nil, err
	}

	orders, err := get("orders", "order_id", "customer_id", "store", "staff_name")
	if err != nil {
		return nil, err
	}
	if out.Orders, err = normalizeOrders(orders, storeIndex, staffIndex); err != nil {
		return nil, err
	}

	items, err := get("order_items", "order_id", "item_id", "list_price", "discount")
	if err != nil {
		return nil, err
	}
	if out.OrderItems, err = normalizeOrderItems(items); err != nil {
		return nil, err
	}

	out.Duplicates = append(storeIndex.duplicates(), staffIndex.duplicates()...)
	return out, nil
}

func normalizeBrands(t *raw.Table) ([]db.Brand, error) {
	rows := make([]db.Brand, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id, err := intCell(t, i, "brand_id")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Brand{
			BrandID:   id,
			BrandName: textCell(t, i, "brand_name"),
		})
	}
	return rows, nil
}

func normalizeCategories(t *raw.Table) ([]db.Category, error) {
	rows := make([]db.Category, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id, err := intCell(t, i, "category_id")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Category{
			CategoryID:   id,
			CategoryName: textCell(t, i, "category_name"),
		})
	}
	return rows, nil
}

// normalizeStores assigns store_id by 1-based source row position and
// builds the store-name index used by staffs, stocks and orders.
func normalizeStores(t *raw.Table) ([]db.Store, *nameIndex) {
	rows := make([]db.Store, 0, t.Len())
	index := newNameIndex("store")
	for i := 0; i < t.Len(); i++ {
		s := db.Store{
			StoreID:   i + 1,
			StoreName: textCell(t, i, "name"),
			Phone:     textCell(t, i, "phone"),
			Email:     textCell(t, i, "email"),
			Street:    textCell(t, i, "street"),
			City:      textCell(t, i, "city"),
			State:     textCell(t, i, "state"),
			ZipCode:   textCell(t, i, "zip_code"),
		}
		index.add(s.StoreName, s.StoreID)
		rows = append(rows, s)
	}
	return rows, index
}

func normalizeCustomers(t *raw.Table) ([]db.Customer, error) {
	rows := make([]db.Customer, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id, err := intCell(t, i, "customer_id")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Customer{
			CustomerID: id,
			FirstName:  textCell(t, i, "first_name"),
			LastName:   textCell(t, i, "last_name"),
			Email:      textCell(t, i, "email"),
			Phone:      textCell(t, i, "phone"),
			Street:     textCell(t, i, "street"),
			City:       textCell(t, i, "city"),
			State:      textCell(t, i, "state"),
			ZipCode:    textCell(t, i, "zip_code"),
		})
	}
	return rows, nil
}

func normalizeProducts(t *raw.Table) ([]db.Product, error) {
	rows := make([]db.Product, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		productID, err := intCell(t, i, "product_id")
		if err != nil {
			return nil, err
		}
		brandID, err := intCell(t, i, "brand_id")
		if err != nil {
			return nil, err
		}
		categoryID, err := intCell(t, i, "category_id")
		if err != nil {
			return nil, err
		}
		modelYear, err := intCell(t, i, "model_year")
		if err != nil {
			return nil, err
		}
		listPrice, err := decimalCell(t, i, "list_price")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Product{
			ProductID:   productID,
			ProductName: textCell(t, i, "product_name"),
			BrandID:     brandID,
			CategoryID:  categoryID,
			ModelYear:   modelYear,
			ListPrice:   listPrice,
		})
	}
	return rows, nil
}

// normalizeStaffs assigns staff_id by row position, renames the source
// "name" column to first_name, and builds the first-name index used by
// orders. An unmatched store name is tolerated here: store_id is a
// nullable column on staffs.
func normalizeStaffs(t *raw.Table, stores *nameIndex) ([]db.Staff, *nameIndex, error) {
	rows := make([]db.Staff, 0, t.Len())
	index := newNameIndex("staff")
	for i := 0; i < t.Len(); i++ {
		active, err := boolCell(t, i, "active")
		if err != nil {
			return nil, nil, err
		}
		s := db.Staff{
			StaffID:   i + 1,
			FirstName: textCell(t, i, "name"),
			LastName:  textCell(t, i, "last_name"),
			Email:     textCell(t, i, "email"),
			Phone:     textCell(t, i, "phone"),
			Active:    active,
			Street:    textCell(t, i, "street"),
			ManagerID: nullableIntCell(t, i, "manager_id"),
		}
		if id, ok := stores.resolve(textCell(t, i, "store_name")); ok {
			s.StoreID = &id
		}
		index.add(s.FirstName, s.StaffID)
		rows = append(rows, s)
	}
	return rows, index, nil
}

func normalizeStocks(t *raw.Table, stores *nameIndex) ([]db.Stock, error) {
	rows := make([]db.Stock, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		storeID, err := stores.require(t.Name, i, textCell(t, i, "store_name"))
		if err != nil {
			return nil, err
		}
		productID, err := intCell(t, i, "product_id")
		if err != nil {
			return nil, err
		}
		quantity, err := intCell(t, i, "quantity")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Stock{
			StoreID:   storeID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	return rows, nil
}

// normalizeOrders resolves store and staff by name. Unlike staffs, these
// columns are required integer keys, so an unresolved name fails the run
// with an error naming the row instead of persisting a bad order.
func normalizeOrders(t *raw.Table, stores, staffs *nameIndex) ([]db.Order, error) {
	rows := make([]db.Order, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		orderID, err := intCell(t, i, "order_id")
		if err != nil {
			return nil, err
		}
		customerID, err := intCell(t, i, "customer_id")
		if err != nil {
			return nil, err
		}
		storeID, err := stores.require(t.Name, i, textCell(t, i, "store"))
		if err != nil {
			return nil, err
		}
		staffID, err := staffs.require(t.Name, i, textCell(t, i, "staff_name"))
		if err != nil {
			return nil, err
		}
		status, err := intCell(t, i, "order_status")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.Order{
			OrderID:      orderID,
			CustomerID:   customerID,
			StoreID:      storeID,
			StaffID:      staffID,
			OrderStatus:  status,
			OrderDate:    dateCell(t, i, "order_date"),
			RequiredDate: dateCell(t, i, "required_date"),
			ShippedDate:  dateCell(t, i, "shipped_date"),
		})
	}
	return rows, nil
}

func normalizeOrderItems(t *raw.Table) ([]db.OrderItem, error) {
	rows := make([]db.OrderItem, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		orderID, err := intCell(t, i, "order_id")
		if err != nil {
			return nil, err
		}
		itemID, err := intCell(t, i, "item_id")
		if err != nil {
			return nil, err
		}
		productID, err := intCell(t, i, "product_id")
		if err != nil {
			return nil, err
		}
		quantity, err := intCell(t, i, "quantity")
		if err != nil {
			return nil, err
		}
		listPrice, err := decimalCell(t, i, "list_price")
		if err != nil {
			return nil, err
		}
		discount, err := decimalCell(t, i, "discount")
		if err != nil {
			return nil, err
		}
		rows = append(rows, db.OrderItem{
			OrderID:   orderID,
			ItemID:    itemID,
			ProductID: productID,
			Quantity:  quantity,
			ListPrice: listPrice,
			Discount:  discount,
		})
	}
	return rows, nil
}
