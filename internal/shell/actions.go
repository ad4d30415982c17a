package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soeborg/bikestore-etl/internal/db"
)

// customerFields, in prompt order. customer_id first: it is the natural
// key and typed as an integer.
var customerFields = []string{
	"customer_id", "first_name", "last_name", "email", "phone",
	"street", "city", "state", "zip_code",
}

func (s *Shell) handleLoadData(ctx context.Context) {
	answer, err := s.prompt("Run the full ETL pipeline and load data into the database? (yes/no): ")
	if err != nil {
		return
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(s.out, "Skipping data load.")
		return
	}

	res, err := s.pipe.Run(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Pipeline failed:", err)
		return
	}
	fmt.Fprintf(s.out, "All done: %d rows loaded in %s. You can now explore the order_summary table.\n",
		res.RowsLoaded, res.Duration.Round(time.Millisecond))
}

func (s *Shell) handleCreateCustomer(ctx context.Context) {
	fmt.Fprintln(s.out, "Creating a new customer. Leave a field blank to cancel.")
	var c db.Customer
	for _, field := range customerFields {
		value, err := s.prompt(fieldLabel(field) + ": ")
		if err != nil {
			return
		}
		if value == "" {
			fmt.Fprintln(s.out, "Creation cancelled.")
			return
		}
		if field == "customer_id" {
			id, err := strconv.Atoi(value)
			if err != nil {
				fmt.Fprintln(s.out, "Customer ID must be an integer. Creation cancelled.")
				return
			}
			c.CustomerID = id
			continue
		}
		setCustomerField(&c, field, value)
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		fmt.Fprintln(s.out, "Failed to create customer:", err)
		return
	}
	fmt.Fprintln(s.out, "Customer created successfully.")
}

func (s *Shell) handleReadCustomer(ctx context.Context, roleName string) {
	// The customer role only sees its own profile.
	if roleName == "customer" {
		s.handleCustomerSelfService(ctx)
		return
	}

	identifier, err := s.prompt("Enter a customer ID to look up or press enter to list all customers: ")
	if err != nil {
		return
	}

	q := s.db.WithContext(ctx).Model(&db.Customer{}).Order("customer_id")
	if identifier != "" {
		id, err := strconv.Atoi(identifier)
		if err != nil {
			fmt.Fprintln(s.out, "Customer ID must be an integer.")
			return
		}
		q = q.Where("customer_id = ?", id)
	}

	var rows []db.Customer
	if err := q.Find(&rows).Error; err != nil {
		fmt.Fprintln(s.out, "Failed to read customer data:", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No customers found.")
		return
	}
	for _, c := range rows {
		fmt.Fprintf(s.out, "%d | %s %s | %s\n", c.CustomerID, c.FirstName, c.LastName, c.Email)
	}
}

// orderItemLine is one row of the self-service item listing, joined with
// products for the name.
type orderItemLine struct {
	OrderID     int
	ItemID      int
	ProductName string
	Quantity    int
	ListPrice   decimal.Decimal
	Discount    decimal.Decimal
}

func (s *Shell) handleCustomerSelfService(ctx context.Context) {
	identifier, err := s.prompt("Enter your customer ID: ")
	if err != nil {
		return
	}
	id, err := strconv.Atoi(identifier)
	if err != nil {
		fmt.Fprintln(s.out, "Customer ID must be an integer.")
		return
	}

	var c db.Customer
	if err := s.db.WithContext(ctx).First(&c, "customer_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintln(s.out, "No customer found with that ID.")
		} else {
			fmt.Fprintln(s.out, "Failed to read customer data:", err)
		}
		return
	}
	fmt.Fprintf(s.out, "%d | %s %s | %s | %s | %s, %s %s %s\n",
		c.CustomerID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.Street, c.City, c.State, c.ZipCode)

	var orders []db.Order
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("order_date, order_id").
		Find(&orders).Error; err != nil {
		fmt.Fprintln(s.out, "Failed to read order data:", err)
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No orders found for this customer.")
		return
	}

	var items []orderItemLine
	if err := s.db.WithContext(ctx).Model(&db.OrderItem{}).
		Select("order_items.order_id, order_items.item_id, products.product_name, order_items.quantity, order_items.list_price, order_items.discount").
		Joins("JOIN orders ON orders.order_id = order_items.order_id").
		Joins("JOIN products ON products.product_id = order_items.product_id").
		Where("orders.customer_id = ?", id).
		Order("order_items.order_id, order_items.item_id").
		Scan(&items).Error; err != nil {
		fmt.Fprintln(s.out, "Failed to read order data:", err)
		return
	}
	byOrder := make(map[int][]orderItemLine, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	fmt.Fprintln(s.out, "Orders:")
	for _, o := range orders {
		fmt.Fprintf(s.out, " - Order %d (status %d)\n", o.OrderID, o.OrderStatus)
		fmt.Fprintf(s.out, "   Placed: %s  Required: %s\n", fmtDate(o.OrderDate), fmtDate(o.RequiredDate))
		if o.ShippedDate != nil {
			fmt.Fprintf(s.out, "   Shipped: %s\n", fmtDate(o.ShippedDate))
		}
		lines := byOrder[o.OrderID]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintln(s.out, "   Items:")
		for _, it := range lines {
			fmt.Fprintf(s.out, "     #%d %s - qty %d, price %s, discount %s\n",
				it.ItemID, it.ProductName, it.Quantity, it.ListPrice, it.Discount)
		}
	}
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.Format("2006-01-02")
}

func (s *Shell) handleUpdateCustomer(ctx context.Context) {
	identifier, err := s.prompt("Enter the customer ID to update: ")
	if err != nil {
		return
	}
	id, err := strconv.Atoi(identifier)
	if err != nil {
		fmt.Fprintln(s.out, "Customer ID must be an integer.")
		return
	}

	var c db.Customer
	if err := s.db.WithContext(ctx).First(&c, "customer_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintln(s.out, "No customer found with that ID.")
		} else {
			fmt.Fprintln(s.out, "Failed to read customer data:", err)
		}
		return
	}

	updatable := customerFields[1:] // everything but the key
	field, err := s.prompt(fmt.Sprintf("Field to update (%s): ", strings.Join(updatable, ", ")))
	if err != nil {
		return
	}
	field = strings.ToLower(field)
	if !contains(updatable, field) {
		fmt.Fprintln(s.out, "Unknown field. Update cancelled.")
		return
	}

	value, err := s.prompt("New value: ")
	if err != nil {
		return
	}
	if value == "" {
		fmt.Fprintln(s.out, "Update cancelled.")
		return
	}

	// field is validated against the allow-list above, so it is safe as a
	// column name here.
	if err := s.db.WithContext(ctx).Model(&db.Customer{}).
		Where("customer_id = ?", id).
		Update(field, value).Error; err != nil {
		fmt.Fprintln(s.out, "Failed to update customer:", err)
		return
	}
	fmt.Fprintln(s.out, "Customer updated successfully.")
}

func (s *Shell) handleDeleteCustomer(ctx context.Context) {
	identifier, err := s.prompt("Enter the customer ID to delete: ")
	if err != nil {
		return
	}
	id, err := strconv.Atoi(identifier)
	if err != nil {
		fmt.Fprintln(s.out, "Customer ID must be an integer.")
		return
	}

	answer, err := s.prompt(fmt.Sprintf("Delete customer %d? (yes/no): ", id))
	if err != nil {
		return
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(s.out, "Deletion cancelled.")
		return
	}

	res := s.db.WithContext(ctx).Delete(&db.Customer{}, "customer_id = ?", id)
	if res.Error != nil {
		fmt.Fprintln(s.out, "Failed to delete customer:", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fmt.Fprintln(s.out, "No customer found with that ID.")
		return
	}
	fmt.Fprintln(s.out, "Customer deleted successfully.")
}

func setCustomerField(c *db.Customer, field, value string) {
	switch field {
	case "first_name":
		c.FirstName = value
	case "last_name":
		c.LastName = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "street":
		c.Street = value
	case "city":
		c.City = value
	case "state":
		c.State = value
	case "zip_code":
		c.ZipCode = value
	}
}

func fieldLabel(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
