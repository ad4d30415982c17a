package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	conf "github.com/soeborg/bikestore-etl/internal/config"
	"github.com/soeborg/bikestore-etl/internal/db"
)

func testConfig(t *testing.T) *conf.Config {
	t.Helper()
	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}
	return &conf.Config{
		Roles: map[string]conf.Role{
			"admin": {
				PasswordHash: hash("admin123"),
				Actions:      []string{"load_data", "create", "read", "update", "delete"},
				DataAccess:   []string{"All tables"},
			},
			"customer": {
				PasswordHash: hash("customer123"),
				Actions:      []string{"read"},
			},
			"hr": {
				PasswordHash: hash("hr123"),
				Actions:      []string{"read"},
			},
		},
	}
}

// newTestShell wires a shell to an in-memory database and a scripted stdin.
func newTestShell(t *testing.T, script string) (*Shell, *db.Handle, *bytes.Buffer) {
	t.Helper()
	h, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })

	out := &bytes.Buffer{}
	s := New(zerolog.Nop(), testConfig(t), h.DB, nil, strings.NewReader(script), out)
	// Passwords come from the script, not the terminal.
	s.readPassword = func() (string, error) {
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	return s, h, out
}

func TestLoginAndExit(t *testing.T) {
	s, _, out := newTestShell(t, "admin\nadmin123\nexit\n")

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Logged in as "admin"`)
	assert.Contains(t, out.String(), "Data access granted to:")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestLoginFailsAfterThreeAttempts(t *testing.T) {
	s, _, out := newTestShell(t, "admin\nwrong\nadmin\nwrong\nnobody\nwhatever\n")

	err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Contains(t, out.String(), "Attempts remaining: 2")
	assert.Contains(t, out.String(), "Attempts remaining: 1")
}

func TestCreateReadUpdateDeleteCustomer(t *testing.T) {
	script := strings.Join([]string{
		"admin", "admin123",
		"create",
		"42", "Jane", "Doe", "jane@example.com", "555-0100", "9 Elm St", "Rome", "NY", "13440",
		"read", "42",
		"update", "42", "email", "jane.doe@example.com",
		"delete", "42", "yes",
		"read", "",
		"exit",
	}, "\n") + "\n"
	s, h, out := newTestShell(t, script)

	err := s.Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Customer created successfully.")
	assert.Contains(t, text, "42 | Jane Doe | jane@example.com")
	assert.Contains(t, text, "Customer updated successfully.")
	assert.Contains(t, text, "Customer deleted successfully.")
	assert.Contains(t, text, "No customers found.")

	var count int64
	require.NoError(t, h.DB.Model(&db.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateWritesNewValue(t *testing.T) {
	script := strings.Join([]string{
		"admin", "admin123",
		"update", "7", "city", "Utica",
		"exit",
	}, "\n") + "\n"
	s, h, out := newTestShell(t, script)
	require.NoError(t, h.DB.Create(&db.Customer{CustomerID: 7, FirstName: "John", LastName: "Smith"}).Error)

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Customer updated successfully.")

	var got db.Customer
	require.NoError(t, h.DB.First(&got, "customer_id = ?", 7).Error)
	assert.Equal(t, "Utica", got.City)
}

func TestRoleCannotRunUnlistedAction(t *testing.T) {
	// hr may only read; "create" is rejected until a valid action comes in.
	s, h, out := newTestShell(t, "hr\nhr123\ncreate\nexit\n")

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Invalid action. Please choose one of: exit, read")

	var count int64
	require.NoError(t, h.DB.Model(&db.Customer{}).Count(&count).Error)
	assert.Zero(t, count, "no customer row may appear")
}

func TestCustomerRoleSelfServiceRead(t *testing.T) {
	s, h, out := newTestShell(t, "customer\ncustomer123\nread\n42\nexit\n")
	require.NoError(t, h.DB.Create(&db.Customer{
		CustomerID: 42, FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", City: "Rome", State: "NY",
	}).Error)
	require.NoError(t, h.DB.Create(&db.Product{
		ProductID: 1, ProductName: "Trek 820 - 2016",
		BrandID: 1, CategoryID: 1, ModelYear: 2016,
		ListPrice: decimal.RequireFromString("379.99"),
	}).Error)
	placed := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.DB.Create(&db.Order{
		OrderID: 7, CustomerID: 42, StoreID: 1, StaffID: 1,
		OrderStatus: 4, OrderDate: &placed,
	}).Error)
	require.NoError(t, h.DB.Create(&db.OrderItem{
		OrderID: 7, ItemID: 1, ProductID: 1, Quantity: 2,
		ListPrice: decimal.RequireFromString("100"),
		Discount:  decimal.RequireFromString("0.1"),
	}).Error)

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Enter your customer ID:")
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Order 7 (status 4)")
	assert.Contains(t, text, "Placed: 2016-01-01")
	assert.Contains(t, text, "#1 Trek 820 - 2016 - qty 2, price 100, discount 0.1")
}

func TestCustomerRoleSelfServiceNoOrders(t *testing.T) {
	s, h, out := newTestShell(t, "customer\ncustomer123\nread\n42\nexit\n")
	require.NoError(t, h.DB.Create(&db.Customer{
		CustomerID: 42, FirstName: "Jane", LastName: "Doe",
	}).Error)

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "No orders found for this customer.")
}

func TestDeleteUnknownCustomer(t *testing.T) {
	s, _, out := newTestShell(t, "admin\nadmin123\ndelete\n999\nyes\nexit\n")

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "No customer found with that ID.")
}

func TestAllowedActions(t *testing.T) {
	role := conf.Role{Actions: []string{"read", "update", "read"}}
	assert.Equal(t, []string{"exit", "read", "update"}, allowedActions(role))
}
