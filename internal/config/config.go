// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
)

// Config is the whole application configuration, kept in a single JSON file
// and created with sensible defaults on first run.
type Config struct {
	AutoLoad bool            `json:"auto_load"` // run the pipeline once at startup
	LogLevel string          `json:"log_level"`
	Database Database        `json:"database"`
	CSV      CSV             `json:"csv"`
	Roles    map[string]Role `json:"roles"` // role name -> credentials + allow-list
}

type Database struct {
	Driver string `json:"driver"` // postgres | mysql | sqlite
	DSN    string `json:"dsn"`    // for sqlite this is the database file path
}

// CSV locates the snapshot files. Files overrides the built-in layout per
// logical table; Encoding is an IANA charset label (utf-8, windows-1252, ...).
type CSV struct {
	Dir      string            `json:"dir"`
	Encoding string            `json:"encoding"`
	Files    map[string]string `json:"files,omitempty"`
}

// Role carries everything the shell needs to gate a session: a bcrypt
// credential hash, the permitted actions, and the human-readable data
// access notes printed after login.
type Role struct {
	PasswordHash string   `json:"password_hash"`
	Actions      []string `json:"actions"`
	DataAccess   []string `json:"data_access,omitempty"`
}

// VerifyPassword checks a cleartext password against the stored bcrypt hash.
func (r Role) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil
}

// Allowed reports whether the role may perform the named action.
func (r Role) Allowed(action string) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func LoadOrCreate(path string) (*Config, bool, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg, err := Default()
			if err != nil {
				return nil, false, fmt.Errorf("building default config: %w", err)
			}
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("writing default config: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Roles == nil {
		cfg.Roles = map[string]Role{}
	}
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

type roleDefaults struct {
	password   string
	actions    []string
	dataAccess []string
}

var defaultRoles = map[string]roleDefaults{
	"admin": {
		password: "admin123",
		actions:  []string{"load_data", "create", "read", "update", "delete"},
		dataAccess: []string{
			"All tables",
		},
	},
	"customer": {
		password: "customer123",
		actions:  []string{"read"},
		dataAccess: []string{
			"Customers - own profile",
			"Orders - own orders",
			"Order items - items from own orders",
		},
	},
	"warehouse": {
		password: "warehouse123",
		actions:  []string{"read", "update"},
		dataAccess: []string{
			"Orders",
			"Stocks",
			"Products",
			"Brands",
			"Categories",
		},
	},
	"analytics": {
		password: "analytics123",
		actions:  []string{"read"},
		dataAccess: []string{
			"Orders",
			"Order items",
			"Customers",
			"Brands",
			"Products",
			"Categories",
		},
	},
	"store": {
		password: "store123",
		actions:  []string{"read"},
		dataAccess: []string{
			"Orders - for the store",
			"Customers",
			"Stocks - for the store",
			"Staffs - for the store",
		},
	},
	"hr": {
		password: "hr123",
		actions:  []string{"read"},
		dataAccess: []string{
			"Staffs",
			"Stores",
		},
	},
}

// Default returns the first-run configuration. The bundled role passwords
// are the well-known demo ones; replace the hashes before any real use.
func Default() (*Config, error) {
	roles := make(map[string]Role, len(defaultRoles))
	for name, d := range defaultRoles {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		roles[name] = Role{
			PasswordHash: string(hash),
			Actions:      d.actions,
			DataAccess:   d.dataAccess,
		}
	}
	return &Config{
		AutoLoad: false,
		LogLevel: "info",
		Database: Database{Driver: "sqlite", DSN: "bikestore.db"},
		CSV:      CSV{Dir: ".", Encoding: "utf-8"},
		Roles:    roles,
	}, nil
}
