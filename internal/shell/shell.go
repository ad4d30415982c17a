// Package shell implements the interactive role-gated tool: login against
// the configured role table, then a command loop whose actions are limited
// to the role's allow-list. Roles, permissions and credentials all come
// from config; nothing here is hardcoded.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	conf "github.com/soeborg/bikestore-etl/internal/config"
	"github.com/soeborg/bikestore-etl/internal/pipeline"
)

const maxLoginAttempts = 3

// ErrLoginFailed is returned when every login attempt was rejected.
var ErrLoginFailed = errors.New("too many failed login attempts")

var actionDescriptions = map[string]string{
	"load_data": "Run the full ETL pipeline (extract, transform, load).",
	"create":    "Create a new customer record.",
	"read":      "Read customer records.",
	"update":    "Update a customer record.",
	"delete":    "Delete a customer record.",
	"exit":      "Exit the program.",
}

type Shell struct {
	log  zerolog.Logger
	cfg  *conf.Config
	db   *gorm.DB
	pipe *pipeline.Pipeline

	in  *bufio.Reader
	out io.Writer

	// readPassword is swappable so tests can script the login. The default
	// hides input when stdin is a real terminal.
	readPassword func() (string, error)
}

func New(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB, pipe *pipeline.Pipeline, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		log:  log,
		cfg:  cfg,
		db:   gdb,
		pipe: pipe,
		in:   bufio.NewReader(in),
		out:  out,
	}
	s.readPassword = s.defaultReadPassword
	return s
}

// Run drives login and the action loop until exit, an input error, or
// context cancellation.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to the ETL and customer management tool.")

	roleName, role, err := s.login()
	if err != nil {
		return err
	}
	s.log.Info().Str("role", roleName).Msg("login ok")

	allowed := allowedActions(role)
	fmt.Fprintf(s.out, "Logged in as %q. Available actions: %s.\n", roleName, strings.Join(allowed, ", "))
	if len(role.DataAccess) > 0 {
		fmt.Fprintln(s.out, "Data access granted to:")
		for _, item := range role.DataAccess {
			fmt.Fprintf(s.out, " - %s\n", item)
		}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		action, err := s.promptAction(role, allowed)
		if err != nil {
			return err
		}
		switch action {
		case "exit":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		case "load_data":
			s.handleLoadData(ctx)
		case "create":
			s.handleCreateCustomer(ctx)
		case "read":
			s.handleReadCustomer(ctx, roleName)
		case "update":
			s.handleUpdateCustomer(ctx)
		case "delete":
			s.handleDeleteCustomer(ctx)
		}
	}
}

func (s *Shell) login() (string, conf.Role, error) {
	names := make([]string, 0, len(s.cfg.Roles))
	for name := range s.cfg.Roles {
		names = append(names, name)
	}
	sort.Strings(names)

	for attempts := maxLoginAttempts; attempts > 0; attempts-- {
		roleName, err := s.prompt(fmt.Sprintf("Enter your role (%s): ", strings.Join(names, ", ")))
		if err != nil {
			return "", conf.Role{}, err
		}
		roleName = strings.ToLower(roleName)

		fmt.Fprint(s.out, "Enter password: ")
		password, err := s.readPassword()
		if err != nil {
			return "", conf.Role{}, err
		}

		role, ok := s.cfg.Roles[roleName]
		if ok && role.VerifyPassword(password) {
			return roleName, role, nil
		}
		s.log.Warn().Str("role", roleName).Msg("rejected login")
		if attempts > 1 {
			fmt.Fprintf(s.out, "Invalid credentials. Attempts remaining: %d\n", attempts-1)
		}
	}
	return "", conf.Role{}, ErrLoginFailed
}

func (s *Shell) promptAction(role conf.Role, allowed []string) (string, error) {
	fmt.Fprintln(s.out, "\nWhat would you like to do?")
	for _, name := range allowed {
		fmt.Fprintf(s.out, " - %s: %s\n", name, actionDescriptions[name])
	}
	for {
		action, err := s.prompt("Select an action: ")
		if err != nil {
			return "", err
		}
		action = strings.ToLower(action)
		if action == "exit" || role.Allowed(action) {
			return action, nil
		}
		fmt.Fprintf(s.out, "Invalid action. Please choose one of: %s\n", strings.Join(allowed, ", "))
	}
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// allowedActions is the role's allow-list plus the always-available exit,
// sorted for stable prompts.
func allowedActions(role conf.Role) []string {
	out := make([]string, 0, len(role.Actions)+1)
	seen := map[string]bool{}
	for _, a := range role.Actions {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	if !seen["exit"] {
		out = append(out, "exit")
	}
	sort.Strings(out)
	return out
}
