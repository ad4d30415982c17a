package shell

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// defaultReadPassword reads without echo when stdin is a real terminal and
// falls back to a plain line read when input is piped or scripted.
func (s *Shell) defaultReadPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(s.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
