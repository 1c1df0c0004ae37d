package console

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// scriptedIO feeds canned input lines and records everything written.
type scriptedIO struct {
	lines []string
	out   strings.Builder
}

func (s *scriptedIO) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedIO) WriteString(msg string) error {
	s.out.WriteString(msg)
	return nil
}

func newTestAccounts(t *testing.T) *Accounts {
	t.Helper()
	accounts, err := NewAccounts(filepath.Join(t.TempDir(), "data", "designers.json"))
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	accounts.cost = bcrypt.MinCost
	return accounts
}

func TestAccountsPersistCaseInsensitively(t *testing.T) {
	accounts := newTestAccounts(t)
	if err := accounts.Register("Mira", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := accounts.Register("mira", "other12"); err == nil {
		t.Fatalf("names should be unique regardless of case")
	}
	if err := accounts.RecordLogin("MIRA", time.Now()); err != nil {
		t.Fatalf("record login: %v", err)
	}

	reloaded, err := NewAccounts(accounts.path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	name, ok := reloaded.Authenticate("mIRA", "secret1")
	if !ok || name != "Mira" {
		t.Fatalf("authenticate after reload: %q %v", name, ok)
	}
	if _, ok := reloaded.Authenticate("mira", "wrong"); ok {
		t.Fatalf("wrong password accepted")
	}
	stats, ok := reloaded.Stats("mira")
	if !ok || stats.TotalLogins != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAccountsAdmin(t *testing.T) {
	accounts := newTestAccounts(t)
	if !accounts.IsAdmin("Admin") {
		t.Fatalf("default admin should be 'admin'")
	}
	accounts.SetAdminAccount("mira")
	if accounts.IsAdmin("admin") || !accounts.IsAdmin("MIRA") {
		t.Fatalf("admin override not applied")
	}
}

func TestLoginRegistersNewDesigner(t *testing.T) {
	accounts := newTestAccounts(t)
	conn := &scriptedIO{lines: []string{"bad name", "mira", "123", "secret1"}}
	name, admin, err := login(conn, accounts)
	if err != nil || name != "mira" || admin {
		t.Fatalf("unexpected login result %q %v %v", name, admin, err)
	}
	out := conn.out.String()
	if !strings.Contains(out, "cannot contain spaces") || !strings.Contains(out, "at least 6") {
		t.Fatalf("validation messages missing: %q", out)
	}
	if !accounts.Exists("MIRA") {
		t.Fatalf("designer should be registered")
	}
}

func TestLoginRejectsAfterThreeBadPasswords(t *testing.T) {
	accounts := newTestAccounts(t)
	if err := accounts.Register("mira", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	conn := &scriptedIO{lines: []string{"mira", "a", "b", "c", "secret1"}}
	if _, _, err := login(conn, accounts); !errors.Is(err, errAuthFailed) {
		t.Fatalf("expected auth failure, got %v", err)
	}

	conn = &scriptedIO{lines: []string{"Mira", "secret1"}}
	name, _, err := login(conn, accounts)
	if err != nil || name != "mira" {
		t.Fatalf("login should return the stored name, got %q %v", name, err)
	}
}
