package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminAccount = "admin"

// designerRecord is one entry of the accounts file, keyed by lower-cased name.
type designerRecord struct {
	Name        string    `json:"name"`
	Password    string    `json:"password"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	LastLogin   time.Time `json:"last_login,omitempty"`
	TotalLogins int       `json:"total_logins,omitempty"`
}

type accountsFile struct {
	Designers map[string]designerRecord `json:"designers"`
}

// DesignerStats is the login bookkeeping shown by the whoami command.
type DesignerStats struct {
	Name        string
	CreatedAt   time.Time
	LastLogin   time.Time
	TotalLogins int
}

// Accounts stores designer credentials hashed with bcrypt in a JSON file.
// Names are matched case-insensitively.
type Accounts struct {
	mu      sync.RWMutex
	records map[string]designerRecord
	path    string
	admin   string
	cost    int
}

// NewAccounts loads path; a missing or empty file starts with no designers.
func NewAccounts(path string) (*Accounts, error) {
	a := &Accounts{
		records: make(map[string]designerRecord),
		path:    path,
		admin:   defaultAdminAccount,
		cost:    bcrypt.DefaultCost,
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return a, nil
	case err != nil:
		return nil, fmt.Errorf("read accounts file: %w", err)
	case len(data) == 0:
		return a, nil
	}
	var file accountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode accounts file: %w", err)
	}
	for key, rec := range file.Designers {
		if rec.Name == "" {
			rec.Name = key
		}
		a.records[accountKey(key)] = rec
	}
	return a, nil
}

func accountKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SetAdminAccount names the designer with administrator rights.
func (a *Accounts) SetAdminAccount(name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = defaultAdminAccount
	}
	a.mu.Lock()
	a.admin = trimmed
	a.mu.Unlock()
}

func (a *Accounts) IsAdmin(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return strings.EqualFold(strings.TrimSpace(name), a.admin)
}

func (a *Accounts) Exists(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.records[accountKey(name)]
	return ok
}

// Register creates a designer and persists the file.
func (a *Accounts) Register(name, password string) error {
	a.mu.RLock()
	cost := a.cost
	a.mu.RUnlock()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	key := accountKey(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.records[key]; ok {
		return fmt.Errorf("designer %s already exists", name)
	}
	a.records[key] = designerRecord{
		Name:      strings.TrimSpace(name),
		Password:  string(hashed),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.saveLocked(); err != nil {
		delete(a.records, key)
		return err
	}
	return nil
}

// Authenticate checks password and returns the stored spelling of the name.
func (a *Accounts) Authenticate(name, password string) (string, bool) {
	a.mu.RLock()
	rec, ok := a.records[accountKey(name)]
	a.mu.RUnlock()
	if !ok {
		return "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
		return "", false
	}
	return rec.Name, true
}

// RecordLogin bumps the login counters for name.
func (a *Accounts) RecordLogin(name string, when time.Time) error {
	key := accountKey(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.records[key]
	if !ok {
		return fmt.Errorf("designer %s not found", name)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = when.UTC()
	}
	rec.LastLogin = when.UTC()
	rec.TotalLogins++
	a.records[key] = rec
	return a.saveLocked()
}

func (a *Accounts) Stats(name string) (DesignerStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[accountKey(name)]
	if !ok {
		return DesignerStats{}, false
	}
	return DesignerStats{
		Name:        rec.Name,
		CreatedAt:   rec.CreatedAt,
		LastLogin:   rec.LastLogin,
		TotalLogins: rec.TotalLogins,
	}, true
}

func (a *Accounts) saveLocked() error {
	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "designers-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(accountsFile{Designers: a.records}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write accounts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp accounts file: %w", err)
	}
	if err := os.Rename(tmp.Name(), a.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace accounts file: %w", err)
	}
	return nil
}
