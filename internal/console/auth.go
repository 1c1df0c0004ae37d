package console

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loginBanner = "+--------------------------------------+\r\n" +
		"|          MUDRA MAP BUILDER           |\r\n" +
		"|   lay out rooms, exits and doors     |\r\n" +
		"+--------------------------------------+"
	loginTagline = "Designer access only. New names are registered on first login."
)

const (
	maxNameAttempts     = 5
	maxPasswordAttempts = 3
	maxNameLength       = 24
	minPasswordLength   = 6
)

var (
	errLoginCancelled = errors.New("login cancelled")
	errAuthFailed     = errors.New("authentication failed")
)

// lineIO is the part of a Session the login dialogue needs.
type lineIO interface {
	ReadLine() (string, error)
	WriteString(msg string) error
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name cannot be empty")
	case strings.ContainsAny(name, " \t"):
		return fmt.Errorf("name cannot contain spaces")
	case len(name) > maxNameLength:
		return fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func say(conn lineIO, text string, attrs ...string) {
	_ = conn.WriteString(Ansi("\r\n" + Style(text, attrs...)))
}

func ask(conn lineIO, prompt string) (string, error) {
	_ = conn.WriteString(Ansi("\r\n" + prompt))
	line, err := conn.ReadLine()
	if err != nil {
		return "", err
	}
	return Trim(line), nil
}

// login runs the name/password dialogue and returns the designer's name as
// stored in the accounts file.
func login(conn lineIO, accounts *Accounts) (string, bool, error) {
	_ = conn.WriteString(Ansi("\r\n" + Style(loginBanner, AnsiCyan, AnsiBold) + "\r\n"))
	say(conn, loginTagline+"\r\n", AnsiGreen)

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name, err := ask(conn, "Designer name: ")
		if err != nil {
			return "", false, err
		}
		if err := validateName(name); err != nil {
			say(conn, err.Error(), AnsiYellow)
			continue
		}
		if accounts.Exists(name) {
			return checkPassword(conn, accounts, name)
		}
		return registerDesigner(conn, accounts, name)
	}
	say(conn, "Login cancelled.\r\n")
	return "", false, errLoginCancelled
}

func checkPassword(conn lineIO, accounts *Accounts, name string) (string, bool, error) {
	for tries := 0; tries < maxPasswordAttempts; tries++ {
		password, err := ask(conn, "Password: ")
		if err != nil {
			return "", false, err
		}
		if stored, ok := accounts.Authenticate(name, password); ok {
			say(conn, "Welcome back, "+stored+".", AnsiGreen)
			return stored, accounts.IsAdmin(stored), nil
		}
		say(conn, "Incorrect password.", AnsiYellow)
	}
	say(conn, "Too many failed attempts.\r\n")
	return "", false, errAuthFailed
}

func registerDesigner(conn lineIO, accounts *Accounts, name string) (string, bool, error) {
	for tries := 0; tries < maxPasswordAttempts; tries++ {
		password, err := ask(conn, "New designer. Choose a password: ")
		if err != nil {
			return "", false, err
		}
		if err := validatePassword(password); err != nil {
			say(conn, err.Error(), AnsiYellow)
			continue
		}
		if err := accounts.Register(name, password); err != nil {
			say(conn, err.Error(), AnsiYellow)
			return "", false, err
		}
		say(conn, "Designer account created. Welcome, "+name+".", AnsiGreen)
		return name, accounts.IsAdmin(name), nil
	}
	say(conn, "Login cancelled.\r\n")
	return "", false, errLoginCancelled
}
