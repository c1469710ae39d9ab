package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/storage"
	"github.com/sa-mud/samud/internal/telnet"
)

// maxLoginAttempts is the number of failed logins before the connection is
// closed.
const maxLoginAttempts = 3

const usernameRules = "Usernames are 1-24 characters with no spaces."

var welcomeBanner = `
` + telnet.Bold + telnet.BrightCyan + `  ============================================
       Welcome to the San Antonio MUD
  ============================================` + telnet.Reset + `

` + telnet.BrightYellow + `  Explore the Alamo, the River Walk, and more.` + telnet.Reset + `

  Type ` + telnet.Green + `login` + telnet.Reset + `  to sign in to your account.
  Type ` + telnet.Green + `signup` + telnet.Reset + ` to create a new account.
  Type ` + telnet.Green + `quit` + telnet.Reset + `   to disconnect.
`

func (h *Handler) writeBanner(conn *telnet.Conn) error {
	return conn.WritePrompt(welcomeBanner)
}

// authenticate drives the pre-login prompt flow until the client logs in,
// signs up, quits, or exhausts its login attempts.
//
// Postcondition: Returns the account username on success; ("", nil) when the
// client quit or was cut off; ("", err) on transport failure.
func (h *Handler) authenticate(ctx context.Context, conn *telnet.Conn) (string, error) {
	failures := 0

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return "", nil
		default:
		}

		if err := conn.WritePrompt(prompt); err != nil {
			return "", fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return "", nil // client went away
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue

		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return "", nil

		case "login":
			username, ok, err := h.promptLogin(ctx, conn)
			if err != nil {
				return "", err
			}
			if ok {
				return username, nil
			}
			failures++
			if failures >= maxLoginAttempts {
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Too many failed logins. Goodbye."))
				h.logger.Info("login attempts exhausted",
					zap.String("remote_addr", conn.RemoteAddr().String()),
				)
				return "", nil
			}

		case "signup", "register":
			username, ok, err := h.promptSignup(ctx, conn)
			if err != nil {
				return "", err
			}
			if ok {
				return username, nil
			}

		default:
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Type 'login', 'signup', or 'quit'."))
		}
	}
}

// promptLogin asks for credentials and authenticates them.
//
// Postcondition: Returns (username, true, nil) on success; (_, false, nil)
// when the failure was shown to the user; an error on transport failure.
func (h *Handler) promptLogin(ctx context.Context, conn *telnet.Conn) (string, bool, error) {
	username, err := h.promptUsername(conn, "Username: ")
	if err != nil {
		return "", false, err
	}
	if username == "" {
		return "", false, nil
	}

	if err := conn.WritePrompt("Password: "); err != nil {
		return "", false, err
	}
	password, err := conn.ReadPassword()
	if err != nil {
		return "", false, fmt.Errorf("reading password: %w", err)
	}

	acct, err := h.store.Authenticate(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountNotFound):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "No account with that name. Use 'signup' to create one."))
		case errors.Is(err, storage.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
		default:
			h.logger.Error("authentication error", zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		}
		return "", false, nil
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, %s!", acct.Username))
	return acct.Username, true, nil
}

// promptSignup asks for a new username and password and creates the account.
func (h *Handler) promptSignup(ctx context.Context, conn *telnet.Conn) (string, bool, error) {
	username, err := h.promptUsername(conn, "Choose a username: ")
	if err != nil {
		return "", false, err
	}
	if username == "" {
		return "", false, nil
	}

	if err := conn.WritePrompt("Choose a password: "); err != nil {
		return "", false, err
	}
	password, err := conn.ReadPassword()
	if err != nil {
		return "", false, fmt.Errorf("reading password: %w", err)
	}
	if password == "" {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Password must not be empty."))
		return "", false, nil
	}

	acct, err := h.store.Create(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That username is already taken."))
			return "", false, nil
		}
		h.logger.Error("account creation error", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return "", false, nil
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Account created. Welcome, %s!", acct.Username))
	return acct.Username, true, nil
}

// promptUsername reads and validates a username. An empty return with nil
// error means validation failed and was reported.
func (h *Handler) promptUsername(conn *telnet.Conn, promptText string) (string, error) {
	if err := conn.WritePrompt(promptText); err != nil {
		return "", err
	}
	line, err := conn.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading username: %w", err)
	}

	username := strings.TrimSpace(line)
	if !ValidUsername(username) {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, usernameRules))
		return "", nil
	}
	return username, nil
}

// ValidUsername reports whether name is 1-24 characters with no whitespace.
func ValidUsername(name string) bool {
	if len(name) < 1 || len(name) > 24 {
		return false
	}
	return !strings.ContainsAny(name, " \t")
}
