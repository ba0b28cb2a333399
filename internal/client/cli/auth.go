package cli

import (
	"context"
	"errors"
	"os"

	"github.com/webfolio/webfolio/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and attempts to create a new account
// via the session controller. When the account is created but could not be
// logged in automatically, the user is told to log in manually.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	payload := services.RegisterPayload{
		Username: username,
		Email:    email,
		Password: string(password),
	}

	if err := a.ctrl.Register(ctx, payload); err != nil {
		if errors.Is(err, services.ErrManualLoginRequired) {
			printlnFn("Account created. Please log in.")
			return nil
		}
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and tries to authenticate via the session
// controller. On failure the error is reported and state stays anonymous.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.ctrl.Login(ctx, identifier, string(password)); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Success!")
	return nil
}

// Logout ends the session. Local state is cleared even when the server-side
// revocation fails.
func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		printlnFn("Logout completed with a warning:", err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}
