package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Sessions re-fetches and prints the list of device sessions.
func (a *App) Sessions(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}

	a.ctrl.RefreshSessions(ctx)
	sessions := a.ctrl.Sessions()
	if len(sessions) == 0 {
		printlnFn("No sessions.")
		return nil
	}

	for _, s := range sessions {
		status := "inactive"
		if s.IsActive {
			status = "active"
		}
		printlnFn(fmt.Sprintf("%d  %s  %s  %s  %s  last seen %s",
			s.ID, status, s.DeviceType, s.IPAddress, s.Location,
			s.LastActivity.Format("2006-01-02 15:04")))
	}
	return nil
}

// Revoke prompts for a session ID and revokes that session.
func (a *App) Revoke(ctx context.Context) error {
	text, err := getSimpleText(a.reader, "Enter session ID", os.Stdout)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		printlnFn("Invalid session ID:", text)
		return err
	}

	if err := a.ctrl.DeleteSession(ctx, id); err != nil {
		printlnFn("Failed to revoke session:", err.Error())
		return err
	}
	printlnFn("Session revoked.")
	return nil
}

// RevokeOthers revokes every session except the current one.
func (a *App) RevokeOthers(ctx context.Context) error {
	if err := a.ctrl.DeleteAllOtherSessions(ctx); err != nil {
		printlnFn("Failed to revoke sessions:", err.Error())
		return err
	}
	printlnFn("All other sessions revoked.")
	return nil
}
