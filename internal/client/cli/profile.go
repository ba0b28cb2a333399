package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/webfolio/webfolio/internal/client/models"
)

// Whoami prints the cached user record.
func (a *App) Whoami(ctx context.Context) error {
	user := a.ctrl.User()
	if user == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> (id %d)", user.Username, user.Email, user.ID))
	return nil
}

// ShowProfile fetches and prints the authenticated user's full profile.
func (a *App) ShowProfile(ctx context.Context) error {
	current := a.ctrl.User()
	if current == nil {
		printlnFn("Not logged in.")
		return nil
	}

	user, err := a.profiles.Get(ctx, current.Username)
	if err != nil {
		printlnFn("Failed to fetch profile:", err.Error())
		return err
	}

	printProfile(user.Username, user.Profile)
	return nil
}

// EditProfile interactively collects a partial profile edit and applies it.
// Empty answers leave the corresponding field unchanged.
func (a *App) EditProfile(ctx context.Context) error {
	current := a.ctrl.User()
	if current == nil {
		printlnFn("Not logged in.")
		return nil
	}

	name, err := getSimpleText(a.reader, "Display name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	available, err := getSimpleText(a.reader, "Available for work? (y/n, empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	profile := current.Profile
	if name != "" {
		profile.Name = name
	}
	if title != "" {
		profile.Title = title
	}
	if description != "" {
		profile.Description = description
	}
	switch strings.ToLower(available) {
	case "y", "yes":
		profile.IsAvailable = true
	case "n", "no":
		profile.IsAvailable = false
	}

	form := models.ProfileForm{Profile: &profile}
	user, err := a.profiles.Update(ctx, current.Username, form)
	if err != nil {
		printlnFn("Failed to update profile:", err.Error())
		return err
	}

	printlnFn("Profile updated.")
	printProfile(user.Username, user.Profile)
	return nil
}

// Public fetches the unauthenticated landing-page profile. An empty username
// falls back to the configured default.
func (a *App) Public(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username (empty for the default profile)", os.Stdout)
	if err != nil {
		return err
	}

	profile, err := a.profiles.Public(ctx, username)
	if err != nil {
		printlnFn("Failed to fetch public profile:", err.Error())
		return err
	}

	printProfile(profile.Username, profile.Profile)
	return nil
}

func printProfile(username string, p models.Profile) {
	printlnFn("Username:   ", username)
	printlnFn("Name:       ", p.Name)
	printlnFn("Title:      ", p.Title)
	printlnFn("Badge:      ", p.Badge)
	printlnFn("Available:  ", p.IsAvailable)
	if p.Description != "" {
		printlnFn("Description:", p.Description)
	}
	for network, link := range p.SocialLinks {
		printlnFn(fmt.Sprintf("  %s: %s", network, link))
	}
}
