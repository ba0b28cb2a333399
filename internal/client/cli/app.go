package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/webfolio/webfolio/internal/client/config"
	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/services"
)

// sessionController is the slice of the session controller the CLI uses.
// The real *session.Controller satisfies it; tests provide a stub.
type sessionController interface {
	Start(ctx context.Context) error
	Close()
	User() *models.User
	Authenticated() bool
	Sessions() []models.Session
	RefreshSessions(ctx context.Context)
	Login(ctx context.Context, identifier, password string) error
	Register(ctx context.Context, payload services.RegisterPayload) error
	Logout(ctx context.Context) error
	DeleteSession(ctx context.Context, id int64) error
	DeleteAllOtherSessions(ctx context.Context) error
}

type App struct {
	config   *config.Config
	ctrl     sessionController
	profiles services.ProfileService
	reader   *bufio.Reader
}

func NewApp(c *config.Config, ctrl sessionController, profiles services.ProfileService) *App {
	return &App{config: c, ctrl: ctrl, profiles: profiles, reader: bufio.NewReader(os.Stdin)}
}

// Run starts the session controller and enters the interactive loop. The
// controller is torn down when the loop exits.
func (a *App) Run(ctx context.Context) error {
	if err := a.ctrl.Start(ctx); err != nil {
		return err
	}
	defer a.ctrl.Close()

	printlnFn("Welcome to the webfolio CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.Authenticated()
}

func (a *App) getStatus() string {
	if user := a.ctrl.User(); user != nil {
		return "(" + user.Username + ")"
	}
	return ""
}
