// Package cli is the interactive front end of the quiz client. It wires
// the credential store, the API client, and the services together and
// drives them from a small REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/api"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/config"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/repositories/credentials"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/routes"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/services"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/session"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	client   *api.HTTPClient
	session  *session.Manager
	login    *services.LoginService
	profiles *services.ProfileService
	reader   *bufio.Reader

	// route is where the UI would land right now; shown in the prompt.
	route string
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := credentials.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing credentials database: %s", err.Error())
		return nil, err
	}

	logger := logging.Default()
	sess := session.NewManager(db)

	app := &App{
		config:  c,
		db:      db,
		session: sess,
		reader:  bufio.NewReader(os.Stdin),
		route:   routes.Login,
	}

	app.client = api.NewHTTPClient(c.BaseURL, c.RequestTimeout, sess, logger, app.onSessionExpired)
	app.profiles = services.NewProfileService(app.client, sess)
	app.login = services.NewLoginService(app.client, sess, app.profiles, logger)

	// Deep-link re-entry: a still-live persisted session lands on the same
	// route a fresh login for that role would.
	if sess.IsAuthenticated(ctx) {
		if u := sess.CurrentUser(ctx); u != nil {
			app.route = routes.DestinationFor(u.Role)
		}
	}

	return app, nil
}

// onSessionExpired runs after a terminal refresh failure, once the
// credential store has already been wiped.
func (a *App) onSessionExpired() {
	a.route = routes.Login
	a.profiles.Forget()
	log.Printf("Session expired, please log in again")
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) Close() {
	_ = a.client.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated(context.Background())
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.route
	}
	return "guest"
}
