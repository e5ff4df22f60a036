package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/vrsandeep/mango-catalog/internal/assets"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/db"
	"github.com/vrsandeep/mango-catalog/internal/jobs"
	"github.com/vrsandeep/mango-catalog/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config     *config.Config
	db         *sql.DB
	jobManager *jobs.JobManager
	wsHub      *websocket.Hub
	Version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(version string) (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := OpenDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	log.Println("Core application setup complete.")
	return NewWithDeps(cfg, database, version), nil
}

// OpenDatabase opens the catalog database and brings its schema up to date.
func OpenDatabase(path string) (*sql.DB, error) {
	database, err := db.InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return database, nil
}

// NewWithDeps builds an App from already initialized parts.
func NewWithDeps(cfg *config.Config, database *sql.DB, version string) *App {
	hub := websocket.NewHub()
	go hub.Run()

	app := &App{
		config:  cfg,
		db:      database,
		wsHub:   hub,
		Version: version,
	}
	app.jobManager = jobs.NewManager(app)
	return app
}

func (a *App) Config() *config.Config       { return a.config }
func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.wsHub != nil {
		a.wsHub.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}
