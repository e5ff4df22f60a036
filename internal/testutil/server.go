// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/vrsandeep/mango-catalog/internal/api"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/core"
	"github.com/vrsandeep/mango-catalog/internal/library"
)

// SetupTestApp builds a core.App backed by an in-memory database and an
// empty temporary library, with the library jobs registered.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	cfg := config.Default()
	cfg.Library.Path = t.TempDir()
	cfg.Scan.Workers = 2

	app := core.NewWithDeps(cfg, SetupTestDB(t), "test")
	library.RegisterJobs(app.JobManager())
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *core.App, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	return api.NewServer(app), app, app.DB()
}
