package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/notify"
	"github.com/cebutourist/sugbo/internal/service"
	"github.com/cebutourist/sugbo/internal/session"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from the --data-dir flag, the
// SUGBO_DATA_DIR env var, or ~/.sugbo as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("SUGBO_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sugbo")
}

// openGateway connects to the configured backend. With no configuration it
// falls back to a SQLite database inside the data directory, which keeps a
// fresh checkout usable without a Postgres instance.
func openGateway() (*gateway.Gateway, error) {
	driver := viper.GetString("database.driver")
	dsn := viper.GetString("database.dsn")
	if driver == "" {
		driver = "sqlite"
	}
	if dsn == "" && driver == "sqlite" {
		dir := resolveDataDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "sugbo.db")
	}

	return gateway.Open(gateway.ConnectionConfig{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: config.ParseDuration(viper.GetString("database.conn_max_lifetime"), 0),
	})
}

// newLogger builds the process logger from the logging config.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch viper.GetString("logging.level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("logging.format") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newRegistry layers the file and environment configuration over the
// built-in defaults.
func newRegistry() *config.Registry {
	return config.FromViper(viper.GetViper())
}

// newSessionManager builds the operator session manager backed by the data
// directory. CLI commands that act on backend data restore their session
// through it.
func newSessionManager(gw *gateway.Gateway, bus *notify.Bus, logger *slog.Logger) *session.Manager {
	reg := newRegistry()
	store := session.NewFileStore(resolveDataDir())
	return session.NewManager(gw, store, bus, reg.Auth.SessionTimeout, logger)
}

// cliServices bundles everything a data-touching CLI command needs.
type cliServices struct {
	gw       *gateway.Gateway
	bus      *notify.Bus
	sessions *session.Manager
	dest     *service.Destinations
	deli     *service.Delicacies
	logger   *slog.Logger
}

// openCLIServices wires the gateway, session manager, and entity services
// for a one-shot CLI invocation. Callers must Close the returned bundle.
func openCLIServices() (*cliServices, error) {
	logger := newLogger()
	gw, err := openGateway()
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus()
	reg := newRegistry()
	aud := audit.NewLogger(gw, logger)

	return &cliServices{
		gw:       gw,
		bus:      bus,
		sessions: newSessionManager(gw, bus, logger),
		dest:     service.NewDestinations(gw, aud, bus, reg, logger),
		deli:     service.NewDelicacies(gw, aud, bus, reg, logger),
		logger:   logger,
	}, nil
}

func (c *cliServices) Close() {
	c.gw.Close()
}
