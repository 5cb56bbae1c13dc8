package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/notify"
	"github.com/cebutourist/sugbo/internal/probe"
	"github.com/cebutourist/sugbo/internal/server"
	"github.com/cebutourist/sugbo/internal/service"
)

const banner = `
 ___ _   _  __ _ | |__   ___
/ __| | | |/ _' || '_ \ / _ \
\__ \ |_| | (_| || |_) | (_) |
|___/\__,_|\__, ||_.__/ \___/
           |___/
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API server",
		Long:  "Start the HTTP server that exposes the tourism admin API over the configured backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logger := newLogger()
	if dev {
		viper.Set("logging.level", "debug")
		logger = newLogger()
	}

	gw, err := openGateway()
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}
	logger.Info("backend connected", "driver", gw.Dialect().Name())

	reg := newRegistry()
	bus := notify.NewBus()
	aud := audit.NewLogger(gw, logger)

	jwtSecret := reg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "sugbo-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using insecure development secret")
	}
	tokens := auth.NewTokenService(jwtSecret)

	svcs := server.Services{
		Destinations: service.NewDestinations(gw, aud, bus, reg, logger),
		Delicacies:   service.NewDelicacies(gw, aud, bus, reg, logger),
		Users:        service.NewUsers(gw, aud, bus, reg, logger),
		Admins:       service.NewAdmins(gw, aud, bus, reg, logger),
	}

	// Informational only: a missing table never blocks startup, the probe
	// result just tells the operator to run `sugbo db init`.
	report := probe.Check(context.Background(), gw)
	switch report.Status {
	case probe.StatusNeedsSetup:
		logger.Warn("backend needs setup, run: sugbo db init", "missing_tables", report.MissingTables)
	case probe.StatusUnreachable:
		logger.Warn("backend unreachable", "error", report.Err)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	if origins := viper.GetStringSlice("server.cors_origins"); len(origins) > 0 && !dev {
		srvCfg.CORSOrigins = origins
	}
	srvCfg.ShutdownTimeout = config.ParseDuration(viper.GetString("server.shutdown_timeout"), srvCfg.ShutdownTimeout)

	srv := server.New(srvCfg, gw, reg, tokens, aud, svcs, logger)

	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Health:  http://%s:%d/healthz\n", host, port)
	fmt.Printf("→ Ready:   http://%s:%d/readyz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}
