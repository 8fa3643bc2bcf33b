package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"agentd/internal/config"
	"agentd/internal/errs"
	"agentd/internal/httpapi"
	"agentd/pkg/agentd"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API",
		Example: "  agentd serve\n  agentd serve --addr :9090 --log-level info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.setup(cmd, func(cfg *config.Config) {
				// request lines are logged at info
				if cfg.Log.Level == config.Default().Log.Level {
					cfg.Log.Level = "info"
				}
			})
			if err != nil {
				return err
			}
			listen := c.Config().Server.Addr
			if cmd.Flags().Changed("addr") || listen == "" {
				listen = addr
			}
			return serve(cmd.Context(), o, c, listen)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address (overrides server.addr)")
	return cmd
}

// serve runs the HTTP API on addr until ctx is done, then shuts down.
func serve(ctx context.Context, o *options, c *agentd.Client, addr string) error {
	sc := c.Config().Server
	httpapi.SetLogger(o.log.With().Str("component", "http").Logger())
	httpapi.SetBaseContext(ctx)
	api := httpapi.NewServer(c, httpapi.Options{
		SessionTTL:    sc.SessionTTL.Std(),
		CORSOrigins:   sc.CORSOrigins,
		Swagger:       sc.Swagger,
		MaxBodyBytes:  sc.MaxBodyBytes,
		MaxConcurrent: sc.MaxConcurrent,
		QueueWait:     sc.QueueWait.Std(),
	})
	defer api.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errs.IO(err, "listen on %s", addr)
	}
	srv := &http.Server{Handler: api, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	o.log.Info().Str("addr", ln.Addr().String()).Str("models_dir", c.Paths().ModelsDir()).Msg("agentd listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		o.log.Error().Err(err).Msg("graceful shutdown")
		return err
	}
	return nil
}
