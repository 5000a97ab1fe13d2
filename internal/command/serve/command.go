package serve

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/command/common"
	"github.com/ftwtie/pdfmerger/internal/config"
	"github.com/ftwtie/pdfmerger/internal/limiter"
	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
	"github.com/ftwtie/pdfmerger/internal/statuscheck"
	"github.com/ftwtie/pdfmerger/internal/web"
)

const flagAddress = "address"

// stale scratch dirs older than this are swept at startup
const tempMaxAge = time.Hour

func Command() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the merge and split site on this machine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagAddress,
				Aliases: []string{"a"},
				Usage:   "listen address (default HTTP_ADDRESS)",
			},
		},
		Action: func(cCtx *cli.Context) error {
			cfg := common.Config(cCtx)
			if addr := cCtx.String(flagAddress); addr != "" {
				cfg.HTTP.Address = addr
			}
			ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Run(ctx, cfg)
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config) error {
	if n := pdfdoc.CleanupTemps(os.TempDir(), tempMaxAge); n > 0 {
		log.Info().Int("removed", n).Msg("removed stale scratch directories")
	}

	rt, err := common.NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	checkOpts := statuscheck.Options{Codec: rt.Codec}
	if rt.Stream != nil {
		checkOpts.Redis = rt.Stream
	}
	site, err := web.New(web.Options{
		Assembler: rt.Assembler,
		Gate:      limiter.New(limiter.Options{}),
		Checker:   statuscheck.New(checkOpts),
		Site:      cfg.Site,
		MaxUpload: cfg.HTTP.MaxUploadBytes(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		return errors.Wrapf(err, "could not listen on '%s'", cfg.HTTP.Address)
	}
	srv := &http.Server{
		Handler:      site.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("address", ln.Addr().String()).Msg("HTTP server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return errors.Wrap(err, "http server error")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info().Msg("shutdown complete")
	return nil
}
