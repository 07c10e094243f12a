package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bite/internal/config"
	"bite/internal/history"
	"bite/internal/session"
	"bite/internal/system"
	"bite/internal/webui/server"
)

var (
	serveAddr        string
	serveOpenBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the debug web terminal attach point",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			system.Logger.Warn("could not load config, using defaults", "err", err)
		}

		hist, err := history.Open()
		if err != nil {
			system.Logger.Warn("could not open history store", "err", err)
		}
		if hist != nil {
			defer hist.Close()
		}
		var sink session.HistorySink
		if hist != nil {
			sink = hist
		}

		sess := session.New(24, 80, sink)
		sess.SetPipefail(cfg.Shell.Pipefail)

		srv := &server.Server{Addr: serveAddr, Session: sess}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		url := fmt.Sprintf("http://%s/", serveAddr)
		system.Logger.Info("starting webui", "url", url)
		if serveOpenBrowser {
			if err := server.OpenBrowser(url); err != nil {
				system.Logger.Warn("failed to open browser", "err", err)
			}
		}

		if err := srv.Start(ctx); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:4173", "address to serve the web attach point on")
	serveCmd.Flags().BoolVar(&serveOpenBrowser, "open", false, "open the attach point in a browser on start")
}
