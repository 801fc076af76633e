// Package cli implements agendactl, an operator client for the agenda HTTP API.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type App struct {
	Server  string
	Session string
	GRPC    string
	JSON    bool

	http *http.Client
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "agendactl",
		Short:        "Operate today's agenda from the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the grid for a named session
  agendactl --session desk-1 grid

  # Stage a move, then commit it and notify the customer
  agendactl --session desk-1 move appt-42 14:30
  agendactl --session desk-1 confirm --notify
`),
	}
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("AGENDA_SERVER", "http://localhost:8090"), "Agenda service base URL")
	cmd.PersistentFlags().StringVar(&app.Session, "session", envOr("AGENDA_SESSION", ""), "Session id (a new one is minted when empty)")
	cmd.PersistentFlags().StringVar(&app.GRPC, "grpc", envOr("AGENDA_GRPC", "localhost:9090"), "gRPC health address")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print raw JSON instead of the rendered grid")

	cmd.AddCommand(newGridCmd(app))
	cmd.AddCommand(newReloadCmd(app))
	cmd.AddCommand(newExpandCmd(app))
	cmd.AddCommand(newCollapseCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newSwapCmd(app))
	cmd.AddCommand(newPendingCmd(app))
	cmd.AddCommand(newConfirmCmd(app))
	cmd.AddCommand(newCancelCmd(app))
	cmd.AddCommand(newStatusCmd(app))

	return cmd
}

func (a *App) client() *http.Client {
	if a.http == nil {
		a.http = &http.Client{
			Timeout:   40 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return a.http
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
