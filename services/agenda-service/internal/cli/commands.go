package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/apptdesk/libs/grpcx"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/handlers"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

// dragDistancePx is reported for CLI drops; anything past the click threshold works.
const dragDistancePx = 100

const agendaPath = "/api/v1/agenda"

func newGridCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Show the visible slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showAgenda(cmd, http.MethodGet, agendaPath, nil)
		},
	}
}

func newReloadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload today's appointments from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showAgenda(cmd, http.MethodPost, agendaPath+"/reload", nil)
		},
	}
}

func newExpandCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Reveal more slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showAgenda(cmd, http.MethodPost, agendaPath+"/expand", nil)
		},
	}
}

func newCollapseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse",
		Short: "Go back to the base window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showAgenda(cmd, http.MethodPost, agendaPath+"/collapse", nil)
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <appointment-id> <HH:MM>",
		Short: "Stage moving an appointment to a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := bizclock.ParseWallTime(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return app.drop(cmd, args[0], slots.SlotID(w.String()))
		},
	}
}

func newSwapCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "swap <appointment-id> <other-appointment-id>",
		Short: "Stage swapping two appointments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.drop(cmd, args[0], args[1])
		},
	}
}

func (a *App) drop(cmd *cobra.Command, appointmentID, target string) error {
	if err := a.call(cmd, http.MethodPost, agendaPath+"/drag/start", map[string]string{"appointment_id": appointmentID}, nil); err != nil {
		return writeErr(cmd, err)
	}
	var out handlers.DragEndResponse
	err := a.call(cmd, http.MethodPost, agendaPath+"/drag/end", map[string]any{
		"appointment_id": appointmentID,
		"target":         target,
		"distance_px":    dragDistancePx,
	}, &out)
	if err != nil {
		return writeErr(cmd, err)
	}
	if a.JSON {
		return a.printJSON(cmd, out)
	}
	w := cmd.OutOrStdout()
	if out.Proposed == nil {
		fmt.Fprintf(w, "nothing to change (%s)\n", out.Reason)
		return nil
	}
	fmt.Fprint(w, renderTransition(*out.Proposed))
	fmt.Fprintln(w, "run `agendactl confirm` to apply or `agendactl cancel` to discard")
	return nil
}

func newPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show the staged change, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out handlers.PendingResponse
			if err := app.call(cmd, http.MethodGet, agendaPath+"/pending", nil, &out); err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return app.printJSON(cmd, out)
			}
			if out.Pending == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending change")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTransition(*out.Pending))
			return nil
		},
	}
}

func newConfirmCmd(app *App) *cobra.Command {
	var sendNotify bool
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Apply the staged change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out handlers.ConfirmResponse
			if err := app.call(cmd, http.MethodPost, agendaPath+"/pending/confirm", map[string]bool{"send_notify": sendNotify}, &out); err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return app.printJSON(cmd, out)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNotices(out.Notices))
			fmt.Fprint(cmd.OutOrStdout(), renderAgenda(out.Agenda))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sendNotify, "notify", false, "Message the customer about the new time")
	return cmd
}

func newCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the staged change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out handlers.AgendaResponse
			err := app.call(cmd, http.MethodPost, agendaPath+"/pending/cancel", nil, &out)
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending change")
				return nil
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return app.printJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pending change discarded")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the service over gRPC health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := grpcx.Dial(app.GRPC, grpcx.DialOptions{Timeout: 3 * time.Second})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer conn.Close()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := grpcx.CheckHealth(ctx, conn, service)
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app.GRPC, st)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "agenda-service", "Health service name")
	return cmd
}
