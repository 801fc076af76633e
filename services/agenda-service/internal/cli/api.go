package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/handlers"
)

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agenda api: status %d", e.Status)
	}
	return fmt.Sprintf("agenda api: %s (status %d)", e.Message, e.Status)
}

// call sends one request with the session header and decodes the JSON reply into out.
// A session minted by the server is remembered for the rest of the command and reported on
// stderr so the operator can reuse it.
func (a *App) call(cmd *cobra.Command, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.Server, "/")+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Session != "" {
		req.Header.Set(handlers.SessionHeader, a.Session)
	}
	resp, err := a.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(handlers.SessionHeader); sid != "" && a.Session == "" {
		a.Session = sid
		fmt.Fprintf(cmd.ErrOrStderr(), "session: %s (export AGENDA_SESSION=%s to reuse it)\n", sid, sid)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *App) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) showAgenda(cmd *cobra.Command, method, path string, in any) error {
	var out handlers.AgendaResponse
	if err := a.call(cmd, method, path, in, &out); err != nil {
		return writeErr(cmd, err)
	}
	if a.JSON {
		return a.printJSON(cmd, out)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderAgenda(out))
	return nil
}
