package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/ccdash/internal/api"
	"github.com/rileyhilliard/ccdash/internal/errors"
	"github.com/rileyhilliard/ccdash/internal/ui"
)

var transferToFlag string

// transferCmd pushes files to devices through the server
var transferCmd = &cobra.Command{
	Use:   "transfer <file>...",
	Short: "Send files to one or more devices",
	Long: `Upload files to the monitoring server for delivery to connected devices.

Without --to, pick recipients interactively (with a "Select all" entry) and
confirm before sending. --to is required when stdin is not a terminal.

Examples:
  ccdash transfer config.tar.gz
  ccdash transfer --to web-1,db-1 patch.sh notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := newCommandContext(globalOverrides())
		if err != nil {
			return err
		}

		opts := transferOptions{
			Files:      args,
			Recipients: ParseRecipients(transferToFlag),
			Progress:   progressWriter(),
		}
		if len(opts.Recipients) == 0 {
			if !ui.IsTerminal(os.Stdin) {
				return errors.New(errors.ErrTransfer,
					"No recipients given",
					"Pass --to device1,device2 when not running interactively")
			}
			opts.Pick = ui.PickRecipients
		}
		return transferCommand(cmd.Context(), cc.client, cmd.OutOrStdout(), opts)
	},
}

// transferClient is the part of the API client transfer needs.
type transferClient interface {
	Agents(ctx context.Context) ([]api.AgentSnapshot, error)
	Transfer(ctx context.Context, req api.TransferRequest) (*api.TransferResponse, error)
}

// recipientPicker chooses recipients from the connected agents.
type recipientPicker func(agents []string, fileCount int) ([]string, error)

type transferOptions struct {
	Files      []string
	Recipients []string
	// Pick is used when Recipients is empty.
	Pick     recipientPicker
	Progress io.Writer
}

func transferCommand(ctx context.Context, client transferClient, out io.Writer, opts transferOptions) error {
	if len(opts.Recipients) == 0 && opts.Pick != nil {
		agents, err := client.Agents(ctx)
		if err != nil {
			return err
		}
		ids := make([]string, len(agents))
		for i, a := range agents {
			ids[i] = a.AgentID
		}

		picked, err := opts.Pick(ids, len(opts.Files))
		if stderrors.Is(err, ui.ErrPickerCancelled) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		opts.Recipients = picked
	}

	req := api.TransferRequest{Files: opts.Files, Recipients: opts.Recipients}
	if err := req.Validate(); err != nil {
		return err
	}

	var resp *api.TransferResponse
	label := fmt.Sprintf("Sending %d file(s) to %d device(s)", len(req.Files), len(req.Recipients))
	err := spin(opts.Progress, label, func() error {
		var err error
		resp, err = client.Transfer(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Transfer accepted"
	}
	fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), msg)
	return nil
}
