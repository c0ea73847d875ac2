package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage RFI and RFE entries of a case",
	}
	cmd.AddCommand(newRequestAddCmd())
	return cmd
}

func newRequestAddCmd() *cobra.Command {
	var (
		file     string
		received string
		due      string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:       "add rfi|rfe",
		Short:     "Record a newly received RFI or RFE",
		Long:      "Record a newly received RFI or RFE and save the case file.  Fails while an entry of the same kind is still awaiting a response.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domainLifecycle.RequestRFI), string(domainLifecycle.RequestRFE)},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			kind := domainLifecycle.RequestKind(strings.ToLower(args[0]))
			entry, err := svc.AddRequestEntry(cmd.Context(), &lifecycle.AddRequestEntryRequest{
				Case:            kase,
				Kind:            kind,
				ReceivedDate:    received,
				ResponseDueDate: due,
			})
			if err != nil {
				return err
			}

			if !dryRun {
				if err := casefile.WriteFile(file, kase); err != nil {
					return err
				}
			}
			msg := fmt.Sprintf("%s %s added, response due %s", kind.Label(), entry.ID, entry.ResponseDueDate)
			if dryRun {
				msg += " (dry run, case file unchanged)"
			}
			PrintSuccess(cmd, msg)
			return nil
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().StringVar(&received, "received", "", "date the request was received, YYYY-MM-DD [REQUIRED]")
	cmd.Flags().StringVar(&due, "due", "", "response due date, YYYY-MM-DD [REQUIRED]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print without saving the case file")
	_ = cmd.MarkFlagRequired("received")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}
