package cli

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

func newCalendarCmd() *cobra.Command {
	var (
		files []string
		ics   bool
		out   string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List calendar events or export them as iCalendar",
		Long: `List the calendar events of one or more cases.  With --ics the events are
written as an iCalendar document, to --out when given or stdout otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var cases []*domainLifecycle.Case
			for _, f := range files {
				loaded, err := casefile.ReadAllFile(f)
				if err != nil {
					return err
				}
				cases = append(cases, loaded...)
			}
			svc, err := cc.Service()
			if err != nil {
				return err
			}
			req := &lifecycle.CalendarRequest{Cases: cases, Today: cc.Today}

			if !ics {
				events, err := svc.Calendar(cmd.Context(), req)
				if err != nil {
					return err
				}
				return PrintResult(cmd, calendarView(events))
			}

			data, err := svc.ExportICal(cmd.Context(), req)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeCalendarExport, "cannot write calendar").WithDetail(out)
			}
			PrintSuccess(cmd, "calendar written to "+out)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "case document, repeatable; multi-document YAML allowed [REQUIRED]")
	cmd.Flags().BoolVar(&ics, "ics", false, "export as iCalendar")
	cmd.Flags().StringVar(&out, "out", "", "write the iCalendar export to this path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type calendarView []domainLifecycle.CalendarEvent

func (v calendarView) MarshalJSON() ([]byte, error) {
	return json.Marshal([]domainLifecycle.CalendarEvent(v))
}

func (v calendarView) String() string {
	if len(v) == 0 {
		return "No calendar events\n"
	}
	return FormatTable(v.TableHeaders(), v.TableRows())
}

func (v calendarView) TableHeaders() []string {
	return []string{"DATE", "DAYS", "URGENCY", "EVENT"}
}

func (v calendarView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, e := range v {
		rows = append(rows, []string{e.Date, strconv.Itoa(e.DaysUntil), string(e.Urgency), e.Title})
	}
	return rows
}
