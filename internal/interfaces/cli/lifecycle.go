package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/perm-tracker/internal/application/lifecycle"
	domainLifecycle "github.com/turtacn/perm-tracker/internal/domain/lifecycle"
	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ErrInvalidCase is returned by validate when the case has errors, so the
// process exits non-zero after the findings are printed.
var ErrInvalidCase = errors.New(errors.ErrCodeValidation, "case has validation errors")

func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", "case document (YAML or JSON) [REQUIRED]")
	_ = cmd.MarkFlagRequired("file")
}

// loadCase reads the case at path and returns it with the CLI context.
func loadCase(cmd *cobra.Command, path string) (*CLIContext, lifecycle.EvaluationService, *domainLifecycle.Case, error) {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	kase, err := casefile.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := cc.Service()
	if err != nil {
		return nil, nil, nil, err
	}
	return cc, svc, kase, nil
}

func newEvaluateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Full evaluation: windows, readiness, next action, deadlines and validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			ev, err := svc.Evaluate(cmd.Context(), &lifecycle.CaseRequest{Case: kase, Today: cc.Today})
			if err != nil {
				return err
			}
			return PrintResult(cmd, evaluationView{ev})
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a case for structural and regulatory errors",
		Long:  "Check a case for structural and regulatory errors.  Exits non-zero when any error is found; warnings alone do not fail.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			res, err := svc.Validate(cmd.Context(), &lifecycle.CaseRequest{Case: kase, Today: cc.Today})
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, validationView{res}); err != nil {
				return err
			}
			if !res.Valid {
				return ErrInvalidCase
			}
			return nil
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func newActionCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Show the single next required action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			ev, err := svc.Evaluate(cmd.Context(), &lifecycle.CaseRequest{Case: kase, Today: cc.Today})
			if err != nil {
				return err
			}
			return PrintResult(cmd, actionView{ev.NextAction})
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func newDeadlinesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List outstanding deadlines, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			report, err := svc.Deadlines(cmd.Context(), &lifecycle.CaseRequest{Case: kase, Today: cc.Today})
			if err != nil {
				return err
			}
			return PrintResult(cmd, deadlinesView{report})
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func newWindowsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Show the recruitment and ETA 9089 filing windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, svc, kase, err := loadCase(cmd, file)
			if err != nil {
				return err
			}
			ev, err := svc.Evaluate(cmd.Context(), &lifecycle.CaseRequest{Case: kase, Today: cc.Today})
			if err != nil {
				return err
			}
			return PrintResult(cmd, windowsView{
				Recruitment: ev.RecruitmentWindow,
				Filing:      ev.FilingWindow,
				Readiness:   ev.Readiness,
			})
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func days(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func describeAction(a *domainLifecycle.NextAction) string {
	if a == nil {
		return "No action required"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", a.Action, a.Urgency)
	if a.DueDate != "" {
		fmt.Fprintf(&sb, " due %s", a.DueDate)
	}
	if a.DaysUntil != nil {
		fmt.Fprintf(&sb, " (%d days)", *a.DaysUntil)
	}
	return sb.String()
}

func describeRecruitment(w domainLifecycle.RecruitmentWindow) string {
	s := string(w.Status)
	if w.StartDate != "" {
		s += fmt.Sprintf("  %s to %s", w.StartDate, w.EndDate)
	}
	if w.DaysRemaining != nil {
		s += fmt.Sprintf(" (%d days remaining)", *w.DaysRemaining)
	}
	return s
}

func describeFiling(w domainLifecycle.FilingWindow) string {
	s := string(w.Status)
	if w.OpensDate != "" {
		s += fmt.Sprintf("  opens %s, closes %s", w.OpensDate, orDash(w.ClosesDate))
	}
	switch {
	case w.DaysUntilOpen != nil:
		s += fmt.Sprintf(" (opens in %d days)", *w.DaysUntilOpen)
	case w.DaysRemaining != nil:
		s += fmt.Sprintf(" (%d days remaining)", *w.DaysRemaining)
	}
	return s
}

type evaluationView struct{ ev *lifecycle.CaseEvaluation }

func (v evaluationView) MarshalJSON() ([]byte, error) { return json.Marshal(v.ev) }

func (v evaluationView) String() string {
	ev := v.ev
	var sb strings.Builder
	line := func(label, value string) { fmt.Fprintf(&sb, "%-15s %s\n", label+":", value) }

	line("Case", fmt.Sprintf("%s (%s)", orDash(ev.CaseID), ev.EmployerName))
	line("Status", ev.CaseStatus)
	line("Today", ev.Today)
	line("Recruitment", describeRecruitment(ev.RecruitmentWindow))
	line("Filing window", describeFiling(ev.FilingWindow))
	line("Readiness", string(ev.Readiness))
	line("Next action", describeAction(ev.NextAction))
	for _, rs := range []domainLifecycle.RequestStatus{ev.RFI, ev.RFE} {
		if rs.Active && rs.Entry != nil {
			line(rs.Kind.Label(), fmt.Sprintf("response due %s (%s days, %s)", orDash(rs.Entry.ResponseDueDate), days(rs.DaysUntilDue), rs.Urgency))
		}
	}
	status := "valid"
	if !ev.Validation.Valid {
		status = "invalid"
	}
	line("Validation", fmt.Sprintf("%s (%d errors, %d warnings)", status, len(ev.Validation.Errors), len(ev.Validation.Warnings)))

	if len(ev.Deadlines) > 0 {
		sb.WriteString("\nDeadlines:\n")
		for _, d := range ev.Deadlines {
			fmt.Fprintf(&sb, "  %s  %5dd  %-8s %s\n", d.Date, d.DaysUntil, d.Urgency, d.Label)
		}
	}
	return sb.String()
}

func (v evaluationView) TableHeaders() []string { return deadlineHeaders }

func (v evaluationView) TableRows() [][]string { return deadlineRows(v.ev.Deadlines) }

var deadlineHeaders = []string{"DEADLINE", "DATE", "DAYS", "URGENCY"}

func deadlineRows(deadlines []domainLifecycle.Deadline) [][]string {
	rows := make([][]string, 0, len(deadlines))
	for _, d := range deadlines {
		rows = append(rows, []string{d.Label, d.Date, strconv.Itoa(d.DaysUntil), string(d.Urgency)})
	}
	return rows
}

type validationView struct{ res *domainLifecycle.ValidationResult }

func (v validationView) MarshalJSON() ([]byte, error) { return json.Marshal(v.res) }

func (v validationView) String() string {
	var sb strings.Builder
	if v.res.Valid {
		sb.WriteString("Case is valid")
	} else {
		fmt.Fprintf(&sb, "Case is invalid: %d error(s)", len(v.res.Errors))
	}
	if n := len(v.res.Warnings); n > 0 {
		fmt.Fprintf(&sb, ", %d warning(s)", n)
	}
	sb.WriteString("\n")
	for _, e := range v.res.Errors {
		fmt.Fprintf(&sb, "  error    %s: %s\n", e.Field, e.Message)
	}
	for _, w := range v.res.Warnings {
		fmt.Fprintf(&sb, "  warning  %s: %s\n", w.Field, w.Message)
	}
	return sb.String()
}

func (v validationView) TableHeaders() []string { return []string{"SEVERITY", "FIELD", "MESSAGE"} }

func (v validationView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.res.Errors)+len(v.res.Warnings))
	for _, e := range v.res.Errors {
		rows = append(rows, []string{"error", e.Field, e.Message})
	}
	for _, w := range v.res.Warnings {
		rows = append(rows, []string{"warning", w.Field, w.Message})
	}
	return rows
}

type actionView struct{ action *domainLifecycle.NextAction }

func (v actionView) MarshalJSON() ([]byte, error) { return json.Marshal(v.action) }

func (v actionView) String() string { return describeAction(v.action) + "\n" }

func (v actionView) TableHeaders() []string {
	return []string{"ACTION", "URGENCY", "DUE", "DAYS"}
}

func (v actionView) TableRows() [][]string {
	if v.action == nil {
		return nil
	}
	a := v.action
	return [][]string{{a.Action, string(a.Urgency), orDash(a.DueDate), days(a.DaysUntil)}}
}

type deadlinesView struct{ report *lifecycle.DeadlineReport }

func (v deadlinesView) MarshalJSON() ([]byte, error) { return json.Marshal(v.report) }

func (v deadlinesView) String() string {
	if len(v.report.Deadlines) == 0 {
		return "No outstanding deadlines\n"
	}
	var sb strings.Builder
	for _, d := range v.report.Deadlines {
		fmt.Fprintf(&sb, "%s  %5dd  %-8s %s\n", d.Date, d.DaysUntil, d.Urgency, d.Label)
	}
	return sb.String()
}

func (v deadlinesView) TableHeaders() []string { return deadlineHeaders }

func (v deadlinesView) TableRows() [][]string { return deadlineRows(v.report.Deadlines) }

type windowsView struct {
	Recruitment domainLifecycle.RecruitmentWindow `json:"recruitmentWindow"`
	Filing      domainLifecycle.FilingWindow      `json:"filingWindow"`
	Readiness   domainLifecycle.Readiness         `json:"readiness"`
}

func (v windowsView) String() string {
	return fmt.Sprintf("%-15s %s\n%-15s %s\n%-15s %s\n",
		"Recruitment:", describeRecruitment(v.Recruitment),
		"Filing window:", describeFiling(v.Filing),
		"Readiness:", v.Readiness)
}

func (v windowsView) TableHeaders() []string {
	return []string{"WINDOW", "STATUS", "START", "END", "DAYS LEFT"}
}

func (v windowsView) TableRows() [][]string {
	return [][]string{
		{"recruitment", string(v.Recruitment.Status), orDash(v.Recruitment.StartDate), orDash(v.Recruitment.EndDate), days(v.Recruitment.DaysRemaining)},
		{"filing", string(v.Filing.Status), orDash(v.Filing.OpensDate), orDash(v.Filing.ClosesDate), days(v.Filing.DaysRemaining)},
	}
}
