package lifecycle

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single validation finding keyed by JSON field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the aggregated validation report of a case.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldError `json:"errors"`
	Warnings []FieldError `json:"warnings"`
}

type report struct {
	errors   []FieldError
	warnings []FieldError
}

func (r *report) errorf(field, format string, args ...interface{}) {
	r.errors = append(r.errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *report) warnf(field, format string, args ...interface{}) {
	r.warnings = append(r.warnings, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate runs structural checks followed by cross-field business rules and
// returns every finding.  Rules only consider dates that parse; malformed
// dates are reported once by the structural pass.
func Validate(c *Case, today time.Time) ValidationResult {
	today = midnight(today)
	r := &report{}
	validateStructure(c, r)
	validatePWD(c, r)
	validateJobOrder(c, r)
	validateSundayAds(c, r)
	validateNoticeOfFiling(c, r)
	validateAdditionalMethods(c, r)
	validateETA9089(c, r)
	validateI140(c, r)
	validateRequests(RequestRFI, c.RFIEntries, r)
	validateRequests(RequestRFE, c.RFEEntries, r)
	warnRisks(c, today, r)

	res := ValidationResult{
		Valid:    len(r.errors) == 0,
		Errors:   r.errors,
		Warnings: r.warnings,
	}
	if res.Errors == nil {
		res.Errors = []FieldError{}
	}
	if res.Warnings == nil {
		res.Warnings = []FieldError{}
	}
	return res
}

// ─────────────────────────────────────────────────────────────────────────────
// Structural pass
// ─────────────────────────────────────────────────────────────────────────────

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStructure(c *Case, r *report) {
	err := structValidator.Struct(c)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		r.errorf("", "%v", err)
		return
	}
	for _, fe := range verrs {
		r.errors = append(r.errors, FieldError{Field: fieldPath(fe.Namespace()), Message: structMessage(fe)})
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func structMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// ─────────────────────────────────────────────────────────────────────────────
// Business rules
// ─────────────────────────────────────────────────────────────────────────────

func validatePWD(c *Case, r *report) {
	filing, hasFiling := optionalDate(c.PWD.FilingDate)
	det, hasDet := optionalDate(c.PWD.DeterminationDate)
	exp, hasExp := optionalDate(c.PWD.ExpirationDate)

	if hasFiling && hasDet && det.Before(filing) {
		r.errorf("pwd.determinationDate", "must be on or after the PWD filing date")
	}
	switch {
	case hasDet && hasExp && exp.Before(det):
		r.errorf("pwd.expirationDate", "must be on or after the PWD determination date")
	case !hasDet && hasFiling && hasExp && exp.Before(filing):
		r.errorf("pwd.expirationDate", "must be on or after the PWD filing date")
	}
}

func validateJobOrder(c *Case, r *report) {
	start, okStart := optionalDate(c.Recruitment.JobOrderStartDate)
	end, okEnd := optionalDate(c.Recruitment.JobOrderEndDate)
	if !okStart || !okEnd {
		return
	}
	switch {
	case end.Before(start):
		r.errorf("recruitment.jobOrderEndDate", "must be on or after the job order start date")
	case DaysBetween(start, end) < JobOrderMinDays:
		r.errorf("recruitment.jobOrderEndDate", "job order must run at least %d days", JobOrderMinDays)
	}
}

func validateSundayAds(c *Case, r *report) {
	first, okFirst := optionalDate(c.Recruitment.SundayAdFirstDate)
	second, okSecond := optionalDate(c.Recruitment.SundayAdSecondDate)
	if okFirst && first.Weekday() != time.Sunday {
		r.errorf("recruitment.sundayAdFirstDate", "must fall on a Sunday")
	}
	if okSecond && second.Weekday() != time.Sunday {
		r.errorf("recruitment.sundayAdSecondDate", "must fall on a Sunday")
	}
	if okFirst && okSecond && !second.After(first) {
		r.errorf("recruitment.sundayAdSecondDate", "must be after the first Sunday ad")
	}
}

func validateNoticeOfFiling(c *Case, r *report) {
	start, okStart := optionalDate(c.Recruitment.NoticeOfFilingStartDate)
	end, okEnd := optionalDate(c.Recruitment.NoticeOfFilingEndDate)
	if okStart && okEnd && end.Before(start) {
		r.errorf("recruitment.noticeOfFilingEndDate", "must be on or after the notice of filing start date")
	}
}

// pastRecruitment reports whether the case has moved beyond recruitment.
func pastRecruitment(c *Case) bool {
	switch c.CaseStatus {
	case CaseStatusETA9089, CaseStatusI140, CaseStatusClosed:
		return true
	}
	return c.ETA9089Filed()
}

func validateAdditionalMethods(c *Case, r *report) {
	const field = "recruitment.additionalRecruitmentMethods"
	methods := c.Recruitment.AdditionalRecruitmentMethods
	if !c.Recruitment.IsProfessionalOccupation {
		if len(methods) > 0 {
			r.warnf(field, "additional recruitment methods are only required for professional occupations")
		}
		return
	}

	if len(methods) > AdditionalMethodsRequired {
		r.errorf(field, "at most %d additional recruitment methods may be recorded", AdditionalMethodsRequired)
	}

	var lower, upper time.Time
	hasLower, hasUpper := false, false
	if det, ok := optionalDate(c.PWD.DeterminationDate); ok {
		lower, hasLower = det, true
	}
	if first, ok := c.FirstRecruitmentDate(); ok {
		upper, hasUpper = AddDays(first, AdditionalMethodWindowDays), true
	}
	if exp, ok := optionalDate(c.PWD.ExpirationDate); ok {
		bound := AddDays(exp, -PWDExpirationBufferDays)
		if !hasUpper || bound.Before(upper) {
			upper, hasUpper = bound, true
		}
	}

	seen := make(map[RecruitmentMethod]int, len(methods))
	for i, m := range methods {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if m.Method != "" {
			if j, dup := seen[m.Method]; dup {
				r.errorf(prefix+".method", "duplicates method of entry %d", j)
			} else {
				seen[m.Method] = i
			}
		}
		d, ok := optionalDate(m.Date)
		if !ok {
			continue
		}
		if hasLower && d.Before(lower) {
			r.errorf(prefix+".date", "must be on or after the PWD determination date")
		}
		if hasUpper && d.After(upper) {
			r.errorf(prefix+".date", "must be on or before %s", FormatDate(upper))
		}
	}

	if pastRecruitment(c) && c.Recruitment.CompletedAdditionalMethods() < AdditionalMethodsRequired {
		r.errorf(field, "%d distinct dated additional recruitment methods are required", AdditionalMethodsRequired)
	}
}

func validateETA9089(c *Case, r *report) {
	filing, hasFiling := optionalDate(c.ETA9089.FilingDate)
	audit, hasAudit := optionalDate(c.ETA9089.AuditDate)
	cert, hasCert := optionalDate(c.ETA9089.CertificationDate)
	exp, hasExp := optionalDate(c.ETA9089.ExpirationDate)

	if hasFiling {
		opens, hasOpens, closes, hasCloses := filingBounds(c)
		if hasOpens && filing.Before(opens) {
			r.errorf("eta9089.filingDate", "must be on or after the filing window opens date %s", FormatDate(opens))
		}
		if hasCloses && filing.After(closes) {
			r.errorf("eta9089.filingDate", "must be on or before the filing window closes date %s", FormatDate(closes))
		}
	}
	if hasFiling && hasAudit && audit.Before(filing) {
		r.errorf("eta9089.auditDate", "must be on or after the ETA 9089 filing date")
	}
	if hasFiling && hasCert && cert.Before(filing) {
		r.errorf("eta9089.certificationDate", "must be on or after the ETA 9089 filing date")
	}
	if hasCert && hasExp && exp.Before(cert) {
		r.errorf("eta9089.expirationDate", "must be on or after the certification date")
	}
}

func validateI140(c *Case, r *report) {
	filing, hasFiling := optionalDate(c.I140.FilingDate)
	if hasFiling {
		if cert, ok := optionalDate(c.ETA9089.CertificationDate); ok && filing.Before(cert) {
			r.errorf("i140.filingDate", "must be on or after the ETA 9089 certification date")
		}
		if exp, ok := optionalDate(c.ETA9089.ExpirationDate); ok && filing.After(exp) {
			r.errorf("i140.filingDate", "must be on or before the ETA 9089 expiration date")
		}
		later := []struct{ field, value string }{
			{"i140.receiptDate", c.I140.ReceiptDate},
			{"i140.approvalDate", c.I140.ApprovalDate},
			{"i140.denialDate", c.I140.DenialDate},
		}
		for _, m := range later {
			if d, ok := optionalDate(m.value); ok && d.Before(filing) {
				r.errorf(m.field, "must be on or after the I-140 filing date")
			}
		}
	}
	if c.I140.ApprovalDate != "" && c.I140.DenialDate != "" {
		r.errorf("i140.denialDate", "an I-140 cannot be both approved and denied")
	}
}

func validateRequests(kind RequestKind, entries []RequestEntry, r *report) {
	ids := make(map[string]int, len(entries))
	active := 0
	for i, e := range entries {
		prefix := fmt.Sprintf("%s[%d]", kind.Field(), i)
		if e.ID != "" {
			if j, dup := ids[e.ID]; dup {
				r.errorf(prefix+".id", "duplicates id of entry %d", j)
			} else {
				ids[e.ID] = i
			}
		}
		if IsActive(e) {
			active++
		}

		received, okReceived := optionalDate(e.ReceivedDate)
		due, okDue := optionalDate(e.ResponseDueDate)
		submitted, okSubmitted := optionalDate(e.ResponseSubmittedDate)
		if okReceived && okDue && due.Before(received) {
			r.errorf(prefix+".responseDueDate", "must be on or after the received date")
		}
		if okSubmitted && okReceived && submitted.Before(received) {
			r.errorf(prefix+".responseSubmittedDate", "must be on or after the received date")
		}
		if okSubmitted && okDue && submitted.After(due) {
			r.errorf(prefix+".responseSubmittedDate", "must be on or before the response due date")
		}
	}
	if active > 1 {
		r.errorf(kind.Field(), "only one %s may be awaiting a response", kind.Label())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Warnings
// ─────────────────────────────────────────────────────────────────────────────

func warnRisks(c *Case, today time.Time, r *report) {
	if !c.ETA9089Filed() && CalculateFilingWindow(c, today).Status == FilingClosingSoon {
		r.warnf("eta9089.filingDate", "the filing window closes soon and the ETA 9089 has not been filed")
	}

	if exp, ok := optionalDate(c.PWD.ExpirationDate); ok && !c.ETA9089Filed() {
		d := DaysBetween(today, exp)
		if d >= 0 && d <= PWDExpirationBufferDays && !c.Recruitment.MandatoryStepsComplete() {
			r.warnf("pwd.expirationDate", "the PWD expires in %d days and recruitment is incomplete", d)
		}
	}

	milestones := []struct{ field, value string }{
		{"pwd.filingDate", c.PWD.FilingDate},
		{"pwd.determinationDate", c.PWD.DeterminationDate},
		{"recruitment.sundayAdFirstDate", c.Recruitment.SundayAdFirstDate},
		{"recruitment.sundayAdSecondDate", c.Recruitment.SundayAdSecondDate},
		{"eta9089.filingDate", c.ETA9089.FilingDate},
		{"eta9089.auditDate", c.ETA9089.AuditDate},
		{"eta9089.certificationDate", c.ETA9089.CertificationDate},
		{"i140.filingDate", c.I140.FilingDate},
		{"i140.receiptDate", c.I140.ReceiptDate},
		{"i140.approvalDate", c.I140.ApprovalDate},
		{"i140.denialDate", c.I140.DenialDate},
	}
	for _, m := range milestones {
		if d, ok := optionalDate(m.value); ok && d.After(today) {
			r.warnf(m.field, "date is in the future")
		}
	}
}
