// Package lifecycle implements the PERM case-lifecycle engine: regulatory
// window calculation, readiness classification, next-action resolution,
// deadline aggregation and cross-field validation.
//
// Every exported computation is a pure function of a *Case snapshot and the
// calendar date "today" (UTC midnight).  Nothing in this package reads the
// system clock, performs I/O or mutates its inputs.
package lifecycle

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Regulatory constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// RecruitmentWindowDays bounds recruitment: it must complete within 180
	// days of the first recruitment step.
	RecruitmentWindowDays = 180

	// FilingWaitDays is the quiet period after the last recruitment step before
	// an ETA 9089 may be filed.
	FilingWaitDays = 30

	// OpeningSoonDays is the inclusive threshold for OPENING_SOON.
	OpeningSoonDays = 7

	// ClosingSoonDays is the inclusive threshold for CLOSING_SOON.
	ClosingSoonDays = 14

	// JobOrderMinDays is the minimum state workforce agency job order length.
	JobOrderMinDays = 30

	// AdditionalMethodsRequired is the number of additional recruitment steps
	// required for professional occupations.
	AdditionalMethodsRequired = 3

	// AdditionalMethodWindowDays bounds additional methods relative to the
	// first recruitment step.
	AdditionalMethodWindowDays = 150

	// PWDExpirationBufferDays bounds additional methods relative to PWD
	// expiration.
	PWDExpirationBufferDays = 30

	// DefaultI140DaysUntil is used when the ETA 9089 expiration date is
	// unknown.
	DefaultI140DaysUntil = 180
)

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// CaseStatus is the stage a case is currently in.  It progresses
// pwd → recruitment → eta9089 → i140 → closed.
type CaseStatus string

const (
	CaseStatusPWD         CaseStatus = "pwd"
	CaseStatusRecruitment CaseStatus = "recruitment"
	CaseStatusETA9089     CaseStatus = "eta9089"
	CaseStatusI140        CaseStatus = "i140"
	CaseStatusClosed      CaseStatus = "closed"
)

// ProgressStatus is a finer-grained label within a stage.
type ProgressStatus string

const (
	ProgressWorking       ProgressStatus = "working"
	ProgressWaitingIntake ProgressStatus = "waiting_intake"
	ProgressFiled         ProgressStatus = "filed"
	ProgressApproved      ProgressStatus = "approved"
	ProgressUnderReview   ProgressStatus = "under_review"
	ProgressRFIRFE        ProgressStatus = "rfi_rfe"
)

// RecruitmentMethod enumerates the additional recruitment steps accepted for
// professional occupations.
type RecruitmentMethod string

const (
	MethodJobFair               RecruitmentMethod = "job_fair"
	MethodEmployerWebsite       RecruitmentMethod = "employer_website"
	MethodJobSearchWebsite      RecruitmentMethod = "job_search_website"
	MethodOnCampusRecruiting    RecruitmentMethod = "on_campus_recruiting"
	MethodTradeOrganization     RecruitmentMethod = "trade_professional_organization"
	MethodPrivateEmploymentFirm RecruitmentMethod = "private_employment_firm"
	MethodEmployeeReferral      RecruitmentMethod = "employee_referral_program"
	MethodCampusPlacementOffice RecruitmentMethod = "campus_placement_office"
	MethodLocalEthnicNewspaper  RecruitmentMethod = "local_ethnic_newspaper"
	MethodRadioTVAd             RecruitmentMethod = "radio_tv_ad"
)

// ─────────────────────────────────────────────────────────────────────────────
// Case aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Case is a snapshot of a PERM case.  Date fields hold ISO YYYY-MM-DD strings;
// the empty string means the date is not yet known.
type Case struct {
	ID                    string         `json:"id,omitempty" yaml:"id,omitempty"`
	EmployerName          string         `json:"employerName" yaml:"employerName" validate:"required"`
	BeneficiaryIdentifier string         `json:"beneficiaryIdentifier" yaml:"beneficiaryIdentifier" validate:"required"`
	PositionTitle         string         `json:"positionTitle" yaml:"positionTitle" validate:"required"`
	CaseStatus            CaseStatus     `json:"caseStatus" yaml:"caseStatus" validate:"required,oneof=pwd recruitment eta9089 i140 closed"`
	ProgressStatus        ProgressStatus `json:"progressStatus,omitempty" yaml:"progressStatus,omitempty" validate:"omitempty,oneof=working waiting_intake filed approved under_review rfi_rfe"`

	PWD         PWDStage         `json:"pwd" yaml:"pwd"`
	Recruitment RecruitmentStage `json:"recruitment" yaml:"recruitment"`
	ETA9089     ETA9089Stage     `json:"eta9089" yaml:"eta9089"`
	I140        I140Stage        `json:"i140" yaml:"i140"`

	RFIEntries []RequestEntry `json:"rfiEntries,omitempty" yaml:"rfiEntries,omitempty" validate:"dive"`
	RFEEntries []RequestEntry `json:"rfeEntries,omitempty" yaml:"rfeEntries,omitempty" validate:"dive"`
}

// PWDStage holds Prevailing Wage Determination milestones.
type PWDStage struct {
	FilingDate        string `json:"filingDate,omitempty" yaml:"filingDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeterminationDate string `json:"determinationDate,omitempty" yaml:"determinationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate    string `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RecruitmentStage holds recruitment milestones.
type RecruitmentStage struct {
	JobOrderStartDate            string                  `json:"jobOrderStartDate,omitempty" yaml:"jobOrderStartDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	JobOrderEndDate              string                  `json:"jobOrderEndDate,omitempty" yaml:"jobOrderEndDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SundayAdFirstDate            string                  `json:"sundayAdFirstDate,omitempty" yaml:"sundayAdFirstDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SundayAdSecondDate           string                  `json:"sundayAdSecondDate,omitempty" yaml:"sundayAdSecondDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NoticeOfFilingStartDate      string                  `json:"noticeOfFilingStartDate,omitempty" yaml:"noticeOfFilingStartDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NoticeOfFilingEndDate        string                  `json:"noticeOfFilingEndDate,omitempty" yaml:"noticeOfFilingEndDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsProfessionalOccupation     bool                    `json:"isProfessionalOccupation" yaml:"isProfessionalOccupation"`
	AdditionalRecruitmentMethods []AdditionalRecruitment `json:"additionalRecruitmentMethods,omitempty" yaml:"additionalRecruitmentMethods,omitempty" validate:"dive"`
}

// AdditionalRecruitment is one additional recruitment step.
type AdditionalRecruitment struct {
	Method      RecruitmentMethod `json:"method" yaml:"method" validate:"required,oneof=job_fair employer_website job_search_website on_campus_recruiting trade_professional_organization private_employment_firm employee_referral_program campus_placement_office local_ethnic_newspaper radio_tv_ad"`
	Date        string            `json:"date,omitempty" yaml:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// ETA9089Stage holds labor-certification application milestones.
type ETA9089Stage struct {
	FilingDate        string `json:"filingDate,omitempty" yaml:"filingDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AuditDate         string `json:"auditDate,omitempty" yaml:"auditDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CertificationDate string `json:"certificationDate,omitempty" yaml:"certificationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate    string `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// I140Stage holds immigrant-petition milestones.  Approval and denial are
// mutually exclusive.
type I140Stage struct {
	FilingDate   string `json:"filingDate,omitempty" yaml:"filingDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReceiptDate  string `json:"receiptDate,omitempty" yaml:"receiptDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ApprovalDate string `json:"approvalDate,omitempty" yaml:"approvalDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DenialDate   string `json:"denialDate,omitempty" yaml:"denialDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RequestEntry is a government request (RFI during ETA 9089 review, RFE
// during I-140 review).  CreatedAt is used only to break ordering ties.
type RequestEntry struct {
	ID                    string    `json:"id" yaml:"id" validate:"required"`
	ReceivedDate          string    `json:"receivedDate" yaml:"receivedDate" validate:"required,datetime=2006-01-02"`
	ResponseDueDate       string    `json:"responseDueDate" yaml:"responseDueDate" validate:"required,datetime=2006-01-02"`
	ResponseSubmittedDate string    `json:"responseSubmittedDate,omitempty" yaml:"responseSubmittedDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt             time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Derived facts
// ─────────────────────────────────────────────────────────────────────────────

// NewCase returns a freshly created case in the PWD stage.
func NewCase(employerName, beneficiaryIdentifier, positionTitle string) *Case {
	return &Case{
		EmployerName:          employerName,
		BeneficiaryIdentifier: beneficiaryIdentifier,
		PositionTitle:         positionTitle,
		CaseStatus:            CaseStatusPWD,
		ProgressStatus:        ProgressWorking,
	}
}

// IsClosed reports whether the case has left the tracked lifecycle.
func (c *Case) IsClosed() bool {
	return c.CaseStatus == CaseStatusClosed
}

// ETA9089Filed reports whether an ETA 9089 filing date is recorded.
func (c *Case) ETA9089Filed() bool {
	return c.ETA9089.FilingDate != ""
}

// FirstRecruitmentDate is the earliest of the first Sunday ad and the job
// order start.  Notice of Filing does not open the recruitment window.
func (c *Case) FirstRecruitmentDate() (time.Time, bool) {
	return earliest(c.Recruitment.SundayAdFirstDate, c.Recruitment.JobOrderStartDate)
}

// LastMandatoryRecruitmentDate is the latest of the second Sunday ad and the
// job order end; it drives the filing-window opens date.
func (c *Case) LastMandatoryRecruitmentDate() (time.Time, bool) {
	return latest(c.Recruitment.SundayAdSecondDate, c.Recruitment.JobOrderEndDate)
}

// JobOrderComplete reports whether both job order dates are set.
func (r RecruitmentStage) JobOrderComplete() bool {
	return r.JobOrderStartDate != "" && r.JobOrderEndDate != ""
}

// NoticeOfFilingComplete reports whether both notice-of-filing dates are set.
func (r RecruitmentStage) NoticeOfFilingComplete() bool {
	return r.NoticeOfFilingStartDate != "" && r.NoticeOfFilingEndDate != ""
}

// SundayAdsComplete reports whether both Sunday ad dates are set.
func (r RecruitmentStage) SundayAdsComplete() bool {
	return r.SundayAdFirstDate != "" && r.SundayAdSecondDate != ""
}

// CompletedAdditionalMethods counts dated additional methods with distinct
// method values.
func (r RecruitmentStage) CompletedAdditionalMethods() int {
	seen := make(map[RecruitmentMethod]struct{}, len(r.AdditionalRecruitmentMethods))
	for _, m := range r.AdditionalRecruitmentMethods {
		if m.Method == "" || m.Date == "" {
			continue
		}
		seen[m.Method] = struct{}{}
	}
	return len(seen)
}

// AdditionalMethodsComplete reports whether the professional-occupation
// requirement is met.  Non-professional cases always satisfy it.
func (r RecruitmentStage) AdditionalMethodsComplete() bool {
	if !r.IsProfessionalOccupation {
		return true
	}
	return r.CompletedAdditionalMethods() >= AdditionalMethodsRequired
}

// MandatoryStepsComplete reports whether every mandatory recruitment step is
// recorded.
func (r RecruitmentStage) MandatoryStepsComplete() bool {
	return r.JobOrderComplete() &&
		r.SundayAdsComplete() &&
		r.NoticeOfFilingComplete() &&
		r.AdditionalMethodsComplete()
}

// LastRecruitmentActivityDate is the latest completed recruitment date,
// including Notice of Filing end and, for professional occupations, the
// additional method dates.  It drives the "wait for filing window" action.
func (c *Case) LastRecruitmentActivityDate() (time.Time, bool) {
	r := c.Recruitment
	dates := []string{
		r.JobOrderEndDate,
		r.SundayAdFirstDate,
		r.SundayAdSecondDate,
		r.NoticeOfFilingEndDate,
	}
	if r.IsProfessionalOccupation {
		for _, m := range r.AdditionalRecruitmentMethods {
			dates = append(dates, m.Date)
		}
	}
	return latest(dates...)
}
