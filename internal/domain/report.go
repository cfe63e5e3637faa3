package domain

import "time"

// ProblemCategory identifies the kind of problem a user reports.
type ProblemCategory string

const (
	CategoryInternetDown   ProblemCategory = "internet_down"
	CategorySlowConnection ProblemCategory = "slow_connection"
	CategoryIntermittent   ProblemCategory = "intermittent"
	CategoryBillingIssue   ProblemCategory = "billing_issue"
	CategoryEquipmentFault ProblemCategory = "equipment_fault"
	CategoryOther          ProblemCategory = "other"
)

// MaxDescriptionLength bounds the free-text part of a problem report.
const MaxDescriptionLength = 500

var categoryLabels = map[ProblemCategory]string{
	CategoryInternetDown:   "Complete Internet Outage",
	CategorySlowConnection: "Slow Connection Speed",
	CategoryIntermittent:   "Intermittent Connection Issues",
	CategoryBillingIssue:   "Billing Problem",
	CategoryEquipmentFault: "Equipment Malfunction",
	CategoryOther:          "Other Issue",
}

// ProblemCategories lists every category in the order offered to users.
func ProblemCategories() []ProblemCategory {
	return []ProblemCategory{
		CategoryInternetDown,
		CategorySlowConnection,
		CategoryIntermittent,
		CategoryBillingIssue,
		CategoryEquipmentFault,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c ProblemCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name, or the raw value for unknown categories.
func (c ProblemCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ProblemReport is built once on submit and sent without retries.
type ProblemReport struct {
	Category    ProblemCategory
	Description string
	AccountID   string
	SubmittedAt time.Time
}
