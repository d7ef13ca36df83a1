package model

import "time"

type ResultType string

const (
	ResultTypeFalsePositive ResultType = "false_positive"
	ResultTypeFalseNegative ResultType = "false_negative"
)

// ResultTypes lists every valid result type, in the order the browse
// filter presents them.
func ResultTypes() []ResultType {
	return []ResultType{ResultTypeFalsePositive, ResultTypeFalseNegative}
}

func (t ResultType) Valid() bool {
	return t == ResultTypeFalsePositive || t == ResultTypeFalseNegative
}

type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusApproved RecordStatus = "approved"
)

// Record is a submitted false-positive/false-negative test result.
// A record is publicly visible only once its status is approved.
type Record struct {
	ID             string       `json:"id"`
	Submitter      string       `json:"submitter"`
	Algorithm      string       `json:"algorithm"`
	Sequence       string       `json:"sequence"`
	Allele         string       `json:"allele,omitempty"`
	ResultType     ResultType   `json:"result_type"`
	ExpectedResult string       `json:"expected_result,omitempty"`
	ActualResult   string       `json:"actual_result,omitempty"`
	Description    string       `json:"description,omitempty"`
	Status         RecordStatus `json:"status"`
	SubmittedAt    time.Time    `json:"submitted_at"`
	ApprovedAt     *time.Time   `json:"approved_at,omitempty"`
}
