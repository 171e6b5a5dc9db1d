package constants

// JobStatus is the lifecycle state of a paper job.
type JobStatus string

// Stable values (written to the run ledger as-is).
const (
	JobStatusPending       JobStatus = "pending"        // enumerated, not started
	JobStatusExtractedText JobStatus = "extracted_text" // stage 1 completed (excerpt ready)
	JobStatusModelCalled   JobStatus = "model_called"   // stage 2 completed (raw completion received)
	JobStatusParsed        JobStatus = "parsed"         // stage 3 completed (records mapped)
	JobStatusSucceeded     JobStatus = "succeeded"      // terminal success
	JobStatusFailed        JobStatus = "failed"         // terminal failure
)

// IsTerminal reports whether no further transitions are expected.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}
