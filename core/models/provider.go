package models

// RunStatus represents the status of a training run as reported by the
// external training provider.
type RunStatus string

const (
	RunStatusStarting   RunStatus = "starting"
	RunStatusProcessing RunStatus = "processing"
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusFailed     RunStatus = "failed"
)

// ProviderRun is the provider's live view of one training run. It is
// never persisted and never cached across requests.
type ProviderRun struct {
	ID     string
	Status RunStatus
	Error  string
	Logs   string
}
