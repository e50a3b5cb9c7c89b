package types

// FileCleanupTask is the Cloud Tasks payload for deleting an orphaned file.
type FileCleanupTask struct {
	FileId string `json:"fileId"`
	Reason string `json:"reason,omitempty"`
}
