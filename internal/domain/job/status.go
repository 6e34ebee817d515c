package job

import (
	"encoding/json"
	"time"
)

// Status is a job's place in its lifecycle. Transitions are monotone:
// Pending -> Processing -> (Completed | Failed), never backwards.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DefaultResultTTL and DefaultConversationTTL are used when a
// Producer or Consumer is constructed without an explicit TTL.
const (
	DefaultResultTTL       = 24 * time.Hour
	DefaultConversationTTL = 24 * time.Hour
)

// Result is the durable record stored at job:status:{uuid}. Output
// carries the kind-specific JSON payload of a completed job (e.g.
// {response, conversationId} for a chat job).
type Result struct {
	JobID     string          `json:"jobId"`
	Kind      Kind            `json:"kind"`
	Status    Status          `json:"status"`
	Output    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt string          `json:"updatedAt"`
}

// StatusKey returns the broker key that stores a job's Result.
func StatusKey(jobID string) string {
	return "job:status:" + jobID
}

// ConversationKey returns the broker key that stores a Conversation.
func ConversationKey(conversationID string) string {
	return "conversation:" + conversationID
}

// Marshal serializes the Result for storage.
func (r Result) Marshal() (string, error) {
	encoded, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// UnmarshalResult parses a Result previously produced by Marshal.
func UnmarshalResult(raw string) (Result, error) {
	var r Result
	err := json.Unmarshal([]byte(raw), &r)
	return r, err
}

func newResult(jobID string, kind Kind, status Status) Result {
	return Result{
		JobID:     jobID,
		Kind:      kind,
		Status:    status,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
