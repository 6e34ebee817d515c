package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_MarshalUnmarshalRoundTrip(t *testing.T) {
	result := newResult("job-1", KindChat, StatusProcessing)
	result.Output = json.RawMessage(`{"value":"partial"}`)

	encoded, err := result.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalResult(encoded)
	require.NoError(t, err)
	require.Equal(t, result, decoded)
}

func TestStatusKeyAndConversationKey(t *testing.T) {
	require.Equal(t, "job:status:abc", StatusKey("abc"))
	require.Equal(t, "conversation:abc", ConversationKey("abc"))
}

func TestKind_QueueKey(t *testing.T) {
	require.Equal(t, "jobs:chat", KindChat.QueueKey())
	require.Equal(t, "jobs:embed", KindEmbed.QueueKey())
	require.Equal(t, "jobs:index", KindIndex.QueueKey())
}

func TestNewResult_StartsWithGivenStatus(t *testing.T) {
	result := newResult("job-2", KindIndex, StatusPending)
	require.Equal(t, "job-2", result.JobID)
	require.Equal(t, KindIndex, result.Kind)
	require.Equal(t, StatusPending, result.Status)
	require.NotEmpty(t, result.UpdatedAt)
}
