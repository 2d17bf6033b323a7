package messaging

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// sequentialIDs replaces the id generator with one returning generated-1,
// generated-2, ... for the duration of the test.
func sequentialIDs(t *testing.T) {
	t.Helper()
	orig := newID
	n := 0
	newID = func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}
	t.Cleanup(func() { newID = orig })
}

// fixedClock pins the wall clock used by CreatedNow.
func fixedClock(t *testing.T, unix int64) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Unix(unix, 0) }
	t.Cleanup(func() { now = orig })
}

// toJSON renders a message the way it goes on the wire.
func toJSON(t *testing.T, msg *didcomm.Message) string {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(data)
}

func ptr[T any](v T) *T {
	return &v
}
