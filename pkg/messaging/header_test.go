package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAccumulates(t *testing.T) {
	msg, err := NewDirectMessageBuilder().
		To("a").
		To("b").
		Message("m").
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, msg.To)
}

func TestToDoesNotDeduplicate(t *testing.T) {
	msg, err := NewDirectMessageBuilder().To("a").To("a").Message("m").Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, msg.To)
}

func TestFromLastCallWins(t *testing.T) {
	msg, err := NewDirectMessageBuilder().
		From("did:example:first").
		From("did:example:second").
		Message("m").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "did:example:second", msg.From)
}

func TestHeaderIdempotence(t *testing.T) {
	once, err := NewKeySharingMessageBuilder().
		ID("id").From("f").CreatedTime(10).ExpiresTime(20).
		AddKey(key1()).
		Build()
	require.NoError(t, err)

	twice, err := NewKeySharingMessageBuilder().
		ID("id").ID("id").
		From("f").From("f").
		CreatedTime(10).CreatedTime(10).
		ExpiresTime(20).ExpiresTime(20).
		AddKey(key1()).
		Build()
	require.NoError(t, err)

	assert.JSONEq(t, toJSON(t, once), toJSON(t, twice))
}

func TestCreatedNowReadsClock(t *testing.T) {
	fixedClock(t, 1700000000)

	msg, err := NewDirectMessageBuilder().CreatedNow().Message("m").Build()
	require.NoError(t, err)
	require.NotNil(t, msg.CreatedTime)
	assert.Equal(t, uint64(1700000000), *msg.CreatedTime)
}

func TestCreatedTimeExplicitOverridesNow(t *testing.T) {
	fixedClock(t, 1700000000)

	msg, err := NewDirectMessageBuilder().CreatedNow().CreatedTime(5).Message("m").Build()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), *msg.CreatedTime)
}

func TestUnsetHeadersOmitted(t *testing.T) {
	msg, err := NewMediaSharingMessageBuilder().MediaItemInlined(inlinedItem()).Build()
	require.NoError(t, err)

	assert.Empty(t, msg.From)
	assert.Nil(t, msg.To)
	assert.Nil(t, msg.CreatedTime)
	assert.Nil(t, msg.ExpiresTime)
}

func TestSetterDoesNotMutateReceiver(t *testing.T) {
	h := header{}.withTo("a")
	h2 := h.withTo("b")
	h3 := h.withTo("c")

	assert.Equal(t, []string{"a"}, h.to)
	assert.Equal(t, []string{"a", "b"}, h2.to)
	assert.Equal(t, []string{"a", "c"}, h3.to)
}

func TestBuildIsTotal(t *testing.T) {
	tests := []struct {
		name  string
		build func() (any, error)
	}{
		{"direct ok", func() (any, error) { return NewDirectMessageBuilder().Message("m").Build() }},
		{"direct missing", func() (any, error) { return NewDirectMessageBuilder().Build() }},
		{"keys ok", func() (any, error) { return NewKeySharingMessageBuilder().AddKey(key1()).Build() }},
		{"keys missing", func() (any, error) { return NewKeySharingMessageBuilder().Build() }},
		{"media ok", func() (any, error) { return NewMediaSharingMessageBuilder().MediaItemInlined(inlinedItem()).Build() }},
		{"media missing", func() (any, error) { return NewMediaSharingMessageBuilder().Build() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := tt.build()
			if err != nil {
				assert.Nil(t, msg)
				return
			}
			assert.NotNil(t, msg)
		})
	}
}
