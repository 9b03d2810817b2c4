package meilies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamName(t *testing.T) {
	good := []string{"foo", "a", "stream-name_1.2"}
	for _, s := range good {
		name, err := ParseStreamName(s)
		require.NoError(t, err)
		assert.Equal(t, StreamName(s), name)
	}

	bad := []string{"", "foo:bar", "foo bar", "foo\tbar"}
	for _, s := range bad {
		_, err := ParseStreamName(s)
		assert.Error(t, err, s)
	}
}

func TestParseSubscription(t *testing.T) {
	sub, err := ParseSubscription("foo")
	require.NoError(t, err)
	assert.Equal(t, Subscription{Stream: "foo", LiveOnly: true}, sub)

	sub, err = ParseSubscription("bar:5")
	require.NoError(t, err)
	assert.Equal(t, Subscription{Stream: "bar", From: 5}, sub)

	sub, err = ParseSubscription("baz:2:5")
	require.NoError(t, err)
	assert.Equal(t, Subscription{Stream: "baz", From: 2, Bounded: true, To: 5}, sub)

	_, err = ParseSubscription("a:1:2:3")
	assert.Error(t, err)

	_, err = ParseSubscription("a:notanumber")
	assert.Error(t, err)

	_, err = ParseSubscription(":5")
	assert.Error(t, err)
}
