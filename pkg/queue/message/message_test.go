package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	m, err := NewMessage("packaging|3017620422003|3017620422003.jpg")
	require.NoError(t, err)
	assert.Equal(t, &Message{Class: "packaging", ID: "3017620422003", File: "3017620422003.jpg"}, m)
	assert.Equal(t, "packaging|3017620422003|3017620422003.jpg", m.String())
}

func TestNewMessageInvalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"packaging|1",
		"packaging|1|1.jpg|x",
		"recipes|1|1.jpg",
		"nutrition||1.jpg",
		"nutrition|1|",
	} {
		_, err := NewMessage(raw)
		assert.Error(t, err, raw)
	}
}
