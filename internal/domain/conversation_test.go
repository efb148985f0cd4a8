package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	a, b := NormalizePair(9, 3)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(9), b)

	a, b = NormalizePair(3, 9)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(9), b)
}

func TestConversationParticipants(t *testing.T) {
	c := Conversation{ID: 1, User1ID: 3, User2ID: 9, Read1: true, Read2: false}

	assert.True(t, c.HasParticipant(3))
	assert.True(t, c.HasParticipant(9))
	assert.False(t, c.HasParticipant(5))

	assert.Equal(t, int64(9), c.OtherParticipant(3))
	assert.Equal(t, int64(3), c.OtherParticipant(9))
	assert.Equal(t, int64(0), c.OtherParticipant(5))

	assert.True(t, c.ReadFlag(3))
	assert.False(t, c.ReadFlag(9))
}
