package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectPairKey(t *testing.T) {
	tests := []struct {
		name string
		a, b uint
		want string
	}{
		{"ordered", 1, 2, "1:2"},
		{"reversed", 2, 1, "1:2"},
		{"large ids", 1042, 7, "7:1042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectPairKey(tt.a, tt.b))
		})
	}
}

func TestDirectPairKeySymmetric(t *testing.T) {
	assert.Equal(t, DirectPairKey(3, 9), DirectPairKey(9, 3))
}

func TestConversationHasParticipant(t *testing.T) {
	a, b := uint(1), uint(2)
	conv := &Conversation{ParticipantAID: &a, ParticipantBID: &b, PairKey: DirectPairKey(a, b)}

	assert.True(t, conv.HasParticipant(1))
	assert.True(t, conv.HasParticipant(2))
	assert.False(t, conv.HasParticipant(3))

	global := &Conversation{IsGlobal: true, PairKey: GlobalPairKey}
	assert.False(t, global.HasParticipant(1))
}

func TestConversationOtherParticipant(t *testing.T) {
	a, b := uint(1), uint(2)
	conv := &Conversation{ParticipantAID: &a, ParticipantBID: &b}

	other, ok := conv.OtherParticipant(1)
	assert.True(t, ok)
	assert.Equal(t, uint(2), other)

	other, ok = conv.OtherParticipant(2)
	assert.True(t, ok)
	assert.Equal(t, uint(1), other)

	_, ok = (&Conversation{IsGlobal: true}).OtherParticipant(1)
	assert.False(t, ok)
}
