package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsPayloadHandSizeSynonyms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *int
	}{
		{"initialHandSize", `{"roomId":"R","initialHandSize":5}`, intPtr(5)},
		{"handSize", `{"roomId":"R","handSize":7}`, intPtr(7)},
		{"cardsPerPlayer", `{"roomId":"R","cardsPerPlayer":3}`, intPtr(3)},
		{"none", `{"roomId":"R"}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p optionsPayload
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &p))
			got := p.handSize()
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestOptionsPayloadSynonymPrecedence(t *testing.T) {
	// When several spellings arrive at once, initialHandSize wins.
	var p optionsPayload
	raw := `{"roomId":"R","initialHandSize":4,"handSize":9,"cardsPerPlayer":11}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.NotNil(t, p.handSize())
	assert.Equal(t, 4, *p.handSize())
}

func TestMissingFieldWrapsSentinel(t *testing.T) {
	err := missingField("roomId")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "roomId")
}

func intPtr(n int) *int { return &n }
