package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID(8)
	assert.Len(t, id, 8)
	for _, c := range id {
		assert.Contains(t, idCharset, string(c))
	}

	// Collisions over a handful of draws would point at a broken generator.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateID(8)] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGenerateRoomName(t *testing.T) {
	name := GenerateRoomName()
	parts := strings.Split(name, " ")
	assert.Len(t, parts, 2)
	assert.Contains(t, roomAdjectives, parts[0])
	assert.Contains(t, roomNouns, parts[1])
}
