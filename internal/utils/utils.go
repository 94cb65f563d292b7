package utils

import "math/rand"

const idCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateID returns a short, human-shareable identifier. The charset skips
// ambiguous characters (I/O/0/1).
func GenerateID(length int) string {
	id := make([]byte, length)
	for i := range id {
		id[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return string(id)
}

var (
	roomAdjectives = []string{
		"Swift", "Clever", "Lucky", "Brave", "Quiet", "Fuzzy",
		"Golden", "Mighty", "Sneaky", "Gentle", "Rapid", "Cosmic",
	}
	roomNouns = []string{
		"Tiger", "Falcon", "Otter", "Badger", "Comet", "Maple",
		"Walrus", "Puffin", "Nebula", "Canyon", "Harbor", "Meadow",
	}
)

// GenerateRoomName returns a decorative display name for a room. Purely
// cosmetic, collisions are fine.
func GenerateRoomName() string {
	return roomAdjectives[rand.Intn(len(roomAdjectives))] + " " + roomNouns[rand.Intn(len(roomNouns))]
}
