package helpers

import gonanoid "github.com/matoous/go-nanoid/v2"

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const idLength = 16

// NewID returns a random action-history record id.
func NewID() (string, error) {
	return gonanoid.Generate(alphabet, idLength)
}
