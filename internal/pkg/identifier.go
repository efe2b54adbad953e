package pkg

import "github.com/google/uuid"

// GenerateConnectionID returns a unique identifier for a new connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}
