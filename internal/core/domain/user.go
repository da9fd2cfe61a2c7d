package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner of a wallet. The ledger never authenticates users;
// it only requires them to exist before moving funds.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
