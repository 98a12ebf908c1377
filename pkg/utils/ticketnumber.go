package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/google/uuid"
)

var ticketNumberPattern = regexp.MustCompile(`^CT-\d{6}$`)

// GenerateTicketNumber returns a human-facing ticket code of the form
// CT-XXXXXX. Uniqueness is enforced by the DB unique index; callers retry on
// collision.
func GenerateTicketNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// uuid-derived value rather than panicking mid-request.
		return fmt.Sprintf("CT-%06d", uuid.New().ID()%1000000)
	}
	return fmt.Sprintf("CT-%06d", n.Int64())
}

// IsTicketNumber reports whether s looks like a CT-XXXXXX code, as opposed to
// a raw ticket id.
func IsTicketNumber(s string) bool {
	return ticketNumberPattern.MatchString(s)
}
