package common

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"regexp"
	"time"
)

var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// ReferenceSuffixLen is the number of random base32 characters in a reference.
const ReferenceSuffixLen = 6

var referencePattern = regexp.MustCompile(`^[A-Z]{2}-\d{8}-[0-9A-HJKMNP-TV-Z]{6}$`)

// NewReference returns a human-readable reference such as PK-20260301-7K3M9Q:
// prefix, UTC date and 30 random bits in Crockford base32. Uniqueness is
// enforced by the database; callers regenerate on collision.
func NewReference(prefix string, now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reference: %w", err)
	}
	suffix := crockford.EncodeToString(b)[:ReferenceSuffixLen]
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix), nil
}

// IsReference reports whether s has the shape NewReference produces.
func IsReference(s string) bool {
	return referencePattern.MatchString(s)
}
