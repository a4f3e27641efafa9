// Package rewardcode generates human-readable reward redemption codes.
package rewardcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet contains the 32 symbols allowed in the random part of a code.
// Visually ambiguous characters (0/O, 1/I) are excluded so codes can be
// read over the counter without mistakes.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the total length of a reward code: a 2-letter course
// prefix followed by 6 random characters.
const CodeLength = 8

const randomLength = CodeLength - 2

// Generate produces a reward code with the given 2-letter course prefix.
// The prefix is uppercased; anything that is not exactly 2 ASCII letters
// is rejected.
func Generate(prefix string) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len(prefix) != 2 {
		return "", fmt.Errorf("prefix must be exactly 2 characters, got %q", prefix)
	}
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("prefix must only contain letters, got %q", prefix)
		}
	}

	buf := make([]byte, randomLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var sb strings.Builder
	sb.Grow(CodeLength)
	sb.WriteString(prefix)
	for _, b := range buf {
		// len(Alphabet) is 32 so the modulo bias is zero
		sb.WriteByte(Alphabet[int(b)%len(Alphabet)])
	}
	return sb.String(), nil
}

// Normalize uppercases and trims a user-supplied code so lookups are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
