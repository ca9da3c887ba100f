package coupon

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet omits 0/O and 1/I so codes survive being read over a counter.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const codeSuffixLen = 4

// newCode builds a human-enterable coupon code: PREFIX-XXXX.
// Uniqueness is enforced by the issuance path, not here.
func newCode(prefix string) (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("coupon code entropy: %w", err)
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}
