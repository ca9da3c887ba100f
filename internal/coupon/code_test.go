package coupon

import (
	"strings"
	"testing"
)

func TestNewCode_Format(t *testing.T) {
	code, err := newCode("RABAIS")
	if err != nil {
		t.Fatalf("newCode: %v", err)
	}
	if !strings.HasPrefix(code, "RABAIS-") {
		t.Fatalf("expected RABAIS- prefix, got %q", code)
	}
	suffix := strings.TrimPrefix(code, "RABAIS-")
	if len(suffix) != codeSuffixLen {
		t.Fatalf("expected %d char suffix, got %q", codeSuffixLen, suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("suffix char %q outside alphabet", r)
		}
	}
}

func TestNewCode_AlphabetOmitsAmbiguousChars(t *testing.T) {
	for _, c := range "0O1I" {
		if strings.ContainsRune(codeAlphabet, c) {
			t.Fatalf("alphabet must not contain %q", c)
		}
	}
}
