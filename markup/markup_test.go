package markup

import (
	"testing"

	"github.com/pipe01/lexkit/token"
)

func assert[T comparable](t *testing.T, expected, got T, msg string) {
	t.Helper()

	if got != expected {
		t.Fatalf("%s: expected %v, got %v", msg, expected, got)
	}
}

func assertTokens(t *testing.T, expected, got []Token) {
	t.Helper()

	if len(expected) != len(got) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(got), got)
	}

	for i := range expected {
		if !expected[i].Equal(got[i]) {
			t.Fatalf("token %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func n(local string) token.DataName {
	return token.DataName{Local: local}
}

func ns(local, namespace string) token.DataName {
	return token.DataName{Local: local, Namespace: namespace}
}
