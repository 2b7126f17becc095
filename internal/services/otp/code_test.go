package otp

import "testing"

func TestNewCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewCode(6)
		if err != nil {
			t.Fatalf("new code: %v", err)
		}
		if code < 100000 || code > 999999 {
			t.Fatalf("code %d outside six-digit range", code)
		}
	}

	code, err := NewCode(4)
	if err != nil {
		t.Fatalf("new code: %v", err)
	}
	if code < 1000 || code > 9999 {
		t.Fatalf("code %d outside four-digit range", code)
	}
}

func TestNewCodeRejectsBadWidth(t *testing.T) {
	for _, digits := range []int{0, 3, 10, -1} {
		if _, err := NewCode(digits); err == nil {
			t.Fatalf("width %d should be rejected", digits)
		}
	}
}
