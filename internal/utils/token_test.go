package utils

import "testing"

func TestRandomHexLengthAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := RandomHex(32)
		if err != nil {
			t.Fatalf("RandomHex: %v", err)
		}
		if len(s) != 64 {
			t.Fatalf("length = %d, want 64", len(s))
		}
		if seen[s] {
			t.Fatal("duplicate token generated")
		}
		seen[s] = true
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in the clear")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
