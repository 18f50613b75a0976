package util

import "testing"

func TestDeriveAndVerifyPassword(t *testing.T) {
	hash, salt, err := DerivePassword("s3cret-pass")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	if len(hash) == 0 || len(salt) == 0 {
		t.Fatalf("expected hash and salt to be populated")
	}
	if !VerifyPassword("s3cret-pass", salt, hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-pass", salt, hash) {
		t.Fatalf("expected password verification to fail for wrong password")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short1"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := ValidatePassword("lettersonly"); err == nil {
		t.Fatalf("expected error for password without digits")
	}
	if err := ValidatePassword("12345678"); err == nil {
		t.Fatalf("expected error for password without letters")
	}
	if err := ValidatePassword("traveller42"); err != nil {
		t.Fatalf("expected password to pass validation: %v", err)
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := HashPassword("", []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error when password empty")
	}
	if _, err := HashPassword("secret", nil); err == nil {
		t.Fatalf("expected error when salt empty")
	}
}
