package auth

import (
	"testing"
)

func TestPasswordHasher_Hash(t *testing.T) {
	hasher := NewPasswordHasher()

	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "password123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!#$%^&*()",
		},
		{
			name:     "unicode password",
			password: "密码123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			if hash == "" {
				t.Error("Hash() returned empty string")
			}

			if hash == tt.password {
				t.Error("Hash() returned the original password")
			}

			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() returned false for correct password")
			}
		})
	}
}

func TestPasswordHasher_Verify(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "testpassword123"

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !hasher.Verify(password, hash) {
		t.Error("Verify() returned false for correct password")
	}

	if hasher.Verify("wrong-password", hash) {
		t.Error("Verify() returned true for wrong password")
	}

	if hasher.Verify(password, "not-a-valid-hash") {
		t.Error("Verify() returned true for invalid hash")
	}
}
