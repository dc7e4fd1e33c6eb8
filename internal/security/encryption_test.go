package security

import (
	"bytes"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}

	key := DeriveKey("test-password", salt)
	plaintext := []byte("provider API key sk-abc123")

	encrypted, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatal(err)
	}

	if encrypted == string(plaintext) {
		t.Fatal("encrypted should differ from plaintext")
	}

	decrypted, err := Decrypt(encrypted, key)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Fatalf("expected %q, got %q", plaintext, decrypted)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	salt, _ := GenerateSalt()
	key1 := DeriveKey("password1", salt)
	key2 := DeriveKey("password2", salt)

	encrypted, err := Encrypt([]byte("secret"), key1)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Decrypt(encrypted, key2)
	if err == nil {
		t.Fatal("expected decryption to fail with wrong key")
	}
}

func TestMaskKey(t *testing.T) {
	if MaskKey("short") != "****" {
		t.Fatal("short keys should be fully masked")
	}
	masked := MaskKey("sk-proj-abcdef1234567890")
	if masked == "sk-proj-abcdef1234567890" {
		t.Fatal("key should be masked")
	}
	if len(masked) >= len("sk-proj-abcdef1234567890") {
		t.Fatalf("mask should shorten the key, got %s", masked)
	}
}
