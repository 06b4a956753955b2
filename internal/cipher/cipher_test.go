package cipher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, ".case_key"))

	plain := []byte(`{"cases":[{"id":0,"label":"urgent"}]}`)
	enc, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(enc, plain) {
		t.Fatal("ciphertext equals plaintext")
	}

	dec, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Fatalf("round trip mismatch: got %q", dec)
	}
}

func TestKeyPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, ".case_key")

	enc, err := New(keyPath).Encrypt([]byte("chest pain"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// A fresh instance over the same key file must decrypt.
	dec, err := New(keyPath).Decrypt(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(dec) != "chest pain" {
		t.Fatalf("got %q", dec)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("key file missing: %v", err)
	}
	if info.Size() < 32 {
		t.Fatalf("key too short: %d bytes", info.Size())
	}
}
