package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// #region cipher
// Cipher encrypts and decrypts the case document using a SHA-256 keystream.
// The key lives next to the data it protects and is created on first use.
type Cipher struct {
	keyPath string
}

// New returns a Cipher whose key is stored at keyPath.
func New(keyPath string) *Cipher {
	return &Cipher{keyPath: keyPath}
}

// #endregion cipher

// #region key
func (c *Cipher) ensureKey() ([]byte, error) {
	data, err := os.ReadFile(c.keyPath)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.keyPath), 0755); err != nil {
		return nil, fmt.Errorf("key dir: %w", err)
	}
	if err := os.WriteFile(c.keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

// #endregion key

// #region keystream
func keystream(key []byte, length int) []byte {
	stream := make([]byte, 0, length+32)
	counter := uint64(0)
	for len(stream) < length {
		buf := make([]byte, len(key)+8)
		copy(buf, key)
		binary.BigEndian.PutUint64(buf[len(key):], counter)
		h := sha256.Sum256(buf)
		stream = append(stream, h[:]...)
		counter++
	}
	return stream[:length]
}

// #endregion keystream

// #region encrypt-decrypt
// Encrypt XORs plaintext against the keystream and returns base64.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	key, err := c.ensureKey()
	if err != nil {
		return nil, err
	}
	ks := keystream(key, len(plaintext))
	out := make([]byte, len(plaintext))
	for i := range plaintext {
		out[i] = plaintext[i] ^ ks[i]
	}
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(out)))
	base64.StdEncoding.Encode(encoded, out)
	return encoded, nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(encoded []byte) ([]byte, error) {
	key, err := c.ensureKey()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(raw, encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	raw = raw[:n]
	ks := keystream(key, len(raw))
	plain := make([]byte, len(raw))
	for i := range raw {
		plain[i] = raw[i] ^ ks[i]
	}
	return plain, nil
}

// #endregion encrypt-decrypt
