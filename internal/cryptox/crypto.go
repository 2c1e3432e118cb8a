// Package cryptox implements the credential encryption engine: AES-256-CBC
// with a per-encryption random IV under a single process-wide key derived
// from a master secret via scrypt.
//
// The stored blob format is a JSON object {"iv":"<hex>","encryptedData":"<hex>"}
// serialized to a string. The format carries no integrity tag, so a corrupted
// blob and a wrong key are reported identically as common.ErrCrypto.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dsmelov/securekey/internal/common"
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters for deriving the process key. The salt is fixed:
// the derived key must be stable across restarts so existing blobs stay
// readable.
const (
	scryptN       = 1 << 14
	scryptR       = 8
	scryptP       = 1
	derivedKeyLen = 32

	ivSize = 16
)

var kdfSalt = []byte("salt")

// KeyProvider supplies the 256-bit encryption key. It is injected into the
// Engine so tests can substitute ephemeral keys.
type KeyProvider interface {
	Key() ([]byte, error)
}

// ScryptKeyProvider derives the key from a master secret once and caches it
// for the process lifetime. Key derivation is intentionally slow, so it must
// not run per operation.
type ScryptKeyProvider struct {
	secret string

	once sync.Once
	key  []byte
	err  error
}

func NewScryptKeyProvider(secret string) *ScryptKeyProvider {
	return &ScryptKeyProvider{secret: secret}
}

func (p *ScryptKeyProvider) Key() ([]byte, error) {
	p.once.Do(func() {
		if p.secret == "" {
			p.err = fmt.Errorf("%w: encryption secret is not configured", common.ErrCrypto)
			return
		}
		p.key, p.err = scrypt.Key([]byte(p.secret), kdfSalt, scryptN, scryptR, scryptP, derivedKeyLen)
	})
	return p.key, p.err
}

// StaticKeyProvider returns a fixed key. Intended for tests.
type StaticKeyProvider struct {
	K []byte
}

func (p *StaticKeyProvider) Key() ([]byte, error) {
	if len(p.K) != derivedKeyLen {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrCrypto, derivedKeyLen)
	}
	return p.K, nil
}

// Blob is the encrypted secret as stored: hex-encoded IV and ciphertext.
type Blob struct {
	IV            string `json:"iv"`
	EncryptedData string `json:"encryptedData"`
}

// String serializes the blob to its storage representation.
func (b *Blob) String() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return string(data), nil
}

// ParseBlob deserializes a stored blob string.
func ParseBlob(s string) (*Blob, error) {
	var b Blob
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return nil, fmt.Errorf("%w: malformed blob: %v", common.ErrCrypto, err)
	}
	return &b, nil
}

// Engine encrypts and decrypts single secrets. Stateless across calls except
// for the shared derived key, which is read-only after first use and safe for
// concurrent readers.
type Engine struct {
	keys KeyProvider
}

func NewEngine(keys KeyProvider) *Engine {
	return &Engine{keys: keys}
}

// Encrypt seals plaintext under a fresh random 16-byte IV. Two calls with the
// same plaintext produce different blobs.
func (e *Engine) Encrypt(plaintext string) (*Blob, error) {
	key, err := e.keys.Key()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	iv := common.GenerateRandByteArray(ivSize)

	padded := pkcs7Pad([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	common.WipeByteArray(padded)

	return &Blob{
		IV:            hex.EncodeToString(iv),
		EncryptedData: hex.EncodeToString(ciphertext),
	}, nil
}

// Decrypt opens a blob using its own IV and the shared key. Malformed,
// truncated, or wrong-key input all fail with common.ErrCrypto.
func (e *Engine) Decrypt(b *Blob) (string, error) {
	key, err := e.keys.Key()
	if err != nil {
		return "", err
	}

	iv, err := hex.DecodeString(b.IV)
	if err != nil || len(iv) != ivSize {
		return "", fmt.Errorf("%w: bad iv", common.ErrCrypto)
	}

	ciphertext, err := hex.DecodeString(b.EncryptedData)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", common.ErrCrypto)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: truncated ciphertext", common.ErrCrypto)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, block.BlockSize())
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", common.ErrCrypto)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}

var errBadPadding = fmt.Errorf("%w: invalid padding", common.ErrCrypto)
