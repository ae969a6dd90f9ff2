package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/recipient/pkg/ports"
)

// EnvelopePrefix marks an encrypted field value.
const EnvelopePrefix = "enc:v1:"

var (
	// ErrNotEncrypted is returned when a stored field lacks the envelope.
	ErrNotEncrypted = errors.New("field is not encrypted")

	// ErrKeySize is returned for keys that are not 32 bytes.
	ErrKeySize = errors.New("key must be 32 bytes (AES-256)")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into an EncryptionConfig.
func ParseKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := decodeKey(active)
	if err != nil {
		return cfg, fmt.Errorf("active key: %w", err)
	}
	cfg.ActiveKey = key
	for i, f := range fallbacks {
		if strings.TrimSpace(f) == "" {
			continue
		}
		k, err := decodeKey(f)
		if err != nil {
			return cfg, fmt.Errorf("fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.RecipientStore
	config EncryptionConfig
}

// NewEncryptionMiddleware encrypts the account number of every record with
// AES-GCM before it reaches the store. Other fields stay readable so store
// layouts and listings keep working.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrKeySize
		}
	}
	return func(next ports.RecipientStore) ports.RecipientStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, record *ports.Record) error {
	if record == nil {
		return m.next.Save(ctx, record)
	}
	ciphertext, err := encrypt([]byte(record.AccountNumber), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt recipient %s: %w", record.ID, err)
	}

	sealed := record.Clone()
	sealed.AccountNumber = EnvelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	record, err := m.next.Load(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	encoded, ok := strings.CutPrefix(record.AccountNumber, EnvelopePrefix)
	if !ok {
		// Fail secure: a configured key means every record is expected sealed.
		return nil, fmt.Errorf("recipient %s: %w", recipientID, ErrNotEncrypted)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt recipient %s: %w", recipientID, err)
	}

	opened := record.Clone()
	opened.AccountNumber = string(plainText)
	return opened, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, recipientID string) error {
	return m.next.Delete(ctx, recipientID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
