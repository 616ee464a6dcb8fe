// Package filestore is a file-backed securestore.Store. Each value is sealed
// with AES-256-GCM under a key derived from a caller passphrase, so entries
// stay opaque at rest even when the backing directory is readable.
package filestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"

	"github.com/jrsteele09/go-auth-client/securestore"
)

const (
	saltFile       = ".salt"
	saltLength     = 16
	keyLength      = 32
	pbkdf2Rounds   = 10000
	dirPermission  = 0o700
	filePermission = 0o600
)

// Store is a securestore.Store backed by one encrypted file per key inside a
// namespace directory.
type Store struct {
	dir string
	key []byte
}

var _ securestore.Store = (*Store)(nil)

// New opens (creating if needed) a file store rooted at baseDir, scoped to
// the given namespace. The encryption key is derived from passphrase with
// PBKDF2 over a per-store random salt created on first use.
func New(baseDir, namespace, passphrase string) (*Store, error) {
	if namespace == "" {
		return nil, errors.New("[filestore.New] namespace is required")
	}
	if passphrase == "" {
		return nil, errors.New("[filestore.New] passphrase is required")
	}
	if strings.HasPrefix(baseDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "[filestore.New] os.UserHomeDir")
		}
		baseDir = filepath.Join(home, baseDir[2:])
	}

	dir := filepath.Join(baseDir, namespace)
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] os.MkdirAll")
	}

	salt, err := loadOrCreateSalt(filepath.Join(dir, saltFile))
	if err != nil {
		return nil, err
	}

	return &Store{
		dir: dir,
		key: pbkdf2.Key([]byte(passphrase), salt, pbkdf2Rounds, keyLength, sha256.New),
	}, nil
}

// Put implements securestore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(securestore.ErrWriteFailed, err.Error())
	}
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(key), sealed, filePermission); err != nil {
		return errors.Wrap(securestore.ErrWriteFailed, err.Error())
	}
	return nil
}

// Get implements securestore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(securestore.ErrReadFailed, err.Error())
	}
	sealed, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, securestore.ErrNotFound
		}
		return nil, errors.Wrap(securestore.ErrReadFailed, err.Error())
	}
	return s.open(sealed)
}

// Delete implements securestore.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(securestore.ErrDeleteFailed, err.Error())
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(securestore.ErrDeleteFailed, err.Error())
	}
	return nil
}

// Has implements securestore.Store.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(securestore.ErrReadFailed, err.Error())
	}
	if _, err := os.Stat(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(securestore.ErrReadFailed, err.Error())
	}
	return true, nil
}

func (s *Store) path(key string) string {
	// Keys are caller-controlled; encode so they cannot escape the namespace
	// directory.
	return filepath.Join(s.dir, base64.URLEncoding.EncodeToString([]byte(key)))
}

func (s *Store) seal(value []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, errors.Wrap(securestore.ErrEncryptFailed, err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(securestore.ErrEncryptFailed, err.Error())
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(securestore.ErrEncryptFailed, err.Error())
	}
	return gcm.Seal(nonce, nonce, value, nil), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, errors.Wrap(securestore.ErrDecryptFailed, err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(securestore.ErrDecryptFailed, err.Error())
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.Wrap(securestore.ErrDecryptFailed, "sealed value too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	value, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(securestore.ErrDecryptFailed, err.Error())
	}
	return value, nil
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil && len(salt) == saltLength {
		return salt, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "[filestore.loadOrCreateSalt] os.ReadFile")
	}

	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "[filestore.loadOrCreateSalt] rand.Read")
	}
	if err := os.WriteFile(path, salt, filePermission); err != nil {
		return nil, errors.Wrap(err, "[filestore.loadOrCreateSalt] os.WriteFile")
	}
	return salt, nil
}
