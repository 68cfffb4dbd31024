// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// MinPasswordLength applies to registration, user creation and bootstrap.
const MinPasswordLength = 8

const saltLength = 16

var errMalformedHash = errors.New("malformed password hash")

// argonParams are the cost settings encoded into every stored hash. A
// stored hash whose params differ from currentParams is upgraded on the
// next successful login.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

type storedHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (storedHash, error) {
	var h storedHash

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return h, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return h, fmt.Errorf("%w: version %q", errMalformedHash, fields[2])
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&h.params.memory, &h.params.time, &h.params.threads); err != nil {
		return h, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return h, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}
	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	h.params.keyLen = uint32(len(h.key))

	return h, nil
}

func (h storedHash) matches(password string) bool {
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentParams.encode(salt, currentParams.derive(password, salt)), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// dummyHash is verified against when the account does not exist, so a
// miss costs the same as a wrong password.
var dummyHash = func() storedHash {
	salt := make([]byte, saltLength)
	return storedHash{params: currentParams, salt: salt, key: currentParams.derive("", salt)}
}()

// VerifyPasswordTimingSafe always runs one argon2 derivation. A nil or
// empty encodedHash never verifies. When the stored hash uses outdated
// params and the password matches, the second result is a fresh hash the
// caller should persist.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		dummyHash.matches(password)
		return false, "", nil
	}

	h, err := parseHash(*encodedHash)
	if err != nil {
		dummyHash.matches(password)
		return false, "", err
	}

	if !h.matches(password) {
		return false, "", nil
	}

	if h.params == currentParams {
		return true, "", nil
	}

	rehashed, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // verification succeeded; the upgrade is retried next login
		return true, "", nil
	}
	return true, rehashed, nil
}
