package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const tokenIssuer = "shelfmate-client"

// ErrInvalidToken is returned when a persisted token cannot be decrypted or fails validation.
var ErrInvalidToken = errors.New("invalid session token")

// Sealer wraps the provider-issued user identifier in a PASETO v4.local token bound to this device.
type Sealer struct {
	key paseto.V4SymmetricKey
	now func() time.Time
}

// NewSealer creates a sealer from a 32-byte device key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("device key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &Sealer{key: symmetricKey, now: time.Now}, nil
}

// Seal encrypts localAuthID into a token suitable for the preference store.
func (s *Sealer) Seal(localAuthID string) (string, error) {
	if localAuthID == "" {
		return "", errors.New("cannot seal an empty identifier")
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(localAuthID)
	token.SetIssuedAt(s.now())

	return token.V4Encrypt(s.key, nil), nil
}

// Open decrypts a token produced by Seal and returns the identifier it carries.
func (s *Sealer) Open(sealed string) (string, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.key, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return subject, nil
}
