package token

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Marshal serializes a token into the bytes persisted in the secure store.
func Marshal(t Token) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "[token.Marshal] json.Marshal")
	}
	return data, nil
}

// Unmarshal decodes a token previously produced by Marshal. The ExpiresAt >
// IssuedAt invariant is re-checked so a corrupted entry is rejected rather
// than resurrected.
func Unmarshal(data []byte) (Token, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, errors.Wrap(err, "[token.Unmarshal] json.Unmarshal")
	}
	if t.AccessSecret == "" {
		return Token{}, errors.New("[token.Unmarshal] missing access secret")
	}
	if !t.ExpiresAt.After(t.IssuedAt) {
		return Token{}, errors.New("[token.Unmarshal] expiresAt not after issuedAt")
	}
	return t, nil
}
