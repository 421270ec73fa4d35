package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformedToken is returned for tokens that cannot be decoded or that
// lack the username:secret shape.
var ErrMalformedToken = errors.New("malformed token")

// The API token is base64(username ":" installation secret). It is a
// shared-secret capability, not a signed or expiring credential: anyone
// holding the installation secret can mint a token for any username, and the
// only revocation is rotating the secret. Existing clients construct and
// parse this exact format, so it stays as-is.

// EncodeToken builds the API token for username under secret.
func EncodeToken(username, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + secret))
}

// DecodeToken splits a token into its username and secret parts. The split is
// on the first colon, so secrets may contain colons but usernames may not.
func DecodeToken(token string) (username, secret string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", ErrMalformedToken
	}
	username, secret, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", ErrMalformedToken
	}
	return username, secret, nil
}
