package authkey

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissing          = errors.New("auth_key missing")
	ErrMalformed        = errors.New("auth_key malformed")
	ErrInvalidSignature = errors.New("auth_key signature mismatch")
	ErrExpired          = errors.New("auth_key expired")
	ErrReplayed         = errors.New("auth_key replayed")
)

// Token is a parsed auth_key value.
type Token struct {
	Timestamp int64
	Rand      string
	UID       string
	Hash      string
}

// Prefix returns the signed prefix the token was built from.
func (t Token) Prefix() string {
	return strconv.FormatInt(t.Timestamp, 10) + "-" + t.Rand + "-" + t.UID + "-"
}

// Parse splits an auth_key value ("{timestamp}-{rand}-{uid}-{hash}").
func Parse(value string) (Token, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 4 {
		return Token{}, ErrMalformed
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts < 0 {
		return Token{}, ErrMalformed
	}
	if parts[1] == "" || parts[2] == "" || len(parts[3]) != md5HexLen {
		return Token{}, ErrMalformed
	}
	return Token{Timestamp: ts, Rand: parts[1], UID: parts[2], Hash: strings.ToLower(parts[3])}, nil
}

const md5HexLen = 32

// Validator checks auth_key values the way an edge would.
// A zero TTL disables the age check.
type Validator struct {
	TTL    time.Duration
	Skew   time.Duration
	Now    func() time.Time
	Replay *ReplayGuard
}

// Validate verifies authKey (the bare parameter value) for path under key.
func (v *Validator) Validate(path, authKey, key string) error {
	if authKey == "" {
		return ErrMissing
	}
	tok, err := Parse(authKey)
	if err != nil {
		return err
	}

	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}
	issued := time.Unix(tok.Timestamp, 0)
	if issued.After(now.Add(v.Skew)) {
		return fmt.Errorf("%w: issued in the future", ErrExpired)
	}
	if v.TTL > 0 && now.Sub(issued) > v.TTL {
		return ErrExpired
	}

	expected := Digest(DigestInput(path, tok.Prefix(), key))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(tok.Hash)) != 1 {
		return ErrInvalidSignature
	}

	if v.Replay != nil && v.Replay.Seen(path, tok.Rand, now) {
		return ErrReplayed
	}
	return nil
}

// ValidateURL extracts the path and auth_key from a full signed URL.
func (v *Validator) ValidateURL(rawURL, key string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v.Validate(u.Path, u.Query().Get(QueryParam), key)
}
