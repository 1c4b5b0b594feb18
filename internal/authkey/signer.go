// Package authkey implements the "Method A" auth_key URL signing scheme used by
// live CDN edges: ?auth_key={timestamp}-{rand}-{uid}-{md5hash}.
package authkey

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	// QueryParam is the name of the signature query parameter.
	QueryParam = "auth_key"

	// UID is the fixed user id field; this generator always signs as uid 0.
	UID = "0"

	randBytes = 8
)

// Signer produces auth_key query strings.
type Signer struct {
	Now   func() time.Time
	Rand  io.Reader
	Debug bool
}

// NewSigner returns a Signer backed by the wall clock and crypto/rand.
func NewSigner() *Signer {
	return &Signer{Now: time.Now, Rand: rand.Reader}
}

var defaultSigner = NewSigner()

// Generate returns "?auth_key=..." for path signed with key, or "" when key is empty.
func Generate(path, key string) string {
	s, err := defaultSigner.Sign(path, key)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return s
}

// Sign returns the query string for path, or "" if key is empty.
func (s *Signer) Sign(path, key string) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	nonce, err := s.randomHex()
	if err != nil {
		return "", fmt.Errorf("auth_key rand: %w", err)
	}

	prefix := Prefix(s.now().Unix(), nonce)
	input := DigestInput(path, prefix, key)
	hash := Digest(input)

	if s.Debug {
		log.Printf("[authkey] MD5('%s') = %s", input, hash)
	}

	return "?" + QueryParam + "=" + prefix + hash, nil
}

func (s *Signer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Signer) randomHex() (string, error) {
	r := s.Rand
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, randBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Prefix builds "{timestamp}-{rand}-{uid}-", the signed part that precedes the hash.
func Prefix(timestamp int64, nonce string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('-')
	b.WriteString(nonce)
	b.WriteByte('-')
	b.WriteString(UID)
	b.WriteByte('-')
	return b.String()
}

// DigestInput builds the hashed string: "{path}-{prefix}{key}".
// prefix already ends with '-' so the key follows it directly.
func DigestInput(path, prefix, key string) string {
	return path + "-" + prefix + key
}

// Digest is the lowercase hex MD5 of input.
func Digest(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
