package authkey_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/live-urlgen/internal/authkey"
)

var authKeyPattern = regexp.MustCompile(`^\?auth_key=\d+-[0-9a-f]{16}-0-[0-9a-f]{32}$`)

func fixedSigner(ts int64, randByte byte) *authkey.Signer {
	return &authkey.Signer{
		Now:  func() time.Time { return time.Unix(ts, 0) },
		Rand: bytes.NewReader(bytes.Repeat([]byte{randByte}, 8)),
	}
}

func TestGenerate_EmptyKey(t *testing.T) {
	assert.Equal(t, "", authkey.Generate("/live/123", ""))
	assert.Equal(t, "", authkey.Generate("", ""))
}

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		got := authkey.Generate("/live/123", "streamkey")
		assert.Regexp(t, authKeyPattern, got)
	}
}

func TestSign_Deterministic(t *testing.T) {
	s := fixedSigner(1700000000, 0x0a)
	got, err := s.Sign("/live/123", "key")
	require.NoError(t, err)

	prefix := "1700000000-0a0a0a0a0a0a0a0a-0-"
	want := "?auth_key=" + prefix + authkey.Digest("/live/123-"+prefix+"key")
	assert.Equal(t, want, got)

	// recomputing over the same concatenation yields the same digest
	assert.Equal(t, authkey.Digest(authkey.DigestInput("/live/123", prefix, "key")),
		strings.TrimPrefix(got, "?auth_key="+prefix))
}

func TestSign_RandZeroPadded(t *testing.T) {
	s := fixedSigner(1, 0x01)
	got, err := s.Sign("/a", "k")
	require.NoError(t, err)
	assert.Contains(t, got, "-0101010101010101-0-")
}

func TestSign_RandFailure(t *testing.T) {
	s := &authkey.Signer{Now: time.Now, Rand: bytes.NewReader([]byte{1, 2})}
	_, err := s.Sign("/a", "k")
	assert.Error(t, err)
}

func TestDigest_KnownVector(t *testing.T) {
	// md5("") and md5("abc")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", authkey.Digest(""))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", authkey.Digest("abc"))
}

func TestDigestInput_Order(t *testing.T) {
	assert.Equal(t, "/live/123-1-ab-0-secret", authkey.DigestInput("/live/123", authkey.Prefix(1, "ab"), "secret"))
}

func TestParse(t *testing.T) {
	tok, err := authkey.Parse("1700000000-0a0a0a0a0a0a0a0a-0-" + strings.Repeat("f", 32))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), tok.Timestamp)
	assert.Equal(t, "0a0a0a0a0a0a0a0a", tok.Rand)
	assert.Equal(t, "0", tok.UID)
	assert.Equal(t, "1700000000-0a0a0a0a0a0a0a0a-0-", tok.Prefix())

	for _, bad := range []string{"", "1-2-3", "x-ab-0-" + strings.Repeat("f", 32), "1-ab-0-short", "1--0-" + strings.Repeat("f", 32)} {
		_, err := authkey.Parse(bad)
		assert.ErrorIs(t, err, authkey.ErrMalformed, bad)
	}
}

func TestValidator(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }

	sign := func(path, key string, at int64, b byte) string {
		q, err := fixedSigner(at, b).Sign(path, key)
		require.NoError(t, err)
		return strings.TrimPrefix(q, "?auth_key=")
	}

	t.Run("valid", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Now: clock}
		assert.NoError(t, v.Validate("/live/123", sign("/live/123", "k", now.Unix(), 1), "k"))
	})

	t.Run("missing", func(t *testing.T) {
		v := &authkey.Validator{Now: clock}
		assert.ErrorIs(t, v.Validate("/live/123", "", "k"), authkey.ErrMissing)
	})

	t.Run("wrong key", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Now: clock}
		assert.ErrorIs(t, v.Validate("/live/123", sign("/live/123", "k", now.Unix(), 1), "other"), authkey.ErrInvalidSignature)
	})

	t.Run("wrong path", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Now: clock}
		assert.ErrorIs(t, v.Validate("/live/124", sign("/live/123", "k", now.Unix(), 1), "k"), authkey.ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Minute, Now: clock}
		old := sign("/live/123", "k", now.Add(-2*time.Minute).Unix(), 1)
		assert.ErrorIs(t, v.Validate("/live/123", old, "k"), authkey.ErrExpired)
	})

	t.Run("future", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Skew: time.Second, Now: clock}
		future := sign("/live/123", "k", now.Add(time.Minute).Unix(), 1)
		assert.ErrorIs(t, v.Validate("/live/123", future, "k"), authkey.ErrExpired)
	})

	t.Run("replay", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Now: clock, Replay: authkey.NewReplayGuard(16, time.Hour)}
		ak := sign("/live/123", "k", now.Unix(), 7)
		require.NoError(t, v.Validate("/live/123", ak, "k"))
		assert.ErrorIs(t, v.Validate("/live/123", ak, "k"), authkey.ErrReplayed)
		assert.NoError(t, v.Validate("/live/123_lhd", sign("/live/123_lhd", "k", now.Unix(), 7), "k"))
	})

	t.Run("url", func(t *testing.T) {
		v := &authkey.Validator{TTL: time.Hour, Now: clock}
		u := "http://pull.example.com/live/123.flv?auth_key=" + sign("/live/123.flv", "k", now.Unix(), 3)
		assert.NoError(t, v.ValidateURL(u, "k"))
		assert.ErrorIs(t, v.ValidateURL("http://pull.example.com/live/123.flv", "k"), authkey.ErrMissing)
	})
}

func TestReplayGuard_WindowExpiry(t *testing.T) {
	g := authkey.NewReplayGuard(4, time.Minute)
	t0 := time.Unix(100, 0)
	assert.False(t, g.Seen("/a", "r", t0))
	assert.True(t, g.Seen("/a", "r", t0.Add(30*time.Second)))
	assert.False(t, g.Seen("/a", "r", t0.Add(2*time.Minute)))
	assert.Equal(t, 1, g.Len())
}
