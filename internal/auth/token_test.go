package auth

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quillfeed/internal/model"
)

const testTTL = 15 * time.Minute

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("test-secret-key-0123456789abcdef"), testTTL)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil, testTTL)
	assert.Error(t, err, "empty secret must be rejected")

	_, err = NewCodec([]byte("secret"), 0)
	assert.Error(t, err, "non-positive ttl must be rejected")
}

func TestCodec_IssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	subject := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Issue(subject, model.RoleUser, now)
	require.NoError(t, err)

	claims, err := codec.Verify(token, now)
	require.NoError(t, err)

	gotSubject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, subject, gotSubject)
	assert.Equal(t, string(model.RoleUser), claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(testTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := codec.Issue(uuid.New(), model.RoleUser, issued)
	require.NoError(t, err)

	// One second before expiry the token still verifies.
	_, err = codec.Verify(token, issued.Add(testTTL-time.Second))
	assert.NoError(t, err)

	// One second after expiry it fails with ErrTokenExpired.
	_, err = codec.Verify(token, issued.Add(testTTL+time.Second))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_TamperedPayload(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()

	token, err := codec.Issue(uuid.New(), model.RoleUser, now)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip a byte in the payload; the signature check must fail even
	// though the token is nowhere near expiry.
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	payload[0] ^= 0xff
	parts[1] = base64.RawURLEncoding.EncodeToString(payload)

	_, err = codec.Verify(strings.Join(parts, "."), now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	other, err := NewCodec([]byte("a-completely-different-secret-key"), testTTL)
	require.NoError(t, err)

	now := time.Now()
	token, err := codec.Issue(uuid.New(), model.RoleUser, now)
	require.NoError(t, err)

	_, err = other.Verify(token, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()

	for _, token := range []string{"", "garbage", "a.b.c", "ey.ey.ey"} {
		_, err := codec.Verify(token, now)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestCodec_RejectsUnsignedAlgorithm(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()

	// alg=none token with a plausible payload must not verify.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"` + uuid.NewString() + `"}`))
	unsigned := header + "." + payload + "."

	_, err := codec.Verify(unsigned, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_ConcurrentUse(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			subject := uuid.New()
			token, err := codec.Issue(subject, model.RoleUser, now)
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			claims, err := codec.Verify(token, now)
			if err != nil {
				t.Errorf("Verify: %v", err)
				return
			}
			got, err := claims.SubjectID()
			if err != nil || got != subject {
				t.Errorf("subject mismatch: %v %v", got, err)
			}
		}()
	}
	wg.Wait()
}
