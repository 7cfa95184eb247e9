package boarding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret)
	require.NoError(t, err)
	return ts
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrEmptySigningSecret)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	seatID := uuid.New()
	departureID := uuid.New()
	issuedAt := time.Now().Truncate(time.Second)

	token, err := ts.Issue(seatID, departureID, "4B", issuedAt)
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, seatID, claims.SeatID)
	assert.Equal(t, departureID, claims.DepartureID)
	assert.Equal(t, "4B", claims.SeatNumber)
	assert.True(t, claims.IssuedAt.Equal(issuedAt))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(uuid.New(), uuid.New(), "4B", time.Now())
	require.NoError(t, err)

	// Flip the seat number inside the signed payload
	tampered := strings.Replace(token, `"4B"`, `"1A"`, 1)
	require.NotEqual(t, token, tampered)

	_, err = ts.Verify(tampered)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("some-other-secret")
	require.NoError(t, err)

	token, err := other.Issue(uuid.New(), uuid.New(), "2C", time.Now())
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "not-a-token"},
		{"extra separator", `{"v":1}|c2ln|bmF0dXJl`},
		{"missing signature", `{"v":1}|`},
		{"missing payload", "|c2lnbmF0dXJl"},
		{"signature not base64", `{"v":1}|%%%%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Verify(tt.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestVerifyRejectsUnrecognizedPayload(t *testing.T) {
	ts := newTestTokenService(t)

	// Correctly signed but not a payload shape we recognize
	payload := `{"foo":"bar"}`
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	token := payload + "|" + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	_, err := ts.Verify(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestVerifyAcceptsLegacyPayload(t *testing.T) {
	ts := newTestTokenService(t)

	seatID := uuid.New()
	departureID := uuid.New()
	issuedAt := time.Now().Truncate(time.Second)

	// Printed tickets from the old system: single-quoted keys, departure
	// carried as scheduleId, signed with the same secret.
	payload := fmt.Sprintf("{'seatId':'%s','scheduleId':'%s','seatNumber':'7A','issuedAt':%d}",
		seatID, departureID, issuedAt.Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	token := payload + "|" + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, seatID, claims.SeatID)
	assert.Equal(t, departureID, claims.DepartureID)
	assert.Equal(t, "7A", claims.SeatNumber)
	assert.True(t, claims.IssuedAt.Equal(issuedAt))
}

func TestLegacyTokenTamperingStillDetected(t *testing.T) {
	ts := newTestTokenService(t)

	payload := fmt.Sprintf("{'seatId':'%s','scheduleId':'%s','seatNumber':'7A','issuedAt':%d}",
		uuid.New(), uuid.New(), time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	token := strings.Replace(payload, "7A", "7B", 1) + "|" + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	_, err := ts.Verify(token)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}
