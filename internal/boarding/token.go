package boarding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMalformedToken     = errors.New("malformed boarding token")
	ErrSignatureMismatch  = errors.New("boarding token signature mismatch")
	ErrEmptySigningSecret = errors.New("boarding token secret not configured")
)

// tokenVersion marks the canonical payload layout
const tokenVersion = 1

// tokenPayload is the signed canonical payload. Field order is fixed by the
// struct so issuance is byte-stable.
type tokenPayload struct {
	V           int    `json:"v"`
	SeatID      string `json:"seatId"`
	DepartureID string `json:"departureId"`
	SeatNumber  string `json:"seatNumber"`
	IssuedAt    int64  `json:"issuedAt"`
}

// legacyPayload is the pre-versioning layout still in circulation on printed
// tickets: single-quoted keys and the departure under "scheduleId".
type legacyPayload struct {
	SeatID     string `json:"seatId"`
	ScheduleID string `json:"scheduleId"`
	SeatNumber string `json:"seatNumber"`
	IssuedAt   int64  `json:"issuedAt"`
}

// Claims is the verified content of a boarding token
type Claims struct {
	SeatID      uuid.UUID
	DepartureID uuid.UUID
	SeatNumber  string
	IssuedAt    time.Time
}

// TokenService issues and verifies boarding credentials. Tokens are
// `payload|base64(HMAC-SHA256(payload))`; verification accepts both the
// canonical payload and the legacy layout, and nothing else. The secret is
// injected, never read from a default.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySigningSecret
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue mints a canonical token for a confirmed seat
func (t *TokenService) Issue(seatID, departureID uuid.UUID, seatNumber string, issuedAt time.Time) (string, error) {
	payload, err := json.Marshal(tokenPayload{
		V:           tokenVersion,
		SeatID:      seatID.String(),
		DepartureID: departureID.String(),
		SeatNumber:  seatNumber,
		IssuedAt:    issuedAt.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}

	return string(payload) + "|" + t.sign(payload), nil
}

// Verify checks the signature and decodes the payload. The signature covers
// the raw payload bytes, so legacy tokens verify with the same secret.
func (t *TokenService) Verify(token string) (*Claims, error) {
	// Exactly one separator splits payload from signature; neither payload
	// layout contains a bare pipe.
	if strings.Count(token, "|") != 1 {
		return nil, ErrMalformedToken
	}
	idx := strings.Index(token, "|")
	if idx == 0 || idx == len(token)-1 {
		return nil, ErrMalformedToken
	}

	payload := []byte(token[:idx])
	gotSig, err := base64.StdEncoding.DecodeString(token[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: bad signature encoding", ErrMalformedToken)
	}

	mac := hmac.New(sha256.New, t.secret)
	mac.Write(payload)
	if !hmac.Equal(gotSig, mac.Sum(nil)) {
		return nil, ErrSignatureMismatch
	}

	return parseClaims(payload)
}

func (t *TokenService) sign(payload []byte) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func parseClaims(payload []byte) (*Claims, error) {
	var canonical tokenPayload
	if err := json.Unmarshal(payload, &canonical); err == nil && canonical.V == tokenVersion {
		return buildClaims(canonical.SeatID, canonical.DepartureID, canonical.SeatNumber, canonical.IssuedAt)
	}

	// Legacy tokens use single quotes and carry the departure as scheduleId
	var legacy legacyPayload
	normalized := strings.ReplaceAll(string(payload), "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &legacy); err != nil || legacy.SeatID == "" {
		return nil, fmt.Errorf("%w: unrecognized payload", ErrMalformedToken)
	}

	return buildClaims(legacy.SeatID, legacy.ScheduleID, legacy.SeatNumber, legacy.IssuedAt)
}

func buildClaims(seatID, departureID, seatNumber string, issuedAt int64) (*Claims, error) {
	seatUUID, err := uuid.Parse(seatID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad seat id", ErrMalformedToken)
	}
	departureUUID, err := uuid.Parse(departureID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad departure id", ErrMalformedToken)
	}

	return &Claims{
		SeatID:      seatUUID,
		DepartureID: departureUUID,
		SeatNumber:  seatNumber,
		IssuedAt:    time.Unix(issuedAt, 0),
	}, nil
}
