package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/pkg/errors"
)

const totpSecretBytes = 20

// base32NoPadding matches what authenticator apps expect in otpauth URIs.
var base32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// totpService implements service.TOTPService per RFC 6238 with HMAC-SHA1,
// the algorithm every mainstream authenticator app supports.
type totpService struct {
	issuer string
	digits int
	period int
	skew   int
}

// NewTOTPService is the constructor for totpService.
func NewTOTPService(cfg *config.Config) service.TOTPService {
	return &totpService{
		issuer: cfg.TwoFactor.Issuer,
		digits: cfg.TwoFactor.Digits,
		period: cfg.TwoFactor.Period,
		skew:   cfg.TwoFactor.Skew,
	}
}

// GenerateSecret returns a fresh base32-encoded shared secret.
func (s *totpService) GenerateSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to read random secret")
	}

	return base32NoPadding.EncodeToString(raw), nil
}

// ProvisioningURI renders the otpauth:// URI for authenticator apps.
func (s *totpService) ProvisioningURI(secret, account string) string {
	label := url.PathEscape(s.issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	v.Set("period", strconv.Itoa(s.period))
	v.Set("digits", strconv.Itoa(s.digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// Verify checks a candidate code against the secret, accepting the configured
// skew window around the current time step.
func (s *totpService) Verify(secret, code string, now time.Time) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != s.digits || !isNumeric(trimmed) {
		return false
	}

	raw, err := base32NoPadding.DecodeString(strings.ToUpper(secret))
	if err != nil || len(raw) == 0 {
		return false
	}

	baseCounter := now.Unix() / int64(s.period)
	for step := -s.skew; step <= s.skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotpCode(raw, counter, s.digits)), []byte(trimmed)) == 1 {
			return true
		}
	}

	return false
}

// hotpCode implements RFC 4226 dynamic truncation.
func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return len(s) > 0
}
