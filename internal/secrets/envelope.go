package secrets

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
)

// EnvelopeSeparator joins the ciphertext, IV and tag fields.
const EnvelopeSeparator = "#"

// ParsedEnvelope is an envelope split into its fields. Valid reports whether
// the tag matches a tag recomputed with the key the envelope was parsed with.
type ParsedEnvelope struct {
	Ciphertext string
	IV         string
	Tag        string
	Valid      bool
}

// CombineEnvelope serializes ciphertext and iv as ciphertext#iv#tag, where tag is
// base64(HMAC-SHA256(key, ciphertext#iv)). An empty key is allowed.
func CombineEnvelope(ciphertext, iv, key string) string {
	body := ciphertext + EnvelopeSeparator + iv
	return body + EnvelopeSeparator + envelopeTag(body, key)
}

// ParseEnvelope splits an envelope and validates its tag against key.
// It returns ErrMalformedEnvelope when data is not three non-empty fields.
// A tag mismatch is not an error: it is reported through Valid.
func ParseEnvelope(data, key string) (*ParsedEnvelope, error) {
	fields := strings.Split(strings.TrimRight(data, " \t\r\n"), EnvelopeSeparator)
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: expected 3 fields, found %d", kerrors.ErrMalformedEnvelope, len(fields))
	}
	for _, f := range fields {
		if f == "" {
			return nil, fmt.Errorf("%w: empty field", kerrors.ErrMalformedEnvelope)
		}
	}

	ciphertext, iv, tag := fields[0], fields[1], fields[2]
	want := envelopeTag(ciphertext+EnvelopeSeparator+iv, key)

	return &ParsedEnvelope{
		Ciphertext: ciphertext,
		IV:         iv,
		Tag:        tag,
		Valid:      hmac.Equal([]byte(tag), []byte(want)),
	}, nil
}

func envelopeTag(body, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
