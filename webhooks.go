package threads

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

// VerifyChallenge handles the platform's webhook subscription handshake.
// It checks the hub.mode and hub.verify_token query parameters against the
// configured verify token and returns the hub.challenge value to echo back.
// The boolean reports whether the handshake is valid; on false the caller
// should respond with 403.
func VerifyChallenge(params url.Values, verifyToken string) (string, bool) {
	if params.Get("hub.mode") != "subscribe" {
		return "", false
	}
	if params.Get("hub.verify_token") != verifyToken {
		return "", false
	}
	challenge := params.Get("hub.challenge")
	return challenge, challenge != ""
}

// VerifySignature checks a webhook delivery's X-Hub-Signature-256 header
// against the raw request body. The header carries a "sha256=" prefix
// followed by the hex HMAC of the body keyed with the app secret.
// Comparison is constant time.
func VerifySignature(body []byte, signatureHeader, appSecret string) bool {
	provided, ok := strings.CutPrefix(signatureHeader, "sha256=")
	if !ok {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(provided), []byte(expected))
}

// ParseWebhookPayload decodes a webhook delivery body. Callers should
// verify the signature with VerifySignature before trusting the contents.
func ParseWebhookPayload(body []byte) (*types.WebhookPayload, error) {
	var payload types.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &pkgerrs.ValidationError{Field: "body", Message: "invalid webhook payload: " + err.Error()}
	}
	if payload.Object == "" {
		return nil, &pkgerrs.ValidationError{Field: "object", Message: "webhook payload missing object"}
	}
	return &payload, nil
}
