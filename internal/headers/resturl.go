package headers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultServiceURL is used when neither the host nor the token names a
// REST endpoint.
const DefaultServiceURL = "https://outlook.office.com"

var (
	// audURLPattern matches an audience that is already a URL.
	audURLPattern = regexp.MustCompile(`^https://`)

	// audHostPattern matches the "GUID/hostname@GUID" audience form.
	audHostPattern = regexp.MustCompile(`/([^@]*)@`)
)

// ServiceBaseURL resolves the REST endpoint root. A non-empty configured
// URL always wins; otherwise the token's aud claim is consulted. It never
// fails: an unreadable token resolves to DefaultServiceURL and the decode
// error is returned alongside for logging.
func ServiceBaseURL(configured, token string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	aud, err := audience(token)
	if err != nil {
		return DefaultServiceURL, err
	}
	return baseURLFromAudience(aud), nil
}

// baseURLFromAudience maps an aud claim to a service URL.
func baseURLFromAudience(aud string) string {
	if audURLPattern.MatchString(aud) {
		return aud
	}
	if m := audHostPattern.FindStringSubmatch(aud); m != nil && m[1] != "" {
		return "https://" + m[1]
	}
	return DefaultServiceURL
}

// audience decodes the JWT payload segment and returns its aud claim.
// Signatures are not checked.
func audience(token string) (string, error) {
	claims, err := decodeJWTPayload(token)
	if err != nil {
		return "", err
	}
	aud, ok := claims["aud"].(string)
	if !ok {
		return "", fmt.Errorf("token has no string aud claim")
	}
	return aud, nil
}

func decodeJWTPayload(token string) (map[string]any, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid token format: %d segments", len(parts))
	}
	// Some issuers pad their segments; RawURLEncoding rejects padding.
	decoded, err := base64.RawURLEncoding.DecodeString(
		strings.TrimRight(parts[1], "="),
	)
	if err != nil {
		return nil, fmt.Errorf("decoding token payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("decoding token claims: %w", err)
	}
	return payload, nil
}
