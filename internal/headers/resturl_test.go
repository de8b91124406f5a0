package headers

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

// makeToken builds an unsigned JWT carrying the given claims.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestServiceBaseURL_ConfiguredWins(t *testing.T) {
	token := makeToken(t, map[string]any{"aud": "https://contoso.example/foo"})

	got, err := ServiceBaseURL("https://configured.example", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://configured.example" {
		t.Fatalf("expected configured URL, got %q", got)
	}

	// Even a garbage token is never looked at.
	got, err = ServiceBaseURL("https://configured.example", "not-a-jwt")
	if err != nil || got != "https://configured.example" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestServiceBaseURL_Audience(t *testing.T) {
	tests := []struct {
		name string
		aud  string
		want string
	}{
		{
			name: "url audience used verbatim",
			aud:  "https://contoso.example/foo",
			want: "https://contoso.example/foo",
		},
		{
			name: "guid/host@tenant",
			aud:  "00000003-0000-0000-c000-000000000000/outlook.office365.com@tenant-guid",
			want: "https://outlook.office365.com",
		},
		{
			name: "no match falls back",
			aud:  "urn:something-else",
			want: DefaultServiceURL,
		},
		{
			name: "empty host falls back",
			aud:  "guid/@tenant",
			want: DefaultServiceURL,
		},
		{
			name: "http is not https",
			aud:  "http://insecure.example",
			want: DefaultServiceURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ServiceBaseURL("", makeToken(t, map[string]any{"aud": tt.aud}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestServiceBaseURL_UndecodableTokenFallsBack(t *testing.T) {
	tests := map[string]string{
		"one segment":       "opaque",
		"bad base64":        "a.!!!.c",
		"payload not json":  "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c",
		"aud not a string":  makeToken(t, map[string]any{"aud": []string{"x"}}),
		"aud claim missing": makeToken(t, map[string]any{"sub": "me"}),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ServiceBaseURL("", token)
			if err == nil {
				t.Fatal("expected a decode error to be reported")
			}
			if got != DefaultServiceURL {
				t.Fatalf("expected default URL, got %q", got)
			}
		})
	}
}

func TestDecodeJWTPayload_PaddedSegment(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"aud":"https://ab.example"}`))
	claims, err := decodeJWTPayload("h." + payload + ".s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims["aud"] != "https://ab.example" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}
