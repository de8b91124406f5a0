package host

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/headers"
)

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) {
	return "", errors.New("keyring locked")
}

func TestConvertToRestID(t *testing.T) {
	got, ok := ConvertToRestID("AAMkAD+x/y=", headers.RestVersionV2)
	if !ok || got != "AAMkAD_x-y=" {
		t.Fatalf("got %q, %v", got, ok)
	}

	got, ok = ConvertToRestID("a/b", headers.RestVersionV1)
	if !ok || got != "a-b" {
		t.Fatalf("v1.0: got %q, %v", got, ok)
	}

	got, ok = ConvertToRestID("a/b", "beta")
	if ok || got != "a/b" {
		t.Fatalf("unknown version: got %q, %v", got, ok)
	}
}

func TestEnvironment_RequestCallbackToken(t *testing.T) {
	ctx := context.Background()
	opts := headers.TokenOptions{IsRest: true}

	env := &Environment{Tokens: StaticToken("  tok  ")}
	res := env.RequestCallbackToken(ctx, opts)
	if res.Status != headers.TokenSucceeded || res.Value != "tok" {
		t.Fatalf("unexpected result: %+v", res)
	}

	for name, env := range map[string]*Environment{
		"no source":    {},
		"empty token":  {Tokens: StaticToken("")},
		"source error": {Tokens: failingTokens{}},
	} {
		t.Run(name, func(t *testing.T) {
			res := env.RequestCallbackToken(ctx, opts)
			if res.Status != headers.TokenFailed || res.Err == nil {
				t.Fatalf("expected failure, got %+v", res)
			}
		})
	}
}

func TestEnvironment_RequestCallbackToken_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := &Environment{Tokens: StaticToken("tok")}
	res := env.RequestCallbackToken(ctx, headers.TokenOptions{IsRest: true})
	if res.Status != headers.TokenFailed || !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected cancelled failure, got %+v", res)
	}
}

func TestEnvironment_Accessors(t *testing.T) {
	env := &Environment{
		Platform: "OutlookIOS",
		ItemID:   "AAMk/1",
		RestURL:  " https://outlook.office365.com/ ",
		Logger:   zap.NewNop(),
	}

	if env.HostPlatformName() != "OutlookIOS" || env.RawItemID() != "AAMk/1" {
		t.Fatalf("unexpected accessors: %q %q", env.HostPlatformName(), env.RawItemID())
	}
	if got := env.ConfiguredRestURL(); got != "https://outlook.office365.com" {
		t.Fatalf("unexpected rest URL %q", got)
	}
	if got := env.ConvertToRestID("AAMk/1", "v9"); got != "AAMk/1" {
		t.Fatalf("unknown version should leave id alone, got %q", got)
	}
}
