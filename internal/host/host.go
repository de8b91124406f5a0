// Package host provides a headers.Host for running outside a mail client:
// the current message and platform come from configuration, and the token
// comes from the system keyring or the command line.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/credential"
	"github.com/nhle/mail-headers/internal/headers"
)

// TokenSource supplies the bearer token for one request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// KeyringToken reads the token stored under Key in the system keyring.
type KeyringToken struct {
	Key string
}

// Token implements TokenSource.
func (k KeyringToken) Token(_ context.Context) (string, error) {
	return credential.Get(k.Key)
}

// StaticToken is a token passed in directly, e.g. from a flag.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// Environment implements headers.Host.
type Environment struct {
	Platform string
	ItemID   string
	RestURL  string
	Tokens   TokenSource
	Logger   *zap.Logger
}

var _ headers.Host = (*Environment)(nil)

// RequestCallbackToken asks the token source for a token. Any error, an
// empty token, or a done context is reported as a failed status.
func (e *Environment) RequestCallbackToken(
	ctx context.Context,
	opts headers.TokenOptions,
) headers.TokenResult {
	if err := ctx.Err(); err != nil {
		return headers.TokenResult{Status: headers.TokenFailed, Err: err}
	}
	if e.Tokens == nil {
		return headers.TokenResult{
			Status: headers.TokenFailed,
			Err:    errors.New("no token source configured"),
		}
	}

	token, err := e.Tokens.Token(ctx)
	if err != nil {
		return headers.TokenResult{Status: headers.TokenFailed, Err: err}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return headers.TokenResult{
			Status: headers.TokenFailed,
			Err:    fmt.Errorf("token source returned an empty token (rest=%t)", opts.IsRest),
		}
	}

	return headers.TokenResult{Status: headers.TokenSucceeded, Value: token}
}

// HostPlatformName implements headers.Host.
func (e *Environment) HostPlatformName() string { return e.Platform }

// RawItemID implements headers.Host.
func (e *Environment) RawItemID() string { return e.ItemID }

// ConfiguredRestURL implements headers.Host. A trailing slash is dropped
// so the composed path does not double it.
func (e *Environment) ConfiguredRestURL() string {
	return strings.TrimRight(strings.TrimSpace(e.RestURL), "/")
}

// ConvertToRestID implements headers.Host.
func (e *Environment) ConvertToRestID(rawID string, version headers.RestVersion) string {
	restID, ok := ConvertToRestID(rawID, version)
	if !ok && e.Logger != nil {
		e.Logger.Warn("unknown REST version, item id left unconverted",
			zap.String("version", string(version)),
		)
	}
	return restID
}
