// Package headers retrieves the transport message headers of the current
// message from the Outlook REST API, using a token issued by the host.
package headers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/outlook"
)

// TransportHeadersPropertyID is the MAPI tag of PR_TRANSPORT_MESSAGE_HEADERS
// as the REST API spells it. Must not change.
const TransportHeadersPropertyID = "String 0x007D"

// MobileHostName is the platform whose item ids are already REST ids.
const MobileHostName = "OutlookIOS"

// Messages passed to the caller's status and error callbacks.
const (
	StatusRequestSent = "Retrieving headers from server."
	TokenErrorMessage = "Unable to obtain callback token."
)

const (
	acceptHeader = "application/json; odata.metadata=none"
	messageQuery = "?$select=SingleValueExtendedProperties" +
		"&$expand=SingleValueExtendedProperties($filter=PropertyId eq '" +
		TransportHeadersPropertyID + "')"
)

// TokenStatus is the outcome reported by the host's token API.
type TokenStatus string

const (
	TokenSucceeded TokenStatus = "succeeded"
	TokenFailed    TokenStatus = "failed"
)

// TokenOptions are passed through to the host's token API.
type TokenOptions struct {
	IsRest bool
}

// TokenResult mirrors the host's asynchronous result: a status, the token
// on success, and optionally the cause on failure.
type TokenResult struct {
	Status TokenStatus
	Value  string
	Err    error
}

// RestVersion selects the REST id addressing scheme.
type RestVersion string

const (
	RestVersionV1 RestVersion = "v1.0"
	RestVersionV2 RestVersion = "v2.0"
)

// Host is the mail client environment the fetcher runs inside.
type Host interface {
	// RequestCallbackToken blocks until the host answers or ctx is done.
	RequestCallbackToken(ctx context.Context, opts TokenOptions) TokenResult
	HostPlatformName() string
	RawItemID() string
	ConvertToRestID(rawID string, version RestVersion) string
	// ConfiguredRestURL returns "" when the host has no REST URL.
	ConfiguredRestURL() string
}

// Getter issues a single HTTP GET and decodes the JSON body into out.
type Getter interface {
	GetJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error
}

// Callbacks receives progress and the terminal outcome of a fetch.
type Callbacks interface {
	UpdateStatus(message string)
	HideStatus()
	ShowError(message string)
	OnHeadersReceived(headers string)
}

// Outcome records how far a fetch got. Fields are filled in pipeline
// order, so a failed fetch carries whatever was resolved before the error.
type Outcome struct {
	RawItemID string
	MessageID string
	BaseURL   string
	URL       string
	Headers   string
}

// Fetcher runs the token → id → URL → GET pipeline. It holds no
// per-request state and may be shared between goroutines.
type Fetcher struct {
	host      Host
	getter    Getter
	callbacks Callbacks
	logger    *zap.Logger
}

// New creates a Fetcher.
func New(host Host, getter Getter, callbacks Callbacks, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		host:      host,
		getter:    getter,
		callbacks: callbacks,
		logger:    logger,
	}
}

// FetchHeaders retrieves the transport headers of the host's current
// message. The result or the error is delivered to the callbacks, and
// HideStatus runs exactly once before it returns. The terminal error is
// also returned.
func (f *Fetcher) FetchHeaders(ctx context.Context) (Outcome, error) {
	f.callbacks.UpdateStatus(StatusRequestSent)
	defer f.callbacks.HideStatus()

	var out Outcome

	tok := f.host.RequestCallbackToken(ctx, TokenOptions{IsRest: true})
	if tok.Status != TokenSucceeded {
		err := &TokenError{Status: tok.Status, Err: tok.Err}
		f.logger.Warn("callback token refused", zap.Error(err))
		f.callbacks.ShowError(TokenErrorMessage)
		return out, err
	}

	out.RawItemID = f.host.RawItemID()
	out.MessageID = f.itemRestID(out.RawItemID)

	baseURL, decodeErr := ServiceBaseURL(f.host.ConfiguredRestURL(), tok.Value)
	if decodeErr != nil {
		f.logger.Warn("could not read aud claim, using default service URL",
			zap.String("base_url", baseURL),
			zap.Error(decodeErr),
		)
	}
	out.BaseURL = baseURL
	out.URL = MessageURL(baseURL, out.MessageID)

	f.logger.Debug("requesting transport headers",
		zap.String("url", out.URL),
		zap.Int("token_len", len(tok.Value)),
	)

	var resp outlook.MessageProperties
	err := f.getter.GetJSON(ctx, out.URL, map[string]string{
		"Authorization": "Bearer " + tok.Value,
		"Accept":        acceptHeader,
	}, &resp)
	if err != nil {
		f.logger.Warn("transport header request failed", zap.Error(err))
		f.callbacks.ShowError(errorJSON(err))
		return out, err
	}

	value, err := transportHeaders(out.MessageID, resp)
	if err != nil {
		f.logger.Warn("transport headers missing from response", zap.Error(err))
		f.callbacks.ShowError(errorJSON(err))
		return out, err
	}

	out.Headers = value
	f.callbacks.OnHeadersReceived(value)
	return out, nil
}

// MessageURL composes the REST query for a message's transport headers.
func MessageURL(baseURL, messageID string) string {
	return baseURL + "/api/v2.0/me/messages/" + messageID + messageQuery
}

func (f *Fetcher) itemRestID(rawID string) string {
	if f.host.HostPlatformName() == MobileHostName {
		return rawID
	}
	return f.host.ConvertToRestID(rawID, RestVersionV2)
}

// transportHeaders pulls the first extended property's value.
func transportHeaders(messageID string, resp outlook.MessageProperties) (string, error) {
	props := resp.SingleValueExtendedProperties
	if len(props) == 0 {
		return "", &MissingPropertyError{
			MessageID:  messageID,
			PropertyID: TransportHeadersPropertyID,
			Reason:     "SingleValueExtendedProperties is empty",
		}
	}
	if props[0].Value == nil {
		return "", &MissingPropertyError{
			MessageID:  messageID,
			PropertyID: TransportHeadersPropertyID,
			Reason:     "property has no Value",
		}
	}
	return *props[0].Value, nil
}

// errorJSON renders err as indented JSON. Errors without exported fields
// fall back to {"message": ...}.
func errorJSON(err error) string {
	b, mErr := json.MarshalIndent(err, "", "  ")
	if mErr != nil || string(b) == "{}" {
		b, mErr = json.MarshalIndent(map[string]string{"message": err.Error()}, "", "  ")
		if mErr != nil {
			return fmt.Sprintf("%q", err.Error())
		}
	}
	return string(b)
}
