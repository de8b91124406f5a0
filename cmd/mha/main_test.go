package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/headers"
	"github.com/nhle/mail-headers/internal/model"
	"github.com/nhle/mail-headers/internal/outlook"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"--item-id", "AAMk+a/b=",
		"--host-name", "OutlookIOS",
		"--raw",
		"--history", "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.itemID != "AAMk+a/b=" || opts.hostName != "OutlookIOS" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !opts.raw || opts.history != 5 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.configPath == "" {
		t.Fatal("expected default config path")
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	if _, err := parseFlags([]string{"--nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &model.AppConfig{HostName: "Outlook", RestURL: "https://a.example"}

	applyOverrides(cfg, &options{})
	if cfg.HostName != "Outlook" || cfg.RestURL != "https://a.example" {
		t.Fatalf("empty flags should not override: %+v", cfg)
	}

	applyOverrides(cfg, &options{hostName: "OutlookIOS", restURL: "https://b.example"})
	if cfg.HostName != "OutlookIOS" || cfg.RestURL != "https://b.example" {
		t.Fatalf("flags should override: %+v", cfg)
	}
}

func TestNewFetchRecord(t *testing.T) {
	outcome := headers.Outcome{
		RawItemID: "raw",
		MessageID: "rest",
		BaseURL:   "https://outlook.office.com",
		Headers:   "X-Header: 1",
	}

	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{name: "success"},
		{name: "token", err: &headers.TokenError{Status: headers.TokenFailed}, wantKind: model.ErrorKindToken},
		{name: "request", err: &outlook.RequestError{StatusCode: 404}, wantKind: model.ErrorKindRequest, wantStatus: 404},
		{name: "missing", err: &headers.MissingPropertyError{}, wantKind: model.ErrorKindMissing},
		{name: "other", err: errors.New("boom"), wantKind: model.ErrorKindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFetchRecord(outcome, tt.err)
			if rec.MessageID != "rest" || rec.RawItemID != "raw" || rec.BaseURL != outcome.BaseURL {
				t.Fatalf("outcome fields not copied: %+v", rec)
			}
			if tt.err == nil {
				if rec.Outcome != model.OutcomeSucceeded || rec.HeaderBytes != len(outcome.Headers) {
					t.Fatalf("unexpected success record: %+v", rec)
				}
				return
			}
			if rec.Outcome != model.OutcomeFailed || rec.ErrorKind != tt.wantKind || rec.StatusCode != tt.wantStatus {
				t.Fatalf("unexpected failure record: %+v", rec)
			}
			if rec.HeaderBytes != 0 {
				t.Fatalf("failed fetch should not count header bytes: %+v", rec)
			}
		})
	}
}

func TestCallbacks_Output(t *testing.T) {
	var out, errOut bytes.Buffer
	cb := &cliCallbacks{out: &out, errOut: &errOut, logger: zap.NewNop()}

	cb.UpdateStatus(headers.StatusRequestSent)
	cb.ShowError(`{"message": "nope"}`)
	cb.OnHeadersReceived("Subject: hello\r\nFrom: a@example.org")
	cb.HideStatus()

	if !strings.Contains(errOut.String(), "nope") {
		t.Fatalf("expected error on stderr, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "hello") || !strings.Contains(out.String(), "Summary") {
		t.Fatalf("expected rendered report, got %q", out.String())
	}
}

func TestCallbacks_Raw(t *testing.T) {
	var out bytes.Buffer
	cb := &cliCallbacks{out: &out, errOut: &bytes.Buffer{}, raw: true, logger: zap.NewNop()}

	cb.OnHeadersReceived("Subject: hello")
	if out.String() != "Subject: hello\n" {
		t.Fatalf("expected raw blob, got %q", out.String())
	}
}

func TestFormatRecord(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	ok := formatRecord(model.FetchRecord{
		MessageID: "abc", Outcome: model.OutcomeSucceeded, HeaderBytes: 42, FetchedAt: at,
	})
	if !strings.Contains(ok, "abc") || !strings.Contains(ok, "42 bytes") {
		t.Fatalf("unexpected line %q", ok)
	}

	failed := formatRecord(model.FetchRecord{
		MessageID: "def", Outcome: model.OutcomeFailed,
		ErrorKind: model.ErrorKindRequest, StatusCode: 401, FetchedAt: at,
	})
	if !strings.Contains(failed, "request 401") {
		t.Fatalf("unexpected line %q", failed)
	}
}
