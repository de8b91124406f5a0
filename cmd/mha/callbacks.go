package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nhle/mail-headers/internal/analysis"
	"github.com/nhle/mail-headers/internal/headers"
	"github.com/nhle/mail-headers/internal/model"
	"github.com/nhle/mail-headers/internal/outlook"
)

// cliCallbacks prints fetch results to the terminal. Status messages go
// to the log so stdout carries only the headers.
type cliCallbacks struct {
	out    io.Writer
	errOut io.Writer
	raw    bool
	logger *zap.Logger
}

var _ headers.Callbacks = (*cliCallbacks)(nil)

func (c *cliCallbacks) UpdateStatus(message string) {
	c.logger.Info(message)
}

func (c *cliCallbacks) HideStatus() {
	c.logger.Debug("status cleared")
}

func (c *cliCallbacks) ShowError(message string) {
	fmt.Fprintln(c.errOut, message)
}

func (c *cliCallbacks) OnHeadersReceived(blob string) {
	if c.raw {
		fmt.Fprintln(c.out, blob)
		return
	}

	report, err := analysis.Parse(blob)
	if err != nil {
		c.logger.Warn("could not parse headers, printing raw", zap.Error(err))
		fmt.Fprintln(c.out, blob)
		return
	}
	fmt.Fprintln(c.out, analysis.Render(report))
}

// newFetchRecord classifies a fetch for the history store.
func newFetchRecord(outcome headers.Outcome, err error) model.FetchRecord {
	rec := model.FetchRecord{
		RawItemID: outcome.RawItemID,
		MessageID: outcome.MessageID,
		BaseURL:   outcome.BaseURL,
		Outcome:   model.OutcomeSucceeded,
	}
	if err == nil {
		rec.HeaderBytes = len(outcome.Headers)
		return rec
	}

	rec.Outcome = model.OutcomeFailed
	var reqErr *outlook.RequestError
	switch {
	case headers.IsTokenError(err):
		rec.ErrorKind = model.ErrorKindToken
	case errors.As(err, &reqErr):
		rec.ErrorKind = model.ErrorKindRequest
		rec.StatusCode = reqErr.StatusCode
	case headers.IsMissingPropertyError(err):
		rec.ErrorKind = model.ErrorKindMissing
	default:
		rec.ErrorKind = model.ErrorKindOther
	}
	return rec
}
