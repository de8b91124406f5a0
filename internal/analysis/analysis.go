// Package analysis parses a transport headers blob into its fields, a
// summary of the common envelope headers, and the Received hop chain.
package analysis

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// Field is one header line, in the order it appeared.
type Field struct {
	Key   string
	Value string
}

// Summary holds decoded values of the common envelope headers. Fields
// that are absent or fail to decode are left empty.
type Summary struct {
	Subject   string
	From      string
	To        string
	Date      time.Time
	MessageID string
}

// Hop is one Received header. Hops are ordered oldest first, the reverse
// of how they appear in the message.
type Hop struct {
	Number int
	Value  string
}

// Report is the parsed form of a transport headers blob.
type Report struct {
	Fields  []Field
	Summary Summary
	Hops    []Hop
}

// Parse reads a transport headers blob. Line endings may be LF or CRLF
// and the trailing blank line is optional.
func Parse(blob string) (*Report, error) {
	blob = strings.TrimLeft(blob, "\r\n")
	blob = strings.TrimRight(blob, " \t\r\n")
	if blob == "" {
		return nil, fmt.Errorf("empty header blob")
	}

	h, err := textproto.ReadHeader(bufio.NewReader(strings.NewReader(blob + "\r\n\r\n")))
	if err != nil {
		return nil, fmt.Errorf("parsing headers: %w", err)
	}

	report := &Report{}
	fields := h.Fields()
	for fields.Next() {
		report.Fields = append(report.Fields, Field{
			Key:   fields.Key(),
			Value: fields.Value(),
		})
	}

	report.Summary = summarize(mail.Header{Header: message.Header{Header: h}})
	report.Hops = receivedHops(h)

	return report, nil
}

func summarize(h mail.Header) Summary {
	var s Summary

	if subject, err := h.Subject(); err == nil {
		s.Subject = subject
	}
	if from, err := h.AddressList("From"); err == nil {
		s.From = joinAddresses(from)
	}
	if to, err := h.AddressList("To"); err == nil {
		s.To = joinAddresses(to)
	}
	if date, err := h.Date(); err == nil {
		s.Date = date
	}
	if id, err := h.MessageID(); err == nil {
		s.MessageID = id
	}

	return s
}

func joinAddresses(list []*mail.Address) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		if a.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.Name, a.Address))
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}

// receivedHops returns the Received headers oldest first.
func receivedHops(h textproto.Header) []Hop {
	values := h.Values("Received")
	hops := make([]Hop, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		hops = append(hops, Hop{
			Number: len(hops) + 1,
			Value:  collapseSpace(values[i]),
		})
	}
	return hops
}

// collapseSpace folds runs of whitespace (including folded line breaks)
// into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
