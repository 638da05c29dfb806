// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

type Attachment struct {
	Filename string
	Data     []byte
}

type Parsed struct {
	Subject     string
	From        string
	FromName    string
	Date        *time.Time
	Body        string
	Attachments []Attachment
}

// Parse reads a raw RFC 5322 message. The body is the first text/plain
// part, falling back to the first text/html part with its markup
// removed. Parts with attachment disposition or a file name are returned
// as attachments.
func Parse(rawMail []byte) (*Parsed, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(rawMail))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}
	defer mr.Close()

	parsed := &Parsed{}
	parsed.Subject, _ = mr.Header.Subject()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = from[0].Address
		parsed.FromName = from[0].Name
	}
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		parsed.Date = &date
	}

	var plain, htmlBody string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("could not read mail part: %w", err)
		}
		if p == nil {
			continue
		}

		switch h := p.Header.(type) {
		case *gomail.AttachmentHeader:
			attachment, err := readAttachment(h, p.Body, len(parsed.Attachments))
			if err != nil {
				return nil, err
			}
			parsed.Attachments = append(parsed.Attachments, attachment)
		case *gomail.InlineHeader:
			asAttachment := &gomail.AttachmentHeader{Header: h.Header}
			if name, _ := asAttachment.Filename(); name != "" {
				attachment, err := readAttachment(asAttachment, p.Body, len(parsed.Attachments))
				if err != nil {
					return nil, err
				}
				parsed.Attachments = append(parsed.Attachments, attachment)
				continue
			}

			contentType, _, _ := h.ContentType()
			switch {
			case contentType == "text/plain" && plain == "":
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("could not read text body: %w", err)
				}
				plain = string(b)
			case contentType == "text/html" && htmlBody == "":
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("could not read html body: %w", err)
				}
				htmlBody = StripHTML(string(b))
			}
		}
	}

	parsed.Body = strings.TrimSpace(strings.ReplaceAll(plain, "\r\n", "\n"))
	if parsed.Body == "" {
		parsed.Body = htmlBody
	}

	return parsed, nil
}

func readAttachment(h *gomail.AttachmentHeader, body io.Reader, index int) (Attachment, error) {
	filename, _ := h.Filename()
	if filename == "" {
		filename = fmt.Sprintf("piece_jointe_%d", index+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return Attachment{}, fmt.Errorf("could not read attachment %s: %w", filename, err)
	}

	return Attachment{Filename: filename, Data: data}, nil
}

var (
	htmlDropBlocks = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	htmlBreaks     = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/tr|/li|/h[1-6])\s*/?>`)
	htmlTags       = regexp.MustCompile(`<[^>]*>`)
	blankLines     = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
)

// StripHTML reduces an HTML body to readable text.
func StripHTML(body string) string {
	body = htmlDropBlocks.ReplaceAllString(body, "")
	body = htmlBreaks.ReplaceAllString(body, "\n")
	body = htmlTags.ReplaceAllString(body, "")
	body = html.UnescapeString(body)
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = blankLines.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}

func ShortSubject(subject string) string {
	if utf8.RuneCountInString(subject) > 30 {
		subject = string([]rune(subject)[:30]) + "..."
	}
	return subject
}
