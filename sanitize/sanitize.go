// SPDX-License-Identifier: GPL-3.0-or-later
package sanitize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Placeholder       = "_"
	MaxFilenameLength = 200
	maxSubjectLength  = 50
	unknownSender     = "Inconnu"
)

// MaxFilenameBytes keeps room below the usual 255 byte limit for the
// _complet, _texte and _N suffixes added later.
const MaxFilenameBytes = 240

const maxCollisions = 1000

// Characters Windows refuses in file names.
const forbiddenChars = `<>:"/\|?*`

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

var now = time.Now

// ForFilesystem replaces reserved characters with the placeholder, drops
// control characters, collapses whitespace runs to one space and trims
// leading and trailing dots and spaces. It is idempotent.
func ForFilesystem(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case strings.ContainsRune(forbiddenChars, r):
			r = '_'
		case unicode.Is(unicode.Cc, r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		}

		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), ". ")
}

// Filename sanitizes name and extension separately, guards Windows
// reserved names and truncates the base so the result fits maxLength runes
// and MaxFilenameBytes bytes.
func Filename(filename string, maxLength int) string {
	if filename == "" {
		return fallbackName()
	}

	name, ext := filename, ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		name = filename[:i]
		ext = "." + ForFilesystem(filename[i+1:])
		if ext == "." {
			ext = ""
		}
	}

	name = ForFilesystem(name)
	if reservedNames[strings.ToUpper(name)] {
		name = "_" + name + "_"
	}

	if len(ext) > MaxFilenameBytes/2 {
		ext = truncateBytes(ext, MaxFilenameBytes/2)
	}

	maxNameLength := maxLength - utf8.RuneCountInString(ext)
	if maxNameLength < 1 {
		maxNameLength = 1
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = strings.TrimRight(truncate(name, maxNameLength), ". ")
	}
	if len(name)+len(ext) > MaxFilenameBytes {
		name = strings.TrimRight(truncateBytes(name, MaxFilenameBytes-len(ext)), ". ")
	}

	if name == "" {
		name = fallbackName()
	}

	return name + ext
}

// ArtifactName builds "{sender}_{YYYYMMDD}_{subject}.pdf", without the
// subject segment when it is empty. A nil timestamp uses today.
func ArtifactName(sender string, timestamp *time.Time, subject string) string {
	company := SenderName(sender)

	date := now()
	if timestamp != nil {
		date = *timestamp
	}
	dateStr := date.Format("20060102")

	filename := fmt.Sprintf("%s_%s.pdf", company, dateStr)
	if subjectClean := truncate(ForFilesystem(subject), maxSubjectLength); subjectClean != "" {
		filename = fmt.Sprintf("%s_%s_%s.pdf", company, dateStr, subjectClean)
	}

	return Filename(filename, MaxFilenameLength)
}

// Keywords splits a comma separated list. Blank entries and
// case-insensitive duplicates are dropped, order is kept. An empty result
// matches nothing.
func Keywords(raw string) []string {
	keywords := []string{}
	seen := map[string]bool{}
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		keywords = append(keywords, kw)
	}

	return keywords
}

// SenderName extracts a display name from a From value: `Name <a@b.c>`
// gives Name, a bare address gives the capitalized company domain.
func SenderName(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return unknownSender
	}

	if lt := strings.Index(sender, "<"); lt >= 0 && strings.Contains(sender[lt:], ">") {
		if name := strings.Trim(strings.TrimSpace(sender[:lt]), `"`); name != "" {
			if clean := ForFilesystem(name); clean != "" {
				return clean
			}
		}
		addr := sender[lt+1:]
		addr = addr[:strings.Index(addr, ">")]
		return CompanyName(addr)
	}

	if strings.Contains(sender, "@") {
		return CompanyName(sender)
	}

	if clean := ForFilesystem(sender); clean != "" {
		return clean
	}
	return unknownSender
}

// CompanyName turns "jane@acme-corp.com" into "Acme-corp".
func CompanyName(address string) string {
	at := strings.Index(address, "@")
	if at < 0 {
		return unknownSender
	}

	domain := address[at+1:]
	if dot := strings.LastIndex(domain, "."); dot >= 0 {
		domain = domain[:dot]
	}

	company := ForFilesystem(capitalize(domain))
	if company == "" {
		return unknownSender
	}
	return company
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// KeywordAtom maps a category name onto a valid IMAP keyword: diacritics
// are stripped, everything outside ATOM-CHAR becomes the placeholder.
func KeywordAtom(name string) string {
	plain, _, err := transform.String(stripMarks, strings.TrimSpace(name))
	if err != nil {
		plain = strings.TrimSpace(name)
	}

	var b strings.Builder
	for _, r := range plain {
		if r <= ' ' || r > '~' || strings.ContainsRune(`(){%*"\]`, r) {
			b.WriteString(Placeholder)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// truncateBytes cuts s to at most max bytes on a rune boundary.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > max {
			break
		}
		cut = i + utf8.RuneLen(r)
	}
	return s[:cut]
}

func fallbackName() string {
	return "fichier_" + now().Format("20060102_150405")
}

// UniquePath returns path, or the first free variant with _1, _2, ...
// inserted before the extension. Stat errors other than a missing file
// are returned.
func UniquePath(path string) (string, error) {
	free, err := isFree(path)
	if err != nil || free {
		return path, err
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= maxCollisions; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxCollisions)
}

func isFree(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	}
	return false, fmt.Errorf("could not check %s: %w", path, err)
}
