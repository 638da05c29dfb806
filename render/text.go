// SPDX-License-Identifier: GPL-3.0-or-later
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/CrawX/go-imap-archiver/sanitize"

	"golang.org/x/text/encoding/charmap"
)

// renderText lays a plain text attachment out in Courier next to the
// source file.
func (r *PdfRenderer) renderText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read text attachment: %w", err)
	}

	text, err := decodeText(raw)
	if err != nil {
		return "", err
	}

	pdf, tr := newDocument()
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 7, tr("Pièce jointe: "+filepath.Base(path)), "", "L", false)
	pdf.Ln(3)

	pdf.SetFont("Courier", "", 9)
	writeLines(pdf, tr, strings.TrimRight(text, "\r\n"), 4, 2)

	out, err := sanitize.UniquePath(strings.TrimSuffix(path, filepath.Ext(path)) + "_texte.pdf")
	if err != nil {
		return "", err
	}
	err = pdf.OutputFileAndClose(out)
	if err != nil {
		os.Remove(out)
		return "", fmt.Errorf("could not write %s: %w", out, err)
	}

	return out, nil
}

// decodeText accepts UTF-8 (with or without BOM) and falls back to
// Windows-1252, the usual encoding of exports from office tools.
func decodeText(raw []byte) (string, error) {
	raw = []byte(strings.TrimPrefix(string(raw), "\ufeff"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not decode text attachment: %w", err)
	}
	return string(decoded), nil
}
