// SPDX-License-Identifier: GPL-3.0-or-later
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
)

const (
	pageMargin   = 20.0
	dateLayout   = "02/01/2006 à 15:04"
	footerSuffix = "Email Fournisseurs Automation"
)

// PdfRenderer writes the primary artifact with fpdf and assembles merged
// artifacts through a Merger.
type PdfRenderer struct {
	outputDir string
	converter domain.DocumentConverter
	merger    Merger

	now func() time.Time
	l   *logrus.Logger
}

type ConfigFunc func(r *PdfRenderer)

// WithMerger swaps the PDF merge engine.
func WithMerger(m Merger) ConfigFunc {
	return func(r *PdfRenderer) {
		r.merger = m
	}
}

// NewPdfRenderer writes artifacts into outputDir. With a nil converter
// office attachments are skipped.
func NewPdfRenderer(outputDir string, converter domain.DocumentConverter, configs ...ConfigFunc) *PdfRenderer {
	r := &PdfRenderer{
		outputDir: outputDir,
		converter: converter,
		merger:    &PdfcpuMerger{},
		now:       time.Now,
		l:         log.Logger(log.LOG_RENDER),
	}

	for _, config := range configs {
		config(r)
	}

	return r
}

func (r *PdfRenderer) RenderPrimary(doc domain.PrimaryDocument) (string, error) {
	err := os.MkdirAll(r.outputDir, 0o755)
	if err != nil {
		return "", &domain.RenderError{Err: fmt.Errorf("could not create output folder: %w", err)}
	}

	sender := doc.SenderName
	if sender == "" {
		sender = doc.Sender
	}
	path, err := sanitize.UniquePath(filepath.Join(r.outputDir, sanitize.ArtifactName(sender, doc.ReceivedAt, doc.Subject)))
	if err != nil {
		return "", &domain.RenderError{Err: err}
	}

	pdf := r.primaryDocument(doc)
	err = pdf.OutputFileAndClose(path)
	if err != nil {
		os.Remove(path)
		return "", &domain.RenderError{Err: fmt.Errorf("could not write %s: %w", path, err)}
	}

	r.l.WithFields(logrus.Fields{"path": path, "subject": doc.Subject}).Info("Rendered mail")
	return path, nil
}

func newDocument() (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	// Core fonts are cp1252, translate so accents survive.
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func (r *PdfRenderer) primaryDocument(doc domain.PrimaryDocument) *fpdf.Fpdf {
	pdf, tr := newDocument()

	footer := fmt.Sprintf("Généré le %s - %s", r.now().Format(dateLayout), footerSuffix)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(127, 140, 141)
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 10, tr("Email Fournisseur"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	subject := doc.Subject
	if subject == "" {
		subject = "(Sans objet)"
	}
	date := "Date inconnue"
	if doc.ReceivedAt != nil {
		date = doc.ReceivedAt.Format(dateLayout)
	}

	rows := [][2]string{
		{"De:", doc.SenderName},
		{"Email:", doc.Sender},
		{"Sujet:", subject},
		{"Date:", date},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(52, 73, 94)
		pdf.CellFormat(25, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 6, tr(row[1]), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetDrawColor(189, 195, 199)
	y := pdf.GetY()
	pdf.Line(pageMargin, y, 210-pageMargin, y)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 8, tr("Contenu de l'email:"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetTextColor(0, 0, 0)
	body := strings.TrimSpace(doc.Body)
	if body == "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr("(Email sans contenu texte)"), "", "L", false)
		return pdf
	}

	pdf.SetFont("Helvetica", "", 10)
	writeLines(pdf, tr, body, 5, 3)
	return pdf
}

// writeLines puts one paragraph per line, blank lines become a gap.
func writeLines(pdf *fpdf.Fpdf, tr func(string) string, text string, lineHeight, gap float64) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(gap)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(strings.ReplaceAll(line, "\t", "    ")), "", "L", false)
	}
}
