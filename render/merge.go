// SPDX-License-Identifier: GPL-3.0-or-later
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

// Merger validates and concatenates PDF files.
type Merger interface {
	Validate(path string) error
	Merge(inFiles []string, outFile string) error
}

type PdfcpuMerger struct{}

func (m *PdfcpuMerger) Validate(path string) error {
	return api.ValidateFile(path, nil)
}

func (m *PdfcpuMerger) Merge(inFiles []string, outFile string) error {
	return api.MergeCreateFile(inFiles, outFile, false, nil)
}

type attachmentKind int

const (
	kindUnsupported attachmentKind = iota
	kindPdf
	kindImage
	kindOffice
	kindText
)

var kinds = map[string]attachmentKind{
	".pdf":  kindPdf,
	".png":  kindImage,
	".jpg":  kindImage,
	".jpeg": kindImage,
	".gif":  kindImage,
	".bmp":  kindImage,
	".tiff": kindImage,
	".webp": kindImage,
	".doc":  kindOffice,
	".docx": kindOffice,
	".xls":  kindOffice,
	".xlsx": kindOffice,
	".txt":  kindText,
	".csv":  kindText,
	".log":  kindText,
}

func kindOf(path string) attachmentKind {
	return kinds[strings.ToLower(filepath.Ext(path))]
}

// MergeWithAttachments appends the attachments that can be turned into
// PDF behind the primary artifact and writes {primary}_complet.pdf. The
// primary path is returned when nothing was appended or the merge fails.
func (r *PdfRenderer) MergeWithAttachments(ctx context.Context, primaryPath string, attachmentPaths []string) (string, error) {
	if _, err := os.Stat(primaryPath); err != nil {
		return "", &domain.RenderError{Err: fmt.Errorf("primary artifact missing: %w", err)}
	}

	inFiles := []string{primaryPath}
	intermediates := []string{}
	conversionDirs := []string{}
	defer func() {
		for _, f := range intermediates {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				r.l.WithError(err).WithField("file", f).Warn("Could not remove intermediate file")
			}
		}
		// Only succeeds once the converter left nothing else behind.
		for _, d := range conversionDirs {
			os.Remove(d)
		}
	}()

	for _, attachment := range attachmentPaths {
		attachmentLogger := r.l.WithField("attachment", filepath.Base(attachment))

		if _, err := os.Stat(attachment); err != nil {
			attachmentLogger.WithError(err).Warn("Attachment missing, skipping")
			continue
		}

		switch kindOf(attachment) {
		case kindPdf:
			if err := r.merger.Validate(attachment); err != nil {
				attachmentLogger.WithError(err).Warn("Invalid PDF attachment, skipping")
				continue
			}
			inFiles = append(inFiles, attachment)
		case kindImage:
			attachmentLogger.Debug("Image attachment not embedded")
		case kindOffice:
			converted, err := r.convertOffice(ctx, attachment)
			if err != nil {
				attachmentLogger.WithError(err).Warn("Could not convert office attachment, skipping")
				continue
			}
			intermediates = append(intermediates, converted)
			conversionDirs = append(conversionDirs, filepath.Dir(converted))
			inFiles = append(inFiles, converted)
		case kindText:
			rendered, err := r.renderText(attachment)
			if err != nil {
				attachmentLogger.WithError(err).Warn("Could not render text attachment, skipping")
				continue
			}
			intermediates = append(intermediates, rendered)
			inFiles = append(inFiles, rendered)
		default:
			attachmentLogger.Warn("Unsupported attachment type, skipping")
		}
	}

	if len(inFiles) == 1 {
		return primaryPath, nil
	}

	merged, err := sanitize.UniquePath(strings.TrimSuffix(primaryPath, filepath.Ext(primaryPath)) + "_complet.pdf")
	if err != nil {
		r.l.WithError(err).WithField("primary", primaryPath).Warn("No name for merged artifact, keeping primary artifact")
		return primaryPath, nil
	}
	err = r.merger.Merge(inFiles, merged)
	if err != nil {
		r.l.WithError(err).WithField("primary", primaryPath).Warn("Merge failed, keeping primary artifact")
		os.Remove(merged)
		return primaryPath, nil
	}

	if err := os.Remove(primaryPath); err != nil {
		r.l.WithError(err).WithField("primary", primaryPath).Warn("Could not remove primary artifact")
	}

	r.l.WithFields(logrus.Fields{"path": merged, "parts": len(inFiles)}).Info("Merged attachments")
	return merged, nil
}

func (r *PdfRenderer) convertOffice(ctx context.Context, path string) (string, error) {
	if r.converter == nil {
		return "", fmt.Errorf("no office converter configured")
	}

	converted, err := r.converter.Convert(ctx, path, "pdf")
	if err != nil {
		return "", err
	}

	if err := r.merger.Validate(converted); err != nil {
		os.Remove(converted)
		return "", fmt.Errorf("converter produced an invalid PDF: %w", err)
	}

	return converted, nil
}
