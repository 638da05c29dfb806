// SPDX-License-Identifier: GPL-3.0-or-later

//go:generate mockgen -destination=mocks/renderer.go -package=mocks . Renderer,DocumentConverter
package domain

import (
	"context"
	"time"
)

type PrimaryDocument struct {
	Sender     string
	SenderName string
	Subject    string
	Body       string
	ReceivedAt *time.Time
}

// Renderer turns a message into its archival artifact. ctx bounds the
// external conversions done while merging.
type Renderer interface {
	RenderPrimary(doc PrimaryDocument) (string, error)
	MergeWithAttachments(ctx context.Context, primaryPath string, attachmentPaths []string) (string, error)
}

// DocumentConverter converts an office document into targetFormat (e.g. "pdf")
// and returns the path of the converted file. The caller owns that file.
type DocumentConverter interface {
	Convert(ctx context.Context, path string, targetFormat string) (string, error)
}
