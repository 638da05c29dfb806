// SPDX-License-Identifier: GPL-3.0-or-later
package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/log"

	"github.com/sirupsen/logrus"
)

// OfficeConverter runs one headless LibreOffice process per document with
// a throwaway user profile, so concurrent or crashed instances never share
// state.
type OfficeConverter struct {
	binary  string
	timeout time.Duration
	l       *logrus.Logger
}

func NewOfficeConverter(binary string, timeout time.Duration) *OfficeConverter {
	return &OfficeConverter{
		binary:  binary,
		timeout: timeout,
		l:       log.Logger(log.LOG_RENDER),
	}
}

// Convert writes {name}.{targetFormat} into a fresh directory next to path.
func (c *OfficeConverter) Convert(ctx context.Context, path string, targetFormat string) (string, error) {
	binary, err := exec.LookPath(c.binary)
	if err != nil {
		return "", &domain.RenderError{Err: fmt.Errorf("office converter %s unavailable: %w", c.binary, err)}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	profile, err := os.MkdirTemp("", "office_profile_")
	if err != nil {
		return "", fmt.Errorf("could not create converter profile: %w", err)
	}
	defer os.RemoveAll(profile)

	outDir, err := os.MkdirTemp(filepath.Dir(path), "converted_")
	if err != nil {
		return "", fmt.Errorf("could not create conversion folder: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary,
		"--headless", "--norestore", "--nologo", "--nodefault",
		"-env:UserInstallation="+fileURL(profile),
		"--convert-to", targetFormat,
		"--outdir", outDir,
		path,
	)
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		os.RemoveAll(outDir)
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("conversion of %s timed out after %s", filepath.Base(path), c.timeout)
		}
		return "", fmt.Errorf("conversion of %s cancelled: %w", filepath.Base(path), ctxErr)
	}
	if err != nil {
		os.RemoveAll(outDir)
		return "", fmt.Errorf("conversion of %s failed: %w: %s", filepath.Base(path), err, strings.TrimSpace(string(output)))
	}

	converted := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"."+targetFormat)
	if _, err := os.Stat(converted); err != nil {
		os.RemoveAll(outDir)
		return "", fmt.Errorf("converter did not produce %s: %s", filepath.Base(converted), strings.TrimSpace(string(output)))
	}

	c.l.WithFields(logrus.Fields{
		"file":     filepath.Base(path),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Converted office document")

	return converted, nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
