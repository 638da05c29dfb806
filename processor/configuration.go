// SPDX-License-Identifier: GPL-3.0-or-later
package processor

import (
	"fmt"

	"github.com/CrawX/go-imap-archiver/domain"
)

type ConfigFunc func(c *configuration) error

type ProgressFunc func(current, total int, message string)
type LogFunc func(message string, level domain.LogLevel)
type StatusFunc func(text string)

// TempDir sets the parent of the per-run workspace. Defaults to the
// system temp dir.
func TempDir(dir string) ConfigFunc {
	return func(c *configuration) error {
		if len(dir) == 0 {
			return fmt.Errorf("TempDir cannot be empty")
		}
		c.TempDir = dir
		return nil
	}
}

func ErrorCategory(name string) ConfigFunc {
	return func(c *configuration) error {
		if len(name) == 0 {
			return fmt.Errorf("ErrorCategory cannot be empty")
		}
		c.ErrorCategory = name
		return nil
	}
}

// MoveOnStop lets the message in flight finish its move when a stop is
// requested after its category and read flag were applied. Without it
// that message is reported skipped and stays where it is.
func MoveOnStop() ConfigFunc {
	return func(c *configuration) error {
		c.MoveOnStop = true
		return nil
	}
}

func OnProgress(f ProgressFunc) ConfigFunc {
	return func(c *configuration) error {
		c.onProgress = f
		return nil
	}
}

func OnLog(f LogFunc) ConfigFunc {
	return func(c *configuration) error {
		c.onLog = f
		return nil
	}
}

func OnStatus(f StatusFunc) ConfigFunc {
	return func(c *configuration) error {
		c.onStatus = f
		return nil
	}
}

type configuration struct {
	TempDir       string
	ErrorCategory string
	MoveOnStop    bool

	onProgress ProgressFunc
	onLog      LogFunc
	onStatus   StatusFunc
}
