// SPDX-License-Identifier: GPL-3.0-or-later
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	keyMailbox           = "mailbox"
	keyKeywords          = "keywords"
	keyOutputFolder      = "output_folder"
	keyDestinationFolder = "destination_folder"
	keyCategory          = "category"
	keyUnreadOnly        = "unread_only"

	DefaultCategory = "Traité"
)

// Settings are the operator choices remembered between runs.
type Settings struct {
	Mailbox           string `mapstructure:"mailbox"`
	Keywords          string `mapstructure:"keywords"`
	OutputFolder      string `mapstructure:"output_folder"`
	DestinationFolder string `mapstructure:"destination_folder"`
	Category          string `mapstructure:"category"`
	UnreadOnly        bool   `mapstructure:"unread_only"`
}

func Default() Settings {
	return Settings{Category: DefaultCategory, UnreadOnly: true}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	d := Default()
	v.SetDefault(keyMailbox, d.Mailbox)
	v.SetDefault(keyKeywords, d.Keywords)
	v.SetDefault(keyOutputFolder, d.OutputFolder)
	v.SetDefault(keyDestinationFolder, d.DestinationFolder)
	v.SetDefault(keyCategory, d.Category)
	v.SetDefault(keyUnreadOnly, d.UnreadOnly)
	return v
}

// Load reads the settings file. A missing file yields defaults.
func Load(path string) (Settings, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings dir: %w", err)
		}
	}

	v := newViper(path)
	v.Set(keyMailbox, s.Mailbox)
	v.Set(keyKeywords, s.Keywords)
	v.Set(keyOutputFolder, s.OutputFolder)
	v.Set(keyDestinationFolder, s.DestinationFolder)
	v.Set(keyCategory, s.Category)
	v.Set(keyUnreadOnly, s.UnreadOnly)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}
