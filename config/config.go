// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ImapHost string
	User     string
	// Password may stay empty, it is then read from the OS keyring.
	Password string
	// Account is the root segment of folder paths, defaults to User.
	Account  string
	UseTLS   bool
	Compress bool

	Database     string
	SettingsFile string
	TempDir      string

	Converter         string
	ConversionTimeout string

	MoveOnStop bool

	Loglevel *string
	// LogFile receives the component logs instead of stderr when set.
	LogFile string

	conversionTimeout time.Duration
}

func ReadConfig(filename string) (*Config, error) {
	config := &Config{
		UseTLS:            true,
		Database:          "categories.db",
		SettingsFile:      "settings.json",
		Converter:         "soffice",
		ConversionTimeout: "2m",
	}

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(config.Account)) == 0 {
		config.Account = config.User
	}

	return config, nil
}

func (c *Config) ConversionTimeoutDuration() time.Duration {
	return c.conversionTimeout
}

func (c *Config) validate() error {
	if err := validateNonEmptyStringField(c.ImapHost, "ImapHost must not be empty, set to host:port of the imap server"); err != nil {
		return err
	}

	if !strings.Contains(c.ImapHost, ":") {
		return fmt.Errorf("ImapHost %q lacks a port, use host:port", c.ImapHost)
	}

	if err := validateNonEmptyStringField(c.User, "User must not be empty, set to username on the imap server"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.Database, "Database name must not be empty, set to a filename for the sqlite category registry"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.SettingsFile, "SettingsFile must not be empty, set to a filename for the persisted settings"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.Converter, "Converter must not be empty, set to the LibreOffice binary (soffice)"); err != nil {
		return err
	}

	timeout, err := time.ParseDuration(c.ConversionTimeout)
	if err != nil {
		return fmt.Errorf("ConversionTimeout %q is not a duration: %w", c.ConversionTimeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("ConversionTimeout must be positive")
	}
	c.conversionTimeout = timeout

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}
