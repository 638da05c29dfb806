// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/CrawX/go-imap-archiver/config"
	"github.com/CrawX/go-imap-archiver/credential"
	"github.com/CrawX/go-imap-archiver/imapconnection"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/persistence"
	"github.com/CrawX/go-imap-archiver/settings"

	"github.com/sirupsen/logrus"
)

// app holds what every command needs. Close releases it in reverse order.
type app struct {
	conf     *config.Config
	settings settings.Settings
	store    *persistence.Persistence
	imap     *imapconnection.ImapConnection
	logFile  *os.File

	l *logrus.Logger
}

func loadApp(configPath string) (*app, error) {
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Operator facing output goes through pterm, logrus only reports errors
	// unless a level is configured.
	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	} else {
		log.SetLogLevel("error")
	}

	var logFile *os.File
	if conf.LogFile != "" {
		logFile, err = os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		log.SetOutput(logFile)
	}

	s, err := settings.Load(conf.SettingsFile)
	if err != nil {
		closeLogFile(logFile)
		return nil, err
	}

	store, err := persistence.NewPersistence(conf.Database)
	if err != nil {
		closeLogFile(logFile)
		return nil, fmt.Errorf("could not open category registry: %w", err)
	}

	return &app{conf: conf, settings: s, store: store, logFile: logFile, l: logger}, nil
}

func closeLogFile(f *os.File) {
	if f == nil {
		return
	}
	log.SetOutput(os.Stderr)
	f.Close()
}

func (a *app) password() (string, error) {
	if a.conf.Password != "" {
		return a.conf.Password, nil
	}

	creds, err := credential.Open()
	if err != nil {
		return "", err
	}
	return creds.Password(a.conf.User)
}

func (a *app) gateway() (*imapconnection.ImapConnection, error) {
	if a.imap != nil {
		return a.imap, nil
	}

	password, err := a.password()
	if err != nil {
		return nil, err
	}

	options := []imapconnection.Option{imapconnection.Account(a.conf.Account)}
	if !a.conf.UseTLS {
		options = append(options, imapconnection.Plain())
	}
	if a.conf.Compress {
		options = append(options, imapconnection.Compression())
	}

	a.imap = imapconnection.NewImapConnection(a.conf.ImapHost, a.conf.User, password, a.store, options...)
	return a.imap, nil
}

func (a *app) Close() {
	if a.imap != nil {
		if err := a.imap.Close(); err != nil {
			a.l.WithField("error", err).Warn("Could not close imap connection")
		}
	}
	if err := a.store.Close(); err != nil {
		a.l.WithField("error", err).Warn("Could not close category registry")
	}
	closeLogFile(a.logFile)
}
