// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"errors"
	"strings"

	"github.com/CrawX/go-imap-archiver/credential"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newLoginCommand(configPath *string) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the IMAP password in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			creds, err := credential.Open()
			if err != nil {
				return err
			}

			if forget {
				if err := creds.DeletePassword(a.conf.User); err != nil {
					return err
				}
				pterm.Success.Printfln("Mot de passe de %s supprimé", a.conf.User)
				return nil
			}

			password, err := pterm.DefaultInteractiveTextInput.
				WithMask("*").
				Show("Mot de passe IMAP pour " + a.conf.User)
			if err != nil {
				return err
			}
			if strings.TrimSpace(password) == "" {
				return errors.New("empty password")
			}

			if err := creds.SetPassword(a.conf.User, password); err != nil {
				return err
			}

			if a.conf.Password != "" {
				pterm.Warning.Println("Password est défini dans la configuration, il reste prioritaire sur le trousseau")
				pterm.Success.Println("Mot de passe enregistré")
				return nil
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			if err := gw.Connect(); err != nil {
				pterm.Warning.Printfln("Mot de passe enregistré mais la connexion a échoué: %v", err)
				return nil
			}
			pterm.Success.Println("Mot de passe enregistré, connexion vérifiée")
			return nil
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "remove the stored password instead")
	return cmd
}
