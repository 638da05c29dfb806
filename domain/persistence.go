// SPDX-License-Identifier: GPL-3.0-or-later

//go:generate mockgen -destination=mocks/persistence.go -package=mocks . CategoryStore
package domain

import (
	"fmt"
	"strings"
	"time"
)

type Color string

const (
	ColorRed    = Color("red")
	ColorOrange = Color("orange")
	ColorYellow = Color("yellow")
	ColorGreen  = Color("green")
	ColorBlue   = Color("blue")
	ColorPurple = Color("purple")
	ColorGrey   = Color("grey")
)

var palette = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorGrey}

func ParseColor(s string) (Color, error) {
	for _, c := range palette {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category color %q", s)
}

// Category is a named tag; Keyword is the IMAP keyword flag carrying it.
type Category struct {
	Name      string
	Keyword   string
	Color     Color
	CreatedAt time.Time
}

type CategoryStore interface {
	Close() error
	Category(name string) (*Category, error)
	AllCategories() ([]*Category, error)
	SaveCategory(category Category) error
}
