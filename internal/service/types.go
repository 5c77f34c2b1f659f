// Package service defines the backend-agnostic interface for checklist operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Checklist is a named collection of tasks owned by one account.
type Checklist struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a single to-do item within a checklist.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Color     Color  `json:"color"`
	Completed bool   `json:"completed"`
	Pinned    bool   `json:"pinned"`
	Checklist string `json:"checklist"`
}

// Color is a task display color, one of Palette.
type Color string

// Palette colors in display order.
const (
	Orange Color = "#FFD180"
	Blue   Color = "#80D8FF"
	Grey   Color = "#CFD8DC"
	Green  Color = "#AED581"
	Red    Color = "#FF8A80"
)

// DefaultColor is used for new tasks when no color is chosen.
const DefaultColor = Blue

// Palette lists the colors a task may carry.
var Palette = []Color{Orange, Blue, Grey, Green, Red}

var colorNames = map[string]Color{
	"orange": Orange,
	"blue":   Blue,
	"grey":   Grey,
	"gray":   Grey,
	"green":  Green,
	"red":    Red,
}

// ParseColor resolves a palette hex value or color name.
// Empty input yields DefaultColor.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultColor, nil
	}
	if c, ok := colorNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	for _, c := range Palette {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown color: %s", ErrValidationFailed, s)
}

// Valid reports whether c is part of the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// Name returns the short name of a palette color, or the raw value.
func (c Color) Name() string {
	switch c {
	case Orange:
		return "orange"
	case Blue:
		return "blue"
	case Grey:
		return "grey"
	case Green:
		return "green"
	case Red:
		return "red"
	}
	return string(c)
}
