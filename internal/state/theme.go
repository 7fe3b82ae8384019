package state

import (
	"fmt"
	"sync"

	"storefront-client/internal/domain"
)

type themeStore interface {
	Theme() (string, error)
	SetTheme(string) error
}

// Themes is the presentation-preference container. The selection is
// persisted and survives restarts; an unknown stored name falls back
// to the default palette.
type Themes struct {
	mu      sync.Mutex
	current domain.Theme
	store   themeStore
}

// NewThemes creates the container with the default palette applied.
func NewThemes(store themeStore) *Themes {
	return &Themes{current: domain.Themes()[0], store: store}
}

// Load applies the persisted selection, if any.
func (t *Themes) Load() error {
	name, err := t.store.Theme()
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	theme, ok := domain.ThemeByName(name)
	if !ok {
		return nil
	}
	t.mu.Lock()
	t.current = theme
	t.mu.Unlock()
	return nil
}

// Select switches to a named palette and persists the choice.
func (t *Themes) Select(name string) error {
	theme, ok := domain.ThemeByName(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	if err := t.store.SetTheme(name); err != nil {
		return err
	}
	t.mu.Lock()
	t.current = theme
	t.mu.Unlock()
	return nil
}

// Current returns the active palette.
func (t *Themes) Current() domain.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Catalog lists the available palettes.
func (t *Themes) Catalog() []domain.Theme {
	return domain.Themes()
}
