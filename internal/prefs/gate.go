package prefs

import (
	"errors"
	"fmt"

	"console-cli/internal/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// AppKey is the fixed key the preference record is stored under.
const AppKey = "app"

// Preferences is the persisted part of the UI state. Session history and
// key state are never part of it.
type Preferences struct {
	UserInput    string `json:"user_input"`
	AutoScroll   bool   `json:"auto_scroll"`
	RefocusInput bool   `json:"refocus_input"`
}

// Default returns the record used when nothing (or nothing usable) is stored.
func Default() Preferences {
	return Preferences{
		UserInput:    "",
		AutoScroll:   true,
		RefocusInput: true,
	}
}

// field describes one persisted field: how to read it tolerantly from a
// record and how to write it back.
type field struct {
	name  string
	kinds []gjson.Type
	read  func(r gjson.Result, p *Preferences)
	value func(p Preferences) any
}

var fields = []field{
	{
		name:  "user_input",
		kinds: []gjson.Type{gjson.String},
		read:  func(r gjson.Result, p *Preferences) { p.UserInput = r.String() },
		value: func(p Preferences) any { return p.UserInput },
	},
	{
		name:  "auto_scroll",
		kinds: []gjson.Type{gjson.True, gjson.False},
		read:  func(r gjson.Result, p *Preferences) { p.AutoScroll = r.Bool() },
		value: func(p Preferences) any { return p.AutoScroll },
	},
	{
		name:  "refocus_input",
		kinds: []gjson.Type{gjson.True, gjson.False},
		read:  func(r gjson.Result, p *Preferences) { p.RefocusInput = r.Bool() },
		value: func(p Preferences) any { return p.RefocusInput },
	},
}

// Gate saves preferences on shutdown and restores them on startup.
type Gate struct {
	store Storage
	log   *logger.LogEntry
}

func NewGate(store Storage) *Gate {
	return &Gate{store: store, log: logger.Named("prefs")}
}

// Load never fails. A missing record yields Default(); a corrupt record, a
// missing field or a field of the wrong type falls back to that field's
// default while the remaining fields are kept.
func (g *Gate) Load() Preferences {
	p := Default()
	data, err := g.store.Get(AppKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.log.WithError(err).Warn("read preferences failed; using defaults")
		}
		return p
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		g.log.WithField("bytes", len(data)).Warn("corrupt preference record; using defaults")
		return p
	}
	for _, f := range fields {
		r := gjson.GetBytes(data, f.name)
		if !r.Exists() {
			continue
		}
		if !hasKind(r, f.kinds) {
			g.log.WithField("field", f.name).Warn("malformed preference field; using default")
			continue
		}
		f.read(r, &p)
	}
	return p
}

// Save writes the record in one storage write. Fields this version does not
// know about that are already in the stored record are carried over.
func (g *Gate) Save(p Preferences) error {
	base := []byte("{}")
	if prev, err := g.store.Get(AppKey); err == nil && gjson.ValidBytes(prev) && gjson.ParseBytes(prev).IsObject() {
		base = prev
	}
	out := base
	for _, f := range fields {
		var err error
		out, err = sjson.SetBytes(out, f.name, f.value(p))
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	if err := g.store.Set(AppKey, out); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func hasKind(r gjson.Result, kinds []gjson.Type) bool {
	for _, k := range kinds {
		if r.Type == k {
			return true
		}
	}
	return false
}
