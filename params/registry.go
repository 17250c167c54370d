// Package params holds the named values a sketch reads once per frame.
// Writes are clamped to each parameter's declared range.
package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrKindMismatch     = errors.New("value does not match parameter kind")
)

// Observer is notified after a parameter value changes.
type Observer interface {
	ParameterChanged(name string, value float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(name string, value float64)

func (f ObserverFunc) ParameterChanged(name string, value float64) { f(name, value) }

// Registry maps parameter names to their spec and current value.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	specs     map[string]Spec
	values    map[string]float64
	observers []Observer
}

// NewRegistry declares the given parameters at their defaults.
func NewRegistry(specs []Spec) *Registry {
	r := &Registry{
		specs:  make(map[string]Spec, len(specs)),
		values: make(map[string]float64, len(specs)),
	}
	for _, s := range specs {
		r.declare(s)
	}
	return r
}

func (r *Registry) declare(s Spec) {
	if _, ok := r.specs[s.Name]; !ok {
		r.order = append(r.order, s.Name)
	}
	r.specs[s.Name] = s
	r.values[s.Name] = s.Clamp(s.Default)
}

// Declare adds or replaces a parameter. The current value is reset to the
// new default.
func (r *Registry) Declare(s Spec) {
	r.mu.Lock()
	r.declare(s)
	v := r.values[s.Name]
	obs := append([]Observer(nil), r.observers...)
	r.mu.Unlock()
	notify(obs, s.Name, v)
}

// Observe registers o for change notifications.
func (r *Registry) Observe(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Set writes a clamped value and returns what was stored.
func (r *Registry) Set(name string, value float64) (float64, error) {
	r.mu.Lock()
	s, ok := r.specs[name]
	if !ok {
		r.mu.Unlock()
		return 0, fmt.Errorf("set %q: %w", name, ErrUnknownParameter)
	}
	v := s.Clamp(value)
	changed := r.values[name] != v
	r.values[name] = v
	obs := r.observers
	if changed {
		obs = append([]Observer(nil), r.observers...)
	}
	r.mu.Unlock()

	if changed {
		notify(obs, name, v)
	}
	return v, nil
}

// SetBool writes a boolean parameter.
func (r *Registry) SetBool(name string, on bool) error {
	v := 0.0
	if on {
		v = 1
	}
	_, err := r.Set(name, v)
	return err
}

// SetString parses text according to the parameter's kind: a number for
// floats, true/false/on/off for booleans, an option name or index for
// choices.
func (r *Registry) SetString(name, text string) (float64, error) {
	s, ok := r.Spec(name)
	if !ok {
		return 0, fmt.Errorf("set %q: %w", name, ErrUnknownParameter)
	}
	text = strings.TrimSpace(text)
	switch s.Kind {
	case Bool:
		switch strings.ToLower(text) {
		case "true", "on", "yes", "1":
			return r.Set(name, 1)
		case "false", "off", "no", "0":
			return r.Set(name, 0)
		}
		return 0, fmt.Errorf("set %q to %q: %w", name, text, ErrKindMismatch)
	case Choice:
		for i, c := range s.Choices {
			if strings.EqualFold(c, text) {
				return r.Set(name, float64(i))
			}
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("set %q to %q: %w", name, text, ErrKindMismatch)
	}
	return r.Set(name, v)
}

// Nudge moves a parameter by steps increments of its declared step. Booleans
// toggle and choices cycle.
func (r *Registry) Nudge(name string, steps int) (float64, error) {
	s, ok := r.Spec(name)
	if !ok {
		return 0, fmt.Errorf("nudge %q: %w", name, ErrUnknownParameter)
	}
	cur := r.Float(name)
	switch s.Kind {
	case Bool:
		return r.Set(name, 1-cur)
	case Choice:
		n := len(s.Choices)
		if n == 0 {
			return 0, nil
		}
		next := (int(cur) + steps%n + n) % n
		return r.Set(name, float64(next))
	}
	step := s.Step
	if step == 0 {
		step = (s.Max - s.Min) / 100
	}
	return r.Set(name, cur+float64(steps)*step)
}

// Spec returns the declaration of name.
func (r *Registry) Spec(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[name]
	return s, ok
}

// Specs returns all declarations in declaration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.specs[n])
	}
	return out
}

// Float returns the current value of name, or 0 if it is not declared.
func (r *Registry) Float(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[name]
}

func (r *Registry) Bool(name string) bool {
	return r.Float(name) != 0
}

// Choice returns the selected option index and its name.
func (r *Registry) Choice(name string) (int, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := int(r.values[name])
	s := r.specs[name]
	if i < 0 || i >= len(s.Choices) {
		return i, ""
	}
	return i, s.Choices[i]
}

// Format renders the current value of name for display.
func (r *Registry) Format(name string) string {
	s, ok := r.Spec(name)
	if !ok {
		return ""
	}
	switch s.Kind {
	case Bool:
		if r.Bool(name) {
			return "on"
		}
		return "off"
	case Choice:
		_, c := r.Choice(name)
		return c
	}
	return strconv.FormatFloat(r.Float(name), 'f', -1, 64)
}

// Snapshot copies every current value.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func notify(obs []Observer, name string, v float64) {
	for _, o := range obs {
		o.ParameterChanged(name, v)
	}
}
