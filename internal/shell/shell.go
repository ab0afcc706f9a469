// Package shell holds the admin application shell state: dark mode, the
// sidebar and the last range used in the availability editor. A Container
// is created once at the composition root; an admin's state is opened on
// login and torn down on logout.
package shell

import (
	"context"
	"sort"
	"strconv"
	"sync"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/store"
)

const (
	keyDarkMode         = "dark_mode"
	keySidebarOpen      = "sidebar_open"
	keyAvailabilityFrom = "availability_from"
	keyAvailabilityTo   = "availability_to"
)

// State is the shell state of one admin
type State struct {
	DarkMode         bool   `json:"dark_mode"`
	SidebarOpen      bool   `json:"sidebar_open"`
	AvailabilityFrom string `json:"availability_from,omitempty"`
	AvailabilityTo   string `json:"availability_to,omitempty"`
}

// Default is the state of an admin with nothing persisted
func Default() State {
	return State{SidebarOpen: true}
}

// Store persists shell settings; *store.Store satisfies it
type Store interface {
	LoadPreferences(ctx context.Context, adminID string) store.Result[map[string]string]
	SavePreference(ctx context.Context, adminID, key, value string) store.Result[bool]
}

// Container caches the state of every open admin session
type Container struct {
	mu     sync.RWMutex
	store  Store
	states map[string]State
}

// New creates an empty container
func New(st Store) *Container {
	return &Container{store: st, states: make(map[string]State)}
}

// Open loads the persisted state of adminID into the container
func (c *Container) Open(ctx context.Context, adminID string) (State, error) {
	res := c.store.LoadPreferences(ctx, adminID)
	if !res.OK() {
		return Default(), res.Err
	}
	st := decode(res.Data)

	c.mu.Lock()
	c.states[adminID] = st
	c.mu.Unlock()
	return st, nil
}

// Get returns the state of adminID, opening it on first use
func (c *Container) Get(ctx context.Context, adminID string) (State, error) {
	c.mu.RLock()
	st, ok := c.states[adminID]
	c.mu.RUnlock()
	if ok {
		return st, nil
	}
	return c.Open(ctx, adminID)
}

// SetDarkMode persists the dark-mode flag
func (c *Container) SetDarkMode(ctx context.Context, adminID string, on bool) (State, error) {
	return c.write(ctx, adminID, map[string]string{keyDarkMode: strconv.FormatBool(on)}, func(st *State) {
		st.DarkMode = on
	})
}

// SetSidebar persists whether the sidebar is open
func (c *Container) SetSidebar(ctx context.Context, adminID string, open bool) (State, error) {
	return c.write(ctx, adminID, map[string]string{keySidebarOpen: strconv.FormatBool(open)}, func(st *State) {
		st.SidebarOpen = open
	})
}

// RememberAvailabilityRange persists the range last used in the availability editor
func (c *Container) RememberAvailabilityRange(ctx context.Context, adminID, from, to string) (State, error) {
	return c.write(ctx, adminID, map[string]string{keyAvailabilityFrom: from, keyAvailabilityTo: to}, func(st *State) {
		st.AvailabilityFrom = from
		st.AvailabilityTo = to
	})
}

// Close drops the cached state of adminID; persisted settings stay
func (c *Container) Close(adminID string) {
	c.mu.Lock()
	delete(c.states, adminID)
	c.mu.Unlock()
}

// Len reports how many sessions are open
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

// write persists values and then applies them to the cached state. A
// failed write leaves the cached state untouched.
func (c *Container) write(ctx context.Context, adminID string, values map[string]string, apply func(*State)) (State, error) {
	if adminID == "" {
		return Default(), apperrors.NewUnauthorizedError("no admin session")
	}
	if _, err := c.Get(ctx, adminID); err != nil {
		return Default(), err
	}

	for _, key := range sortedKeys(values) {
		if res := c.store.SavePreference(ctx, adminID, key, values[key]); !res.OK() {
			st, _ := c.Get(ctx, adminID)
			return st, res.Err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[adminID]
	if !ok {
		st = Default()
	}
	apply(&st)
	c.states[adminID] = st
	return st, nil
}

func decode(values map[string]string) State {
	st := Default()
	if v, ok := values[keyDarkMode]; ok {
		st.DarkMode, _ = strconv.ParseBool(v)
	}
	if v, ok := values[keySidebarOpen]; ok {
		if open, err := strconv.ParseBool(v); err == nil {
			st.SidebarOpen = open
		}
	}
	st.AvailabilityFrom = values[keyAvailabilityFrom]
	st.AvailabilityTo = values[keyAvailabilityTo]
	return st
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
