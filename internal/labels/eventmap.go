package labels

import (
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// NullGlyph is displayed for the reserved null label type.
const NullGlyph = "Ø"

// Scheme describes the label types available to a stream.
type Scheme struct {
	Name      string
	EventMap  map[int]string
	NullLabel int
}

// EventTypeMap maps label-type keys to display names and back.
type EventTypeMap struct {
	Name    string
	NullKey int
	entries map[int]string
	byName  map[string]int
}

// NewEventTypeMap builds the map for a scheme.
func NewEventTypeMap(s Scheme) *EventTypeMap {
	m := &EventTypeMap{
		Name:    s.Name,
		NullKey: s.NullLabel,
		entries: make(map[int]string, len(s.EventMap)),
		byName:  make(map[string]int, len(s.EventMap)),
	}
	for k, name := range s.EventMap {
		m.entries[k] = name
		m.byName[name] = k
	}
	return m
}

// IsNull reports whether key is the reserved null type.
func (m *EventTypeMap) IsNull(key int) bool { return key == m.NullKey }

// Get returns the display name for key. The null key yields NullGlyph; an
// unknown key is logged and falls back to its decimal form.
func (m *EventTypeMap) Get(key int) string {
	if m.IsNull(key) {
		return NullGlyph
	}
	name, ok := m.entries[key]
	if !ok {
		log.WithFields(log.Fields{"scheme": m.Name, "key": key}).Warn("unexpected label key")
		return strconv.Itoa(key)
	}
	return name
}

// NameOf returns the scheme's own name for key, including the null entry.
func (m *EventTypeMap) NameOf(key int) (string, bool) {
	name, ok := m.entries[key]
	return name, ok
}

// Key returns the key registered under name.
func (m *EventTypeMap) Key(name string) (int, bool) {
	k, ok := m.byName[name]
	return k, ok
}

// ParseKey reads a key given either as a number or as a type name.
func (m *EventTypeMap) ParseKey(s string) (int, bool) {
	if k, err := strconv.Atoi(s); err == nil {
		return k, true
	}
	return m.Key(s)
}

// EventTypes returns the defined keys in ascending order. With
// includeNull the null key is part of the cycle even when the scheme does
// not name it.
func (m *EventTypeMap) EventTypes(includeNull bool) []int {
	keys := make([]int, 0, len(m.entries)+1)
	hasNull := false
	for k := range m.entries {
		if m.IsNull(k) {
			hasNull = true
			if !includeNull {
				continue
			}
		}
		keys = append(keys, k)
	}
	if includeNull && !hasNull {
		keys = append(keys, m.NullKey)
	}
	sort.Ints(keys)
	return keys
}

// Initial returns the type a new stream starts with.
func (m *EventTypeMap) Initial() int {
	types := m.EventTypes(true)
	return types[0]
}
