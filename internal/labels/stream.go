// Package labels holds annotated intervals and the label types they use.
package labels

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Label is one annotated interval in domain units. End may equal Start for
// a zero-width marker and may be smaller than Start after independent edge
// drags; Bounds returns the ordered pair.
type Label struct {
	ID       int
	Start    float64
	End      float64
	Label    int
	Selected bool
	Type     string
}

// Bounds returns the interval with Start <= End.
func (l Label) Bounds() (lo, hi float64) {
	return math.Min(l.Start, l.End), math.Max(l.Start, l.End)
}

// EventKind is the type of a stream change notification.
type EventKind int

const (
	EventSetLabels EventKind = iota
	EventAdd
	EventRemove
	EventChange
	EventSelect
	EventChangeType
)

var eventNames = [...]string{"set-labels", "add", "remove", "change", "select", "change-type"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is published after every stream mutation.
type Event struct {
	Kind   EventKind
	Source string
	ID     int
}

// Stream is the ordered, mutable set of labels of one sensor. It is only
// mutated from the UI loop; subscribers run synchronously.
type Stream struct {
	name       string
	labels     []Label
	emap       *EventTypeMap
	activeType int
	next       int

	subs  map[int]func(Event)
	subID int
}

// NewStream creates a stream with the given scheme and initial labels.
func NewStream(name string, scheme Scheme, lbls []Label) *Stream {
	s := &Stream{
		name: name,
		emap: NewEventTypeMap(scheme),
		subs: make(map[int]func(Event)),
	}
	s.activeType = s.emap.Initial()
	s.SetLabels(lbls)
	return s
}

// Name returns the stream name.
func (s *Stream) Name() string { return s.name }

// EventMap returns the stream's type map.
func (s *Stream) EventMap() *EventTypeMap { return s.emap }

// Len returns the number of labels.
func (s *Stream) Len() int { return len(s.labels) }

// IsEmpty reports whether the stream has no labels.
func (s *Stream) IsEmpty() bool { return len(s.labels) == 0 }

// Labels returns a copy of the labels in insertion order.
func (s *Stream) Labels() []Label {
	out := make([]Label, len(s.labels))
	copy(out, s.labels)
	return out
}

// Get returns the label with the given id.
func (s *Stream) Get(id int) (Label, bool) {
	if i := s.index(id); i >= 0 {
		return s.labels[i], true
	}
	return Label{}, false
}

// Selected returns the selected label, if any.
func (s *Stream) Selected() (Label, bool) {
	for _, l := range s.labels {
		if l.Selected {
			return l, true
		}
	}
	return Label{}, false
}

// SetLabels replaces every label and assigns fresh ids 0..n-1. Later
// duplicates of an earlier (start, end) pair are dropped.
func (s *Stream) SetLabels(lbls []Label) {
	s.labels = make([]Label, 0, len(lbls))
	for _, l := range lbls {
		if s.exists(l.Start, l.End, -1) {
			s.warnDuplicate(l)
			continue
		}
		l.ID = len(s.labels)
		l.Type = s.typeName(l.Label)
		s.labels = append(s.labels, l)
	}
	s.next = len(s.labels)
	s.emit(EventSetLabels, -1)
}

// Add inserts a label and returns it with its new id. A label whose
// (start, end) pair already exists is discarded with a warning.
func (s *Stream) Add(l Label) (Label, bool) {
	if s.exists(l.Start, l.End, -1) {
		s.warnDuplicate(l)
		return Label{}, false
	}
	l.ID = s.next
	s.next++
	l.Type = s.typeName(l.Label)
	if l.Selected {
		s.clearSelection()
	}
	s.labels = append(s.labels, l)
	s.emit(EventAdd, l.ID)
	return l, true
}

// Remove deletes the label with the given id. Its id is never reused.
func (s *Stream) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.labels = append(s.labels[:i], s.labels[i+1:]...)
	s.emit(EventRemove, id)
	return true
}

// Move sets a label's bounds. A move onto another label's exact bounds is
// rejected and leaves the label unchanged.
func (s *Stream) Move(id int, start, end float64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if s.exists(start, end, id) {
		s.warnDuplicate(Label{Start: start, End: end})
		return false
	}
	s.labels[i].Start, s.labels[i].End = start, end
	s.emit(EventChange, id)
	return true
}

// Retype changes a label's type key.
func (s *Stream) Retype(id, key int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.labels[i].Label = key
	s.labels[i].Type = s.typeName(key)
	s.emit(EventChange, id)
	return true
}

// Select marks one label as selected and clears every other selection.
func (s *Stream) Select(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.clearSelection()
	s.labels[i].Selected = true
	s.emit(EventSelect, id)
	return true
}

// Deselect clears the selection.
func (s *Stream) Deselect() {
	if s.clearSelection() {
		s.emit(EventSelect, -1)
	}
}

// ActiveType returns the type used for new labels.
func (s *Stream) ActiveType() int { return s.activeType }

// ChangeType sets the active type.
func (s *Stream) ChangeType(key int) {
	s.activeType = key
	s.emit(EventChangeType, -1)
}

// Cycle moves the active type to the next defined type, wrapping.
func (s *Stream) Cycle() { s.step(1) }

// CycleDown moves the active type to the previous defined type, wrapping.
func (s *Stream) CycleDown() { s.step(-1) }

func (s *Stream) step(dir int) {
	types := s.emap.EventTypes(true)
	idx := -1
	for i, t := range types {
		if t == s.activeType {
			idx = i
			break
		}
	}
	idx += dir
	switch {
	case idx >= len(types):
		idx = 0
	case idx < 0:
		idx = len(types) - 1
	}
	s.activeType = types[idx]
	s.emit(EventChangeType, -1)
}

// FindType returns the labels of the given type.
func (s *Stream) FindType(key int) []Label {
	var out []Label
	for _, l := range s.labels {
		if l.Label == key {
			out = append(out, l)
		}
	}
	return out
}

type jsonLabel struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label int     `json:"label"`
}

// ToJSON serializes the labels as [{start, end, label}] sorted by start.
// Bounds are written in order; pairs that coincide after ordering are
// written once.
func (s *Stream) ToJSON() ([]byte, error) {
	out := make([]jsonLabel, 0, len(s.labels))
	for _, l := range s.labels {
		lo, hi := l.Bounds()
		out = append(out, jsonLabel{Start: lo, End: hi, Label: l.Label})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	uniq := out[:0]
	for i, l := range out {
		if i > 0 && l.Start == out[i-1].Start && l.End == out[i-1].End {
			continue
		}
		uniq = append(uniq, l)
	}
	return json.Marshal(uniq)
}

// FromJSON parses the output of ToJSON into labels.
func FromJSON(data []byte) ([]Label, error) {
	var in []jsonLabel
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing labels: %w", err)
	}
	out := make([]Label, len(in))
	for i, l := range in {
		out[i] = Label{Start: l.Start, End: l.End, Label: l.Label}
	}
	return out, nil
}

// Subscribe registers fn for change events and returns a function that
// removes it. Subscribers run synchronously and must not block; a panic in
// one is logged and does not reach the publisher.
func (s *Stream) Subscribe(fn func(Event)) func() {
	id := s.subID
	s.subID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Stream) emit(kind EventKind, id int) {
	ev := Event{Kind: kind, Source: s.name, ID: id}
	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if fn, ok := s.subs[k]; ok {
			s.deliver(fn, ev)
		}
	}
}

func (s *Stream) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"stream": s.name, "event": ev.Kind}).Warnf("label subscriber panicked: %v", r)
		}
	}()
	fn(ev)
}

func (s *Stream) index(id int) int {
	for i, l := range s.labels {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Stream) exists(start, end float64, except int) bool {
	for _, l := range s.labels {
		if l.ID != except && l.Start == start && l.End == end {
			return true
		}
	}
	return false
}

func (s *Stream) clearSelection() bool {
	changed := false
	for i := range s.labels {
		if s.labels[i].Selected {
			s.labels[i].Selected = false
			changed = true
		}
	}
	return changed
}

func (s *Stream) typeName(key int) string {
	if name, ok := s.emap.NameOf(key); ok {
		return name
	}
	return s.emap.Get(key)
}

func (s *Stream) warnDuplicate(l Label) {
	log.WithFields(log.Fields{"stream": s.name, "start": l.Start, "end": l.End}).Warn("this label already exists")
}
