package tasks

import (
	"slices"
	"sync"
)

// Selection is the session's chosen task label. The zero value has nothing selected.
type Selection struct {
	mu    sync.Mutex
	label string
}

// Select records label as the current task.
func (s *Selection) Select(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Current returns the selected label, or "".
func (s *Selection) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Sync reconciles the selection with the labels now available: no labels clears
// it, a vanished label falls back to the first one, otherwise it is kept.
func (s *Selection) Sync(labels []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case len(labels) == 0:
		s.label = ""
	case !slices.Contains(labels, s.label):
		s.label = labels[0]
	}
}

// Choose picks the label to run. When the current selection is not among
// labels it returns labels[0] and pick=true, meaning an interactive caller
// should let the user choose.
func (s *Selection) Choose(labels []string) (label string, pick bool, err error) {
	if len(labels) == 0 {
		return "", false, ErrNoTasksConfigured
	}
	current := s.Current()
	if slices.Contains(labels, current) {
		return current, false, nil
	}
	return labels[0], true, nil
}

// Description is the one-line status shown next to the tree.
func (s *Selection) Description() string {
	if label := s.Current(); label != "" {
		return "task: " + label
	}
	return "no task selected"
}
