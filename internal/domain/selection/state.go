// Package selection models the widget's UI state: which dataset is shown and
// which optional panels are open. Transitions are pure; every method returns
// a new State and leaves the receiver untouched.
package selection

import (
	"fmt"
	"strings"
)

// State is the complete UI state of one widget instance.
type State struct {
	SelectedID            string `json:"selected_dataset_id"`
	StatsVisible          bool   `json:"stats_visible"`
	InterpretationVisible bool   `json:"interpretation_visible"`
}

// Initial is the state of a freshly mounted widget: the first dataset, the
// statistics panel shown and the interpretation panel collapsed.
func Initial(firstID string) State {
	return State{
		SelectedID:            firstID,
		StatsVisible:          true,
		InterpretationVisible: false,
	}
}

// SelectDataset switches dataset and collapses the interpretation panel.
// Statistics visibility carries over.
func (s State) SelectDataset(id string) State {
	s.SelectedID = id
	s.InterpretationVisible = false
	return s
}

// ToggleStats flips statistics visibility.
func (s State) ToggleStats() State {
	s.StatsVisible = !s.StatsVisible
	return s
}

// ToggleInterpretation flips interpretation visibility.
func (s State) ToggleInterpretation() State {
	s.InterpretationVisible = !s.InterpretationVisible
	return s
}

// Action names a user interaction.
type Action string

// Known actions.
const (
	ActionSelect               Action = "select"
	ActionToggleStats          Action = "toggle_stats"
	ActionToggleInterpretation Action = "toggle_interpretation"
)

// ParseAction maps a wire name to an Action.
func ParseAction(name string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(name))); a {
	case ActionSelect, ActionToggleStats, ActionToggleInterpretation:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

// Apply runs action against s. datasetID is only read by ActionSelect.
func Apply(s State, action Action, datasetID string) (State, error) {
	switch action {
	case ActionSelect:
		return s.SelectDataset(datasetID), nil
	case ActionToggleStats:
		return s.ToggleStats(), nil
	case ActionToggleInterpretation:
		return s.ToggleInterpretation(), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
