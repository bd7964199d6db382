package workflow

import "fmt"

// StateMachine tracks the current state and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts the trigger, transitioning to the target state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers valid in the current state
	PermittedTriggers() []Trigger
}

// Builder configures permitted transitions per state
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates a new state machine builder
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger]State)}
}

// Permit allows a trigger to move fromState to toState
func (b *Builder) Permit(fromState State, trigger Trigger, toState State) *Builder {
	if !fromState.IsValid() || !toState.IsValid() {
		panic(fmt.Sprintf("invalid transition states: %s -> %s", fromState, toState))
	}
	if b.transitions[fromState] == nil {
		b.transitions[fromState] = make(map[Trigger]State)
	}
	b.transitions[fromState][trigger] = toState
	return b
}

// Build creates a state machine instance starting at initialState
func (b *Builder) Build(initialState State) (StateMachine, error) {
	if !initialState.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initialState)
	}

	transitions := make(map[State]map[Trigger]State, len(b.transitions))
	for from, byTrigger := range b.transitions {
		copied := make(map[Trigger]State, len(byTrigger))
		for trigger, to := range byTrigger {
			copied[trigger] = to
		}
		transitions[from] = copied
	}

	return &stateMachine{currentState: initialState, transitions: transitions}, nil
}

type stateMachine struct {
	currentState State
	transitions  map[State]map[Trigger]State
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.currentState][trigger]
	return ok
}

func (m *stateMachine) Fire(trigger Trigger) error {
	toState, ok := m.transitions[m.currentState][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}
	m.currentState = toState
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	byTrigger := m.transitions[m.currentState]
	triggers := make([]Trigger, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	return triggers
}
