package auth

import (
	"sync"

	"github.com/pkg/errors"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateUnauthorized  State = "unauthorized"
	StateError         State = "error"
)

// Event moves the session between states.
type Event string

const (
	EventLoginStarted  Event = "login_started"
	EventAuthenticated Event = "authenticated"
	EventRoleRejected  Event = "role_rejected"
	EventFailed        Event = "failed"
	EventLoggedOut     Event = "logged_out"
)

// Account is the signed-in professor's profile.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
	Role      string `json:"role"`
}

// RoleProfessor is the only role allowed past login.
const RoleProfessor = "professor"

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventLoginStarted: StateLoading,
	},
	StateLoading: {
		EventAuthenticated: StateAuthenticated,
		EventRoleRejected:  StateUnauthorized,
		EventFailed:        StateError,
	},
	StateAuthenticated: {
		EventLoggedOut: StateIdle,
	},
	StateUnauthorized: {
		EventLoginStarted: StateLoading,
		EventLoggedOut:    StateIdle,
	},
	StateError: {
		EventLoginStarted: StateLoading,
		EventLoggedOut:    StateIdle,
	},
}

// Next returns the state reached by applying event to state. Undefined
// transitions are rejected, never silently absorbed.
func Next(state State, event Event) (State, error) {
	if next, ok := transitions[state][event]; ok {
		return next, nil
	}
	return state, errors.Errorf("invalid transition: %s on %s", event, state)
}

// Machine tracks the session state and the account bound to it.
// Safe for concurrent use.
type Machine struct {
	mu      sync.RWMutex
	state   State
	account Account
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// Apply transitions the machine; the state is unchanged on error.
func (m *Machine) Apply(event Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := Next(m.state, event)
	if err != nil {
		return m.state, err
	}
	m.state = next
	if next == StateIdle {
		m.account = Account{}
	}
	return next, nil
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetAccount binds the profile after a successful login.
func (m *Machine) SetAccount(acct Account) {
	m.mu.Lock()
	m.account = acct
	m.mu.Unlock()
}

func (m *Machine) Account() Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account
}
