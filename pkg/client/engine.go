package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// AttemptState is the lifecycle state of one mutation attempt.
type AttemptState string

const (
	StateIdle        AttemptState = "IDLE"
	StateSpeculating AttemptState = "SPECULATING"
	StateCommitting  AttemptState = "COMMITTING"
	StateSettled     AttemptState = "SETTLED"
	StateRolledBack  AttemptState = "ROLLED_BACK"
)

// IsTerminal reports whether the state ends an attempt's current cycle.
// ROLLED_BACK is re-enterable through Retry until dismissed.
func IsTerminal(s AttemptState) bool {
	switch s {
	case StateSettled, StateRolledBack:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to AttemptState) bool {
	switch from {
	case StateIdle:
		return to == StateSpeculating
	case StateSpeculating:
		return to == StateCommitting
	case StateCommitting:
		return to == StateSettled || to == StateRolledBack
	case StateRolledBack:
		// manual retry replays the attempt
		return to == StateSpeculating
	default:
		return false
	}
}

// ErrRetryDismissed is returned by Retry after Dismiss made the rollback
// final.
var ErrRetryDismissed = errors.New("client: retry affordance dismissed")

// Mutation describes one optimistic edit: which collection it touches, how
// to compute the speculative local result, how to dispatch it, and how to
// fold the server's confirmation back in.
type Mutation struct {
	// Key names the affected store collection, e.g. KeyTasks.
	Key string

	// Speculate transforms a private copy of the current rows into the
	// expected post-mutation rows. It runs synchronously before dispatch.
	Speculate func(rows []Task) []Task

	// Dispatch performs the network call and returns the server's
	// authoritative entity, if any.
	Dispatch func(ctx context.Context) (confirmed any, err error)

	// Reconcile folds the confirmed entity into the current rows. Nil
	// selects reconcileTask, which replaces by id or swaps the sole
	// placeholder row. Deletes confirm with nil and reconcile to a no-op.
	Reconcile func(rows []Task, confirmed any) []Task
}

// Engine orchestrates optimistic mutations against a Store. Speculative
// applies and reconciliations are serialized through the engine mutex in
// arrival order; dispatches run unlocked so attempts overlap on the wire.
//
// Two speculative mutations racing on the same entity are not serialized:
// if the earlier one fails after the later one applied its change on top,
// the rollback restores the earlier attempt's snapshot and erases the later
// speculative edit until that attempt settles or rolls back itself. This is
// a deliberate property of the protocol, not a bug to defend against here.
type Engine struct {
	mu        sync.Mutex
	store     *Store
	transport Transport
}

// NewEngine creates an engine writing through to store via transport.
func NewEngine(store *Store, transport Transport) *Engine {
	return &Engine{
		store:     store,
		transport: transport,
	}
}

// Store returns the cache this engine writes to.
func (e *Engine) Store() *Store {
	return e.store
}

// Attempt is one mutation attempt. After a rollback it exposes Retry and
// Dismiss; nothing is retried automatically.
type Attempt struct {
	// ID identifies the attempt in logs and UIs.
	ID string

	engine   *Engine
	mutation Mutation

	mu        sync.Mutex
	state     AttemptState
	snapshot  []Task
	err       error
	dismissed bool
}

// State returns the attempt's current lifecycle state.
func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the dispatch failure that caused the last rollback, or nil.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Do runs one mutation attempt to completion: speculative apply, dispatch,
// then settle or roll back. The returned attempt is always in a terminal
// state; issue concurrent mutations from separate goroutines.
func (e *Engine) Do(ctx context.Context, m Mutation) *Attempt {
	a := &Attempt{
		ID:       uuid.NewString(),
		engine:   e,
		mutation: m,
		state:    StateIdle,
	}
	a.run(ctx)
	return a
}

// Retry replays the identical attempt: same target, same payload, fresh
// snapshot captured at retry time. Valid only from ROLLED_BACK and before
// Dismiss.
func (a *Attempt) Retry(ctx context.Context) error {
	a.mu.Lock()
	if a.dismissed {
		a.mu.Unlock()
		return ErrRetryDismissed
	}
	if a.state != StateRolledBack {
		state := a.state
		a.mu.Unlock()
		return fmt.Errorf("client: cannot retry attempt in state %s", state)
	}
	a.mu.Unlock()

	a.run(ctx)
	return a.Err()
}

// Dismiss discards the retry affordance, leaving the rollback final.
func (a *Attempt) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dismissed = true
}

// transition validates and applies a state change. A disallowed transition
// is an engine bug; it surfaces as a panic rather than silent corruption.
func (a *Attempt) transition(to AttemptState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !isAllowedTransition(a.state, to) {
		panic(fmt.Sprintf("client: disallowed attempt transition %s -> %s", a.state, to))
	}
	a.state = to
}

func (a *Attempt) run(ctx context.Context) {
	e := a.engine
	m := a.mutation

	// Speculative apply: snapshot, transform a private copy, install.
	// Serialized with other attempts' applies and reconciliations.
	e.mu.Lock()
	snapshot, _ := e.store.Snapshot(m.Key)
	a.mu.Lock()
	a.snapshot = snapshot
	a.err = nil
	a.mu.Unlock()
	a.transition(StateSpeculating)

	speculative := m.Speculate(cloneTasks(snapshot))
	e.store.write(m.Key, speculative)
	a.transition(StateCommitting)
	e.mu.Unlock()

	// The network call runs unlocked so unrelated attempts proceed.
	confirmed, err := m.Dispatch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		// Restore exactly this attempt's pre-speculation snapshot.
		e.store.write(m.Key, a.snapshot)
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
		a.transition(StateRolledBack)
		return
	}

	// Settle: fold the server's entity into the rows as they are now,
	// which may include later attempts' speculative edits. No broader
	// invalidation or refetch happens on success.
	rows, _ := e.store.Snapshot(m.Key)
	reconcile := m.Reconcile
	if reconcile == nil {
		reconcile = reconcileTask
	}
	e.store.write(m.Key, reconcile(rows, confirmed))
	a.transition(StateSettled)
}

// RefreshTasks fetches the authoritative task list and installs it as the
// confirmed snapshot, resetting the freshness clock. Callers typically gate
// this on !store.Fresh(KeyTasks).
func (e *Engine) RefreshTasks(ctx context.Context) error {
	tasks, err := e.transport.ListTasks(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.replace(KeyTasks, tasks)
	return nil
}

// reconcileTask is the default reconciliation: replace the row matching the
// confirmed task's id, or swap the sole placeholder row for a confirmed
// creation. A nil confirmation leaves the rows unchanged.
func reconcileTask(rows []Task, confirmed any) []Task {
	task, ok := confirmed.(*Task)
	if !ok || task == nil {
		return rows
	}

	for i := range rows {
		if rows[i].ID == task.ID {
			rows[i] = task.Clone()
			return rows
		}
	}
	for i := range rows {
		if IsPlaceholderID(rows[i].ID) {
			rows[i] = task.Clone()
			return rows
		}
	}
	return rows
}
