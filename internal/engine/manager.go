package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/store"
)

// Identified is implemented by every model through models.Base
type Identified interface {
	RecordID() string
}

// Backend is the slice of the backend access layer a manager needs.
// *store.Table satisfies it.
type Backend[T any] interface {
	GetAll(ctx context.Context) store.Result[[]T]
	GetByID(ctx context.Context, id string) store.Result[T]
	Create(ctx context.Context, record T) store.Result[T]
	Update(ctx context.Context, id string, patch map[string]interface{}) store.Result[T]
	Delete(ctx context.Context, id string) store.Result[bool]
}

// =============================================================================
// STATES
// =============================================================================

// ListState tracks the list fetch
type ListState string

const (
	ListIdle    ListState = "idle"
	ListLoading ListState = "loading"
	ListLoaded  ListState = "loaded"
)

// Phase is the state of the create/edit modal
type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhaseCreating   Phase = "creating"
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseFailed     Phase = "failed"
)

// Modal is a snapshot of the modal state machine
type Modal struct {
	Phase     Phase  `json:"phase"`
	Form      Form   `json:"form,omitempty"`
	EditingID string `json:"editing_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// RefreshPolicy decides what happens to the list after a successful write
type RefreshPolicy int

const (
	// RefreshOnWrite refetches the whole list after every successful create, update or delete
	RefreshOnWrite RefreshPolicy = iota
	// RefreshLocal patches the cached list with the returned record instead of refetching
	RefreshLocal
)

// Notice is a user-facing message raised by the manager
type Notice struct {
	Level   string `json:"level"` // success | error | alert
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeAlert   = "alert"
)

// Notifier receives the manager's notices
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// =============================================================================
// MANAGER
// =============================================================================

// Manager drives one admin CRUD screen: a cached list, a create/edit modal
// and a delete confirmation. It is not safe for concurrent use; the HTTP
// layer creates one per request.
type Manager[T Identified] struct {
	schema  *EntitySchema
	backend Backend[T]
	notify  Notifier
	refresh RefreshPolicy

	items         []T
	listState     ListState
	modal         Modal
	pendingDelete string
	last          *T
}

// ManagerOption configures a Manager
type ManagerOption func(*managerOptions)

type managerOptions struct {
	notify  Notifier
	refresh RefreshPolicy
}

// WithNotifier routes notices to n
func WithNotifier(n Notifier) ManagerOption {
	return func(o *managerOptions) { o.notify = n }
}

// WithRefresh sets the refresh policy
func WithRefresh(p RefreshPolicy) ManagerOption {
	return func(o *managerOptions) { o.refresh = p }
}

// NewManager creates a manager in the idle, closed state
func NewManager[T Identified](schema *EntitySchema, backend Backend[T], opts ...ManagerOption) *Manager[T] {
	o := managerOptions{refresh: RefreshOnWrite}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notify == nil {
		o.notify = NotifierFunc(func(n Notice) {
			log.Printf("[%s] %s: %s", schema.Code, n.Level, n.Message)
		})
	}
	return &Manager[T]{
		schema:    schema,
		backend:   backend,
		notify:    o.notify,
		refresh:   o.refresh,
		listState: ListIdle,
		modal:     Modal{Phase: PhaseClosed},
	}
}

// Schema returns the entity configuration
func (m *Manager[T]) Schema() *EntitySchema { return m.schema }

// Items returns a copy of the cached list
func (m *Manager[T]) Items() []T {
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// ListState returns the list fetch state
func (m *Manager[T]) ListState() ListState { return m.listState }

// Modal returns a snapshot of the modal
func (m *Manager[T]) Modal() Modal {
	snap := m.modal
	if m.modal.Form != nil {
		snap.Form = make(Form, len(m.modal.Form))
		for k, v := range m.modal.Form {
			snap.Form[k] = v
		}
	}
	return snap
}

// PendingDelete returns the id awaiting confirmation, or ""
func (m *Manager[T]) PendingDelete() string { return m.pendingDelete }

// Last returns the record saved by the most recent successful submit
func (m *Manager[T]) Last() (T, bool) {
	if m.last == nil {
		var zero T
		return zero, false
	}
	return *m.last, true
}

// Load fetches the list. On failure the list is emptied and an alert raised.
func (m *Manager[T]) Load(ctx context.Context) error {
	m.listState = ListLoading
	res := m.backend.GetAll(ctx)
	m.listState = ListLoaded
	if !res.OK() {
		m.items = nil
		m.notify.Notify(Notice{Level: NoticeAlert, Message: fmt.Sprintf("Failed to load %s", m.schema.Plural)})
		return res.Err
	}
	m.items = res.Data
	return nil
}

// OpenCreate opens the modal with the schema defaults
func (m *Manager[T]) OpenCreate() {
	m.modal = Modal{Phase: PhaseCreating, Form: m.schema.NewForm()}
}

// OpenEdit opens the modal pre-filled with the record; the cached list is
// consulted first, then the backend
func (m *Manager[T]) OpenEdit(ctx context.Context, id string) error {
	record, found := m.find(id)
	if !found {
		res := m.backend.GetByID(ctx, id)
		if !res.OK() {
			m.notify.Notify(Notice{Level: NoticeError, Message: fmt.Sprintf("Failed to open %s", m.schema.Singular)})
			return res.Err
		}
		record = res.Data
	}

	form, err := recordToForm(record)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	m.modal = Modal{Phase: PhaseEditing, Form: form, EditingID: id}
	return nil
}

// SetField changes one value of the open form
func (m *Manager[T]) SetField(column string, value interface{}) {
	if m.modal.Phase == PhaseClosed || m.modal.Phase == PhaseSubmitting {
		return
	}
	m.modal.Form[column] = value
}

// Close discards the modal
func (m *Manager[T]) Close() {
	m.modal = Modal{Phase: PhaseClosed}
}

// Submit validates the form and writes it. Validation failures raise an
// alert and make no backend call; backend failures move the modal to
// Failed and keep it open with the entered values.
func (m *Manager[T]) Submit(ctx context.Context, input Form, mode SaveMode) error {
	switch m.modal.Phase {
	case PhaseClosed:
		return apperrors.NewBadRequestError("no form is open")
	case PhaseSubmitting:
		return apperrors.NewBadRequestError("a save is already in progress")
	}

	form := m.modal.Form
	if form == nil {
		form = Form{}
	}
	for k, v := range input {
		form[k] = v
	}
	m.modal.Form = form

	patch, err := m.schema.Clean(form, mode)
	if err != nil {
		m.notify.Notify(Notice{Level: NoticeAlert, Message: err.Error()})
		return err
	}

	creating := m.modal.EditingID == ""
	action := "update"
	if creating {
		action = "create"
	}

	m.modal.Phase = PhaseSubmitting
	var res store.Result[T]
	if creating {
		record, derr := decodeRecord[T](patch)
		if derr != nil {
			res = store.Fail[T](apperrors.NewValidationError("", derr.Error()))
		} else {
			res = m.backend.Create(ctx, record)
		}
	} else {
		res = m.backend.Update(ctx, m.modal.EditingID, patch)
	}

	if !res.OK() {
		m.modal.Phase = PhaseFailed
		m.modal.Reason = res.Err.Error()
		m.notify.Notify(Notice{Level: NoticeError, Message: fmt.Sprintf("Failed to %s %s: %s", action, m.schema.Singular, res.Err.Error())})
		return res.Err
	}

	saved := res.Data
	m.last = &saved
	m.modal = Modal{Phase: PhaseClosed}
	m.notify.Notify(Notice{Level: NoticeSuccess, Message: fmt.Sprintf("%s %sd", capitalize(m.schema.Singular), action)})
	m.afterWrite(ctx, func() { m.replaceLocal(saved) })
	return nil
}

// RequestDelete asks for confirmation before deleting id
func (m *Manager[T]) RequestDelete(id string) {
	m.pendingDelete = id
}

// CancelDelete drops the pending confirmation
func (m *Manager[T]) CancelDelete() {
	m.pendingDelete = ""
}

// ConfirmDelete deletes the pending record. On failure the list stays exactly as it was.
func (m *Manager[T]) ConfirmDelete(ctx context.Context) error {
	id := m.pendingDelete
	if id == "" {
		return apperrors.NewBadRequestError("no delete is pending")
	}
	m.pendingDelete = ""

	res := m.backend.Delete(ctx, id)
	if !res.OK() {
		m.notify.Notify(Notice{Level: NoticeError, Message: fmt.Sprintf("Failed to delete %s: %s", m.schema.Singular, res.Err.Error())})
		return res.Err
	}

	m.notify.Notify(Notice{Level: NoticeSuccess, Message: fmt.Sprintf("%s deleted", capitalize(m.schema.Singular))})
	m.afterWrite(ctx, func() { m.removeLocal(id) })
	return nil
}

// afterWrite applies the refresh policy; a failed refetch keeps the write
func (m *Manager[T]) afterWrite(ctx context.Context, local func()) {
	if m.refresh == RefreshLocal {
		local()
		return
	}
	_ = m.Load(ctx)
}

func (m *Manager[T]) find(id string) (T, bool) {
	for _, item := range m.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m *Manager[T]) replaceLocal(saved T) {
	for i, item := range m.items {
		if item.RecordID() == saved.RecordID() {
			m.items[i] = saved
			return
		}
	}
	m.items = append([]T{saved}, m.items...)
}

func (m *Manager[T]) removeLocal(id string) {
	out := make([]T, 0, len(m.items))
	for _, item := range m.items {
		if item.RecordID() != id {
			out = append(out, item)
		}
	}
	m.items = out
}

// recordToForm flattens a record into its JSON form values
func recordToForm(record interface{}) (Form, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	form := Form{}
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, err
	}
	return form, nil
}

// decodeRecord builds a T from a cleaned column patch; JSON names equal column names
func decodeRecord[T any](patch map[string]interface{}) (T, error) {
	var record T
	data, err := json.Marshal(patch)
	if err != nil {
		return record, err
	}
	err = json.Unmarshal(data, &record)
	return record, err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
