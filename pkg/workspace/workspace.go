package workspace

import (
	"context"
	"sync"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/calendar"
	"github.com/boredapes/ctaplanner/pkg/composer"
	"github.com/boredapes/ctaplanner/pkg/event"
	"github.com/boredapes/ctaplanner/pkg/schedule"
	"github.com/boredapes/ctaplanner/pkg/submission"
)

// Workspace is the planning state of one signed-in session: the event form, the pending
// schedule and its submission coordinator.
type Workspace struct {
	token string
	owner string

	composer    *composer.Composer
	set         *schedule.Set
	coordinator *submission.Coordinator
	exporter    *calendar.Exporter

	mu         sync.Mutex
	submitting bool

	done      chan struct{}
	closeOnce sync.Once
}

type Deps struct {
	Catalog  *event.Catalog
	Store    submission.Store
	Clock    utils.Clock
	Ids      utils.IdGenerator
	Bus      *event_bus.EventBus
	Sessions SessionLookup
}

func New(token string, owner string, deps Deps) *Workspace {
	return &Workspace{
		token:       token,
		owner:       owner,
		composer:    composer.New(deps.Catalog, deps.Clock, deps.Ids),
		set:         schedule.NewSet(),
		coordinator: submission.NewCoordinator(deps.Store, deps.Clock, deps.Ids, deps.Bus),
		exporter:    calendar.NewExporter(deps.Clock),
		done:        make(chan struct{}),
	}
}

func (w *Workspace) Owner() string {
	return w.owner
}

func (w *Workspace) Form() composer.Form {
	return w.composer.Form()
}

// AddEvent validates form and adds the resulting record to the pending schedule.
func (w *Workspace) AddEvent(form composer.Form) (event.EventRecord, error) {
	return w.composer.Compose(form, w)
}

// Add implements composer.RecordSink. The schedule is frozen while it is being submitted.
func (w *Workspace) Add(record event.EventRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return submission.ErrSubmissionInFlight
	}
	w.set.Add(record)
	return nil
}

// RemoveEvent removes the record with id. Removing an unknown id is not an error.
func (w *Workspace) RemoveEvent(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return submission.ErrSubmissionInFlight
	}
	w.set.Remove(id)
	return nil
}

func (w *Workspace) Submit(ctx context.Context) (submission.Result, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return submission.Result{Outcome: submission.Rejected}, submission.ErrSubmissionInFlight
	}
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()
	return w.coordinator.Submit(ctx, w.set, w.owner)
}

func (w *Workspace) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting || w.coordinator.Busy()
}

func (w *Workspace) Records() []event.EventRecord {
	return w.set.Records()
}

func (w *Workspace) Groups() []schedule.Group {
	return w.set.Groups()
}

func (w *Workspace) ExportICS() string {
	return w.exporter.Export(w.set.Records())
}

func (w *Workspace) ExportCSV() (string, error) {
	return schedule.RenderCSV(w.set.Records())
}

// Subscribe registers fn for changes of the pending schedule.
func (w *Workspace) Subscribe(fn schedule.Listener) func() {
	return w.set.Subscribe(fn)
}

// Done is closed when the workspace's session ends.
func (w *Workspace) Done() <-chan struct{} {
	return w.done
}

func (w *Workspace) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}
