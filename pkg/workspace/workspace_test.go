package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/composer"
	"github.com/boredapes/ctaplanner/pkg/event"
	"github.com/boredapes/ctaplanner/pkg/session"
	"github.com/boredapes/ctaplanner/pkg/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)

func newDeps(store submission.Store) Deps {
	return Deps{
		Catalog: event.DefaultCatalog(),
		Store:   store,
		Clock:   &utils.MockClock{FixedNow: now},
		Ids:     &utils.SequenceGenerator{Prefix: "id"},
		Bus:     event_bus.NewEventBus(),
	}
}

func mustFor(t *testing.T, registry *Registry, token string, owner string) *Workspace {
	t.Helper()
	ws, err := registry.For(token, owner)
	require.NoError(t, err)
	return ws
}

// liveSessions reports the listed tokens as live.
type liveSessions map[string]bool

func (l liveSessions) Session(token string) (session.Session, bool) {
	if !l[token] {
		return session.Session{}, false
	}
	return session.Session{Token: token, Email: test_utils.TestUserEmail}, true
}

var worldBossForm = composer.Form{Date: "2024-06-01", Time: "15:00", Category: "World Boss"}

func TestWorkspace_AddAndSubmit(t *testing.T) {
	// given
	store := submission.NewStubStore()
	ws := New("token-1", test_utils.TestUserEmail, newDeps(store))

	// when
	record, err := ws.AddEvent(worldBossForm)
	require.NoError(t, err)
	groups := ws.Groups()
	result, submitErr := ws.Submit(context.Background())

	// then
	require.Len(t, groups, 1)
	assert.Equal(t, "15:00", groups[0].Slot)
	assert.Equal(t, record.Id, groups[0].Events[0].Id)

	require.NoError(t, submitErr)
	assert.Equal(t, submission.Success, result.Outcome)
	assert.Equal(t, []string{submission.SchedulesCollection, submission.EventsCollection}, store.Calls)
	assert.Equal(t, test_utils.TestUserEmail, store.Headers[0].CreatedBy)
	assert.Equal(t, result.ScheduleId, store.Rows[0][0].ScheduleId)
	assert.Empty(t, ws.Records())
	assert.False(t, ws.Busy())
}

func TestWorkspace_FrozenWhileSubmitting(t *testing.T) {
	// given
	store := submission.NewStubStore()
	ws := New("token-1", test_utils.TestUserEmail, newDeps(store))
	first, err := ws.AddEvent(worldBossForm)
	require.NoError(t, err)

	var addErr, removeErr, submitErr error
	var busy bool
	store.OnInsert(func(collection string) {
		if collection != submission.SchedulesCollection {
			return
		}
		busy = ws.Busy()
		_, addErr = ws.AddEvent(worldBossForm)
		removeErr = ws.RemoveEvent(first.Id)
		_, submitErr = ws.Submit(context.Background())
	})

	// when
	_, err = ws.Submit(context.Background())

	// then
	require.NoError(t, err)
	assert.True(t, busy)
	assert.ErrorIs(t, addErr, submission.ErrSubmissionInFlight)
	assert.ErrorIs(t, removeErr, submission.ErrSubmissionInFlight)
	assert.ErrorIs(t, submitErr, submission.ErrSubmissionInFlight)
	require.Len(t, store.Rows, 1)
	assert.Len(t, store.Rows[0], 1)
	assert.Empty(t, ws.Records())
}

func TestWorkspace_KeepsRecordsWhenHeaderFails(t *testing.T) {
	// given
	store := submission.NewStubStore()
	store.FailOn(submission.SchedulesCollection, "relation \"schedules\" does not exist")
	ws := New("token-1", test_utils.TestUserEmail, newDeps(store))
	_, err := ws.AddEvent(worldBossForm)
	require.NoError(t, err)

	// when
	result, err := ws.Submit(context.Background())

	// then
	assert.ErrorIs(t, err, submission.ErrScheduleHeaderWriteFailed)
	assert.Equal(t, submission.HeaderFailed, result.Outcome)
	assert.Equal(t, []string{submission.SchedulesCollection}, store.Calls)
	assert.Len(t, ws.Records(), 1)
}

func TestWorkspace_RemoveUnknownIsNoOp(t *testing.T) {
	ws := New("token-1", test_utils.TestUserEmail, newDeps(submission.NewStubStore()))
	_, err := ws.AddEvent(worldBossForm)
	require.NoError(t, err)

	assert.NoError(t, ws.RemoveEvent("missing"))
	assert.Len(t, ws.Records(), 1)
}

func TestWorkspace_Exports(t *testing.T) {
	ws := New("token-1", test_utils.TestUserEmail, newDeps(submission.NewStubStore()))
	_, err := ws.AddEvent(worldBossForm)
	require.NoError(t, err)

	assert.Contains(t, ws.ExportICS(), "SUMMARY:World Boss")
	out, err := ws.ExportCSV()
	require.NoError(t, err)
	assert.Contains(t, out, "15:00,World Boss,,,2024-06-01,1717254000")
}

func TestRegistry(t *testing.T) {
	t.Run("should hand out one workspace per token", func(t *testing.T) {
		registry := NewRegistry(newDeps(submission.NewStubStore()))

		a := mustFor(t, registry, "token-1", test_utils.TestUserEmail)
		b := mustFor(t, registry, "token-1", test_utils.TestUserEmail)
		c := mustFor(t, registry, "token-2", "quartermaster@boredapes.gg")

		assert.Same(t, a, b)
		assert.NotSame(t, a, c)
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("should close and forget a dropped workspace", func(t *testing.T) {
		// given
		registry := NewRegistry(newDeps(submission.NewStubStore()))
		ws := mustFor(t, registry, "token-1", test_utils.TestUserEmail)
		_, err := ws.AddEvent(worldBossForm)
		require.NoError(t, err)

		// when
		registry.Drop("token-1")
		registry.Drop("token-1")

		// then
		assert.Zero(t, registry.Len())
		select {
		case <-ws.Done():
		default:
			t.Fatal("workspace not closed")
		}
		assert.Empty(t, mustFor(t, registry, "token-1", test_utils.TestUserEmail).Records())
	})

	t.Run("should not open a workspace for an ended session", func(t *testing.T) {
		// given
		deps := newDeps(submission.NewStubStore())
		deps.Sessions = liveSessions{"token-1": true}
		registry := NewRegistry(deps)

		// when
		live, liveErr := registry.For("token-1", test_utils.TestUserEmail)
		ended, endedErr := registry.For("token-2", test_utils.TestUserEmail)

		// then
		require.NoError(t, liveErr)
		assert.NotNil(t, live)
		assert.ErrorIs(t, endedErr, session.ErrNoSession)
		assert.Nil(t, ended)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("should keep serving a workspace opened before its session ended", func(t *testing.T) {
		// given
		deps := newDeps(submission.NewStubStore())
		sessions := liveSessions{"token-1": true}
		deps.Sessions = sessions
		registry := NewRegistry(deps)
		opened := mustFor(t, registry, "token-1", test_utils.TestUserEmail)

		// when
		delete(sessions, "token-1")
		again, err := registry.For("token-1", test_utils.TestUserEmail)

		// then
		require.NoError(t, err)
		assert.Same(t, opened, again)
	})

	t.Run("should close every workspace on shutdown", func(t *testing.T) {
		registry := NewRegistry(newDeps(submission.NewStubStore()))
		a := mustFor(t, registry, "token-1", test_utils.TestUserEmail)
		b := mustFor(t, registry, "token-2", test_utils.TestUserEmail)

		registry.CloseAll()

		assert.Zero(t, registry.Len())
		<-a.Done()
		<-b.Done()
	})
}
