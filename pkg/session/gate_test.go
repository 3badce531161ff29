package session

import (
	"context"
	"testing"

	"github.com/boredapes/ctaplanner/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDropper struct {
	dropped []string
}

func (d *recordingDropper) Drop(token string) {
	d.dropped = append(d.dropped, token)
}

func TestGate(t *testing.T) {
	ctx := context.Background()

	t.Run("should drop the state of ended sessions while initialized", func(t *testing.T) {
		// given
		f := setup(t)
		dropper := &recordingDropper{}
		gate := NewGate(f.provider, dropper)
		gate.Init()
		gate.Init()
		s, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
		require.NoError(t, err)

		// when
		require.NoError(t, f.provider.SignOut(ctx, s.Token))

		// then
		assert.Equal(t, []string{s.Token}, dropper.dropped)
	})

	t.Run("should stop listening after teardown", func(t *testing.T) {
		// given
		f := setup(t)
		dropper := &recordingDropper{}
		gate := NewGate(f.provider, dropper)
		gate.Init()
		s, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
		require.NoError(t, err)

		// when
		gate.Teardown()
		gate.Teardown()
		require.NoError(t, f.provider.SignOut(ctx, s.Token))

		// then
		assert.Empty(t, dropper.dropped)
	})

	t.Run("should authorize live sessions only", func(t *testing.T) {
		// given
		f := setup(t)
		gate := NewGate(f.provider, &recordingDropper{})
		s, err := f.provider.SignIn(ctx, test_utils.TestUserEmail, test_utils.TestUserPassword)
		require.NoError(t, err)

		// when
		authorized, err := gate.Authorize(s.Token)

		// then
		require.NoError(t, err)
		assert.Equal(t, test_utils.TestUserEmail, authorized.Email)
		_, err = gate.Authorize("")
		assert.ErrorIs(t, err, ErrNoSession)
		_, err = gate.Authorize("forged")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}
