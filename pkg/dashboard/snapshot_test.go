package dashboard

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/testsupport/basedata"
)

func TestSnapshotOf(t *testing.T) {
	demo := DefaultDemo(basedata.TestTime())
	live := &model.DashboardViewModel{IsLive: true, Session: model.Session{Key: 1}}
	updated := basedata.TestTime().Add(time.Minute)

	t.Run("loading", func(t *testing.T) {
		got := SnapshotOf(livesync.State{Loading: true}, demo)
		assert.Equal(t, SourceDemo, got.Source)
		assert.True(t, got.Loading)
		assert.Same(t, demo, got.Data)
		assert.Nil(t, got.UpdatedAt)
		assert.Empty(t, got.Error)
	})
	t.Run("live", func(t *testing.T) {
		got := SnapshotOf(livesync.State{Data: live, IsLive: true, UpdatedAt: updated}, demo)
		assert.Equal(t, SourceLive, got.Source)
		assert.True(t, got.IsLive)
		assert.Same(t, live, got.Data)
		require.NotNil(t, got.UpdatedAt)
		assert.Equal(t, updated, *got.UpdatedAt)
	})
	t.Run("error keeps data", func(t *testing.T) {
		got := SnapshotOf(livesync.State{Data: live, Err: errors.New("timeout")}, demo)
		assert.Equal(t, SourceLive, got.Source)
		assert.Equal(t, "timeout", got.Error)
	})
	t.Run("json", func(t *testing.T) {
		raw, err := json.Marshal(SnapshotOf(livesync.State{Loading: true}, demo))
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "demo", body["source"])
		assert.Equal(t, true, body["loading"])
		assert.NotContains(t, body, "error")
		assert.NotContains(t, body, "updatedAt")
		assert.Contains(t, body, "data")
	})
}
