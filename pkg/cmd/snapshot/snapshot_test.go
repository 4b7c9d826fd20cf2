package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/pkg/config"
	"github.com/mpapenbr/f1-dashboard-service/pkg/endpoints/public"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
	"github.com/mpapenbr/f1-dashboard-service/testsupport/basedata"
)

func setup(t *testing.T, kind string, withContext bool) (*openf1.Client, *basedata.FakeUpstream) {
	t.Helper()
	oldType, oldChat, oldYear, oldName, oldTopN := config.SnapshotType,
		config.SnapshotChat, config.SessionYear, config.SessionName, config.ChatTopN
	t.Cleanup(func() {
		config.SnapshotType, config.SnapshotChat = oldType, oldChat
		config.SessionYear, config.SessionName = oldYear, oldName
		config.ChatTopN = oldTopN
	})
	config.SnapshotType = kind
	config.SnapshotChat = withContext
	config.SessionYear = 2024
	config.SessionName = "Race"
	config.ChatTopN = 10

	upstream := basedata.NewFakeUpstream(t)
	client := openf1.NewClient(
		openf1.WithBaseURL(upstream.URL),
		openf1.WithHTTPClient(upstream.Client()))
	return client, upstream
}

func TestRun_All(t *testing.T) {
	client, _ := setup(t, "all", false)
	buf := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), buf, client))

	var body map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Len(t, body["drivers"], 4)
	session, ok := body["session"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 9523, session["key"], 0)
}

func TestRun_SubSlice(t *testing.T) {
	client, _ := setup(t, "race_control", false)
	buf := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), buf, client))

	var body map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Len(t, body["raceControl"], 1)
	assert.Contains(t, body, "live")
}

func TestRun_Context(t *testing.T) {
	client, _ := setup(t, "all", true)
	buf := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), buf, client))
	assert.Contains(t, buf.String(), "Monaco")
	assert.Contains(t, buf.String(), "LEC")
}

func TestRun_Errors(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		client, upstream := setup(t, "telemetry", false)
		err := run(context.Background(), &bytes.Buffer{}, client)
		assert.ErrorIs(t, err, public.ErrInvalidType)
		assert.Equal(t, 0, upstream.Calls("/sessions"))
	})
	t.Run("context needs all", func(t *testing.T) {
		client, _ := setup(t, "laps", true)
		err := run(context.Background(), &bytes.Buffer{}, client)
		assert.ErrorIs(t, err, errContextNeedsAll)
	})
	t.Run("upstream down", func(t *testing.T) {
		client, upstream := setup(t, "all", false)
		upstream.Fail("/sessions", http.StatusBadGateway)
		err := run(context.Background(), &bytes.Buffer{}, client)
		assert.ErrorIs(t, err, openf1.ErrUpstreamUnavailable)
	})
}
