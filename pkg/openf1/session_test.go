package openf1

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/testsupport/basedata"
)

func TestSessionResolver_Resolve(t *testing.T) {
	c, upstream, clock := newTestClient(t)
	r := NewSessionResolver(c, WithResolverClock(clock.Now))

	s, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, basedata.SampleSessionKey, s.Key)
	assert.Equal(t, "Monaco", s.Location)
	assert.Equal(t, "Monte Carlo", s.Circuit)
	assert.Equal(t, []string{"session_name=Race&year=2024"}, upstream.Queries("/sessions"))
}

func TestSessionResolver_Empty(t *testing.T) {
	c, upstream, _ := newTestClient(t)
	upstream.Set("/sessions", `[]`)
	r := NewSessionResolver(c, WithYear(2030), WithSessionName("Sprint"))

	s, err := r.Resolve(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, []string{"session_name=Sprint&year=2030"}, upstream.Queries("/sessions"))
}

func TestSessionResolver_UpstreamFailure(t *testing.T) {
	c, upstream, _ := newTestClient(t)
	upstream.Fail("/sessions", http.StatusInternalServerError)
	r := NewSessionResolver(c)

	s, err := r.Resolve(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestSessionResolver_IsLive(t *testing.T) {
	c, _, clock := newTestClient(t)
	r := NewSessionResolver(c, WithResolverClock(clock.Now))
	s, err := r.Resolve(context.Background())
	require.NoError(t, err)

	// clock starts exactly at session start
	assert.True(t, r.IsLive(s))
	clock.Advance(2 * time.Hour)
	assert.True(t, r.IsLive(s))
	clock.Advance(time.Second)
	assert.False(t, r.IsLive(s))
}
