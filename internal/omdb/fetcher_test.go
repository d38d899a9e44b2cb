package omdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	title string
	year  *int
}

type fakeResponse struct {
	payload *Payload
	err     error
}

type fakeClient struct {
	responses []fakeResponse
	calls     []fakeCall
}

func (f *fakeClient) Lookup(ctx context.Context, title string, year *int) (*Payload, error) {
	f.calls = append(f.calls, fakeCall{title: title, year: year})
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.payload, next.err
}

type countingLimiter struct {
	waits int
	err   error
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.waits++
	return c.err
}

func strPtr(v string) *string { return &v }

func TestFetcherPrimarySuccess(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{payload: &Payload{
		Response:  "True",
		Director:  strPtr("Frank Darabont"),
		Plot:      strPtr("Two imprisoned men bond."),
		BoxOffice: strPtr("$28,341,469"),
		Year:      strPtr("1994"),
	}}}}
	limiter := &countingLimiter{}
	year := 1994

	out := NewFetcher(client, limiter, discardLogger()).Lookup(context.Background(), "The Shawshank Redemption", &year)

	require.NotNil(t, out.Result)
	assert.Equal(t, "Frank Darabont", *out.Result.Director)
	assert.Equal(t, int64(28341469), out.Result.BoxOffice)
	assert.Equal(t, 1994, out.Result.ReleaseYear)
	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.Fallback)
	assert.Equal(t, 1, limiter.waits)
	require.Len(t, client.calls, 1)
	assert.Equal(t, 1994, *client.calls[0].year)
}

func TestFetcherFallbackWithoutYear(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: ErrNotFound},
		{payload: &Payload{Response: "True", Year: strPtr("1995–1999"), BoxOffice: strPtr("N/A")}},
	}}
	limiter := &countingLimiter{}
	year := 1996

	out := NewFetcher(client, limiter, discardLogger()).Lookup(context.Background(), "Some Show", &year)

	require.NotNil(t, out.Result)
	assert.Equal(t, 1995, out.Result.ReleaseYear)
	assert.Zero(t, out.Result.BoxOffice)
	assert.True(t, out.Fallback)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, limiter.waits)
	require.Len(t, client.calls, 2)
	assert.Equal(t, "Some Show", client.calls[1].title)
	assert.Nil(t, client.calls[1].year)
}

func TestFetcherFallbackAlsoNotFound(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{err: ErrNotFound}, {err: ErrNotFound}}}
	year := 2001

	out := NewFetcher(client, NoDelay, discardLogger()).Lookup(context.Background(), "Missing", &year)

	assert.Nil(t, out.Result)
	assert.Equal(t, 2, out.Attempts)
	assert.Len(t, client.calls, 2)
}

func TestFetcherNoFallbackWithoutYear(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{err: ErrNotFound}}}

	out := NewFetcher(client, NoDelay, discardLogger()).Lookup(context.Background(), "Missing", nil)

	assert.Nil(t, out.Result)
	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.Fallback)
}

func TestFetcherNoFallbackOnOtherErrors(t *testing.T) {
	for _, err := range []error{ErrNoMatch, errors.New("connection refused"), context.DeadlineExceeded} {
		client := &fakeClient{responses: []fakeResponse{{err: err}}}
		year := 1999

		result := NewFetcher(client, NoDelay, discardLogger()).Fetch(context.Background(), "Anything", &year)

		assert.Nil(t, result)
		assert.Len(t, client.calls, 1, "error %v must not trigger the fallback", err)
	}
}

func TestFetcherLimiterFailureIsNoResult(t *testing.T) {
	client := &fakeClient{}
	limiter := &countingLimiter{err: context.Canceled}

	out := NewFetcher(client, limiter, discardLogger()).Lookup(context.Background(), "Anything", nil)

	assert.Nil(t, out.Result)
	assert.Zero(t, out.Attempts)
	assert.Empty(t, client.calls)
}

type failingAfterLimiter struct {
	allowed int
	waits   int
}

func (l *failingAfterLimiter) Wait(ctx context.Context) error {
	l.waits++
	if l.waits > l.allowed {
		return context.DeadlineExceeded
	}
	return nil
}

func TestFetcherFallbackLimiterFailureCountsOneAttempt(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{{err: ErrNotFound}}}
	limiter := &failingAfterLimiter{allowed: 1}
	year := 2002

	out := NewFetcher(client, limiter, discardLogger()).Lookup(context.Background(), "Homme du train", &year)

	assert.Nil(t, out.Result)
	assert.True(t, out.Fallback)
	assert.Equal(t, 1, out.Attempts)
	assert.Len(t, client.calls, 1)
	assert.Equal(t, 2, limiter.waits)
}

func TestFixedDelayWait(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay{Delay: 20 * time.Millisecond}.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, FixedDelay{Delay: time.Hour}.Wait(ctx), context.Canceled)
	assert.NoError(t, NoDelay.Wait(context.Background()))
}
