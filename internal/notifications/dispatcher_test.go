package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

type fakeSender struct {
	singles    []string
	multicasts [][]string
}

func (s *fakeSender) Send(ctx context.Context, token string, payload map[string]string) error {
	s.singles = append(s.singles, token)
	return nil
}

func (s *fakeSender) SendMulticast(ctx context.Context, tokens []string, payload map[string]string) error {
	s.multicasts = append(s.multicasts, tokens)
	return nil
}

func TestDispatcherSingleToken(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender)

	err := d.Send(context.Background(), []string{"tok-1"}, map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, []string{"tok-1"}, sender.singles)
	require.Empty(t, sender.multicasts)
}

func TestDispatcherMulticast(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender)

	err := d.Send(context.Background(), []string{"tok-1", "tok-2"}, nil)
	require.NoError(t, err)
	require.Empty(t, sender.singles)
	require.Equal(t, [][]string{{"tok-1", "tok-2"}}, sender.multicasts)
}

func TestDispatcherZeroTokens(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender)

	err := d.Send(context.Background(), nil, nil)
	require.True(t, errors.Is(err, httpx.ErrValidation))
	require.Empty(t, sender.singles)
	require.Empty(t, sender.multicasts)
}
