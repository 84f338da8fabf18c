package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMailer struct {
	err   error
	sent  []Message
	calls int
}

func (s *stubMailer) Send(_ context.Context, msg Message) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &stubMailer{}
	fallback := &stubMailer{}
	m := NewFallbackMailer(primary, fallback, zap.NewNop())

	err := m.Send(context.Background(), Message{To: []string{"a@x.io"}, Subject: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "fallback untouched when primary succeeds")
}

func TestFallbackUsedOnPrimaryFailure(t *testing.T) {
	primary := &stubMailer{err: errors.New("provider down")}
	fallback := &stubMailer{}
	m := NewFallbackMailer(primary, fallback, zap.NewNop())

	err := m.Send(context.Background(), Message{To: []string{"a@x.io"}})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackBothFail(t *testing.T) {
	primary := &stubMailer{err: errors.New("provider down")}
	fallback := &stubMailer{err: errors.New("smtp down")}
	m := NewFallbackMailer(primary, fallback, zap.NewNop())

	err := m.Send(context.Background(), Message{To: []string{"a@x.io"}})
	require.Error(t, err)
}

func TestDisabledMailerDropsSilently(t *testing.T) {
	assert.NoError(t, Disabled{}.Send(context.Background(), Message{To: []string{"a@x.io"}}))
}
