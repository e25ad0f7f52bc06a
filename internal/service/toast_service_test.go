package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safehaven/internal/logger/logtest"
	"safehaven/internal/model"
)

func TestToastService_ShowAndCurrent(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewToastService(time.Minute, b, logtest.New(t))

	shown := svc.Show("s1", model.ToastSuccess, "Listo")
	assert.NotEmpty(t, shown.ID)
	assert.Equal(t, time.Minute, shown.ExpiresAt.Sub(shown.ShownAt))

	current, ok := svc.Current("s1")
	require.True(t, ok)
	assert.Equal(t, shown, *current)

	_, ok = svc.Current("s2")
	assert.False(t, ok)

	events := b.Events(EventToast)
	require.Len(t, events, 1)
	assert.Equal(t, "s1", events[0].SessionID)
}

func TestToastService_ReplacesVisible(t *testing.T) {
	svc := NewToastService(time.Minute, &fakeBroadcaster{}, logtest.New(t))

	first := svc.Show("s1", model.ToastError, "Error")
	second := svc.Show("s1", model.ToastSuccess, "Listo")

	current, ok := svc.Current("s1")
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)

	// the first toast's timer firing late must not remove the second one
	svc.expire("s1", first.ID)
	current, ok = svc.Current("s1")
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
}

func TestToastService_AutoDismiss(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewToastService(30*time.Millisecond, b, logtest.New(t))

	shown := svc.Show("s1", model.ToastSuccess, "Listo")

	assert.Eventually(t, func() bool {
		_, ok := svc.Current("s1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(b.Events(EventToastDismissed)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, map[string]string{"id": shown.ID}, b.Events(EventToastDismissed)[0].Payload)
}

func TestToastService_Dismiss(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewToastService(time.Minute, b, logtest.New(t))

	svc.Show("s1", model.ToastSuccess, "Listo")
	assert.True(t, svc.Dismiss("s1"))
	assert.False(t, svc.Dismiss("s1"))

	_, ok := svc.Current("s1")
	assert.False(t, ok)
	assert.Len(t, b.Events(EventToastDismissed), 1)
}

func TestToastService_ClearIsSilent(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewToastService(time.Minute, b, logtest.New(t))

	svc.Show("s1", model.ToastSuccess, "Listo")
	svc.Clear("s1")

	_, ok := svc.Current("s1")
	assert.False(t, ok)
	assert.Empty(t, b.Events(EventToastDismissed))
}
