package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/queue"
)

const blacklistedNumber = "4153518780"

func newNotifier(t *testing.T) (*Notifier, *queue.Queue) {
	t.Helper()
	q := queue.New("notifications-test")
	t.Cleanup(q.Close)
	n := NewNotifier(q, zap.NewNop().Sugar(), []string{blacklistedNumber, "4153518781"})
	return n, q
}

func TestNotifier_SendsAndCompletes(t *testing.T) {
	n, q := newNotifier(t)
	events := q.Subscribe(32)

	jobs, err := n.EnqueueBatch(context.Background(),
		[]byte(`[{"phoneNumber":"07045679939","message":"Account registered"}]`))
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, n.Start())

	terminal := awaitTerminal(t, events, 1)
	require.Equal(t, domain.EventCompleted, terminal[0].Kind)
	require.Equal(t, domain.JobStateCompleted, jobs[0].State())
}

func TestNotifier_ProgressBeforeCompletion(t *testing.T) {
	n, q := newNotifier(t)
	events := q.Subscribe(32)

	_, err := n.EnqueueBatch(context.Background(),
		[]byte(`[{"phoneNumber":"07045679939","message":"hello"}]`))
	require.NoError(t, err)
	require.NoError(t, n.Start())

	var progress []domain.JobEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case domain.EventProgress:
				progress = append(progress, ev)
			case domain.EventCompleted:
				// Both work units sit in the first-half threshold when
				// total is 2.
				require.Len(t, progress, 2)
				require.Equal(t, 0, progress[0].Current)
				require.Equal(t, 2, progress[0].Total)
				require.Equal(t, 1, progress[1].Current)
				return
			case domain.EventFailed:
				t.Fatalf("unexpected failure: %s", ev.Err)
			}
		case <-timeout:
			t.Fatal("notification job did not complete")
		}
	}
}

func TestNotifier_BlacklistedNumberFails(t *testing.T) {
	n, q := newNotifier(t)
	events := q.Subscribe(32)

	jobs, err := n.EnqueueBatch(context.Background(),
		[]byte(`[{"phoneNumber":"`+blacklistedNumber+`","message":"hi"}]`))
	require.NoError(t, err)
	require.NoError(t, n.Start())

	terminal := awaitTerminal(t, events, 1)
	require.Equal(t, domain.EventFailed, terminal[0].Kind)
	require.Contains(t, terminal[0].Err, "is blacklisted")
	require.Contains(t, terminal[0].Err, blacklistedNumber)
	require.Equal(t, domain.JobStateFailed, jobs[0].State())
	require.Contains(t, jobs[0].Err(), "is blacklisted")
}

func TestNotifier_RejectsNonArrayBatch(t *testing.T) {
	n, q := newNotifier(t)

	jobs, err := n.EnqueueBatch(context.Background(), []byte(`{"phoneNumber":"123"}`))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Empty(t, jobs)
	require.Zero(t, q.Pending(JobTypePushNotification))
}
