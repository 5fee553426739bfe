// Package integration exercises the runtime end to end: managers, event
// loops, workers and the codec working together the way user code wires
// them.
package integration

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ipc "github.com/greatboxs/go-ipc"
	"github.com/greatboxs/go-ipc/codec"
)

// Scenario: a three-field tuple survives the encode/post/decode round trip.
func TestTupleRoundTripThroughMessage(t *testing.T) {
	m, err := ipc.NewMessageValues("producer", "consumer", int32(1), "hello", "world")
	require.NoError(t, err)

	// 2 headers + 4 + 5, then header + 5
	wantLen := 8 + 4 + 8 + 5 + 8 + 5
	require.Equal(t, wantLen, m.Len())

	vals, err := ipc.DecodeMessage(m, codec.Int32, codec.Text, codec.Text)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), "hello", "world"}, vals)
}

// Scenario: one loop, five typed posts, strict FIFO delivery.
func TestFIFODeliveryThroughLoop(t *testing.T) {
	var mu sync.Mutex
	var got []int32

	w := ipc.NewWorker()
	loop, err := ipc.NewEventLoop(w, func(m *ipc.Message) {
		vals, err := ipc.DecodeMessage(m, codec.Int32)
		if err != nil {
			return
		}
		mu.Lock()
		got = append(got, vals[0].(int32))
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, loop.Start())
	defer func() {
		w.Quit()
		w.Join()
	}()

	for i := int32(1); i <= 5; i++ {
		require.NoError(t, loop.PostValues("p", "c", i))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, got)
}

// Scenario: a weak task cancelled while the worker is busy never runs and
// never counts.
func TestWeakCancellationUnderLoad(t *testing.T) {
	w := ipc.NewWorker()
	defer func() {
		w.Quit()
		w.Join()
	}()
	w.Start()

	gate := ipc.NewGate()
	w.AddFunc(gate.Func(), nil)

	var flag atomic.Bool
	task := ipc.NewVoidTask(func() error {
		time.Sleep(10 * time.Millisecond)
		flag.Store(true)
		return nil
	}, nil)
	wt := ipc.NewWeakTask(task)
	w.AddWeakTask(wt)
	wt.Cancel()
	gate.Release()

	require.Eventually(t, func() bool {
		return w.TaskCount() == 0 && w.ExecutedCount() >= 1
	}, 2*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.False(t, flag.Load(), "cancelled task ran")
	assert.EqualValues(t, 1, w.ExecutedCount(), "skipped entry was counted")
}

// Scenario: Get times out promptly, the task finishes later.
func TestGetTimeoutThenCompletion(t *testing.T) {
	w := ipc.NewWorker()
	defer func() {
		w.Quit()
		w.Join()
	}()
	w.Start()

	task := w.AddFunc(func() error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}, nil)

	start := time.Now()
	task.Get(10 * time.Millisecond)
	assert.Less(t, time.Since(start), 80*time.Millisecond)
	assert.False(t, task.Finished())

	require.Eventually(t, task.Finished, time.Second, time.Millisecond)
}

// Scenario: a failing task leaves the worker alive and draining.
func TestWorkerSurvivesFailure(t *testing.T) {
	w := ipc.NewWorker()
	defer func() {
		w.Quit()
		w.Join()
	}()
	w.Start()

	failing := w.AddFunc(func() error {
		panic("deliberate failure")
	}, nil)
	var flag atomic.Bool
	ok := w.AddFunc(func() error {
		flag.Store(true)
		return nil
	}, nil)

	require.Eventually(t, func() bool {
		return w.ExecutedCount() == 2
	}, 2*time.Second, time.Millisecond)

	assert.True(t, failing.Failed())
	assert.Error(t, failing.Err())
	assert.True(t, ok.Finished())
	assert.True(t, flag.Load())
	assert.Equal(t, ipc.WorkerRunning, w.State())
}

// Scenario: bounded queue under pressure, size walks 0→1→2→2→1→2.
func TestBoundedQueuePressure(t *testing.T) {
	q := ipc.NewMessageQueue(2)
	a := ipc.NewMessageString("s", "r", "a")
	b := ipc.NewMessageString("s", "r", "b")
	c := ipc.NewMessageString("s", "r", "c")

	sizes := []int{q.Size()}
	require.NoError(t, q.Enqueue(a))
	sizes = append(sizes, q.Size())
	require.NoError(t, q.Enqueue(b))
	sizes = append(sizes, q.Size())
	require.ErrorIs(t, q.Enqueue(c), ipc.ErrQueueFull)
	sizes = append(sizes, q.Size())
	assert.Same(t, a, q.Dequeue())
	sizes = append(sizes, q.Size())
	require.NoError(t, q.Enqueue(c))
	sizes = append(sizes, q.Size())

	assert.Equal(t, []int{0, 1, 2, 2, 1, 2}, sizes)
}

// A typed producer/consumer pair wired entirely through the managers,
// with metrics observed at the end.
func TestManagersEndToEnd(t *testing.T) {
	loops := ipc.Loops()

	rec := ipc.NewMessageRecorder()
	loop := loops.Create(ipc.NewHandle(rec.Handler()))
	require.NotNil(t, loop)
	require.NoError(t, loop.Start())

	for i := 0; i < 3; i++ {
		require.NoError(t, loops.PostValues(loop.ID(), "producer", "consumer", int64(i), "tick"))
	}
	require.True(t, rec.WaitFor(3, 2*time.Second))

	for i, m := range rec.Messages() {
		vals, err := ipc.DecodeMessage(m, codec.Int64, codec.Text)
		require.NoError(t, err)
		assert.EqualValues(t, i, vals[0])
		assert.Equal(t, "tick", vals[1])
	}

	snap := loops.Metrics().Snapshot()
	assert.GreaterOrEqual(t, snap.MessagesPosted, uint64(3))
	assert.GreaterOrEqual(t, snap.TasksExecuted, uint64(3))

	require.NoError(t, loop.Stop())
	loop.Wait()
	assert.Equal(t, ipc.WorkerExited, loop.Worker().State())
}

// Producers racing a stop must not crash, and the worker must still exit.
func TestStopRaceDropsQuietly(t *testing.T) {
	w := ipc.NewWorker()
	loop, err := ipc.NewEventLoop(w, nil)
	require.NoError(t, err)

	var delivered atomic.Int64
	loop.SetHandle(ipc.NewHandle(func(*ipc.Message) {
		delivered.Add(1)
	}))
	require.NoError(t, loop.Start())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					loop.Post(ipc.NewMessageString("p", "c", "x"))
				}
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, loop.Stop())
	close(stop)
	wg.Wait()

	w.Join()
	assert.Equal(t, ipc.WorkerExited, w.State())
}
