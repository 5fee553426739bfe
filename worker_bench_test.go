package ipc

import (
	"testing"
)

func BenchmarkWorkerThroughput(b *testing.B) {
	w := NewWorker()
	w.Start()
	defer func() {
		w.Quit()
		w.Join()
	}()

	done := make(chan struct{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		last := i == b.N-1
		w.AddFunc(func() error {
			if last {
				close(done)
			}
			return nil
		}, nil)
	}
	<-done
}

func BenchmarkEventLoopPost(b *testing.B) {
	w := NewWorker()
	loop, err := NewEventLoop(w, func(*Message) {})
	if err != nil {
		b.Fatal(err)
	}
	if err := loop.Start(); err != nil {
		b.Fatal(err)
	}
	defer func() {
		w.Quit()
		w.Join()
	}()

	m := NewMessageString("bench", "sink", "payload")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loop.Post(m)
	}
	Workers().Wait(w, DefaultGetTimeout)
}
