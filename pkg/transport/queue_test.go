package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/loganalyzer/rtlog/pkg/models"
)

func TestQueueDrainOrder(t *testing.T) {
	q := New(8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := q.Send(ctx, models.SourceLine{SourceID: 0, Text: string(rune('a' + i))}); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	var got []string
	n := q.Drain(func(l models.SourceLine) { got = append(got, l.Text) })
	if n != 5 {
		t.Errorf("Expected 5 drained lines, got %d", n)
	}
	want := "abcde"
	joined := ""
	for _, s := range got {
		joined += s
	}
	if joined != want {
		t.Errorf("Expected order %q, got %q", want, joined)
	}

	if n := q.Drain(func(models.SourceLine) {}); n != 0 {
		t.Errorf("Expected empty drain, got %d", n)
	}
}

func TestQueueDefaultCapacity(t *testing.T) {
	if got := New(0).Cap(); got != DefaultCapacity {
		t.Errorf("Expected capacity %d, got %d", DefaultCapacity, got)
	}
}

func TestQueueBackpressure(t *testing.T) {
	q := New(2)
	ctx := context.Background()
	_ = q.Send(ctx, models.SourceLine{Text: "1"})
	_ = q.Send(ctx, models.SourceLine{Text: "2"})

	sent := make(chan error, 1)
	go func() {
		sent <- q.Send(ctx, models.SourceLine{Text: "3"})
	}()

	select {
	case err := <-sent:
		t.Fatalf("Expected Send to block on a full queue, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if _, ok := q.TryRecv(); !ok {
		t.Fatal("Expected a pending line")
	}

	select {
	case err := <-sent:
		if err != nil {
			t.Errorf("Expected blocked Send to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for blocked Send")
	}

	if q.Len() != 2 {
		t.Errorf("Expected 2 pending lines, got %d", q.Len())
	}
}

func TestQueueCloseUnblocksSenders(t *testing.T) {
	q := New(1)
	ctx := context.Background()
	_ = q.Send(ctx, models.SourceLine{Text: "fill"})

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- q.Send(ctx, models.SourceLine{Text: "x"})
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for senders to return")
	}

	close(errs)
	for err := range errs {
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	}

	if err := q.Send(ctx, models.SourceLine{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after close, got %v", err)
	}
}

func TestQueueSendContextCancel(t *testing.T) {
	q := New(1)
	_ = q.Send(context.Background(), models.SourceLine{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Send(ctx, models.SourceLine{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := New(4)
	ctx := context.Background()
	const producers, perProducer = 4, 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Send(ctx, models.SourceLine{SourceID: id, Text: string(rune('0' + i%10))}); err != nil {
					t.Errorf("Send failed: %v", err)
					return
				}
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	counts := make(map[int]int)
	deadline := time.After(5 * time.Second)
	total := 0
	for total < producers*perProducer {
		total += q.Drain(func(l models.SourceLine) { counts[l.SourceID]++ })
		select {
		case <-deadline:
			t.Fatalf("timeout: drained %d lines", total)
		default:
		}
		time.Sleep(time.Millisecond)
	}
	<-done

	for p := 0; p < producers; p++ {
		if counts[p] != perProducer {
			t.Errorf("producer %d: got %d lines, want %d", p, counts[p], perProducer)
		}
	}
}
