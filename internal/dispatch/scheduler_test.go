package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerImmediateFirstRunAndPublish(t *testing.T) {
	bus := NewBus(nil)
	events, cancel := bus.Subscribe(4, TopicWeather)
	defer cancel()

	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:     "weather",
		Topic:    TopicWeather,
		Interval: time.Hour,
		Poll: func(ctx context.Context) (any, error) {
			return "snapshot-1", nil
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	select {
	case ev := <-events:
		if ev.Topic != TopicWeather || ev.Payload != "snapshot-1" {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event from the immediate first run")
	}

	if value, ok := sched.Current("weather"); !ok || value != "snapshot-1" {
		t.Fatalf("Current = %v, %v", value, ok)
	}

	stop()
	<-done
}

func TestSchedulerFailureSkipsEmission(t *testing.T) {
	bus := NewBus(nil)
	events, cancel := bus.Subscribe(4, TopicStocks)
	defer cancel()

	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:     "stocks",
		Topic:    TopicStocks,
		Interval: time.Hour,
		Poll: func(ctx context.Context) (any, error) {
			return nil, errors.New("upstream down")
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	go sched.Run(ctx)
	defer stop()

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
	if _, ok := sched.Current("stocks"); ok {
		t.Fatal("failed poll must not populate the holder")
	}
}

func TestSchedulerNilPayloadNoEmission(t *testing.T) {
	bus := NewBus(nil)
	events, cancel := bus.Subscribe(4, TopicVibe)
	defer cancel()

	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:     "vibe",
		Topic:    TopicVibe,
		Interval: time.Hour,
		Poll: func(ctx context.Context) (any, error) {
			return nil, nil
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	go sched.Run(ctx)
	defer stop()

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})

	bus := NewBus(nil)
	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:     "slow",
		Topic:    TopicSystem,
		Interval: 10 * time.Millisecond,
		Poll: func(ctx context.Context) (any, error) {
			started.Add(1)
			<-release
			return "done", nil
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	go sched.Run(ctx)

	// Many ticks elapse while the first poll is blocked; none may stack.
	time.Sleep(100 * time.Millisecond)
	if n := started.Load(); n != 1 {
		stop()
		t.Fatalf("started %d polls, want 1", n)
	}
	close(release)
	stop()
}

func TestSchedulerRefreshNow(t *testing.T) {
	var polls atomic.Int32

	bus := NewBus(nil)
	events, cancel := bus.Subscribe(4, TopicUsage)
	defer cancel()

	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:     "usage",
		Topic:    TopicUsage,
		Interval: time.Hour,
		Poll: func(ctx context.Context) (any, error) {
			return int(polls.Add(1)), nil
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	go sched.Run(ctx)
	defer stop()

	<-events
	sched.RefreshNow("usage")

	select {
	case ev := <-events:
		if ev.Payload != 2 {
			t.Fatalf("payload = %v, want 2", ev.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RefreshNow did not trigger a poll")
	}
}

func TestSchedulerInitialDelay(t *testing.T) {
	bus := NewBus(nil)
	events, cancel := bus.Subscribe(4, TopicVibe)
	defer cancel()

	sched := NewScheduler(bus, nil)
	sched.Register(Source{
		Name:         "vibe",
		Topic:        TopicVibe,
		Interval:     time.Hour,
		InitialDelay: 80 * time.Millisecond,
		Poll: func(ctx context.Context) (any, error) {
			return "delayed", nil
		},
	})

	ctx, stop := context.WithCancel(context.Background())
	go sched.Run(ctx)
	defer stop()

	select {
	case <-events:
		t.Fatal("event arrived before the initial delay elapsed")
	case <-time.After(30 * time.Millisecond):
	}
	select {
	case ev := <-events:
		if ev.Payload != "delayed" {
			t.Fatalf("payload = %v", ev.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after the initial delay")
	}
}
