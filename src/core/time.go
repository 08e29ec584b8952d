// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sync"
	"time"
)

// FrameInterval is the frame period for fps. Zero or less means
// unlimited, which is paced by the shortest ticker period.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		return time.Nanosecond
	}
	return time.Second / time.Duration(fps)
}

// Time paces the window event loop: event polls every EventPollDelay
// and frames at FramesPerSecond. It counts polls since it was started.
type Time struct {
	started   time.Time
	fps       int
	pollDelay time.Duration

	frames *time.Ticker
	events *time.Ticker

	polls    uint64
	done     chan struct{}
	stopOnce sync.Once
}

// NewTime starts both tickers
func NewTime(cfg TimeConfiguration) *Time {
	pollDelay := time.Duration(cfg.EventPollDelay) * time.Millisecond
	if pollDelay <= 0 {
		pollDelay = time.Millisecond
	}
	return &Time{
		started:   time.Now(),
		fps:       cfg.FramesPerSecond,
		pollDelay: pollDelay,
		frames:    time.NewTicker(FrameInterval(cfg.FramesPerSecond)),
		events:    time.NewTicker(pollDelay),
		done:      make(chan struct{}),
	}
}

// Fps is the configured frame rate, 0 when unlimited
func (t *Time) Fps() int {
	return t.fps
}

// EventPollDelay is the interval between event polls
func (t *Time) EventPollDelay() time.Duration {
	return t.pollDelay
}

// FpsTicker fires once per frame
func (t *Time) FpsTicker() *time.Ticker {
	return t.frames
}

// NextPoll blocks until the next event poll is due. It returns
// false once Stop was called.
func (t *Time) NextPoll() bool {
	select {
	case <-t.done:
		return false
	default:
	}
	select {
	case <-t.events.C:
		t.polls++
		return true
	case <-t.done:
		return false
	}
}

// Polls is the number of polls NextPoll has handed out
func (t *Time) Polls() uint64 {
	return t.polls
}

// Uptime is the time since NewTime
func (t *Time) Uptime() time.Duration {
	return time.Since(t.started)
}

// Stop stops both tickers and releases NextPoll. Safe to call twice.
func (t *Time) Stop() {
	t.stopOnce.Do(func() {
		t.frames.Stop()
		t.events.Stop()
		close(t.done)
	})
}
