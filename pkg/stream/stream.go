// Package stream implements a cancelable, single-pass sequence of text
// fragments fed by one producer goroutine.
//
// The producer and the consumer meet on an unbuffered channel, so the
// producer never runs ahead of the consumer by more than one fragment.
// Errors travel on their own path: a failed producer ends the sequence and
// [Stream.Err] reports why, instead of the failure being spliced into the
// text. A consumer that stops early calls [Stream.Close], which cancels the
// producer's context and waits for it to exit.
//
//	s := stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
//	    for _, w := range words {
//	        if !emit(w) {
//	            return nil // consumer went away
//	        }
//	    }
//	    return nil
//	})
//	defer s.Close()
//	for s.Next() {
//	    fmt.Print(s.Text())
//	}
//	if err := s.Err(); err != nil {
//	    ...
//	}
package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Emit hands one fragment to the consumer. It blocks until the consumer
// takes it and returns false once the stream has been closed, after which
// the producer should return promptly.
type Emit func(fragment string) bool

// Producer generates fragments until it is done, fails, or emit reports
// that the consumer has gone away.
type Producer func(ctx context.Context, emit Emit) error

// Stream is a lazy sequence of fragments. It is not safe for concurrent
// use by multiple consumers; Close may be called from any goroutine.
type Stream struct {
	fragments chan string
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once

	cur string
	err error // written by the producer before done is closed
}

// New starts produce in its own goroutine and returns the consumer side.
func New(ctx context.Context, produce Producer) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		fragments: make(chan string),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		// done closes before fragments, so a consumer that sees the end of
		// fragments also sees the final error.
		defer func() {
			close(s.done)
			close(s.fragments)
		}()

		emit := func(fragment string) bool {
			if ctx.Err() != nil {
				return false
			}
			select {
			case s.fragments <- fragment:
				return true
			case <-ctx.Done():
				return false
			}
		}
		err := produce(ctx, emit)
		if err != nil && !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
			s.err = err
		}
	}()
	return s
}

// Failed returns a stream that yields nothing and reports err.
func Failed(err error) *Stream {
	return New(context.Background(), func(context.Context, Emit) error { return err })
}

// Next advances to the next fragment. It returns false when the producer
// has finished, failed, or the stream was closed.
func (s *Stream) Next() bool {
	fragment, ok := <-s.fragments
	if !ok {
		s.cur = ""
		return false
	}
	s.cur = fragment
	return true
}

// Text returns the fragment produced by the last successful Next.
func (s *Stream) Text() string {
	return s.cur
}

// Err returns the producer's failure once Next has returned false.
// A stream ended by Close reports no error.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close stops the producer and waits for it to exit. Remaining fragments
// are discarded without being read. Close is idempotent.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		// Unblock a producer parked in emit and wait for it to exit.
		for range s.fragments {
		}
	})
	return nil
}

// Collect reads the stream to the end, closes it, and returns the
// concatenated text together with the stream's error.
func Collect(s *Stream) (string, error) {
	defer s.Close()
	var b strings.Builder
	for s.Next() {
		b.WriteString(s.Text())
	}
	return b.String(), s.Err()
}
