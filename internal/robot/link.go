package robot

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/monitoring"
)

// LineMux is the part of serialmux.SerialMuxInterface a Link needs.
type LineMux interface {
	Subscribe() (string, chan string)
	Unsubscribe(string)
	SendCommand(string) error
}

// Link drives a robot over a line-oriented serial connection. Each Step
// waits for the next telemetry frame; the robot's own stream rate sets the
// control period.
type Link struct {
	mux   LineMux
	id    string
	lines chan string

	last    explore.Sample
	hasLast bool
	skipped int
}

// NewLink subscribes to mux. The caller is responsible for running the
// mux's Monitor loop.
func NewLink(mux LineMux) *Link {
	id, lines := mux.Subscribe()
	return &Link{mux: mux, id: id, lines: lines}
}

// Step blocks until a well-formed telemetry frame arrives. Malformed lines
// are logged and skipped. It returns explore.ErrStopped once the line
// stream has closed.
func (l *Link) Step(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				return explore.ErrStopped
			}
			s, err := DecodeSample(line)
			if err != nil {
				l.skipped++
				monitoring.Logf("skipping telemetry line: %v", err)
				continue
			}
			l.last = s
			l.hasLast = true
			return nil
		}
	}
}

// Sample returns the frame received by the last successful Step.
func (l *Link) Sample() (explore.Sample, error) {
	if !l.hasLast {
		return explore.Sample{}, errors.New("no telemetry received yet")
	}
	return l.last, nil
}

// SetVelocity sends a wheel velocity command.
func (l *Link) SetVelocity(left, right float64) error {
	if err := l.mux.SendCommand(FormatVelocity(left, right)); err != nil {
		return fmt.Errorf("failed to send velocity: %w", err)
	}
	return nil
}

// Halt sends an explicit motor stop.
func (l *Link) Halt() error {
	return l.mux.SendCommand(StopCommand)
}

// Skipped returns the number of malformed lines discarded so far.
func (l *Link) Skipped() int { return l.skipped }

// Close unsubscribes from the mux.
func (l *Link) Close() {
	l.mux.Unsubscribe(l.id)
}
