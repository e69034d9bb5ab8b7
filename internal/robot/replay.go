package robot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/lightseeker/internal/explore"
)

// Replay plays back recorded telemetry, one frame per Step, and records the
// velocity commands the controller issues.
type Replay struct {
	samples  []explore.Sample
	pos      int
	commands []explore.Speeds
}

// NewReplay returns a replay over samples.
func NewReplay(samples []explore.Sample) *Replay {
	return &Replay{samples: samples}
}

// LoadReplay reads telemetry lines from r. Blank lines and lines starting
// with '#' are ignored.
func LoadReplay(r io.Reader) (*Replay, error) {
	var samples []explore.Sample
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := DecodeSample(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("failed to read replay: %w", err)
	}
	return NewReplay(samples), nil
}

// Step advances to the next recorded frame.
func (r *Replay) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.pos >= len(r.samples) {
		return explore.ErrStopped
	}
	r.pos++
	return nil
}

// Sample returns the current frame.
func (r *Replay) Sample() (explore.Sample, error) {
	if r.pos == 0 {
		return explore.Sample{}, errors.New("replay not started")
	}
	return r.samples[r.pos-1], nil
}

// SetVelocity records the command.
func (r *Replay) SetVelocity(left, right float64) error {
	r.commands = append(r.commands, explore.Speeds{Left: left, Right: right})
	return nil
}

// Commands returns every velocity command issued so far.
func (r *Replay) Commands() []explore.Speeds {
	out := make([]explore.Speeds, len(r.commands))
	copy(out, r.commands)
	return out
}

// Len returns the number of recorded frames.
func (r *Replay) Len() int { return len(r.samples) }

// Position returns how many frames have been played.
func (r *Replay) Position() int { return r.pos }
