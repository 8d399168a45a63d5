package linestore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/gate"
)

// DefaultCapacity is the default line limit.
const DefaultCapacity = 100

var (
	ErrCapacityExceeded = errors.New("line count exceeds store capacity")
	ErrInvalidCapacity  = errors.New("capacity must be positive")
	ErrAlreadyLoaded    = errors.New("store already loaded")
	ErrIndexOutOfRange  = errors.New("line index out of range")
)

// line is one input record. The index is fixed at load time; content is
// mutated only by the worker holding the line's claim.
type line struct {
	index   int
	content string
	blank   bool
	gate    *gate.Gate
}

// Store owns every line record and its gate.
type Store struct {
	capacity        int
	lines           []*line
	loaded          bool
	trailingNewline bool
}

func New(capacity int) *Store {
	return &Store{capacity: capacity}
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Validate rejects a store that can never hold a line.
func (s *Store) Validate() error {
	if s.capacity <= 0 {
		return failure.Config("linestore", fmt.Errorf("%w: got %d", ErrInvalidCapacity, s.capacity))
	}
	return nil
}

// Load reads the file at path into the store and returns the line count.
func (s *Store) Load(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, failure.Resource("load", err)
	}
	defer f.Close()

	return s.LoadFrom(f)
}

// LoadFrom splits r on '\n'. A final newline terminates the last line rather
// than starting a new one. Reading stops as soon as the line count exceeds
// capacity, and the store is then left empty.
func (s *Store) LoadFrom(r io.Reader) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.loaded {
		return 0, failure.Internal("load", ErrAlreadyLoaded)
	}

	br := bufio.NewReader(r)
	var (
		raw      [][]byte
		trailing bool
	)
	for {
		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			trailing = b[len(b)-1] == '\n'
			if trailing {
				b = b[:len(b)-1]
			}
			raw = append(raw, b)
			if len(raw) > s.capacity {
				return 0, failure.Capacity("load", fmt.Errorf("%w: more than %d lines",
					ErrCapacityExceeded, s.capacity))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, failure.Resource("load", err)
		}
	}
	s.trailingNewline = trailing

	s.lines = make([]*line, len(raw))
	for i, b := range raw {
		l := &line{index: i, content: string(b)}
		// blank lines take no part in any stage
		if len(b) == 0 {
			l.blank = true
			l.gate = gate.New(gate.Written)
		} else {
			l.gate = gate.New(gate.Loaded)
		}
		s.lines[i] = l
	}
	s.loaded = true

	return len(s.lines), nil
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Blanks returns the number of lines excluded from processing.
func (s *Store) Blanks() int {
	n := 0
	for _, l := range s.lines {
		if l.blank {
			n++
		}
	}
	return n
}

func (s *Store) Blank(i int) bool {
	return s.lines[i].blank
}

// Get returns line i's content. Callers must hold the line's claim, or run
// after the stage that last wrote it has drained.
func (s *Store) Get(i int) string {
	return s.lines[i].content
}

// Set replaces line i's content. Callers must hold the line's claim.
func (s *Store) Set(i int, content string) {
	s.lines[i].content = content
}

func (s *Store) TryClaim(i int, stage gate.Stage) bool {
	if i < 0 || i >= len(s.lines) {
		return false
	}
	return s.lines[i].gate.TryClaim(stage)
}

func (s *Store) Complete(i int, stage gate.Stage) error {
	if i < 0 || i >= len(s.lines) {
		return failure.Internal("complete", fmt.Errorf("%w: %d", ErrIndexOutOfRange, i))
	}
	if err := s.lines[i].gate.Complete(stage); err != nil {
		return fmt.Errorf("line %d: %w", i, err)
	}
	return nil
}

func (s *Store) Stage(i int) gate.Stage {
	return s.lines[i].gate.Stage()
}

// Verify checks that every line has completed at least stage. A line left
// behind after its stage drained means a transition was skipped.
func (s *Store) Verify(stage gate.Stage) error {
	for _, l := range s.lines {
		if at := l.gate.Stage(); at < stage {
			return failure.Internal("verify", fmt.Errorf("%w: line %d at %s after %s drained",
				gate.ErrStageOrder, l.index, at, stage))
		}
		if l.gate.Claimed() {
			return failure.Internal("verify", fmt.Errorf("line %d still claimed after %s drained",
				l.index, stage))
		}
	}
	return nil
}

// Contents returns a copy of all line contents in index order.
func (s *Store) Contents() []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.content
	}
	return out
}

// Render produces the output file body: lines joined by '\n', with a final
// newline only if the input had one.
func (s *Store) Render() []byte {
	var buf bytes.Buffer
	for i, l := range s.lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(l.content)
	}
	if s.trailingNewline {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
