package eventlog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/picogrid/rover-simulations/pkg/logger"
)

// Writer is the single consumer of a Queue. It appends every message to the
// transcript sink as one newline-terminated line, in publish order.
type Writer struct {
	queue  *Queue
	sink   *bufio.Writer
	mirror logger.Logger
	lines  int
}

// NewWriter creates a writer draining queue into sink.
func NewWriter(queue *Queue, sink io.Writer) *Writer {
	return &Writer{
		queue: queue,
		sink:  bufio.NewWriter(sink),
	}
}

// WithMirror echoes each transcript line to l at debug level.
func (w *Writer) WithMirror(l logger.Logger) *Writer {
	w.mirror = l
	return w
}

// Run drains the queue until it is closed and empty, then flushes the sink.
// A write error stops consumption after closing the queue so publishers are
// not left blocked on a ring nobody drains.
func (w *Writer) Run() error {
	scratch := make([]byte, 0, w.queue.SlotSize()+1)

	for {
		msg, ok := w.queue.Consume(scratch)
		if !ok {
			break
		}
		scratch = msg

		if w.mirror != nil {
			w.mirror.Debug(string(msg))
		}

		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg = append(msg, '\n')
		}
		if _, err := w.sink.Write(msg); err != nil {
			w.queue.Close()
			return fmt.Errorf("failed to write transcript line: %w", err)
		}
		w.lines++
	}

	if err := w.sink.Flush(); err != nil {
		return fmt.Errorf("failed to flush transcript: %w", err)
	}
	return nil
}

// Lines returns the number of lines written. Only meaningful after Run returns.
func (w *Writer) Lines() int {
	return w.lines
}
