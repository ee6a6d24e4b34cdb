package utils

import (
	"io"
	"sync"
)

// flusher is implemented by buffered writers such as bufio.Writer.
type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes from concurrent workers and flushes buffered
// destinations after every write so progress lines appear as they are produced.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
}

// NewFlushingWriter wraps destination. Wrapping a FlushingWriter returns it unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch typedDestination := destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typedDestination
	default:
		return &FlushingWriter{destination: destination}
	}
}

// Write forwards data and flushes the destination when it buffers output.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return 0, nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.destination.Write(data)
	if writeError != nil {
		return written, writeError
	}
	if bufferedDestination, buffered := writer.destination.(flusher); buffered {
		return written, bufferedDestination.Flush()
	}
	return written, nil
}
