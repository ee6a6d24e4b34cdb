package ui

import (
	"fmt"
	"io"
	"sync"
)

const (
	progressLineTemplateConstant = "%s: %s\n"
)

// ProgressPrinter writes one "<checker>: <file>" line per started check.
// It is safe for concurrent use.
type ProgressPrinter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewProgressPrinter constructs a printer writing to writer. A nil writer discards output.
func NewProgressPrinter(writer io.Writer) *ProgressPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressPrinter{writer: writer}
}

// PrintProgress announces that checkerName started on relativePath.
func (printer *ProgressPrinter) PrintProgress(checkerName string, relativePath string) {
	if printer == nil {
		return
	}
	printer.mutex.Lock()
	defer printer.mutex.Unlock()
	_, _ = fmt.Fprintf(printer.writer, progressLineTemplateConstant, checkerName, relativePath)
}
