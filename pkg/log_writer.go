package pkg

import (
	"io"
	"sync/atomic"

	"go.uber.org/multierr"
)

// LogWriter copies log output to several sinks, typically stdout and the
// rotating log file. A write succeeds as long as one sink takes the entry, so
// a full disk does not silence stdout. Failed sink writes are counted.
type LogWriter struct {
	sinks    []io.Writer
	failures atomic.Int64
}

func NewLogWriter(sinks ...io.Writer) *LogWriter {
	return &LogWriter{sinks: sinks}
}

func (lw *LogWriter) Write(p []byte) (int, error) {
	var errs error
	delivered := false
	for _, sink := range lw.sinks {
		n, err := sink.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			lw.failures.Add(1)
			errs = multierr.Append(errs, err)
			continue
		}
		delivered = true
	}

	if !delivered && len(lw.sinks) > 0 {
		return 0, errs
	}
	return len(p), nil
}

// Failures returns the number of failed sink writes so far.
func (lw *LogWriter) Failures() int64 {
	return lw.failures.Load()
}
