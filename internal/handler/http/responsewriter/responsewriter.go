// Package responsewriter records the status code and body size of a response
// for the logging, metrics and tracing middleware.
package responsewriter

import "net/http"

// ResponseWriter is an http.ResponseWriter that remembers what was sent.
type ResponseWriter struct {
	http.ResponseWriter
	status int // 0 until the header goes out
	size   int
}

// Wrap returns w as a *ResponseWriter. The /news chain stacks three recording
// middlewares, so an already wrapped writer is returned as is and all of them
// read the same counters.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w}
}

// WriteHeader forwards only the first status; later calls are dropped.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *ResponseWriter) Flush() {
	f, ok := w.ResponseWriter.(http.Flusher)
	if !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
	f.Flush()
}

// StatusCode is 200 for a handler that never wrote anything.
func (w *ResponseWriter) StatusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *ResponseWriter) BytesWritten() int {
	return w.size
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
