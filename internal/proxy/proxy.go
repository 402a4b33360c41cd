// Package proxy implements the HTTP-over-bus proxy bridge: inbound bus
// frames carrying a method/path/headers/body are forwarded to the child
// runtime's local HTTP API, and the response is streamed back as chunks.
// Every forwarded call is wrapped in a counter.Monitor request span so the
// child's serving time is attributed to gpu-sec and requests.
package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/counter"
)

// Frame is one inbound HTTP-shaped bus message.
type Frame struct {
	Method  string
	Path    string
	Headers map[string][]string
	Body    []byte
}

// Chunk is one outbound response fragment. Final is set on the last chunk
// for a given frame, whether the call succeeded or failed.
type Chunk struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
	Final      bool
	Err        string
}

const readChunkSize = 32 * 1024

// Bridge forwards frames to one child HTTP API.
type Bridge struct {
	baseURL string
	client  *http.Client
	monitor *counter.Monitor
}

// New builds a Bridge targeting http://host:port, attributing every
// forwarded call's duration to monitor.
func New(host string, port int, monitor *counter.Monitor) *Bridge {
	return &Bridge{
		baseURL: "http://" + host + ":" + strconv.Itoa(port),
		client:  http.DefaultClient,
		monitor: monitor,
	}
}

// Forward opens the proxied HTTP call and invokes emit once per response
// chunk read off the body, the last call carrying Final=true. A transport
// failure is reported as a single Final chunk carrying Err.
func (b *Bridge) Forward(ctx context.Context, frame Frame, emit func(Chunk)) error {
	handle := b.monitor.OnRequest()
	defer handle.Complete()

	req, err := http.NewRequestWithContext(ctx, frame.Method, b.baseURL+frame.Path, bytes.NewReader(frame.Body))
	if err != nil {
		emit(Chunk{Final: true, Err: err.Error()})
		return apperr.Wrap(apperr.Transport, err, "build proxied request for %s", frame.Path)
	}
	for k, vs := range frame.Headers {
		for _, v := range vs {
			req.Header.Add(textproto.CanonicalMIMEHeaderKey(k), v)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		emit(Chunk{Final: true, Err: err.Error()})
		return apperr.Wrap(apperr.Transport, err, "proxied call to %s", frame.Path)
	}
	defer resp.Body.Close()

	headers := map[string][]string(resp.Header)
	first := true
	buf := make([]byte, readChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			chunk := Chunk{Body: append([]byte(nil), buf[:n]...)}
			if first {
				chunk.StatusCode = resp.StatusCode
				chunk.Headers = headers
				first = false
			}
			if readErr == io.EOF {
				chunk.Final = true
			}
			emit(chunk)
		}
		if readErr == io.EOF {
			if first {
				emit(Chunk{StatusCode: resp.StatusCode, Headers: headers, Final: true})
			} else if n == 0 {
				emit(Chunk{Final: true})
			}
			return nil
		}
		if readErr != nil {
			emit(Chunk{Final: true, Err: readErr.Error()})
			return apperr.Wrap(apperr.Transport, readErr, "read proxied response body for %s", frame.Path)
		}
	}
}

