// Package bus implements the concrete transport backing the supervisor's
// abstract "service bus": an HTTP+WebSocket server for inbound binds
// (Exec, GetExecBatchResults, StreamExecBatchResults, the HTTP-over-bus
// proxy bridge), and an outbound JSON HTTP client for report-RPC calls.
package bus

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joeycumines/go-longpoll"
	"github.com/rs/zerolog"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/batch"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/dispatcher"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/proxy"
)

// streamBatchConfig bounds how many batch events a single websocket write
// coalesces: wait for at least one event (MinSize), then keep collecting for
// up to PartialTimeout, at most MaxSize events in all, before writing, so a
// burst of state transitions costs one frame, not N.
var streamBatchConfig = &longpoll.ChannelConfig{
	MaxSize:        32,
	MinSize:        1,
	PartialTimeout: 50 * time.Millisecond,
}

// Dispatcher is what the bus server binds its exec/results/subscribe
// endpoints to. Declared locally, mirroring dispatcher.Dispatcher's public
// surface, so the server can be tested against a fake.
type Dispatcher interface {
	Exec(ctx context.Context, batchID string, script []dispatcher.Command) string
	Results(batchID string) ([]batch.Result, error)
	Subscribe(batchID string) (<-chan batch.Event, func(), error)
}

// Forwarder is what the http-proxy endpoint drives per frame.
type Forwarder interface {
	Forward(ctx context.Context, frame proxy.Frame, emit func(proxy.Chunk)) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server binds the inbound exe-unit endpoints under /bus/:endpoint/...
type Server struct {
	router     *gin.Engine
	dispatcher Dispatcher
	forwarder  Forwarder
	logger     zerolog.Logger
}

// NewServer builds a Server bound to dispatcher and forwarder.
func NewServer(d Dispatcher, f Forwarder, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{router: gin.New(), dispatcher: d, forwarder: f, logger: logger}
	s.router.Use(gin.Recovery())
	s.bind()
	return s
}

// Handler returns the server's http.Handler, for use with http.Server or
// httptest.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) bind() {
	g := s.router.Group("/bus/:endpoint")
	g.POST("/exec", s.handleExec)
	g.GET("/batch/:id", s.handleResults)
	g.GET("/batch/:id/stream", s.handleStream)
	g.GET("/http-proxy", s.handleProxy)
}

type execRequest struct {
	ActivityID string               `json:"activity_id"`
	BatchID    string               `json:"batch_id"`
	ExeScript  []dispatcher.Command `json:"exe_script"`
}

func (s *Server) handleExec(c *gin.Context) {
	var req execRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, apperr.Wrap(apperr.BadConfig, err, "decode exec request"))
		return
	}
	if req.BatchID == "" {
		// The orchestrator is expected to supply a batch id; fall back to
		// generating one so an exec call never fails just for omitting it.
		req.BatchID = uuid.NewString()
	}
	batchID := s.dispatcher.Exec(c.Request.Context(), req.BatchID, req.ExeScript)
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID})
}

func (s *Server) handleResults(c *gin.Context) {
	results, err := s.dispatcher.Results(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleStream(c *gin.Context) {
	events, cancel, err := s.dispatcher.Subscribe(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed for batch stream")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		var pending []batch.Event
		drainErr := longpoll.Channel(ctx, streamBatchConfig, events, func(ev batch.Event) error {
			pending = append(pending, ev)
			return nil
		})

		if len(pending) > 0 {
			if err := conn.WriteJSON(pending); err != nil {
				return
			}
		}

		if drainErr != nil {
			if drainErr != io.EOF && drainErr != context.Canceled && drainErr != context.DeadlineExceeded {
				s.logger.Warn().Err(drainErr).Msg("batch event stream drain failed")
			}
			return
		}
	}
}

type proxyFrameMessage struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Headers map[string][]string `json:"headers"`
	Body    []byte              `json:"body"`
}

func (s *Server) handleProxy(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed for http-proxy")
		return
	}
	defer conn.Close()

	for {
		var msg proxyFrameMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		frame := proxy.Frame{Method: msg.Method, Path: msg.Path, Headers: msg.Headers, Body: msg.Body}
		err := s.forwarder.Forward(c.Request.Context(), frame, func(chunk proxy.Chunk) {
			if writeErr := conn.WriteJSON(chunk); writeErr != nil {
				s.logger.Warn().Err(writeErr).Msg("failed to write proxy chunk")
			}
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("path", msg.Path).Msg("proxied call failed")
		}
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(httpStatusFor(apperr.KindOf(err)), gin.H{"error": newErrorEnvelope(err)})
}
