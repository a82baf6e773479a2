package natsservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/entities"
	"github.com/reglet-dev/wasm-core/domain/errors"
)

const (
	// DefaultSubjectPrefix is the subject namespace of every endpoint.
	DefaultSubjectPrefix = "wasmcore"

	// DefaultQueueGroup balances requests across service instances.
	DefaultQueueGroup = "wasm-core"

	// DefaultTimeout bounds a single operation.
	DefaultTimeout = 5 * time.Second
)

// Subject returns the subject of operation under prefix.
func Subject(prefix, operation string) string {
	return prefix + "." + operation
}

// Service answers operation requests with an Operations implementation.
type Service struct {
	conn    *nats.Conn
	ops     wasmcore.Operations
	logger  *slog.Logger
	prefix  string
	queue   string
	timeout time.Duration
	subs    []*nats.Subscription
	mu      sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithSubjectPrefix sets the subject namespace.
func WithSubjectPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// WithQueueGroup sets the queue group.
func WithQueueGroup(queue string) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTimeout bounds each operation.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service; call Start to subscribe.
func NewService(conn *nats.Conn, ops wasmcore.Operations, opts ...Option) *Service {
	s := &Service{
		conn:    conn,
		ops:     ops,
		logger:  slog.Default(),
		prefix:  DefaultSubjectPrefix,
		queue:   DefaultQueueGroup,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type handlerFunc func(ctx context.Context, data []byte) (any, error)

// Start subscribes every endpoint. It fails if the service is running.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) > 0 {
		return fmt.Errorf("service already started")
	}

	handlers := map[string]handlerFunc{
		wasmcore.OpAdd:      s.add,
		wasmcore.OpSumF32:   s.sumF32,
		wasmcore.OpHello:    s.hello,
		wasmcore.OpDescribe: s.describe,
	}
	for op, h := range handlers {
		subject := Subject(s.prefix, op)
		sub, err := s.conn.QueueSubscribe(subject, s.queue, s.serve(op, h))
		if err != nil {
			s.unsubscribeLocked()
			return fmt.Errorf("subscribing %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	if err := s.conn.Flush(); err != nil {
		s.unsubscribeLocked()
		return fmt.Errorf("flushing subscriptions: %w", err)
	}

	s.logger.Info("nats: service started", "prefix", s.prefix, "queue", s.queue)
	return nil
}

// Stop drains every subscription so in-flight requests finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.subs = nil
	return firstErr
}

func (s *Service) unsubscribeLocked() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *Service) serve(op string, h handlerFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		var reply entities.Reply
		result, err := h(ctx, msg.Data)
		if err == nil {
			reply, err = entities.NewReply(result)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "nats: request failed", "operation", op, "error", err)
			reply = entities.NewErrorReply(errors.ToErrorDetail(err))
		}

		data, err := json.Marshal(reply)
		if err != nil {
			s.logger.ErrorContext(ctx, "nats: failed to encode reply", "operation", op, "error", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			s.logger.ErrorContext(ctx, "nats: failed to respond", "operation", op, "error", err)
		}
	}
}

func (s *Service) add(ctx context.Context, data []byte) (any, error) {
	var req wasmcore.AddRequest
	if err := wasmcore.DecodeJSON(wasmcore.OpAdd, data, &req); err != nil {
		return nil, err
	}
	sum, err := s.ops.Add(ctx, *req.A, *req.B)
	if err != nil {
		return nil, err
	}
	return wasmcore.AddResponse{Sum: sum}, nil
}

func (s *Service) sumF32(ctx context.Context, data []byte) (any, error) {
	var req wasmcore.SumF32Request
	if err := wasmcore.DecodeJSON(wasmcore.OpSumF32, data, &req); err != nil {
		return nil, err
	}
	sum, err := s.ops.SumF32(ctx, req.Values)
	if err != nil {
		return nil, err
	}
	return wasmcore.SumF32Response{Sum: sum}, nil
}

func (s *Service) hello(ctx context.Context, data []byte) (any, error) {
	var req wasmcore.HelloRequest
	if err := wasmcore.DecodeJSON(wasmcore.OpHello, data, &req); err != nil {
		return nil, err
	}
	greeting, err := s.ops.Hello(ctx, *req.Name)
	if err != nil {
		return nil, err
	}
	return wasmcore.HelloResponse{Greeting: greeting}, nil
}

func (s *Service) describe(context.Context, []byte) (any, error) {
	return wasmcore.Describe(), nil
}
