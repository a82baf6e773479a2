package natsservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/entities"
)

// Client calls a remote Service. It implements wasmcore.Operations.
type Client struct {
	conn   *nats.Conn
	prefix string
}

var _ wasmcore.Operations = (*Client)(nil)

// NewClient creates a client for the service under prefix.
func NewClient(conn *nats.Conn, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Client{conn: conn, prefix: prefix}
}

// Add implements wasmcore.Operations.
func (c *Client) Add(ctx context.Context, a, b int32) (int32, error) {
	var resp wasmcore.AddResponse
	err := c.request(ctx, wasmcore.OpAdd, wasmcore.AddRequest{A: &a, B: &b}, &resp)
	return resp.Sum, err
}

// SumF32 implements wasmcore.Operations.
func (c *Client) SumF32(ctx context.Context, values []float32) (float32, error) {
	if values == nil {
		values = []float32{}
	}
	var resp wasmcore.SumF32Response
	err := c.request(ctx, wasmcore.OpSumF32, wasmcore.SumF32Request{Values: values}, &resp)
	return resp.Sum, err
}

// Hello implements wasmcore.Operations.
func (c *Client) Hello(ctx context.Context, name string) (string, error) {
	var resp wasmcore.HelloResponse
	err := c.request(ctx, wasmcore.OpHello, wasmcore.HelloRequest{Name: &name}, &resp)
	return resp.Greeting, err
}

// Describe asks the service for its metadata.
func (c *Client) Describe(ctx context.Context) (entities.Metadata, error) {
	var meta entities.Metadata
	err := c.request(ctx, wasmcore.OpDescribe, struct{}{}, &meta)
	return meta, err
}

// request sends req and decodes the Reply. A remote failure is returned as
// the reply's *entities.ErrorDetail.
func (c *Client) request(ctx context.Context, op string, req, out any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}

	msg, err := c.conn.RequestWithContext(ctx, Subject(c.prefix, op), data)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}

	var reply entities.Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("decoding %s reply: %w", op, err)
	}
	if reply.Error != nil {
		return reply.Error
	}
	if err := json.Unmarshal(reply.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", op, err)
	}
	return nil
}
