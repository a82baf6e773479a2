package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	wasmcore "github.com/reglet-dev/wasm-core"
)

// registerTools registers add, sum_f32 and hello.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(wasmcore.OpAdd,
			mcp.WithDescription("Add two 32-bit signed integers; the sum wraps on overflow"),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First operand")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second operand")),
		),
		s.handleAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(wasmcore.OpSumF32,
			mcp.WithDescription("Sum 32-bit floats left to right; an empty list sums to 0"),
			mcp.WithArray("values", mcp.Required(),
				mcp.Description("Values summed left to right"),
				mcp.Items(map[string]any{"type": "number"}),
			),
		),
		s.handleSumF32,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(wasmcore.OpHello,
			mcp.WithDescription("Greet a name"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Name echoed verbatim")),
		),
		s.handleHello,
	)
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req wasmcore.AddRequest
	if err := wasmcore.DecodeArgs(wasmcore.OpAdd, request.GetArguments(), &req); err != nil {
		return s.toolResult(ctx, wasmcore.OpAdd, nil, err)
	}
	sum, err := s.ops.Add(ctx, *req.A, *req.B)
	return s.toolResult(ctx, wasmcore.OpAdd, wasmcore.AddResponse{Sum: sum}, err)
}

func (s *Server) handleSumF32(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req wasmcore.SumF32Request
	if err := wasmcore.DecodeArgs(wasmcore.OpSumF32, request.GetArguments(), &req); err != nil {
		return s.toolResult(ctx, wasmcore.OpSumF32, nil, err)
	}
	sum, err := s.ops.SumF32(ctx, req.Values)
	return s.toolResult(ctx, wasmcore.OpSumF32, wasmcore.SumF32Response{Sum: sum}, err)
}

func (s *Server) handleHello(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req wasmcore.HelloRequest
	if err := wasmcore.DecodeArgs(wasmcore.OpHello, request.GetArguments(), &req); err != nil {
		return s.toolResult(ctx, wasmcore.OpHello, nil, err)
	}
	greeting, err := s.ops.Hello(ctx, *req.Name)
	return s.toolResult(ctx, wasmcore.OpHello, wasmcore.HelloResponse{Greeting: greeting}, err)
}
