package host

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"math"
	"sync"
	"testing"

	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/errors"
	"github.com/reglet-dev/wasm-core/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type InstanceSuite struct {
	suite.Suite
	ctx      context.Context
	logs     *bytes.Buffer
	executor *Executor
	instance *Instance
}

func (s *InstanceSuite) SetupTest() {
	s.ctx = context.Background()
	s.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e, err := NewExecutor(s.ctx, WithLogger(logger), WithMaxInputBytes(64))
	s.Require().NoError(err)
	s.executor = e

	s.instance, err = e.Load(s.ctx, testutil.GuestModule())
	s.Require().NoError(err)
}

func (s *InstanceSuite) TearDownTest() {
	s.NoError(s.executor.Close(s.ctx))
}

func (s *InstanceSuite) freed() uint64 {
	return s.instance.module.ExportedGlobal("freed").Get()
}

func (s *InstanceSuite) TestAdd() {
	tests := []struct {
		a, b, want int32
	}{
		{2, 3, 5},
		{-1, 1, 0},
		{-7, -8, -15},
		{math.MaxInt32, 1, math.MinInt32},
		{math.MinInt32, -1, math.MaxInt32},
	}
	for _, tt := range tests {
		got, err := s.instance.Add(s.ctx, tt.a, tt.b)
		s.Require().NoError(err)
		s.Equal(tt.want, got, "%d + %d", tt.a, tt.b)
		s.Equal(wasmcore.Add(tt.a, tt.b), got)
	}
}

func (s *InstanceSuite) TestSumF32() {
	tests := []struct {
		name   string
		values []float32
		want   float32
	}{
		{"empty", nil, 0},
		{"single", []float32{2.5}, 2.5},
		{"integers", []float32{1, 2, 3}, 6},
		{"left to right", []float32{1e8, 1, -1e8}, 0},
		{"infinity", []float32{float32(math.Inf(1)), 1}, float32(math.Inf(1))},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.instance.SumF32(s.ctx, tt.values)
			s.Require().NoError(err)
			testutil.AssertF32Bits(s.T(), tt.want, got)
			testutil.AssertF32Bits(s.T(), wasmcore.SumF32(tt.values), got)
		})
	}
}

func (s *InstanceSuite) TestSumF32_NaN() {
	got, err := s.instance.SumF32(s.ctx, []float32{1, float32(math.NaN())})
	s.Require().NoError(err)
	s.True(math.IsNaN(float64(got)))
}

func (s *InstanceSuite) TestSumF32_InputTooLarge() {
	_, err := s.instance.SumF32(s.ctx, make([]float32, 17))

	var tooLarge *errors.InputTooLargeError
	s.Require().True(stdErrors.As(err, &tooLarge))
	s.Equal("sum_f32", tooLarge.Operation)
	s.Equal(68, tooLarge.Size)
	s.Equal(64, tooLarge.Limit)
}

func (s *InstanceSuite) TestHello() {
	tests := []struct {
		name string
		want string
	}{
		{"World", "Hello, World from Go!"},
		{"", "Hello,  from Go!"},
		{"世界", "Hello, 世界 from Go!"},
		{"\xff\xfe", "Hello, \xff\xfe from Go!"},
	}
	for _, tt := range tests {
		got, err := s.instance.Hello(s.ctx, tt.name)
		s.Require().NoError(err)
		s.Equal(tt.want, got)
		s.Equal(wasmcore.Hello(tt.name), got)
	}
}

func (s *InstanceSuite) TestHello_ReleasesOutput() {
	before := s.freed()

	got, err := s.instance.Hello(s.ctx, "Bob")
	s.Require().NoError(err)

	s.Equal(uint64(len(got)), s.freed()-before)
}

func (s *InstanceSuite) TestHello_NullResult() {
	failing, err := s.executor.Load(s.ctx, testutil.FailingHelloModule())
	s.Require().NoError(err)
	defer failing.Close(s.ctx)

	_, err = failing.Hello(s.ctx, "Bob")

	var exportErr *errors.ExportError
	s.Require().True(stdErrors.As(err, &exportErr))
	s.Equal("hello", exportErr.Name)
	s.False(exportErr.NotFound())
	s.ErrorIs(err, ErrNoOutput)
}

func (s *InstanceSuite) TestDescribe_MissingExport() {
	_, err := s.instance.Describe(s.ctx)

	var exportErr *errors.ExportError
	s.Require().True(stdErrors.As(err, &exportErr))
	s.Equal("describe", exportErr.Name)
	s.True(exportErr.NotFound())
}

func (s *InstanceSuite) TestSchema_MissingExport() {
	_, err := s.instance.Schema(s.ctx)
	s.ErrorContains(err, `export "schema" not found`)
}

func (s *InstanceSuite) TestGuestLogForwarded() {
	_, err := s.instance.module.ExportedFunction("emit_log").Call(s.ctx)
	s.Require().NoError(err)

	var record map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(s.logs.Bytes()), []byte("\n")) {
		var r map[string]any
		s.Require().NoError(json.Unmarshal(line, &r))
		if r["msg"] == "from test guest" {
			record = r
		}
	}
	s.Require().NotNil(record, "guest record not logged: %s", s.logs.String())
	s.Equal("WARN", record["level"])
	s.Equal("v", record["k"])
	s.Equal(s.instance.Name(), record["module"])
}

func (s *InstanceSuite) TestConcurrentCalls() {
	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for g := range 16 {
		wg.Add(1)
		go func(g int32) {
			defer wg.Done()
			for i := range int32(50) {
				got, err := s.instance.Add(s.ctx, g, i)
				if err != nil {
					errs <- err
					return
				}
				if got != g+i {
					errs <- stdErrors.New("wrong sum")
					return
				}
			}
		}(int32(g))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
}

func (s *InstanceSuite) TestClosedInstance() {
	s.Require().NoError(s.instance.Close(s.ctx))

	_, err := s.instance.Add(s.ctx, 1, 2)
	var exportErr *errors.ExportError
	s.Require().True(stdErrors.As(err, &exportErr))
	s.Equal("add", exportErr.Name)
}

func TestInstanceSuite(t *testing.T) {
	suite.Run(t, new(InstanceSuite))
}

func TestSplitPacked(t *testing.T) {
	ptr, length, ok := splitPacked(0)
	if !ok || ptr != 0 || length != 0 {
		t.Fatalf("splitPacked(0) = %d, %d, %v", ptr, length, ok)
	}

	_, length, ok = splitPacked(7)
	if ok || length != 7 {
		t.Fatalf("splitPacked(7) = _, %d, %v; want invalid", length, ok)
	}

	ptr, length, ok = splitPacked(1024<<32 | 5)
	if !ok || ptr != 1024 || length != 5 {
		t.Fatalf("splitPacked = %d, %d, %v", ptr, length, ok)
	}
}
