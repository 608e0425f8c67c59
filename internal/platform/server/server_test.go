package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-task-report/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-task-report/internal/core/task"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestLoggingInterceptor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	interceptor := LoggingInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/taskreport.v1.ReportService/UpdateTask"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unexpected error %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "rpc failed") || !strings.Contains(out, "code=InvalidArgument") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestServer_ServeAndStop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	srv := New("", handler.NewReportHandler(nil, nil), slog.New(slog.NewTextHandler(&buf, nil)))
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	run, err := handler.NewReportClient(conn).GenerateReport(callCtx, &handler.GenerateReportRequest{
		Tasks: []task.Record{{EmpName: "alice", Completed: true}},
	})
	if err != nil {
		t.Fatalf("GenerateReport returned error: %v", err)
	}
	if run.OverallPercentage != 100 {
		t.Fatalf("unexpected run %+v", run)
	}

	_ = conn.Close()
	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}

	if !strings.Contains(buf.String(), "rpc handled") {
		t.Fatalf("expected access log, got %q", buf.String())
	}
}
