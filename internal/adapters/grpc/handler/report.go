package handler

import (
	"context"

	"github.com/ogurasousui/codex-task-report/internal/adapters/grpc/codec"
	"github.com/ogurasousui/codex-task-report/internal/core/report"
	"github.com/ogurasousui/codex-task-report/internal/core/task"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ReportServiceName は gRPC のサービス名です。
const ReportServiceName = "taskreport.v1.ReportService"

const (
	generateReportMethod = "/" + ReportServiceName + "/GenerateReport"
	updateTaskMethod     = "/" + ReportServiceName + "/UpdateTask"
	getReportMethod      = "/" + ReportServiceName + "/GetReport"
)

// GenerateReportRequest は集計対象のタスク一覧です。
type GenerateReportRequest struct {
	Tasks []task.Record `json:"tasks"`
}

// UpdateTaskRequest はタスクと、そのタスクに適用する変更です。
// Task と Changes は型検証のため未解釈のまま受け取ります。
type UpdateTaskRequest struct {
	Task    map[string]any `json:"task"`
	Changes map[string]any `json:"changes"`
}

// UpdateTaskResponse は変更後のタスクです。
type UpdateTaskResponse struct {
	Task task.Record `json:"task"`
}

// GetReportRequest は保存済み集計結果の取得条件です。
type GetReportRequest struct {
	ID string `json:"id"`
}

// RunStore は保存済みの集計結果を参照します。
type RunStore interface {
	FindByID(ctx context.Context, id string) (*report.Run, error)
}

// ReportServiceServer は ReportService のサーバー実装が満たすインターフェースです。
type ReportServiceServer interface {
	GenerateReport(context.Context, *GenerateReportRequest) (*report.Run, error)
	UpdateTask(context.Context, *UpdateTaskRequest) (*UpdateTaskResponse, error)
	GetReport(context.Context, *GetReportRequest) (*report.Run, error)
}

// ReportHandler は ReportService の gRPC 実装です。
type ReportHandler struct {
	clock task.Clock
	store RunStore
	sinks []report.Sink
}

// NewReportHandler は ReportHandler を生成します。store が nil の場合 GetReport は Unimplemented を返します。
func NewReportHandler(clock task.Clock, store RunStore, sinks ...report.Sink) *ReportHandler {
	return &ReportHandler{clock: clock, store: store, sinks: sinks}
}

// GenerateReport はリクエストのタスクを集計し、設定された出力先へ渡します。
func (h *ReportHandler) GenerateReport(ctx context.Context, req *GenerateReportRequest) (*report.Run, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tasks := make([]*task.Task, 0, len(req.Tasks))
	for _, r := range req.Tasks {
		tasks = append(tasks, task.FromRecord(r, h.clock))
	}

	svc := report.NewService(requestSource(tasks), h.clock, h.sinks...)
	run, err := svc.Build(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	if err := svc.Publish(ctx, run); err != nil {
		return nil, toStatusError(err)
	}
	return run, nil
}

// UpdateTask はタスクに変更を適用します。変更はすべて検証してから反映されます。
func (h *ReportHandler) UpdateTask(_ context.Context, req *UpdateTaskRequest) (*UpdateTaskResponse, error) {
	if req == nil || req.Task == nil {
		return nil, status.Error(codes.InvalidArgument, "task is required")
	}

	t, err := task.FromMap(req.Task, h.clock)
	if err != nil {
		return nil, toStatusError(err)
	}
	if err := t.Apply(req.Changes); err != nil {
		return nil, toStatusError(err)
	}
	return &UpdateTaskResponse{Task: t.ToRecord()}, nil
}

// GetReport は保存済みの集計結果を返します。
func (h *ReportHandler) GetReport(ctx context.Context, req *GetReportRequest) (*report.Run, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if h.store == nil {
		return nil, status.Error(codes.Unimplemented, "report store is not configured")
	}

	run, err := h.store.FindByID(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return run, nil
}

type requestSource []*task.Task

func (s requestSource) LoadTasks(context.Context) ([]*task.Task, error) {
	return s, nil
}

func (requestSource) Name() string {
	return "grpc"
}

// RegisterReportServiceServer は srv を gRPC サーバーに登録します。
func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

// ReportServiceDesc は ReportService のサービス定義です。
var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateReport", Handler: generateReportHandler},
		{MethodName: "UpdateTask", Handler: updateTaskHandler},
		{MethodName: "GetReport", Handler: getReportHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func generateReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GenerateReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).GenerateReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: generateReportMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).GenerateReport(ctx, req.(*GenerateReportRequest))
	})
}

func updateTaskHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateTaskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).UpdateTask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateTaskMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).UpdateTask(ctx, req.(*UpdateTaskRequest))
	})
}

func getReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).GetReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getReportMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).GetReport(ctx, req.(*GetReportRequest))
	})
}

// ReportClient は ReportService のクライアントです。
type ReportClient struct {
	cc grpc.ClientConnInterface
}

// NewReportClient は ReportClient を生成します。
func NewReportClient(cc grpc.ClientConnInterface) *ReportClient {
	return &ReportClient{cc: cc}
}

// GenerateReport はタスク一覧をサーバーで集計します。
func (c *ReportClient) GenerateReport(ctx context.Context, in *GenerateReportRequest, opts ...grpc.CallOption) (*report.Run, error) {
	out := new(report.Run)
	if err := c.cc.Invoke(ctx, generateReportMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTask はサーバーでタスクに変更を適用します。
func (c *ReportClient) UpdateTask(ctx context.Context, in *UpdateTaskRequest, opts ...grpc.CallOption) (*UpdateTaskResponse, error) {
	out := new(UpdateTaskResponse)
	if err := c.cc.Invoke(ctx, updateTaskMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport は保存済みの集計結果を取得します。
func (c *ReportClient) GetReport(ctx context.Context, in *GetReportRequest, opts ...grpc.CallOption) (*report.Run, error) {
	out := new(report.Run)
	if err := c.cc.Invoke(ctx, getReportMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
}
