package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Additional-Code/vendordesk/internal/health"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

func TestHealthFollowsOrderRefreshes(t *testing.T) {
	logger := zaptest.NewLogger(t)
	state := health.New()
	hs := NewHealthServer(state, logger)
	server := NewServer(logger)
	RegisterServices(server, hs)

	ln := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return ln.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: OrdersService})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		return resp.GetStatus()
	}

	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("initial status = %v", got)
	}
	state.ReportRefresh(errors.New("connection refused"))
	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status after failure = %v", got)
	}
	state.ReportRefresh(nil)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status after recovery = %v", got)
	}
}

func TestToStatusMapsAppErrors(t *testing.T) {
	err := toStatus(errorbank.Unauthorized("Vendor ID not found. Please log in again."))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v", status.Code(err))
	}
	if toStatus(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	original := status.Error(codes.NotFound, "x")
	if toStatus(original) != original {
		t.Fatal("status errors pass through")
	}
}
