package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/pkg/auth"
)

// --- stubs ---

type decideFunc func(context.Context, dto.DecideLoanRequest) (dto.DecideLoanResponse, error)

func (f decideFunc) Execute(ctx context.Context, req dto.DecideLoanRequest) (dto.DecideLoanResponse, error) {
	return f(ctx, req)
}

type scoreFunc func(context.Context, dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error)

func (f scoreFunc) Execute(ctx context.Context, req dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error) {
	return f(ctx, req)
}

type listFunc func(context.Context, dto.GetLoanDecisionsRequest) (dto.LoanDecisionsResponse, error)

func (f listFunc) Execute(ctx context.Context, req dto.GetLoanDecisionsRequest) (dto.LoanDecisionsResponse, error) {
	return f(ctx, req)
}

type quoteFunc func(context.Context, dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error)

func (f quoteFunc) Execute(ctx context.Context, req dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error) {
	return f(ctx, req)
}

type stubTokens map[string]*auth.Claims

func (s stubTokens) ValidateToken(token string) (*auth.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return l.allow, 1500 * time.Millisecond, l.err
}

// --- helpers ---

var actor = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func failing(err error) *DecisionHandler {
	return NewDecisionHandler(
		decideFunc(func(context.Context, dto.DecideLoanRequest) (dto.DecideLoanResponse, error) {
			return dto.DecideLoanResponse{}, err
		}),
		scoreFunc(func(context.Context, dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error) {
			return dto.ScoreApplicationResponse{}, err
		}),
		listFunc(func(context.Context, dto.GetLoanDecisionsRequest) (dto.LoanDecisionsResponse, error) {
			return dto.LoanDecisionsResponse{}, err
		}),
		quoteFunc(func(context.Context, dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error) {
			return dto.AffordabilityResponse{}, err
		}),
		discardLogger(),
	)
}

// --- handler tests ---

func TestDecideLoan_UsesActorFromClaims(t *testing.T) {
	var got dto.DecideLoanRequest
	h := NewDecisionHandler(
		decideFunc(func(_ context.Context, req dto.DecideLoanRequest) (dto.DecideLoanResponse, error) {
			got = req
			return dto.DecideLoanResponse{DecisionID: "dec-1", Decision: "reject"}, nil
		}),
		nil, nil, nil, discardLogger(),
	)
	ctx := auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: actor})

	resp, err := h.DecideLoan(ctx, &DecideLoanRequest{LoanID: "loan-1"})

	require.NoError(t, err)
	assert.Equal(t, "dec-1", resp.DecisionID)
	assert.Equal(t, dto.DecideLoanRequest{LoanID: "loan-1", ActorID: actor.String()}, got)
}

func TestDecideLoan_MissingLoanID(t *testing.T) {
	h := failing(errors.New("unused"))

	_, err := h.DecideLoan(context.Background(), &DecideLoanRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.ListDecisions(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", model.NewValidationError("amount", "Invalid loan amount"), codes.InvalidArgument},
		{"access denied", &model.DomainError{Kind: model.ErrAccessDenied}, codes.PermissionDenied},
		{"not found", &model.DomainError{Kind: model.ErrNotFound}, codes.NotFound},
		{"already decided", &model.DomainError{Kind: model.ErrAlreadyDecided}, codes.FailedPrecondition},
		{"conflict", &model.DomainError{Kind: model.ErrConflict}, codes.Aborted},
		{"invalid input", model.NewInvalidInputError("bad"), codes.FailedPrecondition},
		{"persistence", model.NewPersistenceError("insert decision", errors.New("db down")), codes.Internal},
		{"scoring", model.NewScoringError(errors.New("boom")), codes.Internal},
		{"unknown", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := failing(tt.err)
			ctx := context.Background()

			_, err := h.DecideLoan(ctx, &DecideLoanRequest{LoanID: "loan-1"})
			assert.Equal(t, tt.want, status.Code(err))
			_, err = h.ScoreApplication(ctx, &dto.ScoreApplicationRequest{})
			assert.Equal(t, tt.want, status.Code(err))
			_, err = h.ListDecisions(ctx, &ListDecisionsRequest{LoanID: "loan-1"})
			assert.Equal(t, tt.want, status.Code(err))
			_, err = h.QuoteAffordability(ctx, &dto.QuoteAffordabilityRequest{})
			assert.Equal(t, tt.want, status.Code(err))

			if tt.want == codes.Internal {
				assert.NotContains(t, status.Convert(err).Message(), "db down")
			}
		})
	}
}

// --- end-to-end over bufconn ---

func startServer(t *testing.T, handler DecisionServiceServer, limiter stubLimiter) *grpclib.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := NewServer(handler, stubTokens{"good": {UserID: actor}}, ServerConfig{
		ServiceName:  "decision-engine",
		Interceptors: []grpclib.UnaryServerInterceptor{RateLimitInterceptor(limiter, discardLogger())},
	}, discardLogger())
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func quoteHandler() *DecisionHandler {
	return NewDecisionHandler(nil, nil, nil,
		quoteFunc(func(_ context.Context, req dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error) {
			return dto.AffordabilityResponse{EMI: 8884.88, SuggestedTenureMonth: 6, DTIStatus: "excellent"}, nil
		}),
		discardLogger(),
	)
}

func TestServer_QuoteAffordabilityOverJSONCodec(t *testing.T) {
	conn := startServer(t, quoteHandler(), stubLimiter{allow: true})
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer good")

	var resp dto.AffordabilityResponse
	err := conn.Invoke(ctx, FullMethodName("QuoteAffordability"),
		&dto.QuoteAffordabilityRequest{Amount: 100000, TenureMonths: 12, MonthlyIncome: 50000},
		&resp, grpclib.CallContentSubtype(codecName))

	require.NoError(t, err)
	assert.Equal(t, 8884.88, resp.EMI)
	assert.Equal(t, 6, resp.SuggestedTenureMonth)
}

func TestServer_RequiresToken(t *testing.T) {
	conn := startServer(t, quoteHandler(), stubLimiter{allow: true})

	var resp dto.AffordabilityResponse
	err := conn.Invoke(context.Background(), FullMethodName("QuoteAffordability"),
		&dto.QuoteAffordabilityRequest{}, &resp, grpclib.CallContentSubtype(codecName))

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_RateLimited(t *testing.T) {
	conn := startServer(t, quoteHandler(), stubLimiter{allow: false})
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer good")

	var header metadata.MD
	var resp dto.AffordabilityResponse
	err := conn.Invoke(ctx, FullMethodName("QuoteAffordability"),
		&dto.QuoteAffordabilityRequest{}, &resp,
		grpclib.CallContentSubtype(codecName), grpclib.Header(&header))

	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.Equal(t, []string{"2"}, header.Get("retry-after"))
}

func TestServer_HealthIsPublic(t *testing.T) {
	conn := startServer(t, quoteHandler(), stubLimiter{allow: true})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: "decision-engine"})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_RecoversFromHandlerPanic(t *testing.T) {
	h := NewDecisionHandler(nil,
		scoreFunc(func(context.Context, dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error) {
			panic("cannot create a decimal from NaN")
		}),
		nil, nil, discardLogger(),
	)
	conn := startServer(t, h, stubLimiter{allow: true})
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer good")

	var resp dto.ScoreApplicationResponse
	err := conn.Invoke(ctx, FullMethodName("ScoreApplication"),
		&dto.ScoreApplicationRequest{}, &resp, grpclib.CallContentSubtype(codecName))
	assert.Equal(t, codes.Internal, status.Code(err))

	health, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: "decision-engine"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}
