package grpc

// proto.go defines the gRPC service descriptor for decision.v1.DecisionService.
// Messages travel as JSON through the codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/decision-engine/internal/application/dto"
)

const serviceName = "decision.v1.DecisionService"

// DecisionServiceServer is the server API for DecisionService.
type DecisionServiceServer interface {
	DecideLoan(context.Context, *DecideLoanRequest) (*dto.DecideLoanResponse, error)
	ScoreApplication(context.Context, *dto.ScoreApplicationRequest) (*dto.ScoreApplicationResponse, error)
	ListDecisions(context.Context, *ListDecisionsRequest) (*dto.LoanDecisionsResponse, error)
	QuoteAffordability(context.Context, *dto.QuoteAffordabilityRequest) (*dto.AffordabilityResponse, error)
	mustEmbedUnimplementedDecisionServiceServer()
}

// UnimplementedDecisionServiceServer provides forward-compatible default implementations.
type UnimplementedDecisionServiceServer struct{}

func (UnimplementedDecisionServiceServer) DecideLoan(context.Context, *DecideLoanRequest) (*dto.DecideLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DecideLoan not implemented")
}
func (UnimplementedDecisionServiceServer) ScoreApplication(context.Context, *dto.ScoreApplicationRequest) (*dto.ScoreApplicationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreApplication not implemented")
}
func (UnimplementedDecisionServiceServer) ListDecisions(context.Context, *ListDecisionsRequest) (*dto.LoanDecisionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListDecisions not implemented")
}
func (UnimplementedDecisionServiceServer) QuoteAffordability(context.Context, *dto.QuoteAffordabilityRequest) (*dto.AffordabilityResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QuoteAffordability not implemented")
}
func (UnimplementedDecisionServiceServer) mustEmbedUnimplementedDecisionServiceServer() {}

// RegisterDecisionServiceServer registers srv with the gRPC server.
func RegisterDecisionServiceServer(s grpclib.ServiceRegistrar, srv DecisionServiceServer) {
	s.RegisterService(&decisionServiceDesc, srv)
}

var decisionServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DecisionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "DecideLoan", Handler: unaryHandler("DecideLoan", DecisionServiceServer.DecideLoan)},
		{MethodName: "ScoreApplication", Handler: unaryHandler("ScoreApplication", DecisionServiceServer.ScoreApplication)},
		{MethodName: "ListDecisions", Handler: unaryHandler("ListDecisions", DecisionServiceServer.ListDecisions)},
		{MethodName: "QuoteAffordability", Handler: unaryHandler("QuoteAffordability", DecisionServiceServer.QuoteAffordability)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "decision/v1/decision.proto",
}

// unaryHandler adapts a typed server method to grpc.MethodDesc.
func unaryHandler[Req, Resp any](
	method string,
	call func(DecisionServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	fullMethod := FullMethodName(method)
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) { //nolint:revive // gRPC handler signature
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DecisionServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DecisionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FullMethodName returns the RPC path of a DecisionService method.
func FullMethodName(method string) string {
	return "/" + serviceName + "/" + method
}
