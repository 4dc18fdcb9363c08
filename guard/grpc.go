package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/denizatac/gatehouse/token"
)

// UnaryServerInterceptor enforces bearer authentication on gRPC unary
// calls, mirroring the API guard: the token travels in the
// "authorization" metadata entry and the verified identity is injected
// into the handler context.
func UnaryServerInterceptor(svc *token.Service, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		requestID := uuid.New().String()

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			err := &token.VerifyError{Code: token.CodeMissing, Message: "metadata not found"}
			logAuthFailure(logger, "grpc", requestID, "", err, time.Since(start))
			return nil, status.Error(codes.Unauthenticated, "metadata not found")
		}

		raw, err := metadataToken(md)
		if err != nil {
			logAuthFailure(logger, "grpc", requestID, raw, err, time.Since(start))
			return nil, status.Error(codes.Unauthenticated, string(token.CodeOf(err)))
		}

		claims, err := svc.Verify(raw)
		if err != nil {
			logAuthFailure(logger, "grpc", requestID, raw, err, time.Since(start))
			return nil, status.Error(codes.Unauthenticated, string(token.CodeOf(err)))
		}

		ctx = WithIdentity(ctx, identityFromClaims(claims))
		ctx = WithRequestID(ctx, requestID)

		logAuthSuccess(logger, "grpc", requestID, claims.UserID, raw, time.Since(start))

		return handler(ctx, req)
	}
}
