package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey string

const principalKey ctxKey = "auth_principal"

var tracer = otel.Tracer("github.com/WailSalutem-Health-Care/clinic-service/auth")

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	ParseAndVerifyToken(token string) (*Principal, error)
}

var _ TokenVerifier = (*Verifier)(nil)

// Middleware validates token, injects Principal into request context.
func Middleware(ver TokenVerifier) func(http.Handler) http.Handler {
	return MiddlewareWithMetrics(ver, nil, nil)
}

// MiddlewareWithMetrics validates token with metrics recording and logging.
func MiddlewareWithMetrics(ver TokenVerifier, metrics MetricsRecorder, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "auth.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			fail := func(reason, message string, err error) {
				span.SetStatus(codes.Error, message)
				span.SetAttributes(attribute.String("error.type", reason))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, reason)
				}
				if err != nil {
					logger.Debug("token rejected", zap.String("reason", reason), zap.Error(err))
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", message)
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				fail("missing_authorization", "missing authorization", nil)
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail("invalid_header_format", "invalid authorization header", nil)
				return
			}

			pr, err := ver.ParseAndVerifyToken(parts[1])
			if err != nil {
				fail("invalid_token", "invalid token", err)
				return
			}

			span.SetAttributes(
				attribute.String("user.id", pr.UserID),
				attribute.StringSlice("user.roles", pr.Roles),
				attribute.String("clinic.id", pr.ClinicID),
			)
			span.SetStatus(codes.Ok, "authenticated")

			ctx = context.WithValue(ctx, principalKey, pr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PermissionMetricsRecorder interface for recording permission check metrics
type PermissionMetricsRecorder interface {
	RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool)
}

// RequirePermission returns middleware that ensures the principal has permission.
func RequirePermission(per string, perms Permissions) func(http.Handler) http.Handler {
	return RequirePermissionWithMetrics(per, perms, nil, nil)
}

// RequirePermissionWithMetrics returns middleware with metrics recording
func RequirePermissionWithMetrics(per string, perms Permissions, metrics PermissionMetricsRecorder, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), "auth.RequirePermission",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("permission.required", per)),
			)
			defer span.End()

			pr, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				if metrics != nil {
					metrics.RecordPermissionCheck(ctx, per, msSince(start), false)
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", "unauthenticated")
				return
			}

			allowed := HasPermission(pr, per, perms)
			span.SetAttributes(
				attribute.Bool("permission.allowed", allowed),
				attribute.String("user.id", pr.UserID),
			)
			if metrics != nil {
				metrics.RecordPermissionCheck(ctx, per, msSince(start), allowed)
			}

			if !allowed {
				logger.Info("permission denied",
					zap.String("user_id", pr.UserID),
					zap.Strings("roles", pr.Roles),
					zap.String("permission", per),
				)
				span.SetStatus(codes.Error, "forbidden")
				writeError(w, http.StatusForbidden, "forbidden", "missing permission "+per)
				return
			}

			span.SetStatus(codes.Ok, "permission granted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorizeClinic returns ErrClinicForbidden unless the request's principal
// manages clinicID.
func AuthorizeClinic(ctx context.Context, clinicID string) error {
	pr, ok := FromContext(ctx)
	if !ok || !pr.ManagesClinic(clinicID) {
		return ErrClinicForbidden
	}
	return nil
}

// ClinicScope returns the clinic the request's principal is confined to.
// scoped is false only for admins. A scoped caller without a clinic claim
// gets "" and must see nothing.
func ClinicScope(ctx context.Context) (clinicID string, scoped bool) {
	pr, ok := FromContext(ctx)
	if !ok {
		return "", true
	}
	if pr.HasRole(RoleAdmin) {
		return "", false
	}
	return pr.ClinicID, true
}

// FromContext extracts Principal from context.
func FromContext(ctx context.Context) (*Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*Principal)
	return pr, ok
}

// HasPermission checks roles -> permissions mapping.
// Role lookup is case-insensitive so realm roles like "patient" match PATIENT.
func HasPermission(pr *Principal, permission string, perms Permissions) bool {
	for _, role := range pr.Roles {
		pList, ok := perms[role]
		if !ok {
			pList, ok = perms[strings.ToUpper(role)]
		}
		if !ok {
			continue
		}
		for _, p := range pList {
			if p == permission {
				return true
			}
		}
	}
	return false
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": errorType, "message": message})
}
