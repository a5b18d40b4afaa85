package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/roopet-api/internal/domains/users/domain"
	userports "github.com/Apurer/roopet-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/roopet-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
// Credentials and tokens are never logged.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SignUp")
	defer span.End()
	s.logInfo(ctx, "signing up user")
	result, err := s.inner.SignUp(ctx, email, password)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to sign up user")
	}
	span.SetAttributes(attribute.String("user.id", result.ID))
	s.metrics.recordSignedUp(ctx)
	s.logInfo(ctx, "user signed up", slog.String("user", result.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	session, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	span.SetAttributes(attribute.String("user.id", session.UserID))
	s.metrics.recordLogin(ctx, true)
	s.logInfo(ctx, "user logged in", slog.String("user", session.UserID))
	return session, nil
}

// Session is on the hot path of every authenticated request, so it only traces.
func (s *Service) Session(ctx context.Context, token string) (*userdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Session")
	defer span.End()
	session, err := s.inner.Session(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", session.UserID))
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	s.metrics.recordLogout(ctx)
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	return s.inner.GetUser(ctx, id)
}

func (s *Service) LinkPet(ctx context.Context, userID, petCode string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.LinkPet", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("pet.code", petCode),
	))
	defer span.End()
	if err := s.inner.LinkPet(ctx, userID, petCode); err != nil {
		return s.handleError(ctx, span, err, "failed to link pet", slog.String("user", userID), slog.String("pet.code", petCode))
	}
	s.logInfo(ctx, "pet linked to user", slog.String("user", userID), slog.String("pet.code", petCode))
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	signUps metric.Int64Counter
	logins  metric.Int64Counter
	logouts metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	signUps, _ := m.Int64Counter("users.service.signups", metric.WithDescription("Number of accounts created"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Login attempts by outcome"))
	logouts, _ := m.Int64Counter("users.service.logouts", metric.WithDescription("Number of sessions closed"))
	return serviceMetrics{signUps: signUps, logins: logins, logouts: logouts}
}

func (m serviceMetrics) recordSignedUp(ctx context.Context) {
	if m.signUps != nil {
		m.signUps.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, ok bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("login.success", ok)))
	}
}

func (m serviceMetrics) recordLogout(ctx context.Context) {
	if m.logouts != nil {
		m.logouts.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
