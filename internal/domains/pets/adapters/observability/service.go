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

	pettypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/roopet-api/internal/domains/pets/adapters/observability/service"

// Service decorates the pets port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
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

// CreatePet adopts a pet with instrumentation.
func (s *Service) CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CreatePet",
		attribute.String("pet.species", string(input.Species)),
		attribute.Bool("request.idempotent", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "adopting pet", slog.String("species", string(input.Species)), slog.String("owner", input.OwnerID))
	result, err := s.inner.CreatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to adopt pet", slog.String("owner", input.OwnerID))
	}
	if result != nil && result.Pet != nil {
		span.SetAttributes(attribute.String("pet.code", result.Pet.Code))
		s.metrics.recordCreated(ctx, result.Pet.Species)
		s.logInfo(ctx, "pet adopted", slog.String("pet.code", result.Pet.Code), slog.String("species", string(result.Pet.Species)))
	}
	return result, nil
}

// JoinPet adds a co-owner with instrumentation.
func (s *Service) JoinPet(ctx context.Context, input pettypes.JoinPetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.JoinPet", attribute.String("pet.code", input.Code))
	defer span.End()

	s.logInfo(ctx, "joining pet", slog.String("pet.code", input.Code), slog.String("owner", input.OwnerID))
	result, err := s.inner.JoinPet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to join pet", slog.String("pet.code", input.Code))
	}
	if result != nil && result.Pet != nil {
		s.metrics.recordJoined(ctx)
		s.logInfo(ctx, "pet joined", slog.String("pet.code", result.Pet.Code), slog.Int("owners", len(result.Pet.Owners)))
	}
	return result, nil
}

// GetPet loads a pet, settling decay, with instrumentation.
func (s *Service) GetPet(ctx context.Context, code string) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetPet", attribute.String("pet.code", code))
	defer span.End()

	result, err := s.inner.GetPet(ctx, code)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load pet", slog.String("pet.code", code))
	}
	if result != nil && result.DecayApplied > 0 {
		span.SetAttributes(attribute.Int("pet.decay", result.DecayApplied))
		s.metrics.recordDecayed(ctx, result.DecayApplied)
		s.logInfo(ctx, "pet stats decayed", slog.String("pet.code", code), slog.Int("decay", result.DecayApplied))
	}
	return result, nil
}

// ApplyAction performs an owner interaction with instrumentation.
func (s *Service) ApplyAction(ctx context.Context, input pettypes.ApplyActionInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ApplyAction",
		attribute.String("pet.code", input.Code),
		attribute.String("pet.action", string(input.Action)),
	)
	defer span.End()

	s.logInfo(ctx, "applying action", slog.String("pet.code", input.Code), slog.String("action", string(input.Action)))
	result, err := s.inner.ApplyAction(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply action", slog.String("pet.code", input.Code), slog.String("action", string(input.Action)))
	}
	if result != nil && result.Pet != nil {
		s.metrics.recordAction(ctx, input.Action)
		s.logInfo(ctx, "action applied",
			slog.String("pet.code", result.Pet.Code),
			slog.String("action", string(input.Action)),
			slog.Int("coins", result.Pet.Coins),
		)
	}
	return result, nil
}

// BuyAccessory spends coins with instrumentation.
func (s *Service) BuyAccessory(ctx context.Context, input pettypes.BuyAccessoryInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.BuyAccessory",
		attribute.String("pet.code", input.Code),
		attribute.Int64("accessory.id", int64(input.AccessoryID)),
	)
	defer span.End()

	s.logInfo(ctx, "buying accessory", slog.String("pet.code", input.Code), slog.Int64("accessory.id", int64(input.AccessoryID)))
	result, err := s.inner.BuyAccessory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to buy accessory", slog.String("pet.code", input.Code), slog.Int64("accessory.id", int64(input.AccessoryID)))
	}
	if result != nil && result.Purchased != nil {
		s.metrics.recordPurchase(ctx, *result.Purchased)
		s.logInfo(ctx, "accessory bought",
			slog.String("pet.code", input.Code),
			slog.String("accessory", result.Purchased.Name),
			slog.Int("coins", result.Pet.Coins),
		)
	}
	return result, nil
}

// Catalog lists the shop.
func (s *Service) Catalog(ctx context.Context, category domain.Category) ([]domain.Accessory, error) {
	ctx, span := s.startSpan(ctx, "Service.Catalog", attribute.String("accessory.category", string(category)))
	defer span.End()

	result, err := s.inner.Catalog(ctx, category)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list catalog", slog.String("category", string(category)))
	}
	span.SetAttributes(attribute.Int("accessory.result.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
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

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated metric.Int64Counter
	petsJoined  metric.Int64Counter
	actions     metric.Int64Counter
	purchases   metric.Int64Counter
	coinsSpent  metric.Int64Counter
	decayPoints metric.Int64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets adopted"))
	petsJoined, _ := m.Int64Counter("pets.service.joined", metric.WithDescription("Number of co-owners joined via code"))
	actions, _ := m.Int64Counter("pets.service.actions", metric.WithDescription("Number of owner actions applied"))
	purchases, _ := m.Int64Counter("pets.service.purchases", metric.WithDescription("Number of accessories bought"))
	coinsSpent, _ := m.Int64Counter("pets.service.coins_spent", metric.WithDescription("Coins spent in the shop"))
	decayPoints, _ := m.Int64Histogram("pets.service.decayed", metric.WithDescription("Per-stat decay settled on read"))
	return serviceMetrics{
		petsCreated: petsCreated,
		petsJoined:  petsJoined,
		actions:     actions,
		purchases:   purchases,
		coinsSpent:  coinsSpent,
		decayPoints: decayPoints,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, species domain.Species) {
	addCounter(ctx, m.petsCreated, 1, attribute.String("pet.species", string(species)))
}

func (m serviceMetrics) recordJoined(ctx context.Context) {
	addCounter(ctx, m.petsJoined, 1)
}

func (m serviceMetrics) recordAction(ctx context.Context, action domain.Action) {
	addCounter(ctx, m.actions, 1, attribute.String("pet.action", string(action)))
}

func (m serviceMetrics) recordPurchase(ctx context.Context, item domain.Accessory) {
	category := attribute.String("accessory.category", string(item.Category))
	addCounter(ctx, m.purchases, 1, category)
	addCounter(ctx, m.coinsSpent, int64(item.Price), category)
}

func (m serviceMetrics) recordDecayed(ctx context.Context, decay int) {
	if m.decayPoints == nil {
		return
	}
	m.decayPoints.Record(ctx, int64(decay))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
