package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"rentals/internal/availability"
	"rentals/internal/locking"
	"rentals/internal/metrics"
	reservationserrors "rentals/internal/reservations/errors"
	"rentals/internal/reservations/events"
	"rentals/internal/reservations/payment"
	"rentals/internal/reservations/repository"
	resourceserrors "rentals/internal/resources/errors"
	"rentals/pkg/clock"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

const (
	defaultCheckConcurrency = 8
	// DefaultMaxStay bounds the length of any checked or held interval.
	DefaultMaxStay = 366 * 24 * time.Hour
)

var tracer = otel.Tracer("rentals/internal/reservations")

// Locker is the conflict-avoidance lock as seen by the workflow.
type Locker interface {
	Hold(ctx context.Context, resourceID string, start, end time.Time, ttl time.Duration) (*locking.Lease, error)
	Validate(ctx context.Context, lease *locking.Lease) error
	// Claim consumes the lease; only one caller per lease succeeds.
	Claim(ctx context.Context, lease *locking.Lease) error
	Release(ctx context.Context, lease *locking.Lease) error
}

type ResourceFinder interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
}

type RequestInput struct {
	Resource *model.Resource
	GuestID  string
	CheckIn  time.Time
	CheckOut time.Time
	// Reservations are the current reservations of Resource. Entries for
	// other resources and non-confirmed entries are ignored.
	Reservations []*model.Reservation
}

type CommitInput struct {
	Amount           float64
	PaymentReference string
}

type ReservationService interface {
	CheckAvailability(ctx context.Context, resourceID string, checkIn, checkOut time.Time) (availability.Verdict, error)
	CheckMany(ctx context.Context, resourceIDs []string, checkIn, checkOut time.Time) (map[string]bool, error)
	// Request runs REQUESTED -> LOCKED against the given reservation set.
	Request(ctx context.Context, in RequestInput) (*PendingHandle, error)
	// RequestForResource loads the resource and its confirmed reservations, then calls Request.
	RequestForResource(ctx context.Context, req *model.HoldRequest) (*PendingHandle, error)
	Commit(ctx context.Context, handle *PendingHandle, in CommitInput) (*model.Reservation, error)
	Release(ctx context.Context, handle *PendingHandle) error
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	resources ResourceFinder
	locker    Locker
	payments  payment.Verifier
	publisher events.Publisher
	engine    *availability.Engine
	clock     clock.Clock
	ttl       time.Duration
	maxStay   time.Duration
	limit     int
	log       *logger.Logger
}

type Option func(*reservationService)

func WithEngine(engine *availability.Engine) Option {
	return func(s *reservationService) {
		s.engine = engine
	}
}

func WithClock(clk clock.Clock) Option {
	return func(s *reservationService) {
		s.clock = clk
	}
}

// WithHoldTTL sets the lock TTL requested per hold; zero defers to the locker.
func WithHoldTTL(ttl time.Duration) Option {
	return func(s *reservationService) {
		s.ttl = ttl
	}
}

// WithMaxStay caps check_out - check_in for checks and holds.
func WithMaxStay(d time.Duration) Option {
	return func(s *reservationService) {
		if d > 0 {
			s.maxStay = d
		}
	}
}

// WithCheckConcurrency bounds how many resources CheckMany evaluates at once.
func WithCheckConcurrency(n int) Option {
	return func(s *reservationService) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewReservationService(
	repo repository.ReservationRepository,
	resources ResourceFinder,
	locker Locker,
	payments payment.Verifier,
	publisher events.Publisher,
	log *logger.Logger,
	opts ...Option,
) ReservationService {
	s := &reservationService{
		repo:      repo,
		resources: resources,
		locker:    locker,
		payments:  payments,
		publisher: publisher,
		engine:    availability.NewEngine(),
		clock:     clock.NewSystem(),
		maxStay:   DefaultMaxStay,
		limit:     defaultCheckConcurrency,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	return s
}

func (s *reservationService) CheckAvailability(ctx context.Context, resourceID string, checkIn, checkOut time.Time) (availability.Verdict, error) {
	if err := s.checkRange(checkIn, checkOut); err != nil {
		return availability.Verdict{}, err
	}
	res, err := s.findResource(ctx, resourceID)
	if err != nil {
		return availability.Verdict{}, err
	}
	reservations, err := s.loadConfirmed(ctx, res, checkIn, checkOut)
	if err != nil {
		return availability.Verdict{}, err
	}
	return s.engine.Check(res, checkIn, checkOut, reservations), nil
}

// CheckMany reports availability per resource. Unknown resources map to false.
func (s *reservationService) CheckMany(ctx context.Context, resourceIDs []string, checkIn, checkOut time.Time) (map[string]bool, error) {
	if err := s.checkRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	results := make([]bool, len(resourceIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, id := range resourceIDs {
		i, id := i, id
		g.Go(func() error {
			verdict, err := s.CheckAvailability(gctx, id, checkIn, checkOut)
			if err != nil {
				if apperrors.HasCode(err, apperrors.CodeNotFound) {
					return nil
				}
				return err
			}
			results[i] = verdict.Available
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(resourceIDs))
	for i, id := range resourceIDs {
		out[id] = results[i]
	}
	return out, nil
}

func (s *reservationService) Request(ctx context.Context, in RequestInput) (*PendingHandle, error) {
	ctx, span := tracer.Start(ctx, "reservations.Request")
	defer span.End()

	handle, err := s.request(ctx, in)
	outcome := requestOutcome(err)
	metrics.ReservationRequestsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("reservation.state", string(StateOf(err))))
	if err != nil && outcome == "error" {
		recordError(span, err)
	}
	return handle, err
}

func (s *reservationService) request(ctx context.Context, in RequestInput) (*PendingHandle, error) {
	if in.Resource == nil {
		return nil, apperrors.InvalidInput("Resource is required")
	}
	res := in.Resource
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("resource.id", res.ID),
		attribute.String("resource.kind", string(res.Kind)),
	)

	state := StateRequested
	if err := s.checkRange(in.CheckIn, in.CheckOut); err != nil {
		return nil, err
	}

	verdict := s.engine.Check(res, in.CheckIn, in.CheckOut, forResource(res.ID, in.Reservations))
	if !verdict.Available {
		if err := transition(state, StateRejected); err != nil {
			return nil, err
		}
		s.log.Info("Reservation request rejected",
			"resource_id", res.ID,
			"check_in", in.CheckIn,
			"check_out", in.CheckOut,
			"reason", verdict.Reason,
		)
		return nil, unavailable(res.ID, verdict)
	}

	lease, err := s.locker.Hold(ctx, res.ID, in.CheckIn, in.CheckOut, s.ttl)
	if err != nil {
		if errors.Is(err, locking.ErrLockHeld) {
			if err := transition(state, StateLockConflict); err != nil {
				return nil, err
			}
			s.log.Info("Reservation window held by another request",
				"resource_id", res.ID,
				"check_in", in.CheckIn,
				"check_out", in.CheckOut,
			)
			return nil, apperrors.LockConflict(res.ID, reservationserrors.ErrLockConflict)
		}
		s.log.Error("Failed to acquire reservation lock", "resource_id", res.ID, "error", err)
		return nil, apperrors.Internal("Failed to hold reservation window", err)
	}

	if err := transition(state, StateLocked); err != nil {
		return nil, err
	}
	s.log.Info("Reservation window locked",
		"resource_id", res.ID,
		"guest_id", in.GuestID,
		"expires_at", lease.ExpiresAt,
	)
	return &PendingHandle{
		Resource: *res,
		GuestID:  in.GuestID,
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Lease:    *lease,
		State:    StateLocked,
	}, nil
}

func (s *reservationService) RequestForResource(ctx context.Context, req *model.HoldRequest) (*PendingHandle, error) {
	if err := s.checkRange(req.CheckIn, req.CheckOut); err != nil {
		metrics.ReservationRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	res, err := s.findResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.loadConfirmed(ctx, res, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	return s.Request(ctx, RequestInput{
		Resource:     res,
		GuestID:      req.GuestID,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Reservations: reservations,
	})
}

// Commit turns a LOCKED hold into a confirmed reservation. The lease is
// validated before payment and claimed after it, so copies of one handle
// cannot commit twice. The availability rule is re-run inside the write
// transaction, after the resource fence, because a lock only excludes requests
// for the identical interval.
func (s *reservationService) Commit(ctx context.Context, handle *PendingHandle, in CommitInput) (*model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "reservations.Commit")
	defer span.End()

	reservation, outcome, err := s.commit(ctx, handle, in)
	metrics.ReservationCommitsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("reservation.commit.outcome", outcome))
	if err != nil && outcome == "error" {
		recordError(span, err)
	}
	return reservation, err
}

func (s *reservationService) commit(ctx context.Context, handle *PendingHandle, in CommitInput) (*model.Reservation, string, error) {
	if handle == nil || !handle.matchesLease() {
		return nil, "invalid", apperrors.InvalidInput("Invalid reservation handle").WithCause(reservationserrors.ErrInvalidHandle)
	}
	if err := transition(handle.State, StateConfirmed); err != nil {
		return nil, "invalid", apperrors.Conflict("Reservation hold is no longer pending").WithCause(err)
	}
	res := &handle.Resource
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("resource.id", res.ID))

	if err := s.validateLease(ctx, handle); err != nil {
		return nil, "expired", err
	}

	err := s.payments.Verify(ctx, payment.Charge{
		ResourceID: res.ID,
		GuestID:    handle.GuestID,
		Amount:     in.Amount,
		Reference:  in.PaymentReference,
	})
	if err != nil {
		s.log.Warn("Payment verification failed", "resource_id", res.ID, "guest_id", handle.GuestID, "error", err)
		return nil, "declined", apperrors.PaymentDeclined(fmt.Errorf("%w: %w", reservationserrors.ErrPaymentDeclined, err))
	}

	if err := s.claimLease(ctx, handle); err != nil {
		return nil, "expired", err
	}

	reservation, err := model.NewReservation(uuid.NewString(), handle.GuestID, res.ID, handle.CheckIn, handle.CheckOut, model.StatusConfirmed)
	if err != nil {
		handle.State = StateReleased
		return nil, "invalid", apperrors.InvalidRange(err.Error()).WithCause(err)
	}
	reservation.CreatedAt = s.clock.Now().Truncate(time.Millisecond)

	var verdict availability.Verdict
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Fence(txCtx, res.ID); err != nil {
			return err
		}
		existing, err := s.loadConfirmed(txCtx, res, handle.CheckIn, handle.CheckOut)
		if err != nil {
			return err
		}
		verdict = s.engine.Check(res, handle.CheckIn, handle.CheckOut, existing)
		if !verdict.Available {
			return reservationserrors.ErrUnavailable
		}
		if err := s.repo.Save(txCtx, reservation); err != nil {
			return apperrors.Internal("Failed to save reservation", err)
		}
		return nil
	})
	if errors.Is(err, reservationserrors.ErrUnavailable) {
		handle.State = StateReleased
		s.log.Warn("Reservation window taken before commit",
			"resource_id", res.ID,
			"check_in", handle.CheckIn,
			"check_out", handle.CheckOut,
			"reason", verdict.Reason,
		)
		return nil, "unavailable", unavailable(res.ID, verdict)
	}
	if err != nil {
		handle.State = StateReleased
		s.log.Error("Failed to commit reservation", "resource_id", res.ID, "key", handle.Lease.Key, "error", err)
		return nil, "error", apperrors.AsAppError(err)
	}

	handle.State = StateConfirmed
	s.log.Info("Reservation confirmed",
		"id", reservation.ID,
		"resource_id", reservation.ResourceID,
		"guest_id", reservation.GuestID,
		"check_in", reservation.CheckIn,
		"check_out", reservation.CheckOut,
	)
	s.publish(ctx, events.TypeConfirmed, reservation)
	return reservation, "confirmed", nil
}

// validateLease fails a commit whose hold expired, was released, or was
// taken over by another request.
func (s *reservationService) validateLease(ctx context.Context, handle *PendingHandle) error {
	err := s.locker.Validate(ctx, &handle.Lease)
	if err == nil {
		return nil
	}
	if errors.Is(err, locking.ErrLeaseLost) {
		s.log.Info("Reservation hold expired before commit", "key", handle.Lease.Key)
		return apperrors.LockExpired(fmt.Errorf("%w: %w", reservationserrors.ErrLockExpired, err))
	}
	return apperrors.Internal("Failed to validate reservation hold", err)
}

// claimLease consumes the hold. Of several commits racing on copies of one
// handle, the losers see ErrLockExpired.
func (s *reservationService) claimLease(ctx context.Context, handle *PendingHandle) error {
	err := s.locker.Claim(ctx, &handle.Lease)
	if err == nil {
		return nil
	}
	if errors.Is(err, locking.ErrLeaseLost) {
		s.log.Info("Reservation hold lost before commit", "key", handle.Lease.Key)
		return apperrors.LockExpired(fmt.Errorf("%w: %w", reservationserrors.ErrLockExpired, err))
	}
	return apperrors.Internal("Failed to claim reservation hold", err)
}

func (s *reservationService) Release(ctx context.Context, handle *PendingHandle) error {
	if handle == nil {
		return apperrors.InvalidInput("Invalid reservation handle").WithCause(reservationserrors.ErrInvalidHandle)
	}
	if err := transition(handle.State, StateReleased); err != nil {
		return apperrors.Conflict("Reservation hold is no longer pending").WithCause(err)
	}
	if err := s.locker.Release(ctx, &handle.Lease); err != nil {
		return apperrors.Internal("Failed to release reservation hold", err)
	}
	handle.State = StateReleased
	s.log.Info("Reservation hold released", "resource_id", handle.Resource.ID, "key", handle.Lease.Key)
	return nil
}

func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := reservation.Status
	if err := reservation.Transition(model.StatusCancelled); err != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("Reservation cannot be cancelled from status %s", from)).WithCause(err)
	}
	if err := s.repo.UpdateStatus(ctx, id, from, model.StatusCancelled); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidTransition) {
			return nil, apperrors.Conflict("Reservation status changed concurrently").WithCause(err)
		}
		s.log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel reservation", err)
	}

	s.log.Info("Reservation cancelled", "id", id, "resource_id", reservation.ResourceID)
	s.publish(ctx, events.TypeCancelled, reservation)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

// publish reports the event best effort; the reservation is already durable.
func (s *reservationService) publish(ctx context.Context, t events.Type, r *model.Reservation) {
	if err := s.publisher.Publish(ctx, events.NewEvent(t, r, s.clock.Now())); err != nil {
		s.log.Error("Failed to publish reservation event", "type", t, "id", r.ID, "error", err)
	}
}

func (s *reservationService) findResource(ctx context.Context, id string) (*model.Resource, error) {
	res, err := s.resources.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id).WithCause(reservationserrors.ErrResourceNotFound)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return res, nil
}

func (s *reservationService) loadConfirmed(ctx context.Context, res *model.Resource, checkIn, checkOut time.Time) ([]*model.Reservation, error) {
	reservations, err := s.repo.LoadConfirmed(ctx, res.ID, lookback(res, checkIn), checkOut)
	if err != nil {
		return nil, apperrors.Internal("Failed to load reservations", err)
	}
	return reservations, nil
}

// lookback is the earliest check-out that can still affect [checkIn, ...):
// a house stay blocks its cleaning buffer, a center stay blocks whole days.
func lookback(res *model.Resource, checkIn time.Time) time.Time {
	if res.Kind == model.KindUniqueHouse {
		return checkIn.Add(-res.CleaningBuffer)
	}
	y, m, d := checkIn.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, checkIn.Location())
}

func forResource(resourceID string, reservations []*model.Reservation) []*model.Reservation {
	out := make([]*model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r != nil && r.ResourceID == resourceID {
			out = append(out, r)
		}
	}
	return out
}

// checkRange rejects inverted intervals and stays longer than maxStay before
// any per-day work is done for them.
func (s *reservationService) checkRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return invalidRange(checkIn, checkOut)
	}
	if checkOut.Sub(checkIn) > s.maxStay {
		return apperrors.InvalidRange(fmt.Sprintf("stay cannot exceed %d days", int(s.maxStay.Hours()/24))).
			WithDetails(map[string]any{"check_in": checkIn, "check_out": checkOut, "max_stay": s.maxStay.String()}).
			WithCause(model.ErrStayTooLong)
	}
	return nil
}

func invalidRange(checkIn, checkOut time.Time) error {
	return apperrors.InvalidRange("check_out must be after check_in").
		WithDetails(map[string]any{"check_in": checkIn, "check_out": checkOut}).
		WithCause(model.ErrInvalidRange)
}

func unavailable(resourceID string, verdict availability.Verdict) error {
	err := apperrors.ResourceUnavailable(resourceID, string(verdict.Reason)).WithCause(reservationserrors.ErrUnavailable)
	if verdict.Conflict != nil {
		err.Details["conflict_check_in"] = verdict.Conflict.CheckIn
		err.Details["conflict_check_out"] = verdict.Conflict.CheckOut
	}
	if !verdict.FullDay.IsZero() {
		err.Details["full_day"] = verdict.FullDay
		err.Details["occupancy"] = verdict.Occupancy
	}
	return err
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return "locked"
	case errors.Is(err, reservationserrors.ErrUnavailable):
		return "rejected"
	case errors.Is(err, reservationserrors.ErrLockConflict):
		return "lock_conflict"
	case errors.Is(err, model.ErrInvalidRange), errors.Is(err, model.ErrStayTooLong), apperrors.HasCode(err, apperrors.CodeInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
