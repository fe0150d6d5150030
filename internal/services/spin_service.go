package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/metrics"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/utils"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/logger"
)

// DefaultMaxAttempts bounds the draws made for one spin when counters change underneath it
const DefaultMaxAttempts = 3

// Compile-time check to ensure SpinServiceImpl implements SpinService
var _ SpinService = (*SpinServiceImpl)(nil)

// SpinServiceImpl allocates prizes to participants
type SpinServiceImpl struct {
	participants repositories.ParticipantRepository
	catalog      repositories.PrizeCatalogRepository
	locker       IdentityLocker
	mirror       StatsMirror
	rng          RandomSource
	now          func() time.Time
	maxAttempts  int
}

// NewSpinService creates a new SpinServiceImpl
func NewSpinService(
	participants repositories.ParticipantRepository,
	catalog repositories.PrizeCatalogRepository,
	locker IdentityLocker,
	mirror StatsMirror,
	maxAttempts int,
) *SpinServiceImpl {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if mirror == nil {
		mirror = NoopMirror{}
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &SpinServiceImpl{
		participants: participants,
		catalog:      catalog,
		locker:       locker,
		mirror:       mirror,
		rng:          NewRandomSource(),
		now:          time.Now,
		maxAttempts:  maxAttempts,
	}
}

// WithRandomSource replaces the random source used for draws
func (s *SpinServiceImpl) WithRandomSource(rng RandomSource) *SpinServiceImpl {
	s.rng = rng
	return s
}

// WithClock replaces the clock used for timestamps and award dates
func (s *SpinServiceImpl) WithClock(now func() time.Time) *SpinServiceImpl {
	s.now = now
	return s
}

// Spin returns the participant's prize. The first call for an identity draws and records
// a prize; every later call returns the recorded one without touching inventory.
func (s *SpinServiceImpl) Spin(ctx context.Context, identity string) (*models.SpinResult, error) {
	started := time.Now()

	// 1. Normalize identity before any collaborator call
	phone, err := utils.NormalizePhone(identity)
	if err != nil {
		metrics.RecordSpin(metrics.OutcomeError, started)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result, outcome, err := s.spin(ctx, phone)
	if err != nil {
		metrics.RecordSpin(metrics.OutcomeError, started)
		return nil, err
	}
	metrics.RecordSpin(outcome, started)
	return result, nil
}

func (s *SpinServiceImpl) spin(ctx context.Context, phone string) (*models.SpinResult, string, error) {
	masked := utils.MaskMSISDN(phone)

	// 2. Serialize allocations for this identity
	unlock, err := s.locker.Lock(ctx, phone)
	if err != nil {
		return nil, "", upstreamError(ctx, "lockIdentity", err)
	}
	defer unlock()

	// 3. Find or create the participant
	participant, err := s.participants.FindByIdentity(ctx, phone)
	if errors.Is(err, repositories.ErrNotFound) {
		participant, err = s.participants.Create(ctx, phone)
	}
	if err != nil {
		return nil, "", upstreamError(ctx, "findOrCreateParticipant", err)
	}

	// 4. Replay a recorded outcome
	if participant.HasPlayed {
		logger.InfoCtx(ctx, "Participant already played", zap.String("phone", masked))
		return replay(participant), metrics.OutcomeAlreadyPlayed, nil
	}

	// 5. Draw and apply the award against a fresh snapshot
	snapshot, prize, fallback, err := s.allocate(ctx)
	if err != nil {
		return nil, "", err
	}

	// 6. Persist the played marker
	marker := models.AwardMarker{
		PrizeID: prize.ID,
		Label:   prize.Label,
		Date:    prize.UpdatedAt.UTC().Format(models.AwardDateLayout),
		Number:  prize.TotalDistributed,
	}
	if err := s.participants.RecordAward(ctx, participant.ID, marker); err != nil {
		if errors.Is(err, repositories.ErrAlreadyRecorded) {
			logger.WarnCtx(ctx, "Concurrent spin recorded first; inventory consumed by this attempt is not returned",
				zap.String("phone", masked), zap.String("prizeId", prize.ID), zap.Int("number", marker.Number))
			existing, findErr := s.participants.FindByIdentity(ctx, phone)
			if findErr != nil {
				return nil, "", upstreamError(ctx, "findParticipant", findErr)
			}
			return replay(existing), metrics.OutcomeAlreadyPlayed, nil
		}
		logger.ErrorCtx(ctx, "Partial spin: inventory updated but participant marker not written",
			zap.String("phone", masked), zap.String("prizeId", prize.ID), zap.Int("number", marker.Number), zap.Error(err))
		return nil, "", upstreamError(ctx, "recordAward", err)
	}

	metrics.RecordAward(prize.ID)
	publishStats(ctx, s.mirror, "spin", buildSnapshot(snapshot, prize.UpdatedAt))

	logger.InfoCtx(ctx, "Prize awarded",
		zap.String("phone", masked),
		zap.String("prizeId", prize.ID),
		zap.Int("number", marker.Number),
		zap.Bool("fallback", fallback),
	)

	outcome := metrics.OutcomeAwarded
	if fallback {
		outcome = metrics.OutcomeFallback
	}
	return &models.SpinResult{
		AlreadyPlayed: false,
		Prize:         models.SpinPrizeFromMarker(&marker),
	}, outcome, nil
}

// allocate draws a prize and writes its counters, redrawing from a fresh snapshot when
// the counters changed between the read and the write. On success the returned snapshot
// reflects the write.
func (s *SpinServiceImpl) allocate(ctx context.Context) ([]*models.Prize, *models.Prize, bool, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		catalog, err := loadCatalog(ctx, s.catalog)
		if err != nil {
			return nil, nil, false, err
		}

		prize, fallback := Draw(catalog, s.rng)
		update := applyAward(prize, s.now().UTC())

		err = s.catalog.WriteCounters(ctx, prize.Ref, update)
		if errors.Is(err, repositories.ErrStaleCounter) || errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordRetry()
			logger.DebugCtx(ctx, "Prize counters changed, redrawing",
				zap.String("prizeId", prize.ID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, nil, false, upstreamError(ctx, "writeCounters", err)
		}

		prize.Remaining = update.Remaining
		prize.TotalDistributed = update.TotalDistributed
		prize.UpdatedAt = update.UpdatedAt
		prize.Version = update.ExpectedVersion + 1
		return catalog, prize, fallback, nil
	}

	logger.ErrorCtx(ctx, "Prize counters kept changing, giving up", zap.Int("attempts", s.maxAttempts))
	return nil, nil, false, fmt.Errorf("%w: writeCounters: %w after %d attempts",
		ErrUpstreamUnavailable, repositories.ErrStaleCounter, s.maxAttempts)
}

// GetParticipant returns the participant's recorded state without side effects
func (s *SpinServiceImpl) GetParticipant(ctx context.Context, identity string) (*models.ParticipantResult, error) {
	phone, err := utils.NormalizePhone(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	participant, err := s.participants.FindByIdentity(ctx, phone)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.ParticipantResult{Found: false}, nil
	}
	if err != nil {
		return nil, upstreamError(ctx, "findParticipant", err)
	}

	played := participant.HasPlayed
	result := &models.ParticipantResult{Found: true, HasPlayed: &played}
	if participant.Award != nil {
		prize := models.SpinPrizeFromMarker(participant.Award)
		result.Prize = &prize
	}
	return result, nil
}

func replay(p *models.Participant) *models.SpinResult {
	result := &models.SpinResult{AlreadyPlayed: true}
	if p.Award != nil {
		result.Prize = models.SpinPrizeFromMarker(p.Award)
	}
	return result
}

// loadCatalog reads and validates one snapshot
func loadCatalog(ctx context.Context, catalog repositories.PrizeCatalogRepository) ([]*models.Prize, error) {
	prizes, err := catalog.LoadAll(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrMalformed) {
			logger.ErrorCtx(ctx, "Prize catalog is malformed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return nil, upstreamError(ctx, "loadCatalog", err)
	}
	if err := ValidateCatalog(prizes); err != nil {
		logger.ErrorCtx(ctx, "Prize catalog is invalid", zap.Error(err))
		return nil, err
	}
	return prizes, nil
}

// upstreamError logs a failed collaborator call and wraps it as ErrUpstreamUnavailable
func upstreamError(ctx context.Context, op string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	var ue *repositories.UpstreamError
	if errors.As(err, &ue) {
		fields = append(fields, zap.String("target", ue.Target), zap.Int("status", ue.Status))
	}
	logger.ErrorCtx(ctx, "Backing store call failed", fields...)
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
}
