package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courthive/tods-scheduling-api/internal/dto"
	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
)

type schedulingMatchUpLister interface {
	ListInContext(ctx context.Context, tournamentID string) ([]models.MatchUp, error)
	ListByDraw(ctx context.Context, tournamentID, drawID string) ([]models.MatchUp, error)
}

type schedulingVenueLister interface {
	ListWithCourts(ctx context.Context, tournamentID string) ([]models.Venue, error)
}

type schedulingProfileReader interface {
	FindByTournamentAndDate(ctx context.Context, tournamentID, date string) (*models.SchedulingProfile, error)
}

type personRequestLister interface {
	ListByType(ctx context.Context, tournamentID string, requestType models.RequestType) (map[string][]models.PersonRequest, error)
}

type scheduleCommitSink interface {
	CommitSchedule(ctx context.Context, commits []models.ScheduleCommit) error
}

// SchedulingConfig bounds the assignment loop. The dual caps are hard
// termination requirements: slot availability, dependency satisfaction, and
// recovery windows interact non-monotonically across venues sharing
// participants, so a single pass cannot converge and an unbounded loop
// cannot be trusted to terminate.
type SchedulingConfig struct {
	SlotAttemptCap         int
	IterationCap           int
	PeriodMinutes          int
	DefaultAverageMinutes  int
	DefaultRecoveryMinutes int
}

// SchedulingService runs the greedy multi-venue scheduling loop.
type SchedulingService struct {
	matchUps  schedulingMatchUpLister
	venues    schedulingVenueLister
	profiles  schedulingProfileReader
	requests  personRequestLister
	commits   scheduleCommitSink
	metrics   *MetricsService
	cache     *CacheService
	auditTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SchedulingConfig
}

// NewSchedulingService wires scheduling dependencies.
func NewSchedulingService(
	matchUps schedulingMatchUpLister,
	venues schedulingVenueLister,
	profiles schedulingProfileReader,
	requests personRequestLister,
	commits scheduleCommitSink,
	metrics *MetricsService,
	cache *CacheService,
	auditTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SchedulingConfig,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlotAttemptCap <= 0 {
		cfg.SlotAttemptCap = 10
	}
	if cfg.IterationCap <= 0 {
		cfg.IterationCap = 10
	}
	if cfg.DefaultAverageMinutes <= 0 {
		cfg.DefaultAverageMinutes = fallbackAverageMinutes
	}
	if auditTTL <= 0 {
		auditTTL = 24 * time.Hour
	}
	return &SchedulingService{
		matchUps:  matchUps,
		venues:    venues,
		profiles:  profiles,
		requests:  requests,
		commits:   commits,
		metrics:   metrics,
		cache:     cache,
		auditTTL:  auditTTL,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

func runCacheKey(runID string) string {
	return "runs:" + runID
}

// RunInput is the immutable snapshot a single-date run operates on. All
// inputs are loaded up front; the engine performs no I/O mid-algorithm.
type RunInput struct {
	RunID    string
	Date     string
	Profile  models.SchedulingProfile
	MatchUps []models.MatchUp
	Venues   []models.Venue
	Policy   models.TimingPolicy
	Requests map[string][]models.PersonRequest
	Limits   models.DailyLimits
}

// schedulingContext is the explicit per-run mutable state threaded through
// the loop; there is no ambient state.
type schedulingContext struct {
	date           string
	graph          map[string]*DependencyRecord
	tracker        *LoadTracker
	resolver       *TimingResolver
	byID           map[string]*models.MatchUp
	scheduledTimes map[string]int
	requests       map[string][]models.PersonRequest
	audit          *models.SchedulingAudit
	overLimit      map[string]bool
}

// venueRun is one venue's slot queue and pending matchUps for the date.
type venueRun struct {
	venue       *models.Venue
	courtsCount int
	active      []*slot
	deferred    []*slot
	pending     []*models.MatchUp
	committed   []commitWindow
	abandoned   int
}

// commitWindow is the court time consumed by one commitment this run.
type commitWindow struct {
	start int
	end   int
}

func (vr *venueRun) complete() bool {
	return len(vr.pending) == 0 || (len(vr.active) == 0 && len(vr.deferred) == 0)
}

// slotCapacity is the number of courts able to host the window: courts whose
// availability covers it and are free of existing bookings, minus courts
// still occupied by commitments from this run that overlap the window.
func (vr *venueRun) slotCapacity(date string, start, end int) int {
	capacity := bookingCapacity(vr.venue, date, start, end)
	for _, w := range vr.committed {
		if start < w.end && w.start < end {
			capacity--
		}
	}
	return capacity
}

// Run executes the scheduling loop for a tournament date using stored
// inputs, persists commits through the sink, and returns the audit.
func (s *SchedulingService) Run(ctx context.Context, req dto.RunScheduleRequest) (*models.SchedulingAudit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling run payload")
	}

	loadStart := time.Now()
	profile, err := s.profiles.FindByTournamentAndDate(ctx, req.TournamentID, req.Date)
	if err != nil {
		return nil, err
	}

	matchUps, err := s.matchUps.ListInContext(ctx, req.TournamentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load matchUps")
	}

	venues, err := s.venues.ListWithCourts(ctx, req.TournamentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venues")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("scheduling_run_inputs", time.Since(loadStart))
	}

	requests := map[string][]models.PersonRequest{}
	if s.requests != nil {
		requests, err = s.requests.ListByType(ctx, req.TournamentID, models.RequestDoNotSchedule)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person requests")
		}
	}

	start := time.Now()
	audit, err := s.RunDate(RunInput{
		RunID:    req.RunID,
		Date:     req.Date,
		Profile:  *profile,
		MatchUps: matchUps,
		Venues:   venues,
		Policy:   req.Policy,
		Requests: requests,
		Limits:   req.DailyLimits,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveSchedulingRun(len(audit.ScheduledMatchUpIDs), len(audit.NoTimeMatchUpIDs), time.Since(start))
	}

	if !req.DryRun && s.commits != nil && len(audit.Commits) > 0 {
		if err := s.commits.CommitSchedule(ctx, audit.Commits); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule commits")
		}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, runCacheKey(audit.RunID), audit, s.auditTTL)
	}

	return audit, nil
}

// Annotate classifies conflicts in the arranged schedule of one date.
func (s *SchedulingService) Annotate(ctx context.Context, req dto.AnnotateScheduleRequest) (*models.AnnotationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid annotation payload")
	}

	matchUps, err := s.matchUps.ListInContext(ctx, req.TournamentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load matchUps")
	}

	var arranged []models.MatchUp
	for _, m := range matchUps {
		if m.Schedule != nil && m.Schedule.Date == req.Date {
			arranged = append(arranged, m)
		}
	}

	return NewConflictAnnotator().Annotate(arranged), nil
}

// ScheduleGrid runs the row-by-row grid assignment over one draw.
func (s *SchedulingService) ScheduleGrid(ctx context.Context, req dto.GridScheduleRequest) (*models.GridResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grid payload")
	}

	matchUps, err := s.matchUps.ListByDraw(ctx, req.TournamentID, req.DrawID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draw matchUps")
	}

	return NewGridScheduler().Schedule(matchUps, req.CourtIDs, req.Rows), nil
}

// GetRun returns a recent run's audit from the run cache.
func (s *SchedulingService) GetRun(ctx context.Context, runID string) (*models.SchedulingAudit, error) {
	if s.cache == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run cache disabled")
	}
	var audit models.SchedulingAudit
	hit, err := s.cache.Get(ctx, runCacheKey(runID), &audit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read run cache")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found or expired")
	}
	return &audit, nil
}

// RunDate runs the per-date state machine over an in-memory snapshot:
// Initializing (graph, timing, slots), Assigning (bounded passes),
// Settling (audit). Structural problems return typed errors before any
// assignment; per-matchUp constraint failures are audit data only.
func (s *SchedulingService) RunDate(input RunInput) (*models.SchedulingAudit, error) {
	if !models.ValidDate(input.Date) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "scheduling date must be YYYY-MM-DD")
	}
	if len(input.Venues) == 0 {
		return nil, appErrors.ErrNoVenues
	}
	if len(input.MatchUps) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingDependencies, "no matchUps provided for scheduling")
	}

	venuesByID := make(map[string]*models.Venue, len(input.Venues))
	for i := range input.Venues {
		venuesByID[input.Venues[i].ID] = &input.Venues[i]
	}

	// Profile rows naming unknown venues are filtered, not fatal.
	var rows []models.VenueProfile
	for _, row := range input.Profile.Venues {
		if _, ok := venuesByID[row.VenueID]; ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, appErrors.ErrEmptyProfile
	}

	resolver := NewTimingResolver(input.Policy, s.cfg.DefaultAverageMinutes, s.cfg.DefaultRecoveryMinutes, s.logger)

	runID := input.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	sc := &schedulingContext{
		date:           input.Date,
		graph:          BuildDependencyGraph(input.MatchUps, nil, true),
		tracker:        NewLoadTracker(input.Limits),
		resolver:       resolver,
		byID:           make(map[string]*models.MatchUp, len(input.MatchUps)),
		scheduledTimes: make(map[string]int),
		requests:       input.Requests,
		overLimit:      make(map[string]bool),
		audit: &models.SchedulingAudit{
			RunID:          runID,
			Date:           input.Date,
			RemainingSlots: make(map[string][]string),
			AbandonedSlots: make(map[string]int),
		},
	}
	for i := range input.MatchUps {
		m := &input.MatchUps[i]
		sc.byID[m.ID] = m
	}

	runs := s.initVenueRuns(sc, rows, venuesByID, resolver)

	iterations := 0
	for ; iterations < s.cfg.IterationCap; iterations++ {
		allComplete := true
		for _, vr := range runs {
			if !vr.complete() {
				allComplete = false
			}
		}
		if allComplete {
			break
		}

		for _, vr := range runs {
			s.assignPass(sc, vr, resolver)
		}

		for _, vr := range runs {
			if len(vr.deferred) > 0 {
				vr.active = append(vr.active, vr.deferred...)
				vr.deferred = nil
				sort.Slice(vr.active, func(i, j int) bool { return vr.active[i].start < vr.active[j].start })
			}
		}
	}

	s.settle(sc, runs)
	sc.audit.Iterations = iterations
	sc.audit.GeneratedAt = time.Now().UTC()

	s.logger.Info("scheduling run settled",
		zap.String("date", input.Date),
		zap.String("run_id", sc.audit.RunID),
		zap.Int("scheduled", len(sc.audit.ScheduledMatchUpIDs)),
		zap.Int("no_time", len(sc.audit.NoTimeMatchUpIDs)),
		zap.Int("iterations", iterations),
	)

	return sc.audit, nil
}

// initVenueRuns builds, per profile row, the venue's slot queue and its
// pending matchUps in declared profile order.
func (s *SchedulingService) initVenueRuns(
	sc *schedulingContext,
	rows []models.VenueProfile,
	venuesByID map[string]*models.Venue,
	resolver *TimingResolver,
) []*venueRun {
	claimed := make(map[string]bool)
	var runs []*venueRun

	for _, row := range rows {
		venue := venuesByID[row.VenueID]

		var pending []*models.MatchUp
		var periodAverage, periodRecovery int
		for _, round := range row.Rounds {
			var roundMatchUps []*models.MatchUp
			for _, m := range sc.byID {
				if claimed[m.ID] || m.Status != models.StatusToBePlayed {
					continue
				}
				if m.Schedule != nil && m.Schedule.StartTime != "" {
					continue
				}
				if round.CoversRound(m) {
					roundMatchUps = append(roundMatchUps, m)
				}
			}
			sort.Slice(roundMatchUps, func(i, j int) bool {
				if roundMatchUps[i].RoundNumber != roundMatchUps[j].RoundNumber {
					return roundMatchUps[i].RoundNumber < roundMatchUps[j].RoundNumber
				}
				if roundMatchUps[i].RoundPosition != roundMatchUps[j].RoundPosition {
					return roundMatchUps[i].RoundPosition < roundMatchUps[j].RoundPosition
				}
				return roundMatchUps[i].ID < roundMatchUps[j].ID
			})
			for _, m := range roundMatchUps {
				claimed[m.ID] = true
				pending = append(pending, m)
				timing := resolver.ResolveMatchUp(m)
				if timing.AverageMinutes > periodAverage {
					periodAverage = timing.AverageMinutes
					periodRecovery = timing.RecoveryMinutes
				}
			}
		}
		if periodAverage == 0 {
			periodAverage = s.cfg.DefaultAverageMinutes
			periodRecovery = s.cfg.DefaultRecoveryMinutes
		}

		runs = append(runs, &venueRun{
			venue:       venue,
			courtsCount: len(venue.AvailableCourts(sc.date)),
			active:      generateSlots(venue, sc.date, periodAverage, periodRecovery, s.cfg.PeriodMinutes),
			pending:     pending,
		})
	}

	return runs
}

// assignPass gives one venue at most courtsCount commitments. Each popped
// slot may host matchUps while a court is free for the whole playing window,
// counting availability coverage, existing bookings, and commitments from
// earlier slots still running; a slot that places nothing is requeued for a
// later pass until its attempt cap is spent.
func (s *SchedulingService) assignPass(sc *schedulingContext, vr *venueRun, resolver *TimingResolver) {
	idle := vr.courtsCount

	for idle > 0 && len(vr.active) > 0 && len(vr.pending) > 0 {
		sl := vr.active[0]
		vr.active = vr.active[1:]

		placed := 0
		for idle > 0 && len(vr.pending) > 0 {
			idx, timing := s.firstAssignable(sc, vr, sl.start)
			if idx < 0 {
				break
			}
			if vr.slotCapacity(sc.date, sl.start, sl.start+timing.AverageMinutes) <= 0 {
				break
			}
			s.commit(sc, vr, idx, sl.start, timing)
			placed++
			idle--
		}

		if placed == 0 {
			sl.attempts++
			if sl.attempts < s.cfg.SlotAttemptCap {
				vr.deferred = append(vr.deferred, sl)
			} else {
				vr.abandoned++
			}
		}
	}
}

// firstAssignable scans pending matchUps in declared order for the first one
// satisfying, in priority order: daily limits, bracket dependencies,
// recovery time, and personal requests. MatchUps at a daily limit are
// dropped from the pending list outright; nothing later today can fix them.
func (s *SchedulingService) firstAssignable(sc *schedulingContext, vr *venueRun, start int) (int, models.MatchUpTiming) {
	for idx := 0; idx < len(vr.pending); idx++ {
		m := vr.pending[idx]
		timing := sc.resolver.ResolveMatchUp(m)
		refs := RelevantParticipants(m)

		limits := sc.tracker.CheckDailyLimits(m, refs)
		if len(limits.ParticipantIDsAtLimit) > 0 {
			if !sc.overLimit[m.ID] {
				sc.overLimit[m.ID] = true
				sc.audit.OverLimitMatchUpIDs = append(sc.audit.OverLimitMatchUpIDs, m.ID)
			}
			vr.pending = append(vr.pending[:idx], vr.pending[idx+1:]...)
			idx--
			continue
		}

		if !s.dependenciesMet(sc, m, start) {
			sc.audit.DependencyDeferred = append(sc.audit.DependencyDeferred, models.DeferredMatchUp{
				MatchUpID:     m.ID,
				VenueID:       vr.venue.ID,
				AttemptedTime: models.FormatClock(start),
			})
			continue
		}

		if !sc.tracker.CheckRecoveryTime(m, refs, start, timing) {
			sc.audit.RecoveryDeferred = append(sc.audit.RecoveryDeferred, models.DeferredMatchUp{
				MatchUpID:     m.ID,
				VenueID:       vr.venue.ID,
				AttemptedTime: models.FormatClock(start),
			})
			continue
		}

		if conflict := s.requestConflict(sc, m, refs, start, timing); conflict != nil {
			sc.audit.RequestConflicts = append(sc.audit.RequestConflicts, *conflict)
			continue
		}

		return idx, timing
	}

	return -1, models.MatchUpTiming{}
}

// dependenciesMet reports whether every bracket source is resolved,
// committed earlier this run, or scheduled on an earlier date.
func (s *SchedulingService) dependenciesMet(sc *schedulingContext, m *models.MatchUp, candidate int) bool {
	record, ok := sc.graph[m.ID]
	if !ok {
		return true
	}
	for _, sourceID := range record.SourceMatchUpIDs {
		source, ok := sc.byID[sourceID]
		if !ok {
			continue
		}
		if source.Status.Resolved() {
			continue
		}
		if t, committed := sc.scheduledTimes[sourceID]; committed && t < candidate {
			continue
		}
		if source.Schedule != nil && source.Schedule.Date != "" && source.Schedule.Date < sc.date {
			continue
		}
		return false
	}
	return true
}

// requestConflict returns the first DO_NOT_SCHEDULE window overlapping the
// candidate window for any involved or potential participant.
func (s *SchedulingService) requestConflict(sc *schedulingContext, m *models.MatchUp, refs []ParticipantRef, start int, timing models.MatchUpTiming) *models.RequestConflict {
	end := start + timing.AverageMinutes
	for _, ref := range refs {
		for _, request := range sc.requests[ref.ParticipantID] {
			if request.RequestType != models.RequestDoNotSchedule || request.Date != sc.date {
				continue
			}
			reqStart, err := models.ParseClock(request.StartTime)
			if err != nil {
				continue
			}
			reqEnd, err := models.ParseClock(request.EndTime)
			if err != nil {
				continue
			}
			if start < reqEnd && reqStart < end {
				return &models.RequestConflict{
					MatchUpID: m.ID,
					PersonID:  ref.ParticipantID,
					StartTime: request.StartTime,
					EndTime:   request.EndTime,
				}
			}
		}
	}
	return nil
}

// commit writes the assignment into the run state and the audit.
func (s *SchedulingService) commit(sc *schedulingContext, vr *venueRun, idx, start int, timing models.MatchUpTiming) {
	m := vr.pending[idx]
	vr.pending = append(vr.pending[:idx], vr.pending[idx+1:]...)

	refs := RelevantParticipants(m)
	sc.tracker.Commit(m, refs, start, timing)
	sc.scheduledTimes[m.ID] = start
	vr.committed = append(vr.committed, commitWindow{start: start, end: start + timing.AverageMinutes})

	m.Schedule = &models.ScheduleAssignment{
		VenueID:   vr.venue.ID,
		Date:      sc.date,
		StartTime: models.FormatClock(start),
		EndTime:   models.FormatClock(start + timing.AverageMinutes),
	}

	sc.audit.ScheduledMatchUpIDs = append(sc.audit.ScheduledMatchUpIDs, m.ID)
	sc.audit.Commits = append(sc.audit.Commits, models.ScheduleCommit{
		MatchUpID:     m.ID,
		ScheduledDate: sc.date,
		ScheduledTime: models.FormatClock(start),
		VenueID:       vr.venue.ID,
	})
}

// settle reports pending leftovers as no-time and returns unused slots
// sorted for potential reuse.
func (s *SchedulingService) settle(sc *schedulingContext, runs []*venueRun) {
	for _, vr := range runs {
		for _, m := range vr.pending {
			sc.audit.NoTimeMatchUpIDs = append(sc.audit.NoTimeMatchUpIDs, m.ID)
		}

		remaining := append(append([]*slot{}, vr.active...), vr.deferred...)
		sort.Slice(remaining, func(i, j int) bool { return remaining[i].start < remaining[j].start })
		for _, sl := range remaining {
			sc.audit.RemainingSlots[vr.venue.ID] = append(sc.audit.RemainingSlots[vr.venue.ID], models.FormatClock(sl.start))
		}
		if vr.abandoned > 0 {
			sc.audit.AbandonedSlots[vr.venue.ID] = vr.abandoned
		}
	}
}
