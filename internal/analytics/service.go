package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/database"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"github.com/reviewpulse/reviewpulse-api/internal/services/ai"
	"go.uber.org/zap"
)

// overviewTopicCount is how many top tags the overview carries.
const overviewTopicCount = 5

// Query carries the resolved request parameters of one analytics call.
// Aliases (period/preset, location/location_id) are folded by the handler
// before this struct is built.
type Query struct {
	Preset      string
	From        string
	To          string
	TZ          string
	LocationID  *uuid.UUID
	Granularity string
	Mode        models.InsightMode
	Tag         string
	Source      models.TagSource
	TagIDs      []uuid.UUID
	Offset      int
	Limit       int
}

// Service composes the resolvers, the fetcher and the metric engines into
// the seven analytics operations. Every call recomputes from current data;
// nothing is cached or persisted.
type Service struct {
	fetcher   *Fetcher
	locations *LocationResolver
	tagLinks  database.TagLinkRepositoryInterface
	provider  ai.InsightProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the analytics service. provider may be nil; insights
// then always come from the rule engine.
func NewService(
	reviews database.ReviewRepositoryInterface,
	tagLinks database.TagLinkRepositoryInterface,
	locations database.LocationRepositoryInterface,
	provider ai.InsightProvider,
	logger *zap.Logger,
) *Service {
	return &Service{
		fetcher:   NewFetcher(reviews, logger),
		locations: NewLocationResolver(locations, reviews),
		tagLinks:  tagLinks,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// scope resolves the range and the location set for a call. A nil scope
// with nil error means the explicit location was not found.
func (s *Service) scope(ctx context.Context, tenantID uuid.UUID, q Query) (models.DateRange, *models.LocationScope, error) {
	rng := ResolveRange(q.Preset, q.From, q.To, q.TZ, s.now().UTC())
	sc, err := s.locations.Resolve(ctx, tenantID, q.LocationID)
	if err != nil {
		return rng, nil, err
	}
	if sc.Missing {
		return rng, nil, database.ErrLocationNotFound
	}
	return rng, &sc, nil
}

func reviewIDs(reviews []*models.Review) []uuid.UUID {
	ids := make([]uuid.UUID, len(reviews))
	for i, review := range reviews {
		ids[i] = review.ID
	}
	return ids
}

// resolveTagSource picks AI links when any exist for the current rows,
// manual links otherwise. The choice applies uniformly to both periods so
// deltas always compare like with like.
func (s *Service) resolveTagSource(ctx context.Context, current []*models.Review) ([]*models.TagLink, models.TagSource, error) {
	ids := reviewIDs(current)
	links, err := s.tagLinks.ListForReviews(ctx, ids, models.TagSourceAI)
	if err != nil {
		return nil, "", &FetchError{Op: "list_tag_links", Err: err}
	}
	if len(links) > 0 {
		return links, models.TagSourceAI, nil
	}
	links, err = s.tagLinks.ListForReviews(ctx, ids, models.TagSourceManual)
	if err != nil {
		return nil, "", &FetchError{Op: "list_tag_links", Err: err}
	}
	return links, models.TagSourceManual, nil
}

type fetchResult struct {
	reviews   []*models.Review
	truncated bool
	err       error
}

// fetchBothPeriods loads the current and previous windows concurrently.
// Either failure aborts the whole operation.
func (s *Service) fetchBothPeriods(ctx context.Context, tenantID uuid.UUID, scope *models.LocationScope, rng models.DateRange) (current, previous fetchResult) {
	prevCh := make(chan fetchResult, 1)
	go func() {
		reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng.Previous())
		prevCh <- fetchResult{reviews: reviews, truncated: truncated, err: err}
	}()

	reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng)
	current = fetchResult{reviews: reviews, truncated: truncated, err: err}
	previous = <-prevCh
	return current, previous
}

func statusFor(truncated bool, reviewCount int) (models.DataStatus, []string) {
	switch {
	case truncated:
		return models.DataStatusTruncated, []string{models.ReasonFetchCapped}
	case reviewCount == 0:
		return models.DataStatusEmpty, []string{models.ReasonNoReviews}
	default:
		return models.DataStatusOK, []string{}
	}
}

// Overview computes the default view: whole-range KPIs, rating histogram,
// sentiment distribution and top topics.
func (s *Service) Overview(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Overview, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	out := &models.Overview{
		Period:  rng.Period(),
		Ratings: RatingHistogram(nil),
		Topics:  []models.TopicCount{},
	}
	if len(scope.LocationIDs) == 0 {
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		out.KPIs = ComputeKPIs(nil)
		return out, nil
	}

	reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng)
	if err != nil {
		return nil, err
	}

	links, _, err := s.resolveTagSource(ctx, reviews)
	if err != nil {
		return nil, err
	}

	out.DataStatus, out.Reasons = statusFor(truncated, len(reviews))
	out.KPIs = ComputeKPIs(reviews)
	out.Ratings = RatingHistogram(reviews)
	out.Sentiment = SentimentTotals(links)
	out.Topics = TopTopics(AggregateTags(links), overviewTopicCount)
	return out, nil
}

// Timeseries computes the gapless bucketed view.
func (s *Service) Timeseries(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Timeseries, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	granularity := ResolveGranularity(rng, q.Granularity)
	out := &models.Timeseries{
		Period:      rng.Period(),
		Granularity: granularity,
		Points:      []models.SeriesPoint{},
	}
	if len(scope.LocationIDs) == 0 {
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		out.Points = BuildSeries(nil, rng, granularity)
		return out, nil
	}

	reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng)
	if err != nil {
		return nil, err
	}

	out.DataStatus, out.Reasons = statusFor(truncated, len(reviews))
	out.Points = BuildSeries(reviews, rng, granularity)
	return out, nil
}

// Drivers computes ranked strengths and irritants with previous-period
// deltas, over a single uniformly chosen tag source.
func (s *Service) Drivers(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Drivers, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	out := &models.Drivers{
		Period:    rng.Period(),
		Source:    models.TagSourceManual,
		Strengths: []models.DriverStat{},
		Irritants: []models.DriverStat{},
	}
	if len(scope.LocationIDs) == 0 {
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		return out, nil
	}

	current, previous := s.fetchBothPeriods(ctx, tenantID, scope, rng)
	if current.err != nil {
		return nil, current.err
	}
	if previous.err != nil {
		return nil, previous.err
	}

	currentLinks, source, err := s.resolveTagSource(ctx, current.reviews)
	if err != nil {
		return nil, err
	}
	previousLinks, err := s.tagLinks.ListForReviews(ctx, reviewIDs(previous.reviews), source)
	if err != nil {
		return nil, &FetchError{Op: "list_tag_links", Err: err}
	}

	strengths, irritants, totals := BuildDrivers(AggregateTags(currentLinks), AggregateTags(previousLinks))
	out.Source = source
	out.DataStatus, out.Reasons = statusFor(current.truncated || previous.truncated, len(current.reviews))
	out.Totals = totals
	out.Strengths = strengths
	out.Irritants = irritants
	return out, nil
}

// Quality computes reply-delay and SLA metrics for the period.
func (s *Service) Quality(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Quality, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	out := &models.Quality{Period: rng.Period()}
	if len(scope.LocationIDs) == 0 {
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		return out, nil
	}

	reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng)
	if err != nil {
		return nil, err
	}

	out.DataStatus, out.Reasons = statusFor(truncated, len(reviews))
	out.Rates, out.Counts = ComputeQuality(reviews, s.logger)
	return out, nil
}

// Compare computes period-over-period deltas for the four core metrics.
func (s *Service) Compare(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Compare, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	if len(scope.LocationIDs) == 0 {
		out := ComparePeriods(nil, nil, rng, rng.Previous())
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		return &out, nil
	}

	current, previous := s.fetchBothPeriods(ctx, tenantID, scope, rng)
	if current.err != nil {
		return nil, current.err
	}
	if previous.err != nil {
		return nil, previous.err
	}

	out := ComparePeriods(current.reviews, previous.reviews, rng, rng.Previous())
	out.DataStatus, out.Reasons = statusFor(current.truncated || previous.truncated, len(current.reviews))
	return &out, nil
}

// Drilldown lists the raw rows matching one tag for the period, newest
// first, one page at a time.
func (s *Service) Drilldown(ctx context.Context, tenantID uuid.UUID, q Query) (*models.Drilldown, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	source := q.Source
	if source != models.TagSourceAI {
		source = models.TagSourceManual
	}

	out := &models.Drilldown{
		Period: rng.Period(),
		Tag:    q.Tag,
		Source: source,
		Items:  []models.DrilldownItem{},
	}
	if len(scope.LocationIDs) == 0 {
		out.DataStatus = models.DataStatusEmpty
		out.Reasons = []string{models.ReasonNoLocations}
		out.Pagination = models.DrilldownPage{Offset: q.Offset, Limit: clampLimit(q.Limit)}
		return out, nil
	}

	reviews, truncated, err := s.fetcher.FetchRange(ctx, tenantID, scope.LocationIDs, rng)
	if err != nil {
		return nil, err
	}

	links, err := s.tagLinks.ListForReviews(ctx, reviewIDs(reviews), source)
	if err != nil {
		return nil, &FetchError{Op: "list_tag_links", Err: err}
	}

	matched := matchTagLinks(links, source, q.Tag, q.TagIDs)
	items, page := BuildDrilldown(reviews, matched, q.Offset, q.Limit)

	out.DataStatus, out.Reasons = statusFor(truncated, len(reviews))
	out.Items = items
	out.Pagination = page
	return out, nil
}

// Insights generates the insight list. The rule-based list always computes
// first and stands as the fallback; the AI path, when eligible, replaces it
// on success only. Mode reports the attempted path, UsedAI the actual one.
func (s *Service) Insights(ctx context.Context, tenantID uuid.UUID, q Query) (*models.InsightReport, error) {
	rng, scope, err := s.scope(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}

	out := &models.InsightReport{
		Period:   rng.Period(),
		Mode:     models.InsightModeBasic,
		Insights: []models.Insight{},
	}
	if len(scope.LocationIDs) == 0 {
		cmp := ComparePeriods(nil, nil, rng, rng.Previous())
		out.Insights = BuildRuleInsights(cmp, nil)
		return out, nil
	}

	current, previous := s.fetchBothPeriods(ctx, tenantID, scope, rng)
	if current.err != nil {
		return nil, current.err
	}
	if previous.err != nil {
		return nil, previous.err
	}

	cmp := ComparePeriods(current.reviews, previous.reviews, rng, rng.Previous())
	series := BuildSeries(current.reviews, rng, ResolveGranularity(rng, ""))
	quality, _ := ComputeQuality(current.reviews, s.logger)

	out.Insights = BuildRuleInsights(cmp, series)

	attempted := s.provider != nil && q.Mode != models.InsightModeBasic
	if attempted {
		out.Mode = models.InsightModeAI
		generated, err := s.provider.GenerateInsights(ctx, ai.PromptContext{
			Compare: cmp,
			Series:  series,
			Quality: quality,
		})
		if err != nil {
			// AI failures degrade silently to the rule-based list.
			s.logger.Warn("insight_generation_fell_back_to_rules",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			out.Insights = generated
			out.UsedAI = true
		}
	}

	return out, nil
}
