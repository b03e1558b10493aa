package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/observability"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

// ResultsInvalidator drops cached results after a change that affects them.
type ResultsInvalidator interface {
	Invalidate(ctx context.Context, contestID uint)
}

// ResultsService aggregates contest standings.
type ResultsService interface {
	ResultsInvalidator
	Get(ctx context.Context, identity auth.Identity, contestID uint) (dto.ResultsResponse, error)
	Export(ctx context.Context, identity auth.Identity, contestID uint) ([]byte, error)
}

type resultsService struct {
	repo     repository.ResultsRepository
	contests repository.ContestRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewResultsService constructs the results service. A nil cache disables caching.
func NewResultsService(repo repository.ResultsRepository, contests repository.ContestRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ResultsService {
	return &resultsService{
		repo:     repo,
		contests: contests,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "results_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/judging-admin-api/internal/service/results"),
	}
}

func publicResultsKey(contestID uint) string {
	return fmt.Sprintf("results:public:%d", contestID)
}

func (s *resultsService) Get(ctx context.Context, identity auth.Identity, contestID uint) (dto.ResultsResponse, error) {
	visibility := "public"
	if identity.Authenticated() {
		visibility = "internal"
	}

	ctx, span := s.tracer.Start(ctx, "results.aggregate", trace.WithAttributes(
		attribute.Int64("contest.id", int64(contestID)),
		attribute.String("results.visibility", visibility),
	))
	defer span.End()

	if _, err := s.contests.GetByID(ctx, contestID); err != nil {
		failure := lookupFailure("get contest", err, ErrContestNotFound)
		if !errors.Is(failure, ErrContestNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "contest lookup failed")
		}
		return dto.ResultsResponse{}, failure
	}

	if !identity.Authenticated() {
		if cached, ok := s.readCache(ctx, contestID); ok {
			observability.ResultsRequests().WithLabelValues(visibility, "hit").Inc()
			cached.CacheHit = true
			return cached, nil
		}
	}

	response, err := s.aggregate(ctx, identity, contestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregation failed")
		return dto.ResultsResponse{}, err
	}

	if identity.Authenticated() {
		observability.ResultsRequests().WithLabelValues(visibility, "bypass").Inc()
		return response, nil
	}

	observability.ResultsRequests().WithLabelValues(visibility, "miss").Inc()
	s.writeCache(ctx, contestID, response)
	return response, nil
}

// aggregate runs each statement in turn; the first failure aborts the snapshot.
func (s *resultsService) aggregate(ctx context.Context, identity auth.Identity, contestID uint) (dto.ResultsResponse, error) {
	winners, err := s.repo.Winners(ctx, contestID)
	if err != nil {
		return dto.ResultsResponse{}, readFailure("load winners", err)
	}

	response := dto.ResultsResponse{
		Visibility: dto.NewVisibility(identity),
		ContestID:  contestID,
		Winners:    dto.NewWinnerResponseSlice(winners),
	}

	if !identity.Authenticated() {
		evaluated, err := s.repo.EvaluatedEntries(ctx, contestID)
		if err != nil {
			return dto.ResultsResponse{}, readFailure("load evaluated entries", err)
		}

		entries := make([]dto.PublicResultEntry, 0, len(evaluated))
		for _, row := range evaluated {
			entries = append(entries, dto.PublicResultEntry{EntryID: row.EntryID, Title: row.Title, Author: row.Author})
		}

		response.EntryCounts = []dto.LevelCount{{Level: dto.UnknownMarker, Count: dto.UnknownCount}}
		response.EvaluationsPerEvaluator = []dto.EvaluatorTally{{EvaluatorName: dto.UnknownMarker, EvaluationCount: dto.UnknownCount}}
		response.PublicResults = &dto.PublicResults{Entries: entries}
		return response, nil
	}

	counts, err := s.repo.EntryCountsByLevel(ctx, contestID)
	if err != nil {
		return dto.ResultsResponse{}, readFailure("count entries by level", err)
	}
	scores, err := s.repo.EntryScores(ctx, contestID, identity.EvaluatorID)
	if err != nil {
		return dto.ResultsResponse{}, readFailure("load entry scores", err)
	}
	tallies, err := s.repo.EvaluatorTallies(ctx, contestID)
	if err != nil {
		return dto.ResultsResponse{}, readFailure("load evaluator tallies", err)
	}
	groups, err := s.repo.GroupCounts(ctx, contestID)
	if err != nil {
		return dto.ResultsResponse{}, readFailure("load group counts", err)
	}

	response.EntryCounts = make([]dto.LevelCount, 0, len(counts))
	for _, row := range counts {
		response.EntryCounts = append(response.EntryCounts, dto.LevelCount{Level: string(row.Level), Count: dto.KnownCount(row.Count)})
	}

	response.EvaluationsPerEvaluator = make([]dto.EvaluatorTally, 0, len(tallies))
	for _, row := range tallies {
		evaluatorID := row.EvaluatorID
		response.EvaluationsPerEvaluator = append(response.EvaluationsPerEvaluator, dto.EvaluatorTally{
			EvaluatorID:     &evaluatorID,
			EvaluatorName:   row.EvaluatorName,
			EvaluationCount: dto.KnownCount(row.EvaluationCount),
			AverageGroup:    row.AverageGroup,
		})
	}

	internal := &dto.InternalResults{
		EntriesByScore:  make([]dto.EntryScore, 0, len(scores)),
		EntriesPerGroup: make([]dto.GroupCount, 0, len(groups)),
	}
	for _, row := range scores {
		internal.EntriesByScore = append(internal.EntriesByScore, dto.EntryScore{
			EntryID:     row.EntryID,
			Title:       row.Title,
			Author:      row.Author,
			Level:       row.Level,
			Evaluations: row.Evaluations,
			MinScore:    row.MinScore,
			MaxScore:    row.MaxScore,
			AvgScore:    row.AvgScore,
			Votes:       row.Votes,
			VotedByMe:   row.VotedByMe > 0,
		})
	}
	for _, row := range groups {
		internal.EntriesPerGroup = append(internal.EntriesPerGroup, dto.GroupCount{GroupID: row.GroupID, EntryCount: row.EntryCount})
	}
	response.InternalResults = internal

	return response, nil
}

func (s *resultsService) Invalidate(ctx context.Context, contestID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publicResultsKey(contestID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("contest_id", contestID).Msg("failed to invalidate results cache")
	}
}

func (s *resultsService) readCache(ctx context.Context, contestID uint) (dto.ResultsResponse, bool) {
	if s.cache == nil {
		return dto.ResultsResponse{}, false
	}

	cached, err := s.cache.Get(ctx, publicResultsKey(contestID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read results cache")
		}
		return dto.ResultsResponse{}, false
	}

	var response dto.ResultsResponse
	if err := json.Unmarshal(cached, &response); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable results cache entry")
		return dto.ResultsResponse{}, false
	}
	return response, true
}

func (s *resultsService) writeCache(ctx context.Context, contestID uint, response dto.ResultsResponse) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, publicResultsKey(contestID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store results cache")
	}
}

// Export renders the internal results snapshot as an XLSX workbook.
func (s *resultsService) Export(ctx context.Context, identity auth.Identity, contestID uint) ([]byte, error) {
	if err := authorize(identity, auth.ViewAdminStats); err != nil {
		return nil, err
	}

	results, err := s.Get(ctx, identity, contestID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	winners := [][]interface{}{{"Entry ID", "Title", "Author", "KAID", "Level", "URL"}}
	for _, w := range results.Winners {
		winners = append(winners, []interface{}{w.EntryID, w.Title, w.Author, w.KAID, string(w.Level), w.URL})
	}

	counts := [][]interface{}{{"Level", "Entries"}}
	for _, c := range results.EntryCounts {
		counts = append(counts, []interface{}{c.Level, c.Count.Value})
	}

	scores := [][]interface{}{{"Entry ID", "Title", "Author", "Level", "Evaluations", "Min", "Max", "Average", "Votes"}}
	groups := [][]interface{}{{"Group ID", "Entries"}}
	if results.InternalResults != nil {
		for _, e := range results.EntriesByScore {
			scores = append(scores, []interface{}{e.EntryID, e.Title, e.Author, string(e.Level), e.Evaluations, e.MinScore, e.MaxScore, e.AvgScore, e.Votes})
		}
		for _, g := range results.EntriesPerGroup {
			var groupID interface{} = "Unassigned"
			if g.GroupID != nil {
				groupID = *g.GroupID
			}
			groups = append(groups, []interface{}{groupID, g.EntryCount})
		}
	}

	evaluators := [][]interface{}{{"Evaluator ID", "Name", "Evaluations", "Average Group"}}
	for _, t := range results.EvaluationsPerEvaluator {
		var id, avg interface{}
		if t.EvaluatorID != nil {
			id = *t.EvaluatorID
		}
		if t.AverageGroup != nil {
			avg = *t.AverageGroup
		}
		evaluators = append(evaluators, []interface{}{id, t.EvaluatorName, t.EvaluationCount.Value, avg})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{"Winners", winners},
		{"Entry Counts", counts},
		{"Entries By Score", scores},
		{"Evaluators", evaluators},
		{"Groups", groups},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
