package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/handler"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/service"
)

const publicResultsSchema = `{
  "type": "object",
  "required": ["success", "data"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["logged_in", "contest_id", "winners", "entry_counts", "evaluations_per_evaluator", "entries"],
      "properties": {
        "logged_in": {"const": false},
        "entry_counts": {
          "type": "array",
          "items": {"type": "object", "properties": {"count": {"const": "Unknown"}}}
        },
        "evaluations_per_evaluator": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {"evaluation_count": {"const": "Unknown"}},
            "not": {"required": ["evaluator_id"]}
          }
        }
      },
      "not": {"anyOf": [{"required": ["entries_by_score"]}, {"required": ["entries_per_group"]}]}
    }
  }
}`

const internalResultsSchema = `{
  "type": "object",
  "required": ["success", "data"],
  "properties": {
    "data": {
      "type": "object",
      "required": ["logged_in", "entry_counts", "entries_by_score", "entries_per_group"],
      "properties": {
        "logged_in": {"const": true},
        "entry_counts": {
          "type": "array",
          "items": {"type": "object", "properties": {"count": {"type": "integer"}}}
        },
        "entries_by_score": {
          "type": "array",
          "items": {"type": "object", "required": ["entry_id", "avg_score", "evaluations"]}
        }
      },
      "not": {"required": ["entries"]}
    }
  }
}`

type stubResultsService struct {
	exports int
}

func (s *stubResultsService) Invalidate(context.Context, uint) {}

func (s *stubResultsService) Get(_ context.Context, identity auth.Identity, contestID uint) (dto.ResultsResponse, error) {
	if contestID == 404 {
		return dto.ResultsResponse{}, service.ErrContestNotFound
	}
	response := dto.ResultsResponse{
		Visibility: dto.NewVisibility(identity),
		ContestID:  contestID,
		Winners:    []dto.WinnerResponse{},
	}
	if !identity.Authenticated() {
		response.EntryCounts = []dto.LevelCount{{Level: "Beginner", Count: dto.UnknownCount}}
		response.EvaluationsPerEvaluator = []dto.EvaluatorTally{{EvaluatorName: "Unknown", EvaluationCount: dto.UnknownCount}}
		response.PublicResults = &dto.PublicResults{Entries: []dto.PublicResultEntry{{EntryID: 1, Title: "Orbit", Author: "ana"}}}
		response.CacheHit = true
		return response, nil
	}
	evaluatorID := uint(7)
	response.EntryCounts = []dto.LevelCount{{Level: "Beginner", Count: dto.KnownCount(2)}}
	response.EvaluationsPerEvaluator = []dto.EvaluatorTally{{EvaluatorID: &evaluatorID, EvaluatorName: "grace", EvaluationCount: dto.KnownCount(2)}}
	response.InternalResults = &dto.InternalResults{
		EntriesByScore:  []dto.EntryScore{{EntryID: 1, Title: "Orbit", Level: models.LevelBeginner, Evaluations: 2, AvgScore: 30}},
		EntriesPerGroup: []dto.GroupCount{},
	}
	return response, nil
}

func (s *stubResultsService) Export(_ context.Context, identity auth.Identity, _ uint) ([]byte, error) {
	if !identity.Can(auth.ViewAdminStats) {
		return nil, service.ErrForbidden
	}
	s.exports++
	return []byte("PK"), nil
}

func compileSchema(t *testing.T, name, schema string) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource(name, strings.NewReader(schema)))
	compiled, err := compiler.Compile(name)
	require.NoError(t, err)
	return compiled
}

func validateBody(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestResultsContract(t *testing.T) {
	svc := &stubResultsService{}
	app := newTestApp(t)
	handler.NewResultsHandler(svc, zerolog.Nop()).Register(app.Group("/api/internal/results"))

	resp := send(t, app, http.MethodGet, "/api/internal/results/1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
	validateBody(t, compileSchema(t, "https://judging.test/schemas/public_results.json", publicResultsSchema), resp)

	evaluator := signToken(t, auth.Identity{EvaluatorID: 7, Name: "grace"})
	resp = send(t, app, http.MethodGet, "/api/internal/results/1", evaluator, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "false", resp.Header.Get("X-Cache-Hit"))
	validateBody(t, compileSchema(t, "https://judging.test/schemas/internal_results.json", internalResultsSchema), resp)

	resp = send(t, app, http.MethodGet, "/api/internal/results/404", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResultsExportRequiresAdminStats(t *testing.T) {
	svc := &stubResultsService{}
	app := newTestApp(t)
	handler.NewResultsHandler(svc, zerolog.Nop()).Register(app.Group("/api/internal/results"))

	resp := send(t, app, http.MethodGet, "/api/internal/results/1/export", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	plain := signToken(t, auth.Identity{EvaluatorID: 7})
	resp = send(t, app, http.MethodGet, "/api/internal/results/1/export", plain, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, svc.exports)

	stats := signToken(t, auth.Identity{EvaluatorID: 8, Permissions: auth.NewSet(auth.ViewAdminStats)})
	resp = send(t, app, http.MethodGet, "/api/internal/results/1/export", stats, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	require.Contains(t, resp.Header.Get("Content-Disposition"), "contest-1-results.xlsx")
	require.Equal(t, 1, svc.exports)
}
