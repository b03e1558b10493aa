package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/observability"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EntryService manages contest entries.
type EntryService interface {
	List(ctx context.Context, identity auth.Identity, contestID uint) (dto.EntryListResponse, error)
	Get(ctx context.Context, identity auth.Identity, id uint) (dto.EntryResponse, error)
	Create(ctx context.Context, identity auth.Identity, payload dto.EntryCreateRequest) (dto.CreatedResponse, error)
	Import(ctx context.Context, identity auth.Identity, contestID uint, data []byte) (dto.EntryImportResult, error)
	Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EntryUpdateRequest) error
	Delete(ctx context.Context, identity auth.Identity, id uint) error
	AssignGroups(ctx context.Context, identity auth.Identity, payload dto.EntryGroupAssignmentRequest) (dto.EntryGroupAssignmentResponse, error)
}

type entryService struct {
	repo      repository.EntryRepository
	contests  repository.ContestRepository
	groups    repository.GroupRepository
	results   ResultsInvalidator
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEntryService constructs the entry service.
func NewEntryService(repo repository.EntryRepository, contests repository.ContestRepository, groups repository.GroupRepository, results ResultsInvalidator, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) EntryService {
	return &entryService{
		repo:      repo,
		contests:  contests,
		groups:    groups,
		results:   results,
		activity:  activity,
		validator: validator,
		logger:    logger.With().Str("component", "entry_service").Logger(),
		now:       time.Now,
	}
}

func (s *entryService) List(ctx context.Context, identity auth.Identity, contestID uint) (dto.EntryListResponse, error) {
	internal := identity.Authenticated()
	entries, err := s.repo.List(ctx, repository.EntryFilter{ContestID: contestID, IncludeHidden: internal})
	if err != nil {
		return dto.EntryListResponse{}, readFailure("list entries", err)
	}
	return dto.EntryListResponse{
		Visibility: dto.NewVisibility(identity),
		Entries:    dto.NewEntryResponseSlice(entries, internal),
	}, nil
}

func (s *entryService) Get(ctx context.Context, identity auth.Identity, id uint) (dto.EntryResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.EntryResponse{}, lookupFailure("get entry", err, ErrEntryNotFound)
	}
	internal := identity.Authenticated()
	if !internal && (entry.Flagged || entry.Disqualified) {
		return dto.EntryResponse{}, ErrEntryNotFound
	}
	return dto.NewEntryResponse(entry, internal), nil
}

func (s *entryService) Create(ctx context.Context, identity auth.Identity, payload dto.EntryCreateRequest) (dto.CreatedResponse, error) {
	if err := authorize(identity, auth.AddEntries); err != nil {
		return dto.CreatedResponse{}, err
	}

	entry, err := s.buildEntry(payload)
	if err != nil {
		return dto.CreatedResponse{}, err
	}
	if _, err := s.contests.GetByID(ctx, entry.ContestID); err != nil {
		return dto.CreatedResponse{}, lookupFailure("get contest", err, ErrContestNotFound)
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return dto.CreatedResponse{}, writeFailure("create entry", err)
	}

	s.results.Invalidate(ctx, entry.ContestID)
	audit(ctx, s.activity, s.logger, identity, "entry.create", "entry", entry.ID, map[string]interface{}{"contest_id": entry.ContestID})
	return dto.CreatedResponse{ID: entry.ID}, nil
}

func (s *entryService) buildEntry(payload dto.EntryCreateRequest) (models.Entry, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Entry{}, err
	}

	level := models.LevelTBD
	if payload.Level != "" {
		parsed, ok := models.ParseLevel(payload.Level)
		if !ok {
			return models.Entry{}, ErrInvalidLevel
		}
		level = parsed
	}

	created := s.now().UTC()
	if payload.EntryCreated != "" {
		parsed, err := dto.ParseTimestamp(payload.EntryCreated)
		if err != nil {
			return models.Entry{}, err
		}
		created = parsed.UTC()
	}

	return models.Entry{
		ContestID:    payload.ContestID,
		URL:          strings.TrimSpace(payload.URL),
		KAID:         strings.TrimSpace(payload.KAID),
		Title:        strings.TrimSpace(payload.Title),
		Author:       strings.TrimSpace(payload.Author),
		Level:        level,
		EntryCreated: created,
	}, nil
}

// Import creates entries from a JSON document or an XLSX workbook. Rows that
// fail validation are skipped and reported; the rest are written in a single
// transaction.
func (s *entryService) Import(ctx context.Context, identity auth.Identity, contestID uint, data []byte) (dto.EntryImportResult, error) {
	if err := authorize(identity, auth.AddEntries); err != nil {
		return dto.EntryImportResult{}, err
	}
	if _, err := s.contests.GetByID(ctx, contestID); err != nil {
		return dto.EntryImportResult{}, lookupFailure("get contest", err, ErrContestNotFound)
	}

	rows, err := decodeImport(contestID, data)
	if err != nil {
		return dto.EntryImportResult{}, err
	}

	result := dto.EntryImportResult{Errors: []string{}}
	entries := make([]models.Entry, 0, len(rows))
	for i, row := range rows {
		row.ContestID = contestID
		entry, err := s.buildEntry(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := s.repo.CreateMany(ctx, entries); err != nil {
		return dto.EntryImportResult{}, writeFailure("import entries", err)
	}
	result.Imported = len(entries)

	observability.EntriesImported().Add(float64(result.Imported))
	s.results.Invalidate(ctx, contestID)
	audit(ctx, s.activity, s.logger, identity, "entry.import", "contest", contestID, map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
	return result, nil
}

func decodeImport(contestID uint, data []byte) ([]dto.EntryCreateRequest, error) {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(xlsxMime):
		return decodeWorkbook(data)
	case detected.Is("application/json"):
		var payload dto.EntryImportRequest
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImport, err)
		}
		if payload.ContestID != 0 && payload.ContestID != contestID {
			return nil, fmt.Errorf("%w: contest id mismatch", ErrUnsupportedImport)
		}
		return payload.Entries, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImport, detected.String())
	}
}

// decodeWorkbook reads the first sheet, mapping columns by header name.
func decodeWorkbook(data []byte) ([]dto.EntryCreateRequest, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImport, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnsupportedImport)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImport, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: workbook needs a header and at least one row", ErrUnsupportedImport)
	}

	columns := map[string]int{}
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "entry_url", "url":
			columns["url"] = i
		case "entry_kaid", "kaid":
			columns["kaid"] = i
		case "entry_title", "title":
			columns["title"] = i
		case "entry_author", "author":
			columns["author"] = i
		case "entry_level", "level":
			columns["level"] = i
		case "entry_created", "created":
			columns["created"] = i
		}
	}
	for _, required := range []string{"url", "kaid", "title", "author"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrUnsupportedImport, required)
		}
	}

	cell := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entries := make([]dto.EntryCreateRequest, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		entries = append(entries, dto.EntryCreateRequest{
			URL:          cell(row, "url"),
			KAID:         cell(row, "kaid"),
			Title:        cell(row, "title"),
			Author:       cell(row, "author"),
			Level:        cell(row, "level"),
			EntryCreated: cell(row, "created"),
		})
	}
	return entries, nil
}

func (s *entryService) Update(ctx context.Context, identity auth.Identity, id uint, payload dto.EntryUpdateRequest) error {
	if err := authorize(identity, auth.EditEntries); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return lookupFailure("get entry", err, ErrEntryNotFound)
	}

	updates := map[string]interface{}{}
	if payload.URL != nil {
		updates["entry_url"] = strings.TrimSpace(*payload.URL)
	}
	if payload.Title != nil {
		updates["entry_title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.Author != nil {
		updates["entry_author"] = strings.TrimSpace(*payload.Author)
	}
	if payload.Level != nil {
		level, ok := models.ParseLevel(*payload.Level)
		if !ok {
			return ErrInvalidLevel
		}
		updates["entry_level"] = level
	}
	if payload.LevelLocked != nil {
		updates["level_locked"] = *payload.LevelLocked
	}
	if payload.Flagged != nil {
		updates["flagged"] = *payload.Flagged
	}
	if payload.Disqualified != nil {
		updates["disqualified"] = *payload.Disqualified
	}
	if payload.AssignedGroupID != nil {
		if *payload.AssignedGroupID == 0 {
			updates["assigned_group_id"] = nil
		} else {
			updates["assigned_group_id"] = *payload.AssignedGroupID
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mutationFailure("update entry", err, ErrEntryNotFound)
	}

	s.results.Invalidate(ctx, entry.ContestID)
	audit(ctx, s.activity, s.logger, identity, "entry.update", "entry", id, nil)
	return nil
}

func (s *entryService) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	if err := authorize(identity, auth.DeleteEntries); err != nil {
		return err
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return lookupFailure("get entry", err, ErrEntryNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mutationFailure("delete entry", err, ErrEntryNotFound)
	}

	s.results.Invalidate(ctx, entry.ContestID)
	audit(ctx, s.activity, s.logger, identity, "entry.delete", "entry", id, map[string]interface{}{
		"contest_id": entry.ContestID,
	})
	return nil
}

func (s *entryService) AssignGroups(ctx context.Context, identity auth.Identity, payload dto.EntryGroupAssignmentRequest) (dto.EntryGroupAssignmentResponse, error) {
	if err := authorize(identity, auth.AssignEntryGroups); err != nil {
		return dto.EntryGroupAssignmentResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.EntryGroupAssignmentResponse{}, err
	}

	groupIDs, err := s.groups.ListActiveIDs(ctx)
	if err != nil {
		return dto.EntryGroupAssignmentResponse{}, readFailure("list active groups", err)
	}
	if len(groupIDs) == 0 {
		return dto.EntryGroupAssignmentResponse{}, ErrGroupNotFound
	}

	assigned, err := s.repo.AssignGroups(ctx, payload.ContestID, groupIDs)
	if err != nil {
		return dto.EntryGroupAssignmentResponse{}, writeFailure("assign entry groups", err)
	}

	s.results.Invalidate(ctx, payload.ContestID)
	audit(ctx, s.activity, s.logger, identity, "entry.assign_groups", "contest", payload.ContestID, map[string]interface{}{
		"assigned": assigned,
		"groups":   len(groupIDs),
	})
	return dto.EntryGroupAssignmentResponse{Assigned: assigned, Groups: len(groupIDs)}, nil
}
