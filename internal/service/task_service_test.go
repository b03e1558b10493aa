package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/models"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

func TestTaskEditsByNonOwners(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewTaskRepository(db)
	owner := uint(5)
	ctx := context.Background()

	lenient := NewTaskService(repo, &stubActivityRecorder{}, newValidator(), false, zerolog.Nop())
	created, err := lenient.Create(ctx, judge(1, auth.AddTasks), dto.TaskRequest{Title: "Review flagged entries", AssignedMember: &owner})
	require.NoError(t, err)

	status := "Started"
	require.NoError(t, lenient.Update(ctx, judge(9), created.ID, dto.TaskUpdateRequest{Status: &status}))

	var task models.Task
	require.NoError(t, db.First(&task, created.ID).Error)
	require.Equal(t, models.TaskStatusStarted, task.Status)

	strict := NewTaskService(repo, &stubActivityRecorder{}, newValidator(), true, zerolog.Nop())
	done := "Completed"
	require.ErrorIs(t, strict.Update(ctx, judge(9), created.ID, dto.TaskUpdateRequest{Status: &done}), ErrForbidden)
	require.NoError(t, strict.Update(ctx, judge(owner), created.ID, dto.TaskUpdateRequest{Status: &done}))
	require.NoError(t, strict.Update(ctx, judge(9, auth.EditAllTasks), created.ID, dto.TaskUpdateRequest{Status: &done}))

	require.ErrorIs(t, strict.Update(ctx, auth.Anonymous, created.ID, dto.TaskUpdateRequest{Status: &done}), ErrUnauthenticated)
	require.ErrorIs(t, strict.Update(ctx, judge(owner), created.ID+50, dto.TaskUpdateRequest{Status: &done}), ErrTaskNotFound)
}

func TestTaskListScopedToAssignee(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), &stubActivityRecorder{}, newValidator(), false, zerolog.Nop())
	ctx := context.Background()
	mine, theirs := uint(3), uint(4)

	_, err := svc.Create(ctx, admin(1), dto.TaskRequest{Title: "Mine", AssignedMember: &mine})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin(1), dto.TaskRequest{Title: "Theirs", AssignedMember: &theirs, DueDate: "2024-04-01T00:00:00Z"})
	require.NoError(t, err)

	own, err := svc.List(ctx, judge(mine))
	require.NoError(t, err)
	require.Len(t, own.Tasks, 1)
	require.Equal(t, "Mine", own.Tasks[0].Title)
	require.Equal(t, models.TaskStatusNotStarted, own.Tasks[0].Status)

	all, err := svc.List(ctx, judge(mine, auth.ViewAllTasks))
	require.NoError(t, err)
	require.Len(t, all.Tasks, 2)

	require.ErrorIs(t, svc.Delete(ctx, judge(mine), own.Tasks[0].ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, judge(mine, auth.DeleteAllTasks), own.Tasks[0].ID))
}
