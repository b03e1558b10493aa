package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/repository"
)

func TestMessagesAreSanitizedAndScoped(t *testing.T) {
	db := setupServiceDB(t)
	activity := &stubActivityRecorder{}
	svc := NewMessageService(repository.NewMessageRepository(db), activity, newValidator(), zerolog.Nop())
	ctx := context.Background()
	author := judge(2, auth.ManageAnnouncements)

	_, err := svc.Create(ctx, author, dto.MessageRequest{Title: "Welcome", Content: "<script>alert(1)</script><p>Judging opens Monday</p>", Public: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, dto.MessageRequest{Title: "Judges only", Content: "Calibration at noon"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, author, dto.MessageRequest{Title: "Empty", Content: "<script>alert(1)</script>"})
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.Create(ctx, judge(3), dto.MessageRequest{Title: "Nope", Content: "Nope"})
	require.ErrorIs(t, err, ErrForbidden)

	public, err := svc.List(ctx, auth.Anonymous)
	require.NoError(t, err)
	require.Len(t, public.Messages, 1)
	require.Equal(t, "<p>Judging opens Monday</p>", public.Messages[0].Content)
	require.Equal(t, "Judge", public.Messages[0].AuthorName)

	internal, err := svc.List(ctx, judge(3))
	require.NoError(t, err)
	require.Len(t, internal.Messages, 2)
	require.Len(t, activity.entries, 2)
}
