package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/domain/event"
	"github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/notification"
	notificationMocks "github.com/match-hub/match-hub/internal/domain/notification/mocks"
	"github.com/match-hub/match-hub/internal/domain/team"
	teamMocks "github.com/match-hub/match-hub/internal/domain/team/mocks"
)

func TestNewService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(notificationMocks.NewMockRepository(ctrl), zerolog.Nop())

	require.NotNil(t, service)
}

func TestService_CreateNotifications(t *testing.T) {
	t.Run("one batch for all recipients", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		ctx := context.Background()
		leader, coLeader := uuid.New(), uuid.New()

		repo.EXPECT().
			CreateBatch(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, batch []*notification.Notification) error {
				require.Len(t, batch, 2)
				assert.Equal(t, leader, batch[0].RecipientID)
				assert.Equal(t, coLeader, batch[1].RecipientID)
				for _, n := range batch {
					assert.Equal(t, notification.TypeMatchApplication, n.Type)
					assert.Equal(t, "Match application", n.Title)
					assert.Equal(t, "/matches/1", n.Link)
				}
				return nil
			})

		result, err := service.CreateNotifications(ctx, []uuid.UUID{leader, coLeader, leader, uuid.Nil}, notification.TypeMatchApplication, "content", "/matches/1")

		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("no recipients skips the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := NewService(notificationMocks.NewMockRepository(ctrl), zerolog.Nop())

		result, err := service.CreateNotifications(context.Background(), nil, notification.TypeMatchApplication, "c", "/l")

		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("unknown type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := NewService(notificationMocks.NewMockRepository(ctrl), zerolog.Nop())

		_, err := service.CreateNotifications(context.Background(), []uuid.UUID{uuid.New()}, notification.Type("X"), "c", "/l")

		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		dbErr := errors.New("connection refused")

		repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(dbErr)

		_, err := service.CreateNotifications(context.Background(), []uuid.UUID{uuid.New()}, notification.TypeMatchApplication, "c", "/l")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := notificationMocks.NewMockRepository(ctrl)
	service := NewService(repo, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	repo.EXPECT().
		List(ctx, notification.Filter{RecipientID: userID, UnreadOnly: true}, 100, 0).
		Return([]*notification.Notification{}, nil)

	items, err := service.List(ctx, userID, true, 500, -3)

	require.NoError(t, err)
	assert.NotNil(t, items)
}

func TestService_MarkAsRead(t *testing.T) {
	t.Run("marks unread notification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		ctx := context.Background()
		userID := uuid.New()
		n := notification.NewNotification(userID, notification.TypeMatchApplicationAccepted, "c", "/matches")

		repo.EXPECT().GetByID(ctx, n.NotificationID).Return(n, nil)
		repo.EXPECT().MarkRead(ctx, n.NotificationID, gomock.Any()).Return(nil)

		require.NoError(t, service.MarkAsRead(ctx, userID, n.NotificationID))
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		userID := uuid.New()
		n := notification.NewNotification(userID, notification.TypeMatchApplicationAccepted, "c", "/matches")
		require.NoError(t, n.MarkRead(userID, time.Now()))

		repo.EXPECT().GetByID(gomock.Any(), n.NotificationID).Return(n, nil)

		require.NoError(t, service.MarkAsRead(context.Background(), userID, n.NotificationID))
	})

	t.Run("foreign notification looks missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		n := notification.NewNotification(uuid.New(), notification.TypeMatchApplication, "c", "/matches")

		repo.EXPECT().GetByID(gomock.Any(), n.NotificationID).Return(n, nil)

		err := service.MarkAsRead(context.Background(), uuid.New(), n.NotificationID)

		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		service := NewService(repo, zerolog.Nop())
		repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(nil, nil)

		err := service.MarkAsRead(context.Background(), uuid.New(), uuid.New())

		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

func TestService_MarkAllAsReadAndUnreadCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := notificationMocks.NewMockRepository(ctrl)
	service := NewService(repo, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	repo.EXPECT().CountUnread(ctx, userID).Return(int64(3), nil)
	repo.EXPECT().MarkAllRead(ctx, userID, gomock.Any()).Return(int64(3), nil)

	count, err := service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	marked, err := service.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)
}

func TestEventHandler_Handle(t *testing.T) {
	ownerTeam, applicantTeam := uuid.New(), uuid.New()
	post := match.NewPost(ownerTeam, "Sunday friendly", "c", time.Now().Add(time.Hour), "a", nil, 0, 0)

	t.Run("application created notifies owner leaders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notificationMocks.NewMockRepository(ctrl)
		directory := teamMocks.NewMockDirectory(ctrl)
		handler := NewEventHandler(NewService(repo, zerolog.Nop()), directory, zerolog.Nop())
		leaders := []uuid.UUID{uuid.New(), uuid.New()}
		app := match.NewApplication(post.PostID, applicantTeam, "")

		directory.EXPECT().MemberUserIDs(gomock.Any(), ownerTeam, team.LeadershipRoles).Return(leaders, nil)
		repo.EXPECT().
			CreateBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, batch []*notification.Notification) error {
				require.Len(t, batch, 2)
				assert.Equal(t, "Blue Hawks applied to your match.", batch[0].Content)
				assert.Equal(t, "/matches/"+post.PostID.String(), batch[0].Link)
				assert.Equal(t, notification.TypeMatchApplication, batch[0].Type)
				return nil
			})

		err := handler.Handle(context.Background(), event.NewApplicationCreated(post, app, "Blue Hawks"))

		require.NoError(t, err)
	})

	t.Run("processed notifies applicant leaders", func(t *testing.T) {
		tests := []struct {
			status   match.ApplicationStatus
			expected notification.Type
			content  string
		}{
			{match.ApplicationStatusAccepted, notification.TypeMatchApplicationAccepted, `Your application to "Sunday friendly" was accepted.`},
			{match.ApplicationStatusRejected, notification.TypeMatchApplicationRejected, `Your application to "Sunday friendly" was rejected.`},
		}

		for _, tt := range tests {
			t.Run(string(tt.status), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				repo := notificationMocks.NewMockRepository(ctrl)
				directory := teamMocks.NewMockDirectory(ctrl)
				handler := NewEventHandler(NewService(repo, zerolog.Nop()), directory, zerolog.Nop())
				app := match.NewApplication(post.PostID, applicantTeam, "")
				app.Status = tt.status

				directory.EXPECT().MemberUserIDs(gomock.Any(), applicantTeam, team.LeadershipRoles).Return([]uuid.UUID{uuid.New()}, nil)
				repo.EXPECT().
					CreateBatch(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, batch []*notification.Notification) error {
						require.Len(t, batch, 1)
						assert.Equal(t, tt.expected, batch[0].Type)
						assert.Equal(t, tt.content, batch[0].Content)
						assert.Equal(t, "/matches", batch[0].Link)
						return nil
					})

				require.NoError(t, handler.Handle(context.Background(), event.NewApplicationProcessed(post, app)))
			})
		}
	})

	t.Run("team without leaders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := teamMocks.NewMockDirectory(ctrl)
		handler := NewEventHandler(NewService(notificationMocks.NewMockRepository(ctrl), zerolog.Nop()), directory, zerolog.Nop())
		app := match.NewApplication(post.PostID, applicantTeam, "")
		app.Status = match.ApplicationStatusRejected

		directory.EXPECT().MemberUserIDs(gomock.Any(), applicantTeam, gomock.Any()).Return(nil, nil)

		require.NoError(t, handler.Handle(context.Background(), event.NewApplicationProcessed(post, app)))
	})

	t.Run("roster failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		directory := teamMocks.NewMockDirectory(ctrl)
		handler := NewEventHandler(NewService(notificationMocks.NewMockRepository(ctrl), zerolog.Nop()), directory, zerolog.Nop())
		rosterErr := errors.New("timeout")
		app := match.NewApplication(post.PostID, applicantTeam, "")

		directory.EXPECT().MemberUserIDs(gomock.Any(), ownerTeam, gomock.Any()).Return(nil, rosterErr)

		err := handler.Handle(context.Background(), event.NewApplicationCreated(post, app, "Hawks"))

		assert.ErrorIs(t, err, rosterErr)
	})
}

type recordingPusher struct {
	pushed []*notification.Notification
}

func (p *recordingPusher) Push(n *notification.Notification) {
	p.pushed = append(p.pushed, n)
}

func TestService_CreateNotificationsPushes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := notificationMocks.NewMockRepository(ctrl)
	pusher := &recordingPusher{}
	service := NewService(repo, zerolog.Nop(), WithPusher(pusher))
	recipient := uuid.New()

	repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(nil)

	created, err := service.CreateNotifications(context.Background(), []uuid.UUID{recipient}, notification.TypeMatchApplicationAccepted, "ok", "/matches")

	require.NoError(t, err)
	require.Len(t, pusher.pushed, 1)
	assert.Same(t, created[0], pusher.pushed[0])

	repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	_, err = service.CreateNotifications(context.Background(), []uuid.UUID{recipient}, notification.TypeMatchApplicationAccepted, "ok", "/matches")
	require.Error(t, err)
	assert.Len(t, pusher.pushed, 1, "failed batches are not pushed")
}
