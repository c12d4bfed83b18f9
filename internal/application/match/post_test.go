package match

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/application/outbox"
	domainMatch "github.com/match-hub/match-hub/internal/domain/match"
	matchMocks "github.com/match-hub/match-hub/internal/domain/match/mocks"
	"github.com/match-hub/match-hub/internal/domain/team"
	teamMocks "github.com/match-hub/match-hub/internal/domain/team/mocks"
	"github.com/match-hub/match-hub/internal/infrastructure/memory"
)

func validInput() RegisterPostInput {
	place := "Riverside Field"
	return RegisterPostInput{
		Title:     "Sunday friendly",
		Content:   "5v5, bring bibs",
		MatchDate: time.Now().Add(72 * time.Hour),
		Address:   "1 River Rd",
		PlaceName: &place,
		Lat:       37.5,
		Lng:       127.0,
	}
}

func TestRegisterPostInput_Validate(t *testing.T) {
	now := time.Now()
	tooLongPlace := strings.Repeat("p", 121)

	tests := []struct {
		name   string
		mutate func(in *RegisterPostInput)
		valid  bool
	}{
		{"valid", func(in *RegisterPostInput) {}, true},
		{"empty title", func(in *RegisterPostInput) { in.Title = "  " }, false},
		{"long title", func(in *RegisterPostInput) { in.Title = strings.Repeat("t", 101) }, false},
		{"title at limit", func(in *RegisterPostInput) { in.Title = strings.Repeat("t", 100) }, true},
		{"empty content", func(in *RegisterPostInput) { in.Content = "" }, false},
		{"past date", func(in *RegisterPostInput) { in.MatchDate = now.Add(-time.Minute) }, false},
		{"zero date", func(in *RegisterPostInput) { in.MatchDate = time.Time{} }, false},
		{"lat out of range", func(in *RegisterPostInput) { in.Lat = 90.5 }, false},
		{"lng out of range", func(in *RegisterPostInput) { in.Lng = -180.1 }, false},
		{"lng at edge", func(in *RegisterPostInput) { in.Lng = 180 }, true},
		{"missing address", func(in *RegisterPostInput) { in.Address = "" }, false},
		{"long address", func(in *RegisterPostInput) { in.Address = strings.Repeat("a", 256) }, false},
		{"long place", func(in *RegisterPostInput) { in.PlaceName = &tooLongPlace }, false},
		{"no place", func(in *RegisterPostInput) { in.PlaceName = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate(now)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput), "got %v", err)
			}
		})
	}
}

func TestService_RegisterPost(t *testing.T) {
	f := newFixture(t, Config{})

	post, err := f.service.RegisterPost(context.Background(), f.ownerUser, validInput())

	require.NoError(t, err)
	assert.Equal(t, f.ownerTeam, post.TeamID)
	assert.Equal(t, domainMatch.PostStatusOpen, post.Status)
	stored := f.storedPost(t, post.PostID)
	assert.Equal(t, "Sunday friendly", stored.Title)

	_, err = f.service.RegisterPost(context.Background(), f.memberUser, validInput())
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestService_DeletePost(t *testing.T) {
	t.Run("refuses with pending applications", func(t *testing.T) {
		f := newFixture(t, Config{})
		post := f.post(t, time.Now().Add(24*time.Hour))
		_, leader := f.applicantTeam("Alpha")
		_, err := f.service.ApplyToMatch(context.Background(), post.PostID, leader, "")
		require.NoError(t, err)

		err = f.service.DeletePost(context.Background(), post.PostID, f.ownerUser)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
		assert.False(t, f.storedPost(t, post.PostID).IsDeleted)

		require.NoError(t, f.service.CancelApplication(context.Background(), post.PostID, leader))
		require.NoError(t, f.service.DeletePost(context.Background(), post.PostID, f.ownerUser))
		assert.True(t, f.storedPost(t, post.PostID).IsDeleted)

		_, err = f.service.GetPost(context.Background(), post.PostID)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		err = f.service.DeletePost(context.Background(), post.PostID, f.ownerUser)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})

	t.Run("only the owner team", func(t *testing.T) {
		f := newFixture(t, Config{})
		post := f.post(t, time.Now().Add(24*time.Hour))
		_, stranger := f.applicantTeam("Strangers")

		err := f.service.DeletePost(context.Background(), post.PostID, stranger)

		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	})

	t.Run("concurrent modification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := matchMocks.NewMockRepository(ctrl)
		tx := matchMocks.NewMockTxManager(ctrl)
		directory := teamMocks.NewMockDirectory(ctrl)
		service := NewService(repo, tx, directory, memory.NewLocker(), outbox.NewPublisher(&recordingDispatcher{}, tx, zerolog.Nop()), Config{}, zerolog.Nop())

		userID, teamID := uuid.New(), uuid.New()
		post := domainMatch.NewPost(teamID, "t", "c", time.Now().Add(time.Hour), "a", nil, 0, 0)

		directory.EXPECT().MembershipOf(gomock.Any(), userID).Return(&team.Member{TeamID: teamID, UserID: userID, Role: team.RoleCoLeader}, nil)
		tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
		repo.EXPECT().GetPost(gomock.Any(), post.PostID).Return(post, nil)
		repo.EXPECT().HasApplicationWithStatus(gomock.Any(), post.PostID, domainMatch.ApplicationStatusPending).Return(false, nil)
		repo.EXPECT().UpdatePost(gomock.Any(), post, int64(1)).Return(domainMatch.ErrStaleWrite)

		err := service.DeletePost(context.Background(), post.PostID, userID)

		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
		assert.ErrorIs(t, err, domainMatch.ErrStaleWrite)
	})

	t.Run("store failure stays uncoded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := matchMocks.NewMockRepository(ctrl)
		tx := matchMocks.NewMockTxManager(ctrl)
		directory := teamMocks.NewMockDirectory(ctrl)
		service := NewService(repo, tx, directory, memory.NewLocker(), outbox.NewPublisher(&recordingDispatcher{}, tx, zerolog.Nop()), Config{}, zerolog.Nop())

		userID := uuid.New()
		dbErr := errors.New("connection reset")

		directory.EXPECT().MembershipOf(gomock.Any(), userID).Return(&team.Member{TeamID: uuid.New(), UserID: userID, Role: team.RoleLeader}, nil)
		tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
		repo.EXPECT().GetPost(gomock.Any(), gomock.Any()).Return(nil, dbErr)

		err := service.DeletePost(context.Background(), uuid.New(), userID)

		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, apperr.Code(""), apperr.CodeOf(err))
	})
}

func TestService_ListOpenPosts(t *testing.T) {
	f := newFixture(t, Config{})
	soon := f.post(t, time.Now().Add(time.Hour))
	later := f.post(t, time.Now().Add(48*time.Hour))
	f.post(t, time.Now().Add(-time.Hour))
	closed := f.post(t, time.Now().Add(2*time.Hour))
	_, leader := f.applicantTeam("Alpha")
	app, err := f.service.ApplyToMatch(context.Background(), closed.PostID, leader, "")
	require.NoError(t, err)
	_, err = f.service.AcceptApplication(context.Background(), closed.PostID, app.ApplicationID, f.ownerUser)
	require.NoError(t, err)

	posts, err := f.service.ListOpenPosts(context.Background(), nil, 0, 0)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, soon.PostID, posts[0].PostID)
	assert.Equal(t, later.PostID, posts[1].PostID)

	otherTeam := uuid.New()
	none, err := f.service.ListOpenPosts(context.Background(), &otherTeam, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_ListApplicants(t *testing.T) {
	f := newFixture(t, Config{})
	post := f.post(t, time.Now().Add(24*time.Hour))
	a1 := f.apply(t, post.PostID, "Alpha")
	a2 := f.apply(t, post.PostID, "Bravo")
	_, err := f.service.RejectApplication(context.Background(), post.PostID, a2.ApplicationID, f.ownerUser)
	require.NoError(t, err)

	applicants, err := f.service.ListApplicants(context.Background(), post.PostID, f.memberUser)

	require.NoError(t, err)
	require.Len(t, applicants, 2)
	assert.Equal(t, a1.ApplicationID, applicants[0].ApplicationID)
	assert.Equal(t, "Alpha", applicants[0].TeamName)
	assert.Equal(t, domainMatch.ApplicationStatusPending, applicants[0].Status)
	assert.Equal(t, "Bravo", applicants[1].TeamName)
	assert.Equal(t, domainMatch.ApplicationStatusRejected, applicants[1].Status)

	_, stranger := f.applicantTeam("Strangers")
	_, err = f.service.ListApplicants(context.Background(), post.PostID, stranger)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}
