package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
)

// fakeVideoRepo is an in-memory VideoRepository.
type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*domain.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*domain.Video)}
}

func (r *fakeVideoRepo) Create(_ context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *video
	r.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, id string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) List(_ context.Context, filter domain.VideoListFilter) ([]*domain.Video, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Video
	for _, v := range r.videos {
		if !filter.IncludeUnpublished && !v.IsPublished {
			continue
		}
		if filter.OwnerID != "" && v.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(v.Title, filter.Query) && !strings.Contains(v.Description, filter.Query) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVideoRepo) Update(_ context.Context, id string, upd domain.VideoUpdate) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Description != nil {
		v.Description = *upd.Description
	}
	if upd.Thumbnail != nil {
		v.Thumbnail = *upd.Thumbnail
	}
	if upd.IsPublished != nil {
		v.IsPublished = *upd.IsPublished
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Views++
	return nil
}

func newTestVideoService(videos *fakeVideoRepo, users *fakeUserRepo) *VideoService {
	return NewVideoService(videos, users, &fakeUploader{})
}

func publishTestVideo(t *testing.T, svc *VideoService, ownerID string) *domain.Video {
	t.Helper()
	video, err := svc.Publish(context.Background(), ownerID, PublishInput{
		Title:         "Gophers in the wild",
		Description:   "A documentary",
		VideoName:     "gophers.mp4",
		VideoFile:     strings.NewReader("vid"),
		ThumbnailName: "thumb.png",
		Thumbnail:     strings.NewReader("img"),
	})
	require.NoError(t, err)
	return video
}

func TestVideoService_Publish(t *testing.T) {
	svc := newTestVideoService(newFakeVideoRepo(), newFakeUserRepo())

	video := publishTestVideo(t, svc, "owner-1")
	assert.Equal(t, "owner-1", video.OwnerID)
	assert.True(t, video.IsPublished)
	assert.NotEmpty(t, video.VideoFile)
	assert.NotEmpty(t, video.Thumbnail)
	assert.Equal(t, float64(42), video.Duration)
}

func TestVideoService_Publish_Validation(t *testing.T) {
	svc := newTestVideoService(newFakeVideoRepo(), newFakeUserRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		in   PublishInput
	}{
		{"missing title", PublishInput{Description: "d", VideoFile: strings.NewReader("v"), Thumbnail: strings.NewReader("t")}},
		{"missing description", PublishInput{Title: "t", VideoFile: strings.NewReader("v"), Thumbnail: strings.NewReader("t")}},
		{"missing video file", PublishInput{Title: "t", Description: "d", Thumbnail: strings.NewReader("t")}},
		{"missing thumbnail", PublishInput{Title: "t", Description: "d", VideoFile: strings.NewReader("v")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Publish(ctx, "owner-1", tc.in)
			assert.Equal(t, 400, serrors.StatusCode(err))
		})
	}
}

func TestVideoService_GetCountsViewsAndHistory(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestVideoService(newFakeVideoRepo(), users)
	ctx := context.Background()

	sessions := newTestSessionService(users)
	viewer := registerAlice(t, sessions)
	video := publishTestVideo(t, svc, "owner-1")

	got, err := svc.Get(ctx, video.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)

	stored, err := users.FindByID(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{video.ID}, stored.WatchHistory)
}

func TestVideoService_Get_UnpublishedHiddenFromOthers(t *testing.T) {
	videos := newFakeVideoRepo()
	svc := newTestVideoService(videos, newFakeUserRepo())
	ctx := context.Background()

	video := publishTestVideo(t, svc, "owner-1")
	_, err := svc.TogglePublish(ctx, video.ID, "owner-1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, video.ID, "someone-else")
	assert.Equal(t, 404, serrors.StatusCode(err))

	// The owner still sees the draft.
	_, err = svc.Get(ctx, video.ID, "owner-1")
	assert.NoError(t, err)
}

func TestVideoService_OwnerOnlyMutations(t *testing.T) {
	svc := newTestVideoService(newFakeVideoRepo(), newFakeUserRepo())
	ctx := context.Background()
	video := publishTestVideo(t, svc, "owner-1")

	_, err := svc.Update(ctx, video.ID, "intruder", UpdateInput{Title: "hijacked"})
	assert.Equal(t, 401, serrors.StatusCode(err))

	err = svc.Delete(ctx, video.ID, "intruder")
	assert.Equal(t, 401, serrors.StatusCode(err))

	_, err = svc.TogglePublish(ctx, video.ID, "intruder")
	assert.Equal(t, 401, serrors.StatusCode(err))

	updated, err := svc.Update(ctx, video.ID, "owner-1", UpdateInput{Title: "Director's cut"})
	require.NoError(t, err)
	assert.Equal(t, "Director's cut", updated.Title)

	require.NoError(t, svc.Delete(ctx, video.ID, "owner-1"))
	_, err = svc.Get(ctx, video.ID, "owner-1")
	assert.Equal(t, 404, serrors.StatusCode(err))
}

func TestVideoService_ListDefaultsAndDrafts(t *testing.T) {
	videos := newFakeVideoRepo()
	svc := newTestVideoService(videos, newFakeUserRepo())
	ctx := context.Background()

	published := publishTestVideo(t, svc, "owner-1")
	draft := publishTestVideo(t, svc, "owner-1")
	_, err := svc.TogglePublish(ctx, draft.ID, "owner-1")
	require.NoError(t, err)

	// Anonymous listing sees only published videos.
	list, total, err := svc.List(ctx, domain.VideoListFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)

	// Owners listing their own videos see drafts too.
	_, total, err = svc.List(ctx, domain.VideoListFilter{OwnerID: "owner-1"}, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
