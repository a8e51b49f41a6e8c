package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mujeeb218353/youtube-backend/domain"
	"github.com/mujeeb218353/youtube-backend/services"
)

// stubVideoRepo records the filter List was queried with.
type stubVideoRepo struct {
	gotFilter domain.VideoListFilter
}

func (s *stubVideoRepo) Create(context.Context, *domain.Video) error { return nil }

func (s *stubVideoRepo) FindByID(context.Context, string) (*domain.Video, error) {
	return nil, domain.ErrNotFound
}

func (s *stubVideoRepo) List(_ context.Context, filter domain.VideoListFilter) ([]*domain.Video, int64, error) {
	s.gotFilter = filter
	return nil, 0, nil
}

func (s *stubVideoRepo) Update(context.Context, string, domain.VideoUpdate) (*domain.Video, error) {
	return nil, domain.ErrNotFound
}

func (s *stubVideoRepo) Delete(context.Context, string) error         { return domain.ErrNotFound }
func (s *stubVideoRepo) IncrementViews(context.Context, string) error { return domain.ErrNotFound }

type pageBody struct {
	Data struct {
		Total int64 `json:"total"`
		Page  int64 `json:"page"`
		Limit int64 `json:"limit"`
	} `json:"data"`
}

func listVideos(t *testing.T, repo *stubVideoRepo, target string) pageBody {
	t.Helper()
	a := NewAPI(nil, nil, services.NewVideoService(repo, nil, nil), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, a.ListVideosHandler(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body pageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// The response must echo the paging actually queried, including the defaults
// applied when the request omits page/limit.
func TestListVideosHandler_PagingDefaultsEchoed(t *testing.T) {
	repo := &stubVideoRepo{}
	body := listVideos(t, repo, "/api/v1/videos")

	assert.Equal(t, int64(1), repo.gotFilter.Page)
	assert.Equal(t, int64(10), repo.gotFilter.Limit)
	assert.Equal(t, repo.gotFilter.Page, body.Data.Page)
	assert.Equal(t, repo.gotFilter.Limit, body.Data.Limit)
}

func TestListVideosHandler_ExplicitPaging(t *testing.T) {
	repo := &stubVideoRepo{}
	body := listVideos(t, repo, "/api/v1/videos?page=3&limit=5")

	assert.Equal(t, int64(3), repo.gotFilter.Page)
	assert.Equal(t, int64(5), repo.gotFilter.Limit)
	assert.Equal(t, int64(3), body.Data.Page)
	assert.Equal(t, int64(5), body.Data.Limit)
}
