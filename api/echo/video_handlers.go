package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mujeeb218353/youtube-backend/api"
	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/middleware"
	"github.com/mujeeb218353/youtube-backend/services"
)

// PublishVideoHandler uploads a new video with its thumbnail.
func (a *API) PublishVideoHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	in := services.PublishInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	videoHeader, videoFile, err := formFile(c, "videoFile")
	if err != nil {
		return serrors.NewValidation("video file is required")
	}
	defer videoFile.Close()
	in.VideoName = videoHeader.Filename
	in.VideoFile = videoFile

	thumbHeader, thumbFile, err := formFile(c, "thumbnail")
	if err != nil {
		return serrors.NewValidation("thumbnail file is required")
	}
	defer thumbFile.Close()
	in.ThumbnailName = thumbHeader.Filename
	in.Thumbnail = thumbFile

	video, err := a.videos.Publish(c.Request().Context(), user.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.NewResponse(http.StatusCreated, video, "video created successfully"))
}

// ListVideosHandler returns a page of videos filtered by query parameters:
// page, limit, query, sortBy, sortType (asc/desc), userId.
func (a *API) ListVideosHandler(c echo.Context) error {
	filter := domain.VideoListFilter{
		Query:   c.QueryParam("query"),
		SortBy:  c.QueryParam("sortBy"),
		SortAsc: c.QueryParam("sortType") == "asc",
		OwnerID: c.QueryParam("userId"),
	}
	filter.Page, _ = strconv.ParseInt(c.QueryParam("page"), 10, 64)
	filter.Limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	// Normalize here too so the response echoes the paging actually queried.
	filter.Normalize()

	requesterID := ""
	if user, ok := domain.UserFromContext(c.Request().Context()); ok {
		requesterID = user.ID
	}

	videos, total, err := a.videos.List(c.Request().Context(), filter, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, &api.PageResponse{
		Items: videos,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, "videos fetched"))
}

// GetVideoHandler returns a single video, counting the view.
func (a *API) GetVideoHandler(c echo.Context) error {
	viewerID := ""
	if user, ok := domain.UserFromContext(c.Request().Context()); ok {
		viewerID = user.ID
	}

	video, err := a.videos.Get(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, video, "video fetched"))
}

// UpdateVideoHandler edits title, description and/or thumbnail.
func (a *API) UpdateVideoHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}

	in := services.UpdateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if header, file, err := formFile(c, "thumbnail"); err == nil {
		defer file.Close()
		in.ThumbnailName = header.Filename
		in.Thumbnail = file
	}

	video, err := a.videos.Update(c.Request().Context(), c.Param("id"), user.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, video, "video updated successfully"))
}

// DeleteVideoHandler removes a video.
func (a *API) DeleteVideoHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	if err := a.videos.Delete(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, nil, "video deleted successfully"))
}

// TogglePublishHandler flips the published flag.
func (a *API) TogglePublishHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	video, err := a.videos.TogglePublish(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, video, "publish status toggled"))
}
