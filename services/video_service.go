package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/internal/media"
)

// VideoService implements video publishing and CRUD. Mutations are owner-only.
type VideoService struct {
	videos   domain.VideoRepository
	users    domain.UserRepository
	uploader media.Uploader
}

// NewVideoService wires the video service.
func NewVideoService(videos domain.VideoRepository, users domain.UserRepository, uploader media.Uploader) *VideoService {
	return &VideoService{videos: videos, users: users, uploader: uploader}
}

// PublishInput carries a new video upload.
type PublishInput struct {
	Title       string
	Description string

	VideoName     string
	VideoFile     io.Reader
	ThumbnailName string
	Thumbnail     io.Reader
}

// Publish uploads the video file and thumbnail to the media host and stores
// the video record, published immediately.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishInput) (*domain.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Title == "":
		return nil, serrors.NewValidation("title is required")
	case in.Description == "":
		return nil, serrors.NewValidation("description is required")
	case in.VideoFile == nil:
		return nil, serrors.NewValidation("video file is required")
	case in.Thumbnail == nil:
		return nil, serrors.NewValidation("thumbnail file is required")
	}

	videoAsset, err := s.uploader.Upload(ctx, in.VideoName, in.VideoFile)
	if err != nil {
		return nil, serrors.NewInternal("failed to upload video file", err)
	}
	thumbAsset, err := s.uploader.Upload(ctx, in.ThumbnailName, in.Thumbnail)
	if err != nil {
		return nil, serrors.NewInternal("failed to upload thumbnail", err)
	}

	now := time.Now().UTC()
	video := &domain.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Duration:    videoAsset.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, serrors.NewInternal("failed to create video", err)
	}

	log.Info().Str("video_id", video.ID).Str("owner_id", ownerID).Msg("video published")
	return video, nil
}

// Get fetches a video, bumps its view counter and, when a viewer is known,
// appends it to the viewer's watch history. Unpublished videos are visible to
// their owner only.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID string) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, serrors.NewNotFound("video not found")
		}
		return nil, serrors.NewInternal("failed to load video", err)
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, serrors.NewNotFound("video not found")
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("failed to increment views")
	} else {
		video.Views++
	}

	if viewerID != "" && viewerID != video.OwnerID {
		if err := s.users.AddWatchHistory(ctx, viewerID, videoID); err != nil {
			log.Warn().Err(err).Str("user_id", viewerID).Msg("failed to record watch history")
		}
	}
	return video, nil
}

// List returns a page of videos plus the total match count. Drafts are
// included only when the requester lists their own videos.
func (s *VideoService) List(ctx context.Context, filter domain.VideoListFilter, requesterID string) ([]*domain.Video, int64, error) {
	filter.Normalize()
	filter.IncludeUnpublished = filter.OwnerID != "" && filter.OwnerID == requesterID

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, 0, serrors.NewInternal("failed to list videos", err)
	}
	return videos, total, nil
}

// UpdateInput carries optional video fields; nil readers and empty strings
// are left untouched.
type UpdateInput struct {
	Title         string
	Description   string
	ThumbnailName string
	Thumbnail     io.Reader
}

// Update edits title, description and/or thumbnail. Owner only.
func (s *VideoService) Update(ctx context.Context, videoID, requesterID string, in UpdateInput) (*domain.Video, error) {
	if _, err := s.ownedVideo(ctx, videoID, requesterID); err != nil {
		return nil, err
	}

	upd := domain.VideoUpdate{}
	if t := strings.TrimSpace(in.Title); t != "" {
		upd.Title = &t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		upd.Description = &d
	}
	if in.Thumbnail != nil {
		asset, err := s.uploader.Upload(ctx, in.ThumbnailName, in.Thumbnail)
		if err != nil {
			return nil, serrors.NewInternal("failed to upload thumbnail", err)
		}
		upd.Thumbnail = &asset.URL
	}
	if upd.Title == nil && upd.Description == nil && upd.Thumbnail == nil {
		return nil, serrors.NewValidation("nothing to update")
	}

	video, err := s.videos.Update(ctx, videoID, upd)
	if err != nil {
		return nil, serrors.NewInternal("failed to update video", err)
	}
	return video, nil
}

// Delete removes a video. Owner only.
func (s *VideoService) Delete(ctx context.Context, videoID, requesterID string) error {
	if _, err := s.ownedVideo(ctx, videoID, requesterID); err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return serrors.NewInternal("failed to delete video", err)
	}
	log.Info().Str("video_id", videoID).Msg("video deleted")
	return nil
}

// TogglePublish flips the published flag. Owner only.
func (s *VideoService) TogglePublish(ctx context.Context, videoID, requesterID string) (*domain.Video, error) {
	video, err := s.ownedVideo(ctx, videoID, requesterID)
	if err != nil {
		return nil, err
	}
	next := !video.IsPublished
	updated, err := s.videos.Update(ctx, videoID, domain.VideoUpdate{IsPublished: &next})
	if err != nil {
		return nil, serrors.NewInternal("failed to toggle publish status", err)
	}
	return updated, nil
}

func (s *VideoService) ownedVideo(ctx context.Context, videoID, requesterID string) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, serrors.NewNotFound("video not found")
		}
		return nil, serrors.NewInternal("failed to load video", err)
	}
	if video.OwnerID != requesterID {
		return nil, serrors.NewUnauthorized("only the owner can modify this video", nil)
	}
	return video, nil
}
