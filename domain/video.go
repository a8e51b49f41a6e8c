package domain

import "time"

// Video is a published (or draft) video record. File and thumbnail URLs point
// at the remote media host; the backend never stores the bytes itself.
type Video struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	OwnerID     string    `bson:"owner_id"      json:"ownerId"`
	Title       string    `bson:"title"         json:"title"`
	Description string    `bson:"description"   json:"description"`
	VideoFile   string    `bson:"video_file"    json:"videoFile"`
	Thumbnail   string    `bson:"thumbnail"     json:"thumbnail"`
	Duration    float64   `bson:"duration"      json:"duration"` // seconds, reported by the media host
	Views       int64     `bson:"views"         json:"views"`
	IsPublished bool      `bson:"is_published"  json:"isPublished"`
	CreatedAt   time.Time `bson:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at"    json:"updatedAt"`
}
