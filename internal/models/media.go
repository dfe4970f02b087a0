package models

// HasMedia is implemented by every entity that can own pictures and videos.
// The pair (MediaOwnerType, MediaOwnerID) is stored on the media rows.
type HasMedia interface {
	MediaOwnerType() OwnerType
	MediaOwnerID() string
}

// Picture references two storage artifacts that share the same content hash,
// timestamp and random suffix. In avatar mode Thumbnail equals Path.
type Picture struct {
	BaseModel
	OwnerType OwnerType `gorm:"type:varchar(32);not null;index:idx_pictures_owner" json:"owner_type"`
	OwnerID   string    `gorm:"type:varchar(36);not null;index:idx_pictures_owner" json:"owner_id"`
	Name      string    `json:"name"`
	Path      string    `gorm:"type:varchar(512);not null;index" json:"path"`
	Thumbnail string    `gorm:"type:varchar(512);not null;index" json:"thumbnail"`
}

// Paths lists the distinct artifacts backing the picture.
func (p *Picture) Paths() []string {
	if p.Thumbnail == "" || p.Thumbnail == p.Path {
		return []string{p.Path}
	}
	return []string{p.Path, p.Thumbnail}
}

type Video struct {
	BaseModel
	OwnerType OwnerType   `gorm:"type:varchar(32);not null;index:idx_videos_owner" json:"owner_type"`
	OwnerID   string      `gorm:"type:varchar(36);not null;index:idx_videos_owner" json:"owner_id"`
	Path      string      `gorm:"type:varchar(512);not null" json:"path"`
	Status    VideoStatus `gorm:"not null;default:1" json:"status"`
}

type MediaAsset struct {
	BaseModelWithDeleted
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	Pictures []Picture `gorm:"polymorphic:Owner;polymorphicValue:media_asset" json:"pictures,omitempty"`
	Video    *Video    `gorm:"polymorphic:Owner;polymorphicValue:media_asset" json:"video,omitempty"`
}

func (m *MediaAsset) MediaOwnerType() OwnerType { return OwnerTypeMediaAsset }
func (m *MediaAsset) MediaOwnerID() string      { return m.ID }
