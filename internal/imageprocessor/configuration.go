package imageprocessor

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Mode selects which artifacts SaveImage produces.
type Mode int

const (
	// FullHD stores the image scaled down to MaxWidth plus a square JPEG thumbnail.
	FullHD Mode = iota
	// Avatar stores only the square crop, at the image path.
	Avatar
)

func (m Mode) String() string {
	switch m {
	case FullHD:
		return "fullhd"
	case Avatar:
		return "avatar"
	default:
		return "unknown"
	}
}

// ParseMode maps "fullhd" and "avatar" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "fullhd", "":
		return FullHD, true
	case "avatar":
		return Avatar, true
	default:
		return FullHD, false
	}
}

const thumbnailSuffix = "thumbnail.jpg"

type Configuration struct {
	ThumbnailWidth  int
	ThumbnailHeight int
	MaxWidth        int
	StoragePrefix   string
	Quality         int
	StagingDir      string
	DeleteWorkers   int
	MaxPixels       int64 // width*height limit checked before decoding
}

func DefaultConfiguration() Configuration {
	return Configuration{
		ThumbnailWidth:  300,
		ThumbnailHeight: 300,
		MaxWidth:        1920,
		StoragePrefix:   "pictures/",
		Quality:         85,
		DeleteWorkers:   4,
		MaxPixels:       40_000_000,
	}
}

func (c Configuration) withDefaults() Configuration {
	d := DefaultConfiguration()
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = d.ThumbnailWidth
	}
	if c.ThumbnailHeight <= 0 {
		c.ThumbnailHeight = d.ThumbnailHeight
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.StoragePrefix == "" {
		c.StoragePrefix = d.StoragePrefix
	}
	if !strings.HasSuffix(c.StoragePrefix, "/") {
		c.StoragePrefix += "/"
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = d.Quality
	}
	if c.DeleteWorkers <= 0 {
		c.DeleteWorkers = d.DeleteWorkers
	}
	if c.MaxPixels <= 0 {
		c.MaxPixels = d.MaxPixels
	}
	return c
}

// PathInfo holds the generated names for one upload.
type PathInfo struct {
	Image         string // file name of the image
	Thumbnail     string // file name of the thumbnail
	Dir           string // prefix plus shard, with trailing slash
	ImagePath     string
	ThumbnailPath string
}

// MakePath names an artifact pair after the content hash, the current unix
// time and a random token, all hex encoded. The first four hash characters
// pick a two level shard directory.
func (c Configuration) MakePath(content []byte, ext string) PathInfo {
	return c.makePath(content, ext, time.Now(), rand.Uint64())
}

func (c Configuration) makePath(content []byte, ext string, now time.Time, token uint64) PathInfo {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	stem := hash + "." + strconv.FormatInt(now.Unix(), 16) + "." + strconv.FormatUint(token, 16) + "."
	image := stem + strings.TrimPrefix(ext, ".")
	thumb := stem + thumbnailSuffix

	prefix := c.StoragePrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	dir := prefix + image[0:2] + "/" + image[2:4] + "/"

	return PathInfo{
		Image:         image,
		Thumbnail:     thumb,
		Dir:           dir,
		ImagePath:     dir + image,
		ThumbnailPath: dir + thumb,
	}
}
