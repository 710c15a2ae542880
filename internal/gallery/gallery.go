// Package gallery implements the upload, listing and deletion flows on top of the metadata store
// and the object store.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/imageprobe"
	"github.com/mirror-ball/mirrorball/internal/objectstore"
	"github.com/mirror-ball/mirrorball/internal/store"
)

const (
	// DefaultListLimit is used when the caller does not ask for a limit.
	DefaultListLimit = 50
	// MaxListLimit caps any requested limit.
	MaxListLimit = 100
	// DefaultPresignExpiry is how long an upload URL stays valid.
	DefaultPresignExpiry = 15 * time.Minute
	// DefaultProbeBytes is how much of an upload is read to find its dimensions.
	DefaultProbeBytes = 64 * 1024

	unknownOwner    = "unknown"
	untitled        = "Untitled"
	unknownFileName = "unknown"
)

var whitespace = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// Options tune the service.
type Options struct {
	PresignExpiry   time.Duration
	ProbeDimensions bool
	ProbeBytes      int64
	Clock           clockwork.Clock
	NewID           func() string
}

// Service runs the gallery flows.
// A nil images store means no image table is configured; an unconfigured object store means no bucket.
type Service struct {
	images  store.Images
	objects *objectstore.Store
	opts    Options
}

// New creates the service and fills unset options with defaults.
func New(images store.Images, objects *objectstore.Store, opts Options) *Service {
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = DefaultPresignExpiry
	}

	if opts.ProbeBytes <= 0 {
		opts.ProbeBytes = DefaultProbeBytes
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if opts.NewID == nil {
		opts.NewID = func() string { return ulid.Make().String() }
	}

	return &Service{images: images, objects: objects, opts: opts}
}

// PresignRequest is a validated upload request.
type PresignRequest struct {
	ContentType string
	FileName    string
	Title       string
	Dimensions  *string
	FileSize    *int64
	Owner       string
}

// PresignResult tells the browser where to upload and where the picture will be served.
type PresignResult struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	PublicURL string `json:"publicUrl"`
	ImageID   string `json:"imageId"`
}

// SanitizeTitle replaces every whitespace run with a dash.
func SanitizeTitle(title string) string {
	return whitespace.ReplaceAllString(title, "-")
}

// ObjectKey is where an upload is stored.
func ObjectKey(owner, imageID, fileName string) string {
	return "images/" + owner + "/" + imageID + "/" + fileName
}

// Presign reserves an id, signs the upload URL and records a pending row.
func (s *Service) Presign(ctx context.Context, req PresignRequest) (res *PresignResult, err error) {
	defer func() { observe("presign", err) }()

	if !s.objects.Configured() {
		return nil, ErrBucketNotConfigured
	}

	if s.images == nil {
		return nil, ErrTableNotConfigured
	}

	title := SanitizeTitle(req.Title)

	// uniqueness is checked on the stored form so "a b" and "a-b" collide
	_, err = s.images.FindByTitle(ctx, title)

	switch {
	case err == nil:
		return nil, &DuplicateTitleError{Title: req.Title}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check title: %w", err)
	}

	owner := req.Owner
	if owner == "" {
		owner = unknownOwner
	}

	id := s.opts.NewID()
	key := ObjectKey(owner, id, req.FileName)

	uploadURL, err := s.objects.PresignPut(ctx, key, req.ContentType, s.opts.PresignExpiry)
	if err != nil {
		return nil, err
	}

	publicURL := s.objects.PublicURL(key)

	img := &models.Image{
		ImageID:          id,
		Owner:            owner,
		Title:            title,
		OriginalFileName: req.FileName,
		Dimensions:       req.Dimensions,
		FileSize:         req.FileSize,
		DevName:          owner,
		UploadTime:       s.opts.Clock.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		S3Key:            key,
		PublicURL:        publicURL,
		Status:           models.StatusPending,
	}

	if err = s.images.Create(ctx, img); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// the sql store also enforces unique titles
			return nil, &DuplicateTitleError{Title: req.Title}
		}

		return nil, fmt.Errorf("record pending image: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("imageId", id).Str("owner", owner).Str("key", key).Msg("upload presigned")

	return &PresignResult{
		UploadURL: uploadURL,
		ObjectKey: key,
		PublicURL: publicURL,
		ImageID:   id,
	}, nil
}

// Confirm marks a pending upload complete.
// With a bucket configured the object must exist; its size and dimensions fill gaps in the row.
func (s *Service) Confirm(ctx context.Context, imageID string) (img *models.Image, err error) {
	defer func() { observe("confirm", err) }()

	if s.images == nil {
		return nil, ErrTableNotConfigured
	}

	current, err := s.images.Get(ctx, imageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrImageNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	var info store.ObjectInfo

	if s.objects.Configured() && current.S3Key != "" {
		info, err = s.inspect(ctx, current)
		if err != nil {
			return nil, err
		}
	}

	img, err = s.images.Confirm(ctx, imageID, info)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrImageNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("confirm image: %w", err)
	}

	return img, nil
}

func (s *Service) inspect(ctx context.Context, img *models.Image) (store.ObjectInfo, error) {
	var info store.ObjectInfo

	size, err := s.objects.Head(ctx, img.S3Key)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		return info, ErrObjectMissing
	}

	if err != nil {
		return info, fmt.Errorf("inspect upload: %w", err)
	}

	if img.FileSize == nil {
		info.FileSize = &size
	}

	if img.Dimensions != nil || !s.opts.ProbeDimensions {
		return info, nil
	}

	logger := zerolog.Ctx(ctx).With().Str("imageId", img.ImageID).Logger()

	prefix, err := s.objects.ReadPrefix(ctx, img.S3Key, s.opts.ProbeBytes)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read upload for dimension probe")

		return info, nil
	}

	probed, err := imageprobe.Probe(prefix)
	if err != nil {
		logger.Debug().Err(err).Msg("could not probe dimensions")

		return info, nil
	}

	dims := probed.String()
	info.Dimensions = &dims

	return info, nil
}

// ListQuery selects images. A Limit outside 1..MaxListLimit is normalized.
type ListQuery struct {
	Owner   string
	DevName string
	Limit   int
}

// List returns images ready to be served, missing titles and file names filled in.
func (s *Service) List(ctx context.Context, q ListQuery) (images []models.Image, err error) {
	defer func() { observe("list", err) }()

	if s.images == nil {
		return nil, ErrTableNotConfigured
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	limit = min(limit, MaxListLimit)

	rows, err := s.images.List(ctx, store.ImageFilter{Owner: q.Owner, DevName: q.DevName, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images = make([]models.Image, 0, len(rows))

	for _, row := range rows {
		if row.Title == "" {
			row.Title = untitled
		}

		if row.OriginalFileName == "" {
			row.OriginalFileName = unknownFileName
		}

		if !validURL(row.PublicURL) {
			return nil, &CorruptRowError{ImageID: row.ImageID, Field: "publicUrl", Reason: "is not a valid url"}
		}

		images = append(images, row)
	}

	return images, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme != "" && u.Host != ""
}

// Delete removes the stored object, when there is one, and then the row.
func (s *Service) Delete(ctx context.Context, imageID string) (err error) {
	defer func() { observe("delete", err) }()

	if s.images == nil {
		return ErrTableNotConfigured
	}

	img, err := s.images.Get(ctx, imageID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrImageNotFound
	}

	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	if s.objects.Configured() && img.S3Key != "" {
		if err = s.objects.Delete(ctx, img.S3Key); err != nil {
			return err
		}
	}

	if err = s.images.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("delete image row: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("imageId", imageID).Msg("image deleted")

	return nil
}
