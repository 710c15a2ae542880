package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrBucketNotConfigured is returned when no upload bucket is configured.
	ErrBucketNotConfigured = errors.New("BUCKET_NAME not configured")
	// ErrTableNotConfigured is returned when no image table is configured.
	ErrTableNotConfigured = errors.New("TABLE_NAME not configured")
	// ErrDuplicateTitle is matched by DuplicateTitleError.
	ErrDuplicateTitle = errors.New("duplicate title")
	// ErrImageNotFound is returned when the addressed image row does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrObjectMissing is returned by Confirm when nothing was uploaded under the key.
	ErrObjectMissing = errors.New("Upload not found in storage") //nolint:staticcheck
	// ErrCorruptData is returned by List when a stored row can not be served.
	ErrCorruptData = errors.New("Corrupt data") //nolint:staticcheck
)

// DuplicateTitleError carries the rejected title. Its message is shown to the uploader.
type DuplicateTitleError struct {
	Title string
}

func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf(`An image with the title "%s" already exists. Please choose a unique title.`, e.Title)
}

// Is makes errors.Is(err, ErrDuplicateTitle) true.
func (e *DuplicateTitleError) Is(target error) bool {
	return target == ErrDuplicateTitle
}

// CorruptRowError names the row List could not serve.
type CorruptRowError struct {
	ImageID string
	Field   string
	Reason  string
}

func (e *CorruptRowError) Error() string {
	return fmt.Sprintf("image %s: %s %s", e.ImageID, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrCorruptData) true.
func (e *CorruptRowError) Is(target error) bool {
	return target == ErrCorruptData
}
