// Package storage computes on-disk locations for uploaded dish photos.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExt is used when the original filename has no usable extension.
const DefaultExt = ".jpg"

var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// Resolver maps dish identifiers to photo paths under a media root.
//
// Ownerless dishes live under <root>/dishes/<id>/, dishes with an owner under
// <root>/users/<owner>/dishes/<id>/. The split lets pre-authentication data
// coexist with per-user storage without a file migration.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at mediaRoot.
func NewResolver(mediaRoot string) *Resolver {
	return &Resolver{root: mediaRoot}
}

// DishPhotoPath returns the path for the dish's photo and creates all
// containing directories, so the caller can open-and-write unconditionally.
// The filename is always cover.<ext>; a second photo for the same dish
// overwrites the first.
func (r *Resolver) DishPhotoPath(dishID int64, originalFilename string, ownerID *int64) (string, error) {
	var dir string
	if ownerID != nil {
		dir = filepath.Join(r.root, "users", strconv.FormatInt(*ownerID, 10), "dishes", strconv.FormatInt(dishID, 10))
	} else {
		dir = filepath.Join(r.root, "dishes", strconv.FormatInt(dishID, 10))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}

	return filepath.Join(dir, "cover"+sanitizeExt(originalFilename)), nil
}

// PublicURL returns the public URL for a stored photo path. Local paths are
// served as-is; switching to object storage later only needs a change here.
func (r *Resolver) PublicURL(photoPath string) string {
	return photoPath
}

// sanitizeExt returns the lower-cased extension of filename, or DefaultExt
// when it is absent or not a simple alphanumeric extension.
func sanitizeExt(filename string) string {
	if filename == "" {
		return DefaultExt
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		return DefaultExt
	}
	return ext
}
