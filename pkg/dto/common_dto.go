package dto

import "io"

// AvatarFile carries an uploaded avatar image stream.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}
