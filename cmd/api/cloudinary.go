package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// avatarUploader stores a user's avatar image and returns its public URL.
type avatarUploader interface {
	UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error)
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func newCloudinaryUploader(cld *cloudinary.Cloudinary) *cloudinaryUploader {
	return &cloudinaryUploader{cld: cld}
}

// UploadAvatar uses the user id as public id so a new upload replaces the old
// picture.
func (u *cloudinaryUploader) UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "avatars",
		PublicID:       fmt.Sprintf("%d", userID),
		Overwrite:      api.Bool(true),
		Transformation: "w_300,h_300,c_fill,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}
