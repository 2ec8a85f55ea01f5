package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/sadopc/taskdesk/internal/model"
)

// UpdateProfilePicture uploads an image as the multipart field
// "profile_picture" and then re-fetches the user to pick up the new URL.
func (c *Client) UpdateProfilePicture(ctx context.Context, auth Auth, filename string, image io.Reader) (model.User, error) {
	if err := GuardGuest(auth, ActionUpdateProfilePicture); err != nil {
		return model.User{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profile_picture", filepath.Base(filename))
	if err != nil {
		return model.User{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return model.User{}, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.User{}, fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/api/profile/picture/", &auth, &buf)
	if err != nil {
		return model.User{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if _, err := c.send(req, true); err != nil {
		return model.User{}, err
	}

	return c.CurrentUser(ctx, auth)
}
