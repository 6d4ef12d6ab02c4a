package api

import (
	"context"
	"io"
	"net/url"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
)

type ProfileUpdate struct {
	Nickname  *string `json:"nickname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type Profile struct {
	UID       string `json:"uid"`
	Nickname  string `json:"nickname"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (c *Client) UpdateUserProfile(ctx context.Context, uid string, p ProfileUpdate) (*Profile, error) {
	if uid == "" {
		return nil, apiclient.Invalid("updateUserProfile", "uid is required")
	}
	var out Profile
	if err := c.r.Put(ctx, "/user/"+url.PathEscape(uid)+"/profile", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Image struct {
	UID  int64  `json:"uid,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

// UploadImage sends one image as the multipart field "file".
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) (*Image, error) {
	if filename == "" {
		return nil, apiclient.Invalid("uploadImage", "file name is required")
	}
	var out Image
	if err := c.r.Upload(ctx, "/file/upload/image", "file", filename, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
