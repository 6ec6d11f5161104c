package petfriends

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ListPets lists pets visible to authKey, narrowed by filter.
func (c *Client) ListPets(ctx context.Context, authKey string, filter Filter) (*Response, error) {
	path := "api/pets?" + url.Values{"filter": {string(filter)}}.Encode()
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authKeyHeader, authKey)
	return c.do(req)
}

// AddNewPet creates a pet with a photo read from photoPath. When the file
// does not exist the request is still sent, without a pet_photo part, so the
// service decides how to answer.
func (c *Client) AddNewPet(ctx context.Context, authKey, name, animalType, age, photoPath string) (*Response, error) {
	body, contentType, err := c.multipartBody(petFields(name, animalType, age), photoPath)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "api/pets", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authKeyHeader, authKey)
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

// AddPetSimple creates a pet without a photo.
func (c *Client) AddPetSimple(ctx context.Context, authKey, name, animalType, age string) (*Response, error) {
	return c.sendForm(ctx, http.MethodPost, "api/create_pet_simple", authKey, petFields(name, animalType, age))
}

// SetPhoto attaches the photo at photoPath to an existing pet.
func (c *Client) SetPhoto(ctx context.Context, authKey, petID, photoPath string) (*Response, error) {
	body, contentType, err := c.multipartBody(nil, photoPath)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "api/pets/set_photo/"+url.PathEscape(petID), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authKeyHeader, authKey)
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

// UpdatePetInfo replaces the name, type and age of a pet.
func (c *Client) UpdatePetInfo(ctx context.Context, authKey, petID, name, animalType, age string) (*Response, error) {
	return c.sendForm(ctx, http.MethodPut, "api/pets/"+url.PathEscape(petID), authKey, petFields(name, animalType, age))
}

// DeletePet removes a pet. The service answers 200 with an empty body.
func (c *Client) DeletePet(ctx context.Context, authKey, petID string) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "api/pets/"+url.PathEscape(petID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authKeyHeader, authKey)
	return c.do(req)
}

type field struct {
	name, value string
}

// petFields keeps the order the service documents.
func petFields(name, animalType, age string) []field {
	return []field{
		{"name", name},
		{"animal_type", animalType},
		{"age", age},
	}
}

func (c *Client) sendForm(ctx context.Context, method, path, authKey string, fields []field) (*Response, error) {
	form := url.Values{}
	for _, f := range fields {
		form.Set(f.name, f.value)
	}
	req, err := c.newRequest(ctx, method, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set(authKeyHeader, authKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// multipartBody builds the form in memory. A missing photo file leaves the
// pet_photo part out; any other read failure is returned.
func (c *Client) multipartBody(fields []field, photoPath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if photoPath != "" {
		data, err := afero.ReadFile(c.fs, photoPath)
		switch {
		case err == nil:
			part, err := w.CreatePart(photoHeader(photoPath))
			if err != nil {
				return nil, "", fmt.Errorf("create photo part: %w", err)
			}
			if _, err := part.Write(data); err != nil {
				return nil, "", fmt.Errorf("write photo part: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			c.logger.Debug("photo not found, sending without pet_photo", "path", photoPath)
		default:
			return nil, "", fmt.Errorf("read photo %s: %w", photoPath, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// photoHeader describes the pet_photo part, typed by file extension the way
// browsers do.
func photoHeader(photoPath string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(photoPath)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pet_photo"; filename=%q`, filepath.Base(photoPath)))
	h.Set("Content-Type", contentType)
	return h
}
