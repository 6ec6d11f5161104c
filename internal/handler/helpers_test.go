package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leca/dt-petfriends/internal/config"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/router"
	"github.com/leca/dt-petfriends/internal/storage"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "owner@example.com"
	testPassword = "s3cret-pass"
	otherEmail   = "neighbour@example.com"
)

// newTestRouter builds the twin around in-memory SQLite and store, with two
// seeded accounts. A nil store means a temporary photo directory.
func newTestRouter(t *testing.T, cfg *config.Config, store storage.Storage) *router.Server {
	t.Helper()

	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if store == nil {
		store = storage.NewFileSystem(t.TempDir())
	}

	srv := router.New(db, store, cfg)
	_, err = srv.Handler.EnsureUser(testEmail, testPassword)
	require.NoError(t, err)
	_, err = srv.Handler.EnsureUser(otherEmail, testPassword)
	require.NoError(t, err)
	return srv
}

func defaultConfig() *config.Config {
	return &config.Config{
		MaxAge:        100,
		MaxPhotoBytes: 1 << 20,
	}
}

// testServer creates a test HTTP server backed by in-memory SQLite and a
// temporary photo directory, with two seeded accounts.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return serveRouter(t, newTestRouter(t, defaultConfig(), nil))
}

func serveRouter(t *testing.T, srv *router.Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

// record runs req through the router without a network round trip.
func record(srv *router.Server, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec.Result()
}

// failingStore stores nothing; every other call reaches the wrapped store.
type failingStore struct {
	storage.Storage
}

func (failingStore) Store(string, string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

// makeJPEG creates a small valid JPEG image in memory.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// getKey logs in and returns the raw response.
func getKey(t *testing.T, ts *httptest.Server, email, password string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/key", nil)
	require.NoError(t, err)
	req.Header.Set("email", email)
	req.Header.Set("password", password)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// login returns a valid auth key for email.
func login(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	resp := getKey(t, ts, email, testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeResponse(t, resp, &body)
	require.NotEmpty(t, body["key"])
	return body["key"]
}

func authReq(t *testing.T, method, url, key string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("auth_key", key)
	}
	return req
}

func do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// petForm builds a multipart body with the pet fields and, when photo is
// non-nil, a pet_photo file part.
func petForm(t *testing.T, name, animalType, age string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", name))
	require.NoError(t, w.WriteField("animal_type", animalType))
	require.NoError(t, w.WriteField("age", age))
	if photo != nil {
		fw, err := w.CreateFormFile("pet_photo", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func createPet(t *testing.T, ts *httptest.Server, key, name, animalType, age string, photo []byte) *http.Response {
	t.Helper()
	body, ct := petForm(t, name, animalType, age, photo)
	req := authReq(t, http.MethodPost, ts.URL+"/api/pets", key, body)
	req.Header.Set("Content-Type", ct)
	return do(t, req)
}

// createPetOK creates a pet and returns the decoded record.
func createPetOK(t *testing.T, ts *httptest.Server, key, name string) petResult {
	t.Helper()
	resp := createPet(t, ts, key, name, "рысь", "2", makeJPEG(t, 32, 32))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pet petResult
	decodeResponse(t, resp, &pet)
	return pet
}

func updatePet(t *testing.T, ts *httptest.Server, key, petID, name, animalType, age string) *http.Response {
	t.Helper()
	form := url.Values{"name": {name}, "animal_type": {animalType}, "age": {age}}
	req := authReq(t, http.MethodPut, ts.URL+"/api/pets/"+petID, key, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, req)
}

func listPets(t *testing.T, ts *httptest.Server, key, filter string) []petResult {
	t.Helper()
	resp := do(t, authReq(t, http.MethodGet, ts.URL+"/api/pets?filter="+url.QueryEscape(filter), key, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Pets []petResult `json:"pets"`
	}
	decodeResponse(t, resp, &body)
	return body.Pets
}

// decodeResponse decodes the JSON body into the provided target.
func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", data)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// petResult represents the fields we check in pet responses.
type petResult struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	AnimalType string `json:"animal_type"`
	Age        string `json:"age"`
	PetPhoto   string `json:"pet_photo"`
	CreatedAt  string `json:"created_at"`
}
