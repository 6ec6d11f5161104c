package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/leca/dt-petfriends/internal/api"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/imageproc"
	"github.com/leca/dt-petfriends/internal/model"
	"github.com/leca/dt-petfriends/internal/storage"
)

const (
	filterMyPets = "my_pets"
	// formOverhead leaves room for the text fields next to the photo.
	formOverhead = 1 << 20
)

var errPhotoRequired = errors.New("pet_photo is required")

// ListPets handles GET /api/pets?filter=.
func (h *Handler) ListPets(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	var ownerID string
	switch filter := r.URL.Query().Get("filter"); filter {
	case "":
	case filterMyPets:
		ownerID = user.ID
	default:
		api.BadRequest(w, "Filter value is incorrect: "+filter)
		return
	}

	pets, err := h.DB.ListPets(ownerID)
	if err != nil {
		slog.Error("list pets", "error", err)
		api.InternalError(w, "failed to list pets")
		return
	}

	// An empty account must still yield a "pets" array.
	if pets == nil {
		pets = []*model.Pet{}
	}
	api.WriteJSON(w, http.StatusOK, api.PetList{Pets: pets})
}

// CreatePet handles POST /api/pets: multipart name, animal_type, age and
// the pet_photo file.
func (h *Handler) CreatePet(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	if !h.parseForm(w, r) {
		return
	}
	fields, ok := h.validFields(w, r)
	if !ok {
		return
	}

	data, photo, err := h.readPhoto(r)
	if err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	thumb, err := photo.DataURI(imageproc.ThumbnailSide)
	if err != nil {
		slog.Error("render thumbnail", "error", err)
		api.InternalError(w, "failed to process photo")
		return
	}

	pet := newPet(user.ID, fields)
	pet.PetPhoto = thumb

	if _, err := h.Store.Store(user.ID, pet.ID, bytes.NewReader(data)); err != nil {
		slog.Error("store photo", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to store photo")
		return
	}
	if err := h.DB.CreatePet(pet); err != nil {
		_ = h.Store.Delete(user.ID, pet.ID)
		slog.Error("create pet", "error", err)
		api.InternalError(w, "failed to create pet")
		return
	}

	slog.Info("pet created", "pet_id", pet.ID, "user_id", user.ID, "with_photo", true)
	api.WriteJSON(w, http.StatusOK, pet)
}

// CreatePetSimple handles POST /api/create_pet_simple: the same fields as
// CreatePet without a photo.
func (h *Handler) CreatePetSimple(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	if !h.parseForm(w, r) {
		return
	}
	fields, ok := h.validFields(w, r)
	if !ok {
		return
	}

	pet := newPet(user.ID, fields)
	if err := h.DB.CreatePet(pet); err != nil {
		slog.Error("create pet", "error", err)
		api.InternalError(w, "failed to create pet")
		return
	}

	slog.Info("pet created", "pet_id", pet.ID, "user_id", user.ID, "with_photo", false)
	api.WriteJSON(w, http.StatusOK, pet)
}

// SetPhoto handles POST /api/pets/set_photo/{pet_id}.
func (h *Handler) SetPhoto(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	pet, ok := h.ownedPet(w, user, chi.URLParam(r, "pet_id"))
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	data, photo, err := h.readPhoto(r)
	if err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	thumb, err := photo.DataURI(imageproc.ThumbnailSide)
	if err != nil {
		slog.Error("render thumbnail", "error", err)
		api.InternalError(w, "failed to process photo")
		return
	}

	previous := pet.PetPhoto
	pet.PetPhoto = thumb
	if err := h.DB.UpdatePet(pet); err != nil {
		slog.Error("update pet photo", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to update pet")
		return
	}
	if _, err := h.Store.Store(user.ID, pet.ID, bytes.NewReader(data)); err != nil {
		slog.Error("store photo", "pet_id", pet.ID, "error", err)
		pet.PetPhoto = previous
		if err := h.DB.UpdatePet(pet); err != nil {
			slog.Error("restore pet photo", "pet_id", pet.ID, "error", err)
		}
		api.InternalError(w, "failed to store photo")
		return
	}

	api.WriteJSON(w, http.StatusOK, pet)
}

// UpdatePet handles PUT /api/pets/{pet_id}. Submitting exactly the stored
// values is rejected with 400, matching the live service.
func (h *Handler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	pet, ok := h.ownedPet(w, user, chi.URLParam(r, "pet_id"))
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}
	fields, ok := h.validFields(w, r)
	if !ok {
		return
	}

	if fields.SameAs(pet) {
		api.BadRequest(w, "Nothing to update: the data is the same")
		return
	}

	pet.Name = fields.Name
	pet.AnimalType = fields.AnimalType
	pet.Age = fields.Age
	if err := h.DB.UpdatePet(pet); err != nil {
		slog.Error("update pet", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to update pet")
		return
	}

	api.WriteJSON(w, http.StatusOK, pet)
}

// DeletePet handles DELETE /api/pets/{pet_id}. Like the live service it
// answers 200 with an empty body whether or not the pet existed.
func (h *Handler) DeletePet(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())
	petID := chi.URLParam(r, "pet_id")

	err := h.DB.DeletePet(user.ID, petID)
	switch {
	case err == nil:
		if err := h.Store.Delete(user.ID, petID); err != nil {
			slog.Warn("delete photo", "pet_id", petID, "error", err)
		}
		slog.Info("pet deleted", "pet_id", petID, "user_id", user.ID)
	case errors.Is(err, database.ErrNotFound):
		slog.Debug("delete of unknown pet", "pet_id", petID, "user_id", user.ID)
	default:
		slog.Error("delete pet", "pet_id", petID, "error", err)
		api.InternalError(w, "failed to delete pet")
		return
	}

	api.WriteEmpty(w)
}

// GetPhoto handles GET /api/pets/{pet_id}/photo and streams the original
// upload. It is a twin extension for inspecting what the client sent.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	user := api.UserFromContext(r.Context())

	pet, ok := h.ownedPet(w, user, chi.URLParam(r, "pet_id"))
	if !ok {
		return
	}

	exists, err := h.Store.Exists(user.ID, pet.ID)
	if err != nil {
		slog.Error("stat photo", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to read photo")
		return
	}
	if !exists {
		api.NotFound(w, "This pet has no photo")
		return
	}

	rc, err := h.Store.Retrieve(user.ID, pet.ID)
	if errors.Is(err, storage.ErrPhotoNotFound) {
		// Deleted between the two calls.
		api.NotFound(w, "This pet has no photo")
		return
	}
	if err != nil {
		slog.Error("open photo", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to read photo")
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		slog.Error("read photo", "pet_id", pet.ID, "error", err)
		api.InternalError(w, "failed to read photo")
		return
	}

	w.Header().Set("Content-Type", "image/"+imageproc.DetectFormat(data))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write photo", "pet_id", pet.ID, "error", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newPet(userID string, f model.PetFields) *model.Pet {
	return &model.Pet{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       f.Name,
		AnimalType: f.AnimalType,
		Age:        f.Age,
		CreatedAt:  time.Now().UTC(),
	}
}

// parseForm accepts both multipart and urlencoded bodies. The whole body is
// capped at the photo limit plus formOverhead; past that the answer is 413.
// It writes the error page and returns false on failure.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxPhotoBytes+formOverhead)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(h.Config.MaxPhotoBytes + formOverhead)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.TooLarge(w, "Request body is too large")
		return false
	}
	api.BadRequest(w, "Invalid form data: "+err.Error())
	return false
}

func (h *Handler) validFields(w http.ResponseWriter, r *http.Request) (model.PetFields, bool) {
	fields := model.PetFields{
		Name:       r.FormValue("name"),
		AnimalType: r.FormValue("animal_type"),
		Age:        r.FormValue("age"),
	}.Normalize()

	if err := fields.Validate(h.Config.MaxAge); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			api.BadRequest(w, "Provided data is incorrect: "+verrs.Error())
		} else {
			api.BadRequest(w, "Provided data is incorrect")
		}
		return fields, false
	}
	return fields, true
}

// readPhoto reads and decodes the pet_photo part of a parsed multipart form.
func (h *Handler) readPhoto(r *http.Request) ([]byte, *imageproc.Photo, error) {
	file, _, err := r.FormFile("pet_photo")
	if err != nil {
		return nil, nil, errPhotoRequired
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, errPhotoRequired
	}
	if int64(len(data)) > h.Config.MaxPhotoBytes {
		return nil, nil, fmt.Errorf("pet_photo is larger than %d bytes", h.Config.MaxPhotoBytes)
	}

	photo, err := imageproc.Decode(data)
	if err != nil {
		return nil, nil, errors.New("pet_photo must be a JPEG or PNG image")
	}
	return data, photo, nil
}

// ownedPet loads a pet that belongs to user, writing a 400 page otherwise.
func (h *Handler) ownedPet(w http.ResponseWriter, user *model.User, petID string) (*model.Pet, bool) {
	pet, err := h.DB.GetPet(petID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && pet.UserID != user.ID) {
		api.BadRequest(w, "Pet with this id wasn't found!")
		return nil, false
	}
	if err != nil {
		slog.Error("get pet", "pet_id", petID, "error", err)
		api.InternalError(w, "failed to load pet")
		return nil, false
	}
	return pet, true
}
