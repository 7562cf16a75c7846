package photo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/atsumira/internal/platform/request"
	"github.com/taibuivan/atsumira/internal/platform/respond"
)

// Handler implements the HTTP layer for event photo galleries.
//
// It is mounted at /events/{eventID}/photos.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPhotos)
	router.Post("/", handler.addPhoto)
	router.Delete("/{photoID}", handler.removePhoto)

	return router
}

/*
GET /api/v1/events/{eventID}/photos.

Response:
  - 200: []Photo: Gallery contents
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) listPhotos(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "eventID")

	photos, err := handler.service.ListPhotos(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, photos)
}

/*
POST /api/v1/events/{eventID}/photos.

Description: Adds a photo to the event gallery. Host or co-host only.

Request (Body):
  - { "url": "string", "caption": "string" }

Response:
  - 201: Photo: Created object
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host or co-host only
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) addPhoto(writer http.ResponseWriter, request *http.Request) {
	var input Photo
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.EventID = requestutil.ID(request, "eventID")

	if err := handler.service.AddPhoto(request.Context(), requestutil.Identity(request), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
DELETE /api/v1/events/{eventID}/photos/{photoID}.

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host or co-host only
  - 404: 404: ErrNotFound: Photo not found
*/
func (handler *Handler) removePhoto(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "eventID")
	photoID := requestutil.ID(request, "photoID")

	if err := handler.service.RemovePhoto(request.Context(), requestutil.Identity(request), eventID, photoID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
