package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/atsumira/internal/platform/middleware"
	requestutil "github.com/taibuivan/atsumira/internal/platform/request"
	"github.com/taibuivan/atsumira/internal/platform/respond"
	"github.com/taibuivan/atsumira/internal/platform/sec"
)

// Handler implements the HTTP layer for the global tag catalog.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for /tags. Reading the catalog is public;
// every mutation requires the global admin role.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listTags)
	router.Get("/{id}", handler.getTag)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.createTag)
		admin.Patch("/{id}", handler.updateTag)
		admin.Delete("/{id}", handler.deleteTag)
	})

	return router
}

/*
GET /api/v1/tags.

Response:
  - 200: []Tag: Full catalog
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tags)
}

/*
GET /api/v1/tags/{id}.

Response:
  - 200: Tag: Success
  - 404: 404: ErrNotFound: Tag not found
*/
func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	tag, err := handler.service.GetTag(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

/*
POST /api/v1/tags. Admin only.

Response:
  - 201: Tag: Created object
  - 403: 403: ErrForbidden: Admin role required
*/
func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var input Tag
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateTag(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/tags/{id}. Admin only.

Response:
  - 200: Tag: Updated object
  - 403: 403: ErrForbidden: Admin role required
  - 404: 404: ErrNotFound: Tag not found
*/
func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	var input Tag
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = requestutil.ID(request, "id")

	if err := handler.service.UpdateTag(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, input)
}

/*
DELETE /api/v1/tags/{id}. Admin only.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Admin role required
  - 404: 404: ErrNotFound: Tag not found
*/
func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	tagID := requestutil.ID(request, "id")

	if err := handler.service.DeleteTag(request.Context(), tagID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
