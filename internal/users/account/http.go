// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/atsumira/internal/platform/middleware"
	requestutil "github.com/taibuivan/atsumira/internal/platform/request"
	"github.com/taibuivan/atsumira/internal/platform/respond"
	"github.com/taibuivan/atsumira/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for user profiles.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with profile-related endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Directory
	router.Get("/", handler.listProfiles)
	router.Get("/{id}", handler.getProfile)

	// ## Self-Service
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Patch("/{id}", handler.updateProfile)
		protected.Delete("/{id}", handler.deleteAccount)
	})

	return router
}

// # Profile Endpoints

/*
GET /api/v1/users.

Description: Retrieves a paginated directory of public member profiles.

Request:
  - q: string (Nickname/name search)
  - limit: int
  - page: int

Response:
  - 200: []PublicProfile: Paginated list
*/
func (handler *Handler) listProfiles(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	profiles, total, err := handler.service.ListProfiles(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/users/{id}.

Description: Retrieves a user profile. The owner receives the full private
projection; every other caller receives the public one.

Response:
  - 200: User | PublicProfile: Scoped profile view
  - 404: 404: ErrNotFound: User not found
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "id")
	identity := requestutil.Identity(request)

	profile, err := handler.service.GetProfile(request.Context(), identity, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

type updateProfileRequest struct {
	Nickname  *string `json:"nickname"`
	Name      *string `json:"name"`
	Surname   *string `json:"surname"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

/*
PATCH /api/v1/users/{id}.

Description: Applies a partial profile update. Allowed for the profile owner
and global admins; decided by the policy engine.

Request:
  - Body: updateProfileRequest (all fields optional)

Response:
  - 200: User: Updated profile
  - 403: 403: ErrForbidden: Not the owner
  - 404: 404: ErrNotFound: User not found
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "id")
	identity := requestutil.Identity(request)

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), identity, userID, UpdateProfileInput{
		Nickname:  input.Nickname,
		Name:      input.Name,
		Surname:   input.Surname,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Description: Soft-deletes the account.

Response:
  - 204: No Content: Account deleted
  - 403: 403: ErrForbidden: Not the owner
  - 404: 404: ErrNotFound: User not found
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "id")
	identity := requestutil.Identity(request)

	if err := handler.service.DeleteAccount(request.Context(), identity, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
