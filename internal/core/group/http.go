/*
Package group provides the HTTP interface for community management.

It exposes endpoints for group discovery, membership handling, and role
administration.

# Routing Strategy

  - Public (v1): Listing and detail views (GET /groups).
  - Authenticated: Member-specific actions (POST /groups, POST /groups/{id}/members).
  - Restricted: Organizer actions (PATCH, DELETE), decided by the policy engine.

The handler translates between the REST layer and the [Service] domain.
*/
package group

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/atsumira/internal/authz"
	requestutil "github.com/taibuivan/atsumira/internal/platform/request"
	"github.com/taibuivan/atsumira/internal/platform/respond"
	"github.com/taibuivan/atsumira/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for group operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new group [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with group-related endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.listGroups)
	router.Get("/{identifier}", handler.getGroup)
	router.Get("/{id}/members", handler.listMembers)

	// ## Lifecycle & Membership (decided per request by the policy engine)
	router.Post("/", handler.createGroup)
	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Patch("/", handler.updateGroup)
		subRouter.Delete("/", handler.deleteGroup)
		subRouter.Route("/members", func(members chi.Router) {
			members.Post("/", handler.addMember)
			members.Patch("/{userID}", handler.updateMemberRole)
			members.Delete("/{userID}", handler.removeMember)
		})
	})

	return router
}

// # Group Endpoints

/*
GET /api/v1/groups.

Description: Retrieves a paginated list of groups.
Supports searching by name and custom sort orders.

Request:
  - q: string (Name search)
  - sort: string (name, membercount, createdat)
  - limit: int
  - page: int

Response:
  - 200: []Group: Paginated list
*/
func (handler *Handler) listGroups(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query: queryParams.Get("q"),
		Sort:  queryParams.Get("sort"),
	}

	groups, total, err := handler.service.ListGroups(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, groups, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/groups/{identifier}.

Description: Retrieves full details of a group using its UUID or unique slug.

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: Group: Success
  - 404: 404: ErrNotFound: Group not found
*/
func (handler *Handler) getGroup(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	group, err := handler.service.GetGroup(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, group)
}

/*
POST /api/v1/groups.

Description: Registers a new group. The creator is automatically added as
the organizer. Slugs are auto-generated from the group name.

Request (Body):
  - Group JSON object

Response:
  - 201: Group: Created object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) createGroup(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Group
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateGroup(request.Context(), identity, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/groups/{id}.

Description: Updates mutable group metadata like name, description, or avatar.

Request:
  - id: string (Target UUID)
  - body: Group Partial (JSON)

Response:
  - 200: Group: Updated entity
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Organizer or co-organizer only
  - 404: 404: ErrNotFound: Group not found
*/
func (handler *Handler) updateGroup(writer http.ResponseWriter, request *http.Request) {
	var input Group
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = requestutil.ID(request, "id")

	updated, err := handler.service.UpdateGroup(request.Context(), requestutil.Identity(request), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/groups/{id}.

Description: Deletes a group and all its membership rows.

Request:
  - id: string (Target UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Organizer only
  - 404: 404: ErrNotFound: Group not found
*/
func (handler *Handler) deleteGroup(writer http.ResponseWriter, request *http.Request) {
	groupID := requestutil.ID(request, "id")

	if err := handler.service.DeleteGroup(request.Context(), requestutil.Identity(request), groupID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Membership Endpoints

/*
GET /api/v1/groups/{id}/members.

Description: Lists all users and their respective roles within the group roster.

Request:
  - id: string (Group UUID)

Response:
  - 200: []Member: Success
  - 404: 404: ErrNotFound: Group not found
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	groupID := requestutil.ID(request, "id")

	members, err := handler.service.ListMembers(request.Context(), groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

/*
POST /api/v1/groups/{id}/members.

Description: Joins the caller to the group, or adds another user when a
userid is supplied. Role defaults to member.

Request (Body):
  - { "user_id": "string", "role": "string" } (both optional)

Response:
  - 201: Member: Created affiliation
  - 400: 400: ErrInvalidJSON: Invalid payload
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Managing role required for elevated grants
  - 404: 404: ErrNotFound: Group not found
  - 409: 409: ErrConflict: Already a member
  - 422: 422: ErrUnprocessable: Role outside the closed set
*/
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	var input Member
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.GroupID = requestutil.ID(request, "id")

	if err := handler.service.AddMember(request.Context(), requestutil.Identity(request), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/groups/{id}/members/{userID}.

Description: Changes a member's role. The organizer role can never be
granted this way.

Request:
  - id: string (Group UUID)
  - userID: string (Target user UUID)
  - body: { "role": "string" }

Response:
  - 200: Message: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions or organizer grant
  - 404: 404: ErrNotFound: Group or membership not found
  - 422: 422: ErrUnprocessable: Role outside the closed set
*/
func (handler *Handler) updateMemberRole(writer http.ResponseWriter, request *http.Request) {
	groupID := requestutil.ID(request, "id")
	userID := requestutil.ID(request, "userID")

	var input struct {
		Role authz.Role `json:"role"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateMemberRole(request.Context(), requestutil.Identity(request), groupID, userID, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Member role updated"})
}

/*
DELETE /api/v1/groups/{id}/members/{userID}.

Description: Removes a member's affiliation with the group. Members may
always remove themselves.

Request:
  - id: string (Group UUID)
  - userID: string (User UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Membership not found
*/
func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	groupID := requestutil.ID(request, "id")
	userID := requestutil.ID(request, "userID")

	if err := handler.service.RemoveMember(request.Context(), requestutil.Identity(request), groupID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
