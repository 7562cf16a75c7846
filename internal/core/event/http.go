/*
Package event provides the HTTP interface for event management.

It exposes endpoints for event discovery, scheduling, attendance handling,
and tag curation, plus the nested routes for events that belong to a group.

# Routing Strategy

  - Public (v1): Listing and detail views (GET /events).
  - Authenticated: Participant actions (POST /events, POST /events/{id}/attendees).
  - Restricted: Host actions (PATCH, DELETE), decided by the policy engine.

The handler translates between the REST layer and the [Service] domain.
*/
package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/atsumira/internal/authz"
	requestutil "github.com/taibuivan/atsumira/internal/platform/request"
	"github.com/taibuivan/atsumira/internal/platform/respond"
	"github.com/taibuivan/atsumira/pkg/pagination"
	"github.com/taibuivan/atsumira/pkg/pointer"
)

// # Handler Implementation

// Handler implements the HTTP layer for event operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new event [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with event-related endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.listEvents)
	router.Get("/{id}", handler.getEvent)
	router.Get("/{id}/attendees", handler.listAttendees)
	router.Get("/{id}/tags", handler.listTags)

	// ## Lifecycle & Attendance (decided per request by the policy engine)
	router.Post("/", handler.createEvent)
	router.Route("/{id}", func(subRouter chi.Router) {
		subRouter.Patch("/", handler.updateEvent)
		subRouter.Delete("/", handler.deleteEvent)
		subRouter.Route("/attendees", func(attendees chi.Router) {
			attendees.Post("/", handler.addAttendee)
			attendees.Patch("/{userID}", handler.updateAttendeeRole)
			attendees.Delete("/{userID}", handler.removeAttendee)
		})
		subRouter.Route("/tags", func(tags chi.Router) {
			tags.Post("/", handler.attachTag)
			tags.Delete("/{tagID}", handler.detachTag)
		})
	})

	return router
}

// GroupRoutes returns the nested router mounted at /groups/{groupID}/events.
//
// Creation through this surface requires a managing role in the parent group;
// the service enforces that through the policy engine.
func (handler *Handler) GroupRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listGroupEvents)
	router.Post("/", handler.createGroupEvent)

	return router
}

// # Event Endpoints

/*
GET /api/v1/events.

Description: Retrieves a paginated list of events.
Supports searching by name and filtering by lifecycle status.

Request:
  - q: string (Name search)
  - status: string (planned, in progress, finished)
  - sort: string (startdate, createdat, name)
  - limit: int
  - page: int

Response:
  - 200: []Event: Paginated list
*/
func (handler *Handler) listEvents(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:  queryParams.Get("q"),
		Status: Status(queryParams.Get("status")),
		Sort:   queryParams.Get("sort"),
	}

	events, total, err := handler.service.ListEvents(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/events/{id}.

Description: Retrieves full details of an event by UUID.

Request:
  - id: string (UUID)

Response:
  - 200: Event: Success
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) getEvent(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")

	event, err := handler.service.GetEvent(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, event)
}

/*
POST /api/v1/events.

Description: Schedules a new standalone event. The creator is automatically
added as the host.

Request (Body):
  - Event JSON object (name, dates required)

Response:
  - 201: Event: Created object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) createEvent(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Event
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateEvent(request.Context(), identity, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/events/{id}.

Description: Updates mutable event fields like schedule, status, or location.

Request:
  - id: string (Target UUID)
  - body: Event Partial (JSON)

Response:
  - 200: Event: Updated entity
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host or co-host only
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) updateEvent(writer http.ResponseWriter, request *http.Request) {
	var input Event
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.ID = requestutil.ID(request, "id")

	updated, err := handler.service.UpdateEvent(request.Context(), requestutil.Identity(request), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/events/{id}.

Description: Deletes an event and all its attendance and tag rows.

Request:
  - id: string (Target UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host only
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) deleteEvent(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")

	if err := handler.service.DeleteEvent(request.Context(), requestutil.Identity(request), eventID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Attendance Endpoints

/*
GET /api/v1/events/{id}/attendees.

Description: Lists all participants and their roles within the event roster.

Request:
  - id: string (Event UUID)

Response:
  - 200: []Attendee: Success
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) listAttendees(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")

	attendees, err := handler.service.ListAttendees(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, attendees)
}

/*
POST /api/v1/events/{id}/attendees.

Description: Joins the caller to the event, or adds another user when a
user_id is supplied. Role defaults to attendee.

Request (Body):
  - { "user_id": "string", "role": "string" } (both optional)

Response:
  - 201: Attendee: Created participation
  - 400: 400: ErrInvalidJSON: Invalid payload
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Managing role required for elevated grants
  - 404: 404: ErrNotFound: Event not found
  - 409: 409: ErrConflict: Already attending
  - 422: 422: ErrUnprocessable: Role outside the closed set
*/
func (handler *Handler) addAttendee(writer http.ResponseWriter, request *http.Request) {
	var input Attendee
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.EventID = requestutil.ID(request, "id")

	if err := handler.service.AddAttendee(request.Context(), requestutil.Identity(request), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}

/*
PATCH /api/v1/events/{id}/attendees/{userID}.

Description: Changes a participant's role. The host role can never be
granted this way.

Request:
  - id: string (Event UUID)
  - userID: string (Target user UUID)
  - body: { "role": "string" }

Response:
  - 200: Message: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions or host grant
  - 404: 404: ErrNotFound: Event or attendance not found
  - 422: 422: ErrUnprocessable: Role outside the closed set
*/
func (handler *Handler) updateAttendeeRole(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")
	userID := requestutil.ID(request, "userID")

	var input struct {
		Role authz.Role `json:"role"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateAttendeeRole(request.Context(), requestutil.Identity(request), eventID, userID, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Attendee role updated"})
}

/*
DELETE /api/v1/events/{id}/attendees/{userID}.

Description: Removes a participant from the event. Attendees may always
remove themselves.

Request:
  - id: string (Event UUID)
  - userID: string (User UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Insufficient permissions
  - 404: 404: ErrNotFound: Attendance not found
*/
func (handler *Handler) removeAttendee(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")
	userID := requestutil.ID(request, "userID")

	if err := handler.service.RemoveAttendee(request.Context(), requestutil.Identity(request), eventID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Tag Endpoints

/*
GET /api/v1/events/{id}/tags.

Description: Lists the catalog tags attached to an event.

Request:
  - id: string (Event UUID)

Response:
  - 200: []TagRef: Success
  - 404: 404: ErrNotFound: Event not found
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")

	tags, err := handler.service.ListEventTags(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tags)
}

/*
POST /api/v1/events/{id}/tags.

Description: Attaches a catalog tag to the event.

Request (Body):
  - { "tag_id": "string" }

Response:
  - 201: Message: Success
  - 400: 400: ErrInvalidJSON: Invalid payload
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host or co-host only
  - 404: 404: ErrNotFound: Event or tag not found
  - 409: 409: ErrConflict: Tag already attached
*/
func (handler *Handler) attachTag(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")

	var input struct {
		TagID string `json:"tag_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AttachTag(request.Context(), requestutil.Identity(request), eventID, input.TagID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{FieldMessage: "Tag attached"})
}

/*
DELETE /api/v1/events/{id}/tags/{tagID}.

Description: Detaches a catalog tag from the event.

Request:
  - id: string (Event UUID)
  - tagID: string (Tag UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Host or co-host only
  - 404: 404: ErrNotFound: Link not found
*/
func (handler *Handler) detachTag(writer http.ResponseWriter, request *http.Request) {
	eventID := requestutil.ID(request, "id")
	tagID := requestutil.ID(request, "tagID")

	if err := handler.service.DetachTag(request.Context(), requestutil.Identity(request), eventID, tagID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Nested Group Endpoints

/*
GET /api/v1/groups/{groupID}/events.

Description: Lists the events that belong to a group.

Request:
  - groupID: string (Group UUID)
  - limit, page: int

Response:
  - 200: []Event: Paginated list
*/
func (handler *Handler) listGroupEvents(writer http.ResponseWriter, request *http.Request) {
	groupID := requestutil.ID(request, "groupID")
	paginationParams := pagination.FromRequest(request)

	filter := Filter{GroupID: pointer.To(groupID)}

	events, total, err := handler.service.ListEvents(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/groups/{groupID}/events.

Description: Schedules a new event under a group. The caller must hold a
managing role in the group; the creator becomes the event host.

Request:
  - groupID: string (Group UUID)
  - body: Event JSON object

Response:
  - 201: Event: Created object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Authentication required
  - 403: 403: ErrForbidden: Organizer or co-organizer only
*/
func (handler *Handler) createGroupEvent(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Event
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.GroupID = pointer.To(requestutil.ID(request, "groupID"))

	if err := handler.service.CreateEvent(request.Context(), identity, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, input)
}
