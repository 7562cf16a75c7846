package photo

import "context"

type Repository interface {
	ListByEvent(context context.Context, eventID string) ([]*Photo, error)
	Create(context context.Context, photo *Photo) error
	Delete(context context.Context, eventID, photoID string) error
	EventExists(context context.Context, eventID string) error
}
