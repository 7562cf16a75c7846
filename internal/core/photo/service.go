package photo

import (
	"context"
	"log/slog"

	"github.com/taibuivan/atsumira/internal/authz"
	"github.com/taibuivan/atsumira/internal/platform/validate"
	"github.com/taibuivan/atsumira/pkg/uuid"
)

// Service manages event photo galleries. Photos are managed content, so
// mutations are gated on the event's managing tier (host or co-host).
type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

func (service *Service) ListPhotos(context context.Context, eventID string) ([]*Photo, error) {
	if err := service.repo.EventExists(context, eventID); err != nil {
		return nil, err
	}
	return service.repo.ListByEvent(context, eventID)
}

func (service *Service) AddPhoto(context context.Context, identity *authz.Identity, photo *Photo) error {
	if err := service.repo.EventExists(context, photo.EventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindEvent, ResourceID: photo.EventID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Required("url", photo.URL).MaxLen("url", photo.URL, 2048)
	if err := validator.Err(); err != nil {
		return err
	}

	photo.ID = uuid.New()
	photo.UploadedBy = identity.UserID

	if err := service.repo.Create(context, photo); err != nil {
		return err
	}

	service.logger.InfoContext(context, "event_photo_added",
		slog.String("event_id", photo.EventID),
		slog.String("photo_id", photo.ID),
	)

	return nil
}

func (service *Service) RemovePhoto(context context.Context, identity *authz.Identity, eventID, photoID string) error {
	if err := service.repo.EventExists(context, eventID); err != nil {
		return err
	}

	decision, err := service.engine.Authorize(context, identity, authz.Request{
		Action: authz.ActionUpdateResource, Kind: authz.KindEvent, ResourceID: eventID,
	})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, eventID, photoID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "event_photo_removed",
		slog.String("event_id", eventID),
		slog.String("photo_id", photoID),
	)

	return nil
}
