package tag

import (
	"context"
	"log/slog"

	"github.com/taibuivan/atsumira/internal/platform/validate"
	"github.com/taibuivan/atsumira/pkg/slug"
	"github.com/taibuivan/atsumira/pkg/uuid"
)

// Service manages the global tag catalog. Mutations are admin-only, which
// the router enforces before requests ever reach this layer.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListTags(context context.Context) ([]*Tag, error) {
	return service.repo.List(context)
}

func (service *Service) GetTag(context context.Context, id string) (*Tag, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) CreateTag(context context.Context, tag *Tag) error {
	validator := &validate.Validator{}
	validator.Required("name", tag.Name).MaxLen("name", tag.Name, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	tag.ID = uuid.New()
	tag.Slug = slug.From(tag.Name)

	if err := service.repo.Create(context, tag); err != nil {
		return err
	}

	service.logger.InfoContext(context, "tag_created", slog.String("tag_id", tag.ID))

	return nil
}

func (service *Service) UpdateTag(context context.Context, tag *Tag) error {
	existing, err := service.repo.FindByID(context, tag.ID)
	if err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Required("name", tag.Name).MaxLen("name", tag.Name, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	existing.Name = tag.Name
	existing.Slug = slug.From(tag.Name)
	*tag = *existing

	if err := service.repo.Update(context, existing); err != nil {
		return err
	}

	service.logger.InfoContext(context, "tag_updated", slog.String("tag_id", existing.ID))

	return nil
}

func (service *Service) DeleteTag(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "tag_deleted", slog.String("tag_id", id))

	return nil
}
