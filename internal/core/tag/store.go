package tag

import "context"

type Repository interface {
	List(context context.Context) ([]*Tag, error)
	FindByID(context context.Context, id string) (*Tag, error)
	Create(context context.Context, tag *Tag) error
	Update(context context.Context, tag *Tag) error
	Delete(context context.Context, id string) error
}
