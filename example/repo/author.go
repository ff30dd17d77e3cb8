package repo

import (
	"context"

	"github.com/misokaze/relgen/example/model"
	"github.com/misokaze/relgen/example/query"
	"github.com/misokaze/relgen/orm"
	"github.com/misokaze/relgen/scope"
)

// AuthorRepository wraps generated query functions with a repository pattern.
type AuthorRepository struct {
	db orm.Querier
}

func NewAuthorRepository(db orm.Querier) *AuthorRepository {
	return &AuthorRepository{db: db}
}

func (r *AuthorRepository) Create(ctx context.Context, a *model.Author) error {
	return query.Authors(r.db).Create(ctx, a)
}

func (r *AuthorRepository) FindByID(ctx context.Context, id int) (model.Author, error) {
	return query.Authors(r.db).Where("id = ?", id).First(ctx)
}

func (r *AuthorRepository) FindAll(ctx context.Context, scopes ...scope.Scope) ([]model.Author, error) {
	return query.Authors(r.db).Scopes(scopes...).OrderBy("id").All(ctx)
}

// FindAllWithPosts eager-loads each author's posts alongside the authors.
func (r *AuthorRepository) FindAllWithPosts(ctx context.Context) ([]model.Author, error) {
	return query.Authors(r.db).Preload("Posts").OrderBy("id").All(ctx)
}

func (r *AuthorRepository) Delete(ctx context.Context, id int) error {
	return query.Authors(r.db).Where("id = ?", id).Delete(ctx)
}
