package repo

import (
	"context"

	"github.com/misokaze/relgen/example/model"
	"github.com/misokaze/relgen/example/query"
	"github.com/misokaze/relgen/orm"
	"github.com/misokaze/relgen/scope"
)

// PostRepository wraps generated query functions with a repository pattern.
type PostRepository struct {
	db orm.Querier
}

func NewPostRepository(db orm.Querier) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	return query.Posts(r.db).Create(ctx, p)
}

func (r *PostRepository) FindByID(ctx context.Context, id int) (model.Post, error) {
	return query.Posts(r.db).Where("id = ?", id).First(ctx)
}

// FindAllWithAuthors eager-loads each post's authors alongside the posts.
func (r *PostRepository) FindAllWithAuthors(ctx context.Context, scopes ...scope.Scope) ([]model.Post, error) {
	return query.Posts(r.db).Preload("Authors").Scopes(scopes...).OrderBy("id").All(ctx)
}

func (r *PostRepository) Update(ctx context.Context, p *model.Post) error {
	return query.Posts(r.db).Update(ctx, p)
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	return query.Posts(r.db).Where("id = ?", id).Delete(ctx)
}

// AddAuthor links an author to a post. Attaching the same author twice is
// a no-op.
func (r *PostRepository) AddAuthor(ctx context.Context, postID, authorID int) error {
	return query.PostAuthorsLinks(r.db).Attach(ctx, postID, authorID)
}

// RemoveAuthor unlinks an author from a post.
func (r *PostRepository) RemoveAuthor(ctx context.Context, postID, authorID int) error {
	return query.PostAuthorsLinks(r.db).Detach(ctx, postID, authorID)
}

// AuthorIDs returns the IDs of all authors linked to a post.
func (r *PostRepository) AuthorIDs(ctx context.Context, postID int) ([]int, error) {
	return query.PostAuthorsLinks(r.db).Targets(ctx, postID)
}
