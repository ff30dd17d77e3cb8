package orm_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/misokaze/relgen/orm"
	"github.com/misokaze/relgen/scope"
)

// The blog schema from the example: posts and authors linked through the
// post_authors join table. The join table carries ON DELETE CASCADE so that
// deleting a post removes its link rows.
const blogSchema = `
CREATE TABLE authors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL
);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL
);
CREATE TABLE post_authors (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, author_id)
);
`

type blogAuthor struct {
	ID    int
	Name  string
	Email string
}

type blogPost struct {
	ID      int
	Title   string
	Authors []blogAuthor
}

func scanBlogAuthor(rows *sql.Rows) (blogAuthor, error) {
	cols, _ := rows.Columns()
	var v blogAuthor
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dest[i] = &v.ID
		case "name":
			dest[i] = &v.Name
		case "email":
			dest[i] = &v.Email
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err
}

func scanBlogPost(rows *sql.Rows) (blogPost, error) {
	cols, _ := rows.Columns()
	var v blogPost
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dest[i] = &v.ID
		case "title":
			dest[i] = &v.Title
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err
}

func blogAuthors(db orm.Querier) *orm.Query[blogAuthor] {
	return orm.NewQuery[blogAuthor](
		db, "authors", []string{"id", "name", "email"}, "id",
		scanBlogAuthor,
		func(v *blogAuthor, includesPK bool) ([]string, []any) {
			if includesPK {
				return []string{"id", "name", "email"}, []any{v.ID, v.Name, v.Email}
			}
			return []string{"name", "email"}, []any{v.Name, v.Email}
		},
		func(v *blogAuthor, id int64) { v.ID = int(id) },
	)
}

// blogPosts wires the Authors preloader the way generated code does.
func blogPosts(db orm.Querier) *orm.Query[blogPost] {
	q := orm.NewQuery[blogPost](
		db, "posts", []string{"id", "title"}, "id",
		scanBlogPost,
		func(v *blogPost, includesPK bool) ([]string, []any) {
			if includesPK {
				return []string{"id", "title"}, []any{v.ID, v.Title}
			}
			return []string{"title"}, []any{v.Title}
		},
		func(v *blogPost, id int64) { v.ID = int(id) },
	)
	q.RegisterPreloader("Authors", preloadBlogPostAuthors)
	return q
}

func preloadBlogPostAuthors(ctx context.Context, db orm.Querier, results []blogPost) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	pairs, err := orm.QueryJoinTable[int, int](ctx, db, "post_authors", "post_id", "author_id", ids)
	if err != nil {
		return err
	}
	targetIDs := orm.UniqueTargets(pairs)
	related, err := blogAuthors(db).Scopes(scope.In("id", targetIDs)).All(ctx)
	if err != nil {
		return err
	}
	byPK := make(map[int]blogAuthor)
	for _, r := range related {
		byPK[r.ID] = r
	}
	grouped := orm.GroupBySource(pairs)
	for i := range results {
		tIDs := grouped[results[i].ID]
		items := make([]blogAuthor, 0, len(tIDs))
		for _, tid := range tIDs {
			if v, ok := byPK[tid]; ok {
				items = append(items, v)
			}
		}
		results[i].Authors = items
	}
	return nil
}

func postAuthorLinks(db orm.Querier) *orm.Association[int, int] {
	return orm.NewAssociation[int, int](db, orm.AssociationConfig{
		JoinTable:    "post_authors",
		SourceColumn: "post_id",
		TargetColumn: "author_id",
	})
}

func setupBlogDB(t *testing.T) *orm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single conn keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := sqlDB.Exec(blogSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return orm.New(sqlDB, orm.SQLite)
}

func seedBlog(t *testing.T, db *orm.DB) (posts []*blogPost, authors []*blogAuthor) {
	t.Helper()
	ctx := t.Context()

	authors = []*blogAuthor{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Ben", Email: "ben@example.com"},
		{Name: "Cleo", Email: "cleo@example.com"},
	}
	if err := blogAuthors(db).CreateAll(ctx, authors); err != nil {
		t.Fatalf("CreateAll authors: %v", err)
	}

	posts = []*blogPost{
		{Title: "Intro to joins"},
		{Title: "Link tables in practice"},
	}
	if err := blogPosts(db).CreateAll(ctx, posts); err != nil {
		t.Fatalf("CreateAll posts: %v", err)
	}
	return posts, authors
}

func TestAssociationAttachAndTargets(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	got, err := links.Targets(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	sort.Ints(got)
	if len(got) != 2 || got[0] != authors[0].ID || got[1] != authors[1].ID {
		t.Errorf("Targets = %v, want [%d %d]", got, authors[0].ID, authors[1].ID)
	}

	count, err := links.Count(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestAssociationAttachIsIdempotent(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	// Second attach of the same pair must not fail or duplicate.
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach again: %v", err)
	}

	count, err := links.Count(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestAssociationAttachEmptyIsNoop(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, _ := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID); err != nil {
		t.Fatalf("Attach with no targets: %v", err)
	}
	if err := links.Detach(ctx, posts[0].ID); err != nil {
		t.Fatalf("Detach with no targets: %v", err)
	}
}

func TestAssociationDetach(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID, authors[2].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := links.Detach(ctx, posts[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	got, err := links.Targets(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	sort.Ints(got)
	want := []int{authors[0].ID, authors[2].ID}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Targets = %v, want %v", got, want)
	}
}

func TestAssociationReplace(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := links.Replace(ctx, posts[0].ID, []int{authors[2].ID}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := links.Targets(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if len(got) != 1 || got[0] != authors[2].ID {
		t.Errorf("Targets = %v, want [%d]", got, authors[2].ID)
	}
}

func TestAssociationClearThenDeleteSource(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	err := db.Transaction(ctx, func(tx *orm.Tx) error {
		txLinks := postAuthorLinks(tx)
		if err := txLinks.Clear(ctx, posts[0].ID); err != nil {
			return err
		}
		return blogPosts(tx).Where("id = ?", posts[0].ID).Delete(ctx)
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	if _, err := blogPosts(db).Where("id = ?", posts[0].ID).First(ctx); !errors.Is(err, orm.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	count, err := postAuthorLinks(db).Count(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("link rows remain after Clear: %d", count)
	}
	// The authors themselves survive.
	remaining, err := blogAuthors(db).Count(ctx)
	if err != nil {
		t.Fatalf("Count authors: %v", err)
	}
	if remaining != 3 {
		t.Errorf("authors = %d, want 3", remaining)
	}
}

func TestForeignKeyCascadeDeletesLinks(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	// No Clear here: the ON DELETE CASCADE on post_authors does the work.
	if err := blogPosts(db).Where("id = ?", posts[0].ID).Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	count, err := links.Count(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("link rows survived cascade: %d", count)
	}
}

func TestPreloadManyToMany(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	posts, authors := seedBlog(t, db)

	links := postAuthorLinks(db)
	if err := links.Attach(ctx, posts[0].ID, authors[0].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := links.Attach(ctx, posts[1].ID, authors[1].ID); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	got, err := blogPosts(db).OrderBy("id").Preload("Authors").All(ctx)
	if err != nil {
		t.Fatalf("All with Preload: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if len(got[0].Authors) != 2 {
		t.Errorf("posts[0].Authors = %d, want 2", len(got[0].Authors))
	}
	if len(got[1].Authors) != 1 || got[1].Authors[0].Name != "Ben" {
		t.Errorf("posts[1].Authors = %+v, want [Ben]", got[1].Authors)
	}
}

func TestPreloadUnknownName(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()
	seedBlog(t, db)

	_, err := blogPosts(db).Preload("Reviewers").All(ctx)
	if err == nil {
		t.Fatal("expected error for unknown preload, got nil")
	}
}

func TestQueryJoinTableEmptySourceIDs(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)

	pairs, err := orm.QueryJoinTable[int, int](t.Context(), db, "post_authors", "post_id", "author_id", nil)
	if err != nil {
		t.Fatalf("QueryJoinTable: %v", err)
	}
	if pairs != nil {
		t.Errorf("pairs = %v, want nil", pairs)
	}
}

func TestAssociationUUIDKeys(t *testing.T) {
	t.Parallel()

	db := setupBlogDB(t)
	ctx := t.Context()

	if _, err := db.ExecContext(ctx, `CREATE TABLE post_tags (
		post_id INTEGER NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (post_id, tag_id)
	)`); err != nil {
		t.Fatalf("create post_tags: %v", err)
	}

	links := orm.NewAssociation[int, uuid.UUID](db, orm.AssociationConfig{
		JoinTable:    "post_tags",
		SourceColumn: "post_id",
		TargetColumn: "tag_id",
	})

	tagA := uuid.New()
	tagB := uuid.New()
	if err := links.Attach(ctx, 1, tagA, tagB); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	got, err := links.Targets(ctx, 1)
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Targets) = %d, want 2", len(got))
	}
	seen := map[uuid.UUID]bool{got[0]: true, got[1]: true}
	if !seen[tagA] || !seen[tagB] {
		t.Errorf("Targets = %v, want %v and %v", got, tagA, tagB)
	}
}
