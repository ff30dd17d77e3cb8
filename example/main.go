package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/misokaze/relgen/example/model"
	"github.com/misokaze/relgen/example/query"
	"github.com/misokaze/relgen/example/repo"
	"github.com/misokaze/relgen/orm"
)

// The posts and authors tables are linked through the post_authors join
// table. ON DELETE CASCADE on its foreign keys removes link rows when
// either side is deleted. post_tags links posts to uuid-keyed tags.
var schema = `
CREATE TABLE authors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE post_authors (
	post_id INTEGER NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	author_id INTEGER NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, author_id)
);

CREATE TABLE tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE post_tags (
	post_id INTEGER NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, tag_id)
);
`

func main() {
	ctx := context.Background()
	db := openDB(ctx)
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	authorRepo := repo.NewAuthorRepository(db)
	postRepo := repo.NewPostRepository(db)

	// INSERT
	fmt.Println("--- INSERT ---")
	alice := &model.Author{Name: "Alice", Email: "alice@example.com"}
	bob := &model.Author{Name: "Bob", Email: "bob@example.com"}
	for _, a := range []*model.Author{alice, bob} {
		if err := authorRepo.Create(ctx, a); err != nil {
			log.Fatalf("create author: %v", err)
		}
		fmt.Printf("Created author: %s (id=%d)\n", a.Name, a.ID)
	}

	gopherPost := &model.Post{Title: "Go and join tables", Body: "..."}
	sqlPost := &model.Post{Title: "SQL for gophers", Body: "..."}
	for _, p := range []*model.Post{gopherPost, sqlPost} {
		if err := postRepo.Create(ctx, p); err != nil {
			log.Fatalf("create post: %v", err)
		}
		fmt.Printf("Created post: %s (id=%d)\n", p.Title, p.ID)
	}

	// ATTACH: both authors co-wrote the first post, Bob wrote the second.
	fmt.Println("\n--- ATTACH ---")
	if err := postRepo.AddAuthor(ctx, gopherPost.ID, alice.ID); err != nil {
		log.Fatalf("attach: %v", err)
	}
	if err := postRepo.AddAuthor(ctx, gopherPost.ID, bob.ID); err != nil {
		log.Fatalf("attach: %v", err)
	}
	if err := postRepo.AddAuthor(ctx, sqlPost.ID, bob.ID); err != nil {
		log.Fatalf("attach: %v", err)
	}
	// Attaching an existing pair again is a no-op.
	if err := postRepo.AddAuthor(ctx, sqlPost.ID, bob.ID); err != nil {
		log.Fatalf("attach twice: %v", err)
	}

	tag := &model.Tag{ID: uuid.New(), Name: "databases"}
	if err := query.Tags(db).Create(ctx, tag); err != nil {
		log.Fatalf("create tag: %v", err)
	}
	if err := query.PostTagsLinks(db).Attach(ctx, gopherPost.ID, tag.ID); err != nil {
		log.Fatalf("attach tag: %v", err)
	}
	fmt.Println("Authors and tags attached.")

	// EAGER LOAD
	fmt.Println("\n--- EAGER LOAD ---")
	posts, err := postRepo.FindAllWithAuthors(ctx)
	if err != nil {
		log.Fatalf("load posts: %v", err)
	}
	for _, p := range posts {
		fmt.Printf("%s:\n", p.Title)
		for _, a := range p.Authors {
			fmt.Printf("  by %s\n", a.Name)
		}
	}

	// DETACH
	fmt.Println("\n--- DETACH ---")
	if err := postRepo.RemoveAuthor(ctx, gopherPost.ID, bob.ID); err != nil {
		log.Fatalf("detach: %v", err)
	}
	ids, err := postRepo.AuthorIDs(ctx, gopherPost.ID)
	if err != nil {
		log.Fatalf("author ids: %v", err)
	}
	fmt.Printf("Post %d now has author ids %v\n", gopherPost.ID, ids)

	// CASCADE DELETE
	fmt.Println("\n--- CASCADE DELETE ---")
	if err := postRepo.Delete(ctx, sqlPost.ID); err != nil {
		log.Fatalf("delete post: %v", err)
	}
	n, err := query.PostAuthorsLinks(db).Count(ctx, sqlPost.ID)
	if err != nil {
		log.Fatalf("count links: %v", err)
	}
	fmt.Printf("Deleted post %d; its join rows left: %d\n", sqlPost.ID, n)
}

func openDB(ctx context.Context) *orm.DB {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		log.Fatalf("enable foreign keys: %v", err)
	}
	return orm.New(sqlDB, orm.SQLite)
}
