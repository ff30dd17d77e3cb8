package testdata

type BlogPost struct {
	ID      int          `db:"id,primaryKey"`
	Title   string       `db:"title"`
	Authors []BlogAuthor `rel:"many_to_many"` // conventions: join_table + columns inferred
	Tags    []BlogTag    `rel:"many_to_many,join_table:post_tags,foreign_key:post_id,references:tag_id"`
}

type BlogAuthor struct {
	ID    int        `db:"id,primaryKey"`
	Name  string     `db:"name"`
	Posts []BlogPost `rel:"many_to_many,join_table:blog_author_blog_posts"`
}

type BlogTag struct {
	ID   int    `db:"id,primaryKey"`
	Name string `db:"name"`
}
