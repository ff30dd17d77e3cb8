package model

import "time"

//go:generate go tool relgen -source=$GOFILE -destination=../query

type Post struct {
	ID        int       `db:"id,primaryKey"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Authors   []Author  `db:"-" rel:"many_to_many,join_table:post_authors,foreign_key:post_id,references:author_id"`
	Tags      []Tag     `db:"-" rel:"many_to_many,join_table:post_tags,foreign_key:post_id,references:tag_id"`
}
