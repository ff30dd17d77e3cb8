package model

import "time"

//go:generate go tool relgen -source=$GOFILE -destination=../query

type Author struct {
	ID        int       `db:"id,primaryKey"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Posts     []Post    `db:"-" rel:"many_to_many,join_table:post_authors,foreign_key:author_id,references:post_id"`
}
