package model

import "github.com/google/uuid"

//go:generate go tool relgen -source=$GOFILE -destination=../query

type Tag struct {
	ID   uuid.UUID `db:"id,primaryKey"`
	Name string    `db:"name"`
}
