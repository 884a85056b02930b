package models

import "gorm.io/datatypes"

type Game struct {
	Base
	Name       string                      `gorm:"not null" json:"name"`
	PlatformID string                      `gorm:"type:varchar(36);not null;index" json:"platform"`
	Year       int                         `gorm:"not null" json:"year"`
	Developers datatypes.JSONSlice[string] `json:"developers"`
	Publishers datatypes.JSONSlice[string] `json:"publishers"`
}

// GameInput is the body accepted by POST and PUT /api/games.
type GameInput struct {
	Name       string   `json:"name" validate:"required,notblank"`
	Platform   string   `json:"platform" validate:"required"`
	Year       *int     `json:"year" validate:"required"`
	Developers []string `json:"developers" validate:"required,min=1,dive,notblank"`
	Publishers []string `json:"publishers" validate:"dive,notblank"`
}

func (in GameInput) Game() Game {
	publishers := in.Publishers
	if publishers == nil {
		publishers = []string{}
	}
	return Game{
		Name:       in.Name,
		PlatformID: in.Platform,
		Year:       *in.Year,
		Developers: datatypes.JSONSlice[string](in.Developers),
		Publishers: datatypes.JSONSlice[string](publishers),
	}
}
