package models

import "gorm.io/datatypes"

type Platform struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	Creator string `gorm:"not null" json:"creator"`
	Year    int    `gorm:"not null" json:"year"`
	// Games is maintained by the integrity coordinator only.
	Games datatypes.JSONSlice[string] `json:"games"`
}

// PlatformInput is the body accepted by POST and PUT /api/platforms.
type PlatformInput struct {
	Name    string `json:"name" validate:"required,notblank"`
	Creator string `json:"creator" validate:"required,notblank"`
	Year    *int   `json:"year" validate:"required"`
}

func (in PlatformInput) Platform() Platform {
	return Platform{
		Name:    in.Name,
		Creator: in.Creator,
		Year:    *in.Year,
		Games:   datatypes.JSONSlice[string]{},
	}
}

// Fields returns the columns a PUT may change.
func (in PlatformInput) Fields() map[string]any {
	return map[string]any{
		"name":    in.Name,
		"creator": in.Creator,
		"year":    *in.Year,
	}
}
