package models

type Status string

const (
	StatusCompleted  Status = "Completed"
	StatusBeaten     Status = "Beaten"
	StatusUnfinished Status = "Unfinished"
)

// CollectionEntry records that a user owns a game.
type CollectionEntry struct {
	Base
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_game" json:"user"`
	GameID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_game;index:idx_entry_game" json:"game"`
	Status Status `gorm:"type:varchar(16);not null" json:"status"`
	Score  *int   `json:"score,omitempty"`
}

func (CollectionEntry) TableName() string { return "user_games" }

// EntryInput is the body of POST /api/usergames. The owner always comes from
// the token.
type EntryInput struct {
	Game   string `json:"game" validate:"required"`
	Status Status `json:"status" validate:"required,oneof=Completed Beaten Unfinished"`
	Score  *int   `json:"score" validate:"omitempty,min=0,max=5"`
}

// EntryUpdateInput is the body of PUT /api/usergames/:id.
type EntryUpdateInput struct {
	Status Status `json:"status" validate:"required,oneof=Completed Beaten Unfinished"`
	Score  *int   `json:"score" validate:"omitempty,min=0,max=5"`
}

func (in EntryUpdateInput) Fields() map[string]any {
	return map[string]any{
		"status": in.Status,
		"score":  in.Score,
	}
}
