package models

// Public projections. Nothing here exposes password hashes or timestamps.

type PlatformView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Creator string   `json:"creator"`
	Year    int      `json:"year"`
	Games   []string `json:"games"`
}

type PlatformDetailView struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Creator string        `json:"creator"`
	Year    int           `json:"year"`
	Games   []GameSummary `json:"games"`
}

type PlatformSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Creator string `json:"creator,omitempty"`
	Year    int    `json:"year,omitempty"`
}

type GameView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Platform   PlatformSummary `json:"platform"`
	Year       int             `json:"year"`
	Developers []string        `json:"developers"`
	Publishers []string        `json:"publishers"`
}

type GameSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Year int    `json:"year,omitempty"`
}

type UserView struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Role       Role     `json:"role"`
	OwnedGames []string `json:"ownedGames"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type EntryView struct {
	ID     string      `json:"id"`
	User   UserSummary `json:"user"`
	Game   GameSummary `json:"game"`
	Status Status      `json:"status"`
	Score  *int        `json:"score,omitempty"`
}

// LoginView is returned by a successful login.
type LoginView struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       string `json:"id"`
	Role     Role   `json:"role"`
}

func ids(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (p *Platform) View() PlatformView {
	return PlatformView{ID: p.ID, Name: p.Name, Creator: p.Creator, Year: p.Year, Games: ids(p.Games)}
}

// DetailView populates the games list. Ids that no longer resolve are still
// listed, without details.
func (p *Platform) DetailView(games map[string]*Game) PlatformDetailView {
	summaries := make([]GameSummary, 0, len(p.Games))
	for _, id := range p.Games {
		if g, ok := games[id]; ok {
			summaries = append(summaries, g.Summary())
			continue
		}
		summaries = append(summaries, GameSummary{ID: id})
	}
	return PlatformDetailView{ID: p.ID, Name: p.Name, Creator: p.Creator, Year: p.Year, Games: summaries}
}

func (p *Platform) Summary() PlatformSummary {
	return PlatformSummary{ID: p.ID, Name: p.Name, Creator: p.Creator, Year: p.Year}
}

// View projects the game with its platform populated; platform may be nil.
func (g *Game) View(platform *Platform) GameView {
	summary := PlatformSummary{ID: g.PlatformID}
	if platform != nil {
		summary = platform.Summary()
	}
	return GameView{
		ID:         g.ID,
		Name:       g.Name,
		Platform:   summary,
		Year:       g.Year,
		Developers: ids(g.Developers),
		Publishers: ids(g.Publishers),
	}
}

func (g *Game) Summary() GameSummary {
	return GameSummary{ID: g.ID, Name: g.Name, Year: g.Year}
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, OwnedGames: ids(u.OwnedGames)}
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

func (e *CollectionEntry) View(user *User, game *Game) EntryView {
	view := EntryView{
		ID:     e.ID,
		User:   UserSummary{ID: e.UserID},
		Game:   GameSummary{ID: e.GameID},
		Status: e.Status,
		Score:  e.Score,
	}
	if user != nil {
		view.User = user.Summary()
	}
	if game != nil {
		view.Game = game.Summary()
	}
	return view
}
