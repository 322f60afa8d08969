package dto

type ShortDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CloseDTO is the confirmation payload shown before leaving an edit screen.
type CloseDTO struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// StashDTO points the client at a list filtered by a one-time stash token.
type StashDTO struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}
