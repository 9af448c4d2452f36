package domain

import "time"

// NewsItem is an admin-published announcement.
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// CommunityPost is a message on the public community board.
type CommunityPost struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	PlayerID  string    `json:"player_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	NewsCategoryAll      = "All"
	NewsCategoryOfficial = "Official"
)
