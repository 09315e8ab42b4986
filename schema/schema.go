// Package schema holds the data types shared across the watchlist packages.
package schema

import "time"

// ListEntry is one piece of content a user has added to their list.
type ListEntry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	ContentID   string      `json:"contentId"`
	ContentType ContentType `json:"contentType"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Episode is a single episode of a TV show.
type Episode struct {
	EpisodeNumber int        `json:"episodeNumber"`
	SeasonNumber  int        `json:"seasonNumber"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`
	Director      string     `json:"director,omitempty"`
	Actors        []string   `json:"actors"`
}

// ContentRecord is catalog metadata for a movie or a TV show.
// Episodes is only populated for TV shows.
type ContentRecord struct {
	ID          string      `json:"id"`
	ContentType ContentType `json:"contentType"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Genres      []string    `json:"genres"`
	ReleaseDate *time.Time  `json:"releaseDate,omitempty"`
	Director    string      `json:"director,omitempty"`
	Actors      []string    `json:"actors"`
	Episodes    []Episode   `json:"episodes,omitempty"`
}

// ListItem is a list entry joined with its catalog content.
// Content is nil when the referenced record no longer resolves.
type ListItem struct {
	ID          string         `json:"id"`
	ContentID   string         `json:"contentId"`
	ContentType ContentType    `json:"contentType"`
	AddedAt     time.Time      `json:"addedAt"`
	Content     *ContentRecord `json:"content"`
}

// Pagination describes the page that was served.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListPage is one page of a user's list. It is the value stored in the page cache.
type ListPage struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// RemoveResult acknowledges a successful removal.
type RemoveResult struct {
	Message string `json:"message"`
}

// HealthMetrics holds the counters exposed by the health report.
type HealthMetrics struct {
	TotalListItems int64 `json:"totalListItems"`
}

// HealthReport is the result of a health check.
type HealthReport struct {
	Status    HealthState   `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Database  string        `json:"database"`
	Cache     string        `json:"cache"`
	Metrics   HealthMetrics `json:"metrics"`
}
