package schema

import "time"

// CacheStatus represents the status of the page cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	SizeBytes       int64     `json:"size_bytes"`
}

// StoreStatus represents the status of the list store and catalog.
type StoreStatus struct {
	Backend      string `json:"backend"`
	Connected    bool   `json:"connected"`
	TotalEntries int64  `json:"total_entries"`
	TotalUsers   int64  `json:"total_users"`
	TotalMovies  int64  `json:"total_movies"`
	TotalTVShows int64  `json:"total_tv_shows"`
}
