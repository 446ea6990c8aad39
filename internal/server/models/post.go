package models

import "time"

// Post is a blog post owned by exactly one username. JSON names follow the
// documents the API has always returned.
type Post struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Username string    `json:"username"`
	Date     time.Time `json:"date"`
}
