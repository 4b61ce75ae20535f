// Package queue defines message payloads exchanged over the message broker.
package queue

// PlaceDeletedEvent is published after a place deletion commits. It carries
// the path of the orphaned image file so the background consumer can remove
// it from disk without touching the primary database, plus enough context
// to write a useful audit line.
type PlaceDeletedEvent struct {
    PlaceID   uint64 `json:"place_id"`
    CreatorID uint64 `json:"creator_id"`
    Title     string `json:"title"`
    ImagePath string `json:"image_path"`
    DeletedAt string `json:"deleted_at"`
}
