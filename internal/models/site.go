package models

import "time"

// Site represents an observing location.
// It can be transient (from geolocation or a search) or a saved user configuration.
type Site struct {
	ID        int64     `json:"id"`   // Database Primary Key (0 if not saved)
	Name      string    `json:"name"` // User-friendly name
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Source    string    `json:"source"` // config, flag, manual, geocoded, ip or saved
	CreatedAt time.Time `json:"created_at"`
}
