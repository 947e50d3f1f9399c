package model

import "time"

// Institute represents one tenant. Each institute is addressed by its
// subdomain code (e.g. "dps" → dps.edumitra.app).
type Institute struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateInstituteRequest is the payload for updating institute settings.
type UpdateInstituteRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=150"`
	Address string `json:"address" binding:"omitempty,max=500"`
	Active  *bool  `json:"active" binding:"omitempty"`
}
