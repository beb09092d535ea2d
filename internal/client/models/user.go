package models

import "encoding/json"

// UserSummary is the cached profile used for fast, network-free reads.
type UserSummary struct {
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Encode serializes the summary for the credential store.
func (u UserSummary) Encode() ([]byte, error) {
	return json.Marshal(u)
}

// DecodeUserSummary is the inverse of Encode. Returns nil on malformed or
// empty input rather than an error: a broken cache entry is treated the
// same as no cache entry.
func DecodeUserSummary(data []byte) *UserSummary {
	if len(data) == 0 {
		return nil
	}
	var u UserSummary
	if err := json.Unmarshal(data, &u); err != nil {
		return nil
	}
	return &u
}
