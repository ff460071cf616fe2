package models

import (
	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/profile"
)

type ProfileResponse struct {
	FullName string  `json:"fullName"`
	Email    *string `json:"email"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
}

type UpdateProfileRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type UpdateProfileResponse struct {
	Message string          `json:"message"`
	Profile ProfileResponse `json:"profile"`
}

type ImportProfileRequest struct {
	ProfileYAML string `json:"profile_yaml"`
}

// NewProfileResponse flattens the stored document into the fixed response
// shape, falling back to the username when no full name was ever set.
func NewProfileResponse(user domain.User, doc profile.Document) ProfileResponse {
	return ProfileResponse{
		FullName: doc.String("fullName", user.Username),
		Email:    user.Email,
		Phone:    doc.String("phone", ""),
		Address:  doc.String("address", ""),
	}
}

// Document converts the update request into the profile document that
// replaces the stored one.
func (r UpdateProfileRequest) Document() profile.Document {
	return profile.Document{
		"fullName": r.FullName,
		"phone":    r.Phone,
		"address":  r.Address,
	}
}
