package dto

import (
	"fmt"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
)

// SocialLinksDTO mirrors the fixed social-media URL fields of a profile.
type SocialLinksDTO struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Twitter  string `json:"twitter"`
	Website  string `json:"website"`
}

// UpdateProfileRequest carries the full desired profile state. The update
// is a replace, so callers resend every field they want to keep.
type UpdateProfileRequest struct {
	Bio         string         `json:"bio"`
	Skills      []string       `json:"skills"`
	Experience  []string       `json:"experience"`
	Education   []string       `json:"education"`
	Birthday    string         `json:"birthday"`
	Hometown    string         `json:"hometown"`
	SocialMedia SocialLinksDTO `json:"socialMedia"`
}

// UserDTO is the wire representation of a user, credential excluded.
type UserDTO struct {
	UserID      string         `json:"userId"`
	Username    string         `json:"username"`
	Bio         string         `json:"bio"`
	Skills      []string       `json:"skills"`
	Experience  []string       `json:"experience"`
	Education   []string       `json:"education"`
	Birthday    string         `json:"birthday,omitempty"`
	Hometown    string         `json:"hometown"`
	SocialMedia SocialLinksDTO `json:"socialMedia"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type ProfileResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

// ToProfile converts the request into domain profile fields. Birthday is
// accepted as a date ("2006-01-02") or a full RFC 3339 timestamp; an empty
// string clears it.
func (r *UpdateProfileRequest) ToProfile() (domain.Profile, error) {
	profile := domain.Profile{
		Bio:        r.Bio,
		Skills:     r.Skills,
		Experience: r.Experience,
		Education:  r.Education,
		Hometown:   r.Hometown,
		SocialLinks: domain.SocialLinks{
			LinkedIn: r.SocialMedia.LinkedIn,
			GitHub:   r.SocialMedia.GitHub,
			Twitter:  r.SocialMedia.Twitter,
			Website:  r.SocialMedia.Website,
		},
	}

	if r.Birthday != "" {
		ts, err := time.Parse("2006-01-02", r.Birthday)
		if err != nil {
			ts, err = time.Parse(time.RFC3339, r.Birthday)
			if err != nil {
				return domain.Profile{}, fmt.Errorf("%w: invalid birthday %q", domain.ErrValidation, r.Birthday)
			}
		}
		profile.Birthday = &ts
	}

	return profile, nil
}

// FromUser converts a domain user to its wire form, never including the
// password hash.
func FromUser(user *domain.User) UserDTO {
	out := UserDTO{
		UserID:     user.UserID,
		Username:   user.Username,
		Bio:        user.Bio,
		Skills:     user.Skills,
		Experience: user.Experience,
		Education:  user.Education,
		Hometown:   user.Hometown,
		SocialMedia: SocialLinksDTO{
			LinkedIn: user.SocialLinks.LinkedIn,
			GitHub:   user.SocialLinks.GitHub,
			Twitter:  user.SocialLinks.Twitter,
			Website:  user.SocialLinks.Website,
		},
		CreatedAt: user.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339Nano),
	}

	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.Experience == nil {
		out.Experience = []string{}
	}
	if out.Education == nil {
		out.Education = []string{}
	}

	if user.Birthday != nil {
		out.Birthday = user.Birthday.Format("2006-01-02")
	}

	return out
}
