// Package models defines the wire types exchanged with the portal API and
// the records cached client-side.
package models

// SocialLinks maps a platform name ("github", "linkedin", ...) to a URL.
type SocialLinks map[string]string

// Profile is the public-facing part of a user record.
type Profile struct {
	IsAvailable bool        `json:"is_available"`
	Badge       string      `json:"badge,omitempty"`
	Name        string      `json:"name,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	SocialLinks SocialLinks `json:"social_links,omitempty"`
}

// User is the authenticated user record. It is cached verbatim in the
// credential store and hydrated on startup.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Profile   Profile `json:"profile"`
}

// ProfileForm is the payload for a profile update (PATCH). Pointer fields
// are omitted when nil so a partial edit does not blank other fields.
type ProfileForm struct {
	Email     *string  `json:"email,omitempty"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Profile   *Profile `json:"profile,omitempty"`
}

// PublicProfile is the unauthenticated profile lookup response.
type PublicProfile struct {
	Username string  `json:"username"`
	Profile  Profile `json:"profile"`
}
