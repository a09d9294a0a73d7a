package entity

import "time"

// User represents an account row in the `users` table. The password hash is
// never serialized; outward responses use Profile instead.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"fullName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Bio          string    `db:"bio" json:"bio"`
	Link         string    `db:"link" json:"link"`
	ProfileImg   string    `db:"profile_img" json:"profileImg"`
	CoverImg     string    `db:"cover_img" json:"coverImg"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is the outward projection of a user. Follower and following id
// lists are derived from the follows relation at read time.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	ProfileImg string    `json:"profileImg"`
	CoverImg   string    `json:"coverImg"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile builds the password-free projection. Nil id lists are normalized
// to empty slices so they marshal as [] rather than null.
func (u *User) Profile(followers, following []string) *Profile {
	if followers == nil {
		followers = []string{}
	}
	if following == nil {
		following = []string{}
	}
	return &Profile{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Bio:        u.Bio,
		Link:       u.Link,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		Followers:  followers,
		Following:  following,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
