package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SocialLinks is the fixed set of social-media URLs on a profile, stored as
// a single JSONB column.
type SocialLinks struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Twitter  string `json:"twitter"`
	Website  string `json:"website"`
}

// Value implements driver.Valuer for JSONB storage.
func (s SocialLinks) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB storage.
func (s *SocialLinks) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = SocialLinks{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into SocialLinks", src)
}

// User is a registered account plus its profile attributes. PasswordHash is
// never serialized out of the storage layer.
type User struct {
	UserID       string         `db:"user_id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	Bio          string         `db:"bio"`
	Skills       pq.StringArray `db:"skills"`
	Experience   pq.StringArray `db:"experience"`
	Education    pq.StringArray `db:"education"`
	Birthday     *time.Time     `db:"birthday"`
	Hometown     string         `db:"hometown"`
	SocialLinks  SocialLinks    `db:"social_links"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Profile is the set of profile attributes a user may replace in one update.
// Update semantics are replace, not merge: callers resend the full state.
type Profile struct {
	Bio         string
	Skills      []string
	Experience  []string
	Education   []string
	Birthday    *time.Time
	Hometown    string
	SocialLinks SocialLinks
}
