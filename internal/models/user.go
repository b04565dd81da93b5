package models

// User represents a social-network account. The followingIds/followerIds
// edge sets are denormalized on the document so a feed read never needs a
// back-query; the cost is that an edge write updates one document per side.
type User struct {
	ID                  string   `json:"id" bson:"_id,omitempty"`
	FirstName           string   `json:"firstName" bson:"firstName"`
	LastName            string   `json:"lastName" bson:"lastName"`
	Username            string   `json:"username" bson:"username"`
	Password            string   `json:"-" bson:"password"` // plaintext seed fixture; hash before any production use
	FollowingIDs        []string `json:"followingIds" bson:"followingIds"`
	FollowerIDs         []string `json:"followerIds" bson:"followerIds"`
	TimeCreatedInMillis int64    `json:"timeCreatedInMillis" bson:"timeCreatedInMillis"`
}

// Follows reports whether the user follows the given user ID.
func (u *User) Follows(id string) bool {
	for _, f := range u.FollowingIDs {
		if f == id {
			return true
		}
	}
	return false
}

// LoginRequest defines the request body for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
