package models

// Tweet is a short immutable post. timeCreatedInMillis is the sole sort
// key for every read path; ties are broken by insertion order in the store.
type Tweet struct {
	ID                  string `json:"id" bson:"_id,omitempty"`
	UserID              string `json:"userId" bson:"userId"`
	Text                string `json:"tweet" bson:"tweet"`
	TimeCreatedInMillis int64  `json:"timeCreatedInMillis" bson:"timeCreatedInMillis"`
}
