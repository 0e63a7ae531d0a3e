package message

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReactionMap maps an emoji to the set of user ids who reacted with it.
// Stored as a jsonb column. An emoji key never holds an empty set; Toggle
// prunes keys whose last reactor leaves.
type ReactionMap map[string][]string

// Toggle flips userID's membership for emoji and reports whether the
// reaction was added (true) or removed (false).
func (r ReactionMap) Toggle(emoji, userID string) bool {
	users := r[emoji]
	for i, id := range users {
		if id == userID {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(r, emoji)
			} else {
				r[emoji] = users
			}
			return false
		}
	}
	r[emoji] = append(users, userID)
	return true
}

// Has reports whether userID has reacted with emoji.
func (r ReactionMap) Has(emoji, userID string) bool {
	for _, id := range r[emoji] {
		if id == userID {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for jsonb storage.
func (r ReactionMap) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for jsonb storage.
func (r *ReactionMap) Scan(value interface{}) error {
	if value == nil {
		*r = ReactionMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reaction map source type %T", value)
	}
	if len(data) == 0 {
		*r = ReactionMap{}
		return nil
	}
	return json.Unmarshal(data, r)
}
