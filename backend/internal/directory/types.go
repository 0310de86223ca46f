package directory

import (
	"time"

	"tsunagu/backend/internal/store"
)

// AcceptFrom is the message-acceptance policy of a user
type AcceptFrom string

const (
	AcceptFromAll         AcceptFrom = "all"
	AcceptFromFriendsOnly AcceptFrom = "friends_only"
	AcceptFromNone        AcceptFrom = "none"
)

// Valid reports whether the policy is one of the enumerated values
func (a AcceptFrom) Valid() bool {
	switch a {
	case AcceptFromAll, AcceptFromFriendsOnly, AcceptFromNone:
		return true
	}
	return false
}

// Profile is the optional display information of a user
type Profile struct {
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// MessageSettings controls who may message the user
type MessageSettings struct {
	AcceptFrom         AcceptFrom `json:"accept_from"`
	EmailNotifications bool       `json:"email_notifications"`
}

// User is the canonical identity record
type User struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Username  string          `json:"username"`
	Profile   Profile         `json:"profile"`
	Settings  MessageSettings `json:"message_settings"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserFromProps builds a User from the flattened properties of a User node
func UserFromProps(props map[string]any) *User {
	if props == nil {
		return nil
	}

	username := store.StringValue(props, "username")
	nickname := store.StringValue(props, "profileNickname")
	if nickname == "" {
		nickname = username
	}

	acceptFrom := AcceptFrom(store.StringValue(props, "messageSettingsAcceptFrom"))
	if !acceptFrom.Valid() {
		acceptFrom = AcceptFromAll
	}

	emailNotifications := true
	if val, ok := props["messageSettingsEmailNotifications"]; ok {
		if b, isBool := val.(bool); isBool {
			emailNotifications = b
		}
	}

	return &User{
		ID:       store.StringValue(props, "id"),
		Email:    store.StringValue(props, "email"),
		Username: username,
		Profile: Profile{
			Nickname: nickname,
			Avatar:   store.StringValue(props, "profileAvatar"),
			Bio:      store.StringValue(props, "profileBio"),
		},
		Settings: MessageSettings{
			AcceptFrom:         acceptFrom,
			EmailNotifications: emailNotifications,
		},
		CreatedAt: store.TimeValue(props, "createdAt"),
	}
}
