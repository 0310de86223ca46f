package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptFromValid(t *testing.T) {
	assert.True(t, AcceptFromAll.Valid())
	assert.True(t, AcceptFromFriendsOnly.Valid())
	assert.True(t, AcceptFromNone.Valid())
	assert.False(t, AcceptFrom("").Valid())
	assert.False(t, AcceptFrom("everyone").Valid())
}

func TestUserFromProps(t *testing.T) {
	user := UserFromProps(map[string]any{
		"id":                                "user-1",
		"email":                             "alice@example.com",
		"username":                          "alice",
		"profileNickname":                   "Alice",
		"profileAvatar":                     "https://cdn.example.com/a.png",
		"profileBio":                        "hi there",
		"messageSettingsAcceptFrom":         "friends_only",
		"messageSettingsEmailNotifications": false,
		"createdAt":                         "2024-03-01T12:30:00Z",
	})

	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.Profile.Nickname)
	assert.Equal(t, "https://cdn.example.com/a.png", user.Profile.Avatar)
	assert.Equal(t, "hi there", user.Profile.Bio)
	assert.Equal(t, AcceptFromFriendsOnly, user.Settings.AcceptFrom)
	assert.False(t, user.Settings.EmailNotifications)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), user.CreatedAt)
}

func TestUserFromProps_Defaults(t *testing.T) {
	user := UserFromProps(map[string]any{
		"id":       "user-2",
		"email":    "bob@example.com",
		"username": "bob",
	})

	require.NotNil(t, user)
	// Nickname falls back to the username when unset
	assert.Equal(t, "bob", user.Profile.Nickname)
	assert.Equal(t, AcceptFromAll, user.Settings.AcceptFrom)
	assert.True(t, user.Settings.EmailNotifications)
}

func TestUserFromProps_InvalidAcceptFrom(t *testing.T) {
	user := UserFromProps(map[string]any{
		"id":                        "user-3",
		"username":                  "carol",
		"messageSettingsAcceptFrom": "everyone",
	})

	require.NotNil(t, user)
	assert.Equal(t, AcceptFromAll, user.Settings.AcceptFrom)
}

func TestUserFromProps_Nil(t *testing.T) {
	assert.Nil(t, UserFromProps(nil))
}
