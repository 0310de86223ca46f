package directory

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
	"tsunagu/backend/pkg/logger"
)

// Directory owns the canonical user records in the graph
type Directory struct {
	store  store.Store
	logger *zap.Logger
}

// New creates a user directory backed by the given store
func New(st store.Store) *Directory {
	return &Directory{
		store:  st,
		logger: logger.Get(),
	}
}

// Create creates a new user with default message settings
func (d *Directory) Create(ctx context.Context, email, username string, profile Profile) (*User, error) {
	if email == "" {
		return nil, apperrors.NewValidation("email is required")
	}
	if username == "" {
		return nil, apperrors.NewValidation("username is required")
	}

	id := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	nickname := profile.Nickname
	if nickname == "" {
		nickname = username
	}

	query := `
		CREATE (u:User {
			id: $id,
			email: $email,
			username: $username,
			profileNickname: $profileNickname,
			profileAvatar: $profileAvatar,
			profileBio: $profileBio,
			messageSettingsAcceptFrom: $acceptFrom,
			messageSettingsEmailNotifications: $emailNotifications,
			createdAt: datetime($createdAt)
		})
		RETURN u
	`

	result, err := d.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, map[string]any{
			"id":                 id,
			"email":              email,
			"username":           username,
			"profileNickname":    nickname,
			"profileAvatar":      profile.Avatar,
			"profileBio":         profile.Bio,
			"acceptFrom":         string(AcceptFromAll),
			"emailNotifications": true,
			"createdAt":          createdAt,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return UserFromProps(store.MapValue(rows[0], "u")), nil
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to create user", err)
	}

	user, _ := result.(*User)
	if user == nil {
		return nil, apperrors.NewDatabase("failed to create user", nil)
	}

	d.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// GetOrCreate resolves a user by email, provisioning one on first login.
// The default username is the local part of the email address.
func (d *Directory) GetOrCreate(ctx context.Context, email, avatar string) (*User, error) {
	user, err := d.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	return d.Create(ctx, email, username, Profile{Avatar: avatar})
}

// FindByID returns the user with the given id, or nil if absent
func (d *Directory) FindByID(ctx context.Context, id string) (*User, error) {
	return d.findOne(ctx, `MATCH (u:User {id: $value}) RETURN u`, id)
}

// FindByEmail returns the user with the given email, or nil if absent
func (d *Directory) FindByEmail(ctx context.Context, email string) (*User, error) {
	return d.findOne(ctx, `MATCH (u:User {email: $value}) RETURN u`, email)
}

// FindByUsername returns the user with the given username, or nil if absent
func (d *Directory) FindByUsername(ctx context.Context, username string) (*User, error) {
	return d.findOne(ctx, `MATCH (u:User {username: $value}) RETURN u`, username)
}

func (d *Directory) findOne(ctx context.Context, query, value string) (*User, error) {
	rows, err := d.store.ExecuteQuery(ctx, query, map[string]any{"value": value})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to look up user", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return UserFromProps(store.MapValue(rows[0], "u")), nil
}

// ProfileUpdate carries a partial profile mutation; nil fields are untouched
type ProfileUpdate struct {
	Nickname *string
	Avatar   *string
	Bio      *string
}

// UpdateProfile applies a partial profile update
func (d *Directory) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	setClauses := []string{}
	params := map[string]any{"id": id}

	if update.Nickname != nil {
		setClauses = append(setClauses, "u.profileNickname = $nickname")
		params["nickname"] = *update.Nickname
	}
	if update.Avatar != nil {
		setClauses = append(setClauses, "u.profileAvatar = $avatar")
		params["avatar"] = *update.Avatar
	}
	if update.Bio != nil {
		setClauses = append(setClauses, "u.profileBio = $bio")
		params["bio"] = *update.Bio
	}

	if len(setClauses) == 0 {
		user, err := d.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperrors.NewNotFound("user not found")
		}
		return user, nil
	}

	return d.applyUpdate(ctx, "MATCH (u:User {id: $id}) SET "+strings.Join(setClauses, ", ")+" RETURN u", params)
}

// SettingsUpdate carries a partial message-settings mutation
type SettingsUpdate struct {
	AcceptFrom         *AcceptFrom
	EmailNotifications *bool
}

// UpdateMessageSettings applies a validated partial settings update
func (d *Directory) UpdateMessageSettings(ctx context.Context, id string, update SettingsUpdate) (*User, error) {
	setClauses := []string{}
	params := map[string]any{"id": id}

	if update.AcceptFrom != nil {
		if !update.AcceptFrom.Valid() {
			return nil, apperrors.NewValidation("accept_from must be one of: all, friends_only, none")
		}
		setClauses = append(setClauses, "u.messageSettingsAcceptFrom = $acceptFrom")
		params["acceptFrom"] = string(*update.AcceptFrom)
	}
	if update.EmailNotifications != nil {
		setClauses = append(setClauses, "u.messageSettingsEmailNotifications = $emailNotifications")
		params["emailNotifications"] = *update.EmailNotifications
	}

	if len(setClauses) == 0 {
		user, err := d.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperrors.NewNotFound("user not found")
		}
		return user, nil
	}

	return d.applyUpdate(ctx, "MATCH (u:User {id: $id}) SET "+strings.Join(setClauses, ", ")+" RETURN u", params)
}

func (d *Directory) applyUpdate(ctx context.Context, query string, params map[string]any) (*User, error) {
	result, err := d.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return UserFromProps(store.MapValue(rows[0], "u")), nil
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to update user", err)
	}

	user, _ := result.(*User)
	if user == nil {
		return nil, apperrors.NewNotFound("user not found")
	}
	return user, nil
}

// Search finds users whose username or nickname contains the query,
// case-insensitively
func (d *Directory) Search(ctx context.Context, query string, limit int) ([]*User, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return nil, apperrors.NewValidation("search query must be at least 2 characters")
	}
	if limit <= 0 {
		limit = 10
	}

	pattern := "(?i).*" + regexp.QuoteMeta(strings.TrimSpace(query)) + ".*"

	rows, err := d.store.ExecuteQuery(ctx, `
		MATCH (u:User)
		WHERE u.username =~ $pattern OR u.profileNickname =~ $pattern
		RETURN u
		ORDER BY u.username
		LIMIT $limit
	`, map[string]any{
		"pattern": pattern,
		"limit":   limit,
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to search users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		if user := UserFromProps(store.MapValue(row, "u")); user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}
