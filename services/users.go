package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/phillip/helping-hands-go/models"
	"github.com/phillip/helping-hands-go/store"
)

type UserService struct {
	store   UserStore
	now     func() time.Time
	log     *slog.Logger
	metrics Recorder
}

func NewUserService(st UserStore, log *slog.Logger, metrics Recorder) *UserService {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &UserService{store: st, now: time.Now, log: log, metrics: metrics}
}

// SyncUserInput is the profile pushed by the client after the identity
// provider reports a change.
type SyncUserInput struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// SyncUser creates the profile or refreshes it. Empty DisplayName or
// PhotoURL leave the stored values alone, so repeating a call is a no-op.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	in.UID = strings.TrimSpace(in.UID)
	in.Email = strings.TrimSpace(in.Email)

	var missing []string
	if in.UID == "" {
		missing = append(missing, "uid")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("UID and email are required", missing...)
	}

	user, err := s.store.Upsert(ctx, store.UserUpsert{
		UID:                in.UID,
		Email:              in.Email,
		DisplayName:        strings.TrimSpace(in.DisplayName),
		PhotoURL:           strings.TrimSpace(in.PhotoURL),
		DefaultDisplayName: emailLocalPart(in.Email),
		Now:                models.StoredTime(s.now()),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.UserSynced()
	s.log.InfoContext(ctx, "user synced", slog.String("uid", user.UID))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, models.NewValidationError("User ID is required", "uid")
	}
	user, err := s.store.FindByUID(ctx, uid)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewUserNotFoundError()
		}
		return nil, err
	}
	return user, nil
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func displayNameOr(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return emailLocalPart(email)
}
