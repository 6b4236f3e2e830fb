package services

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/presence"
	"chat-hub/repositories"
	"log/slog"
)

// IAccountService mutates persisted account records and notifies the
// presence layer afterwards, so live sessions see profile changes without a
// round-trip to storage.
type IAccountService interface {
	UpdateProfile(userID, username, displayName string) (repositories.User, error)
}

type AccountService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	orchestrator   *presence.Orchestrator
}

func NewAccountService(log *slog.Logger, repo repositories.IUserRepository, orchestrator *presence.Orchestrator) *AccountService {
	return &AccountService{log: log, userRepository: repo, orchestrator: orchestrator}
}

// UpdateProfile persists the change first, then emits the account update to
// the presence orchestrator. Ordering matters: by the time presence caches
// refresh, storage is already the source of truth for reconnecting clients.
func (s *AccountService) UpdateProfile(userID, username, displayName string) (repositories.User, error) {
	if err := auth.ValidateProfileUpdate(auth.ProfileUpdateRequest{
		Username:    username,
		DisplayName: displayName,
	}); err != nil {
		return repositories.User{}, err
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return repositories.User{}, err
	}

	usernameChanged := username != "" && username != user.Username
	if username != "" {
		user.Username = username
	}
	if displayName != "" {
		user.DisplayName = displayName
	}

	if err := s.userRepository.UpdateUser(user); err != nil {
		return repositories.User{}, err
	}

	s.log.Info("account updated", "user_id", user.ID, "username_changed", usernameChanged)
	s.orchestrator.AccountUpdated(event.AccountUpdate{
		User: domain.User{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		},
		UsernameChanged: usernameChanged,
	})

	return user, nil
}
