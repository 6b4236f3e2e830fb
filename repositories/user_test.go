package repositories

import (
	"chat-hub/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)
	req.NotEmpty(id)

	byEmail, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("alice", byEmail.Username)
	req.Equal([]string{"user"}, byEmail.Roles)

	byID, err := repository.GetUserByID(id)
	req.NoError(err)
	req.Equal(byEmail, byID)
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("alice@example.com", "alice2", "hash2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_GetUnknownUser(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByEmail("ghost@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetUserByID("no-such-id")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_UpdateUser(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)

	user, err := repository.GetUserByID(id)
	req.NoError(err)
	user.Username = "alicia"
	user.DisplayName = "Alicia B."
	req.NoError(repository.UpdateUser(user))

	// Profile fields changed, the email index still resolves
	reloaded, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal("alicia", reloaded.Username)
	req.Equal("Alicia B.", reloaded.DisplayName)
}

func TestUserRepository_UpdateUnknownUser(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	err := repository.UpdateUser(User{ID: "ghost", Username: "nobody"})
	req.ErrorIs(err, errors.ErrUserNotFound)
}
