package services

import (
	"chat-hub/domain"
	"chat-hub/presence"
	"chat-hub/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAccountService_UpdateProfile_PropagatesToLivePresence(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	connections := presence.NewConnectionRegistry()
	rooms := presence.NewRoomRegistry()
	orchestrator := presence.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), connections, rooms)
	userRepository := repositories.NewUserRepository(db)
	accounts := NewAccountService(logs.GetLoggerFromLevel(slog.LevelDebug), userRepository, orchestrator)
	auth := NewAuthService(userRepository, time.Hour)

	// Given a registered user with a live, room-joined connection
	_, err := auth.Register("alice@example.com", "alice", "ComplexPass123!")
	req.NoError(err)
	stored, err := userRepository.GetUserByEmail("alice@example.com")
	req.NoError(err)

	conn := domain.NewConnection("c1", domain.ConnectionWeb, nil)
	conn.SetUser(domain.User{ID: stored.ID, Username: stored.Username})
	connections.Add(conn)
	rooms.GetOrCreate("general", "").Join(conn)

	// When the username changes through the account service
	updated, err := accounts.UpdateProfile(stored.ID, "alicia", "Alicia B.")
	req.NoError(err)
	req.Equal("alicia", updated.Username)

	// Then storage holds the new record
	persisted, err := userRepository.GetUserByID(stored.ID)
	req.NoError(err)
	req.Equal("alicia", persisted.Username)
	req.Equal("Alicia B.", persisted.DisplayName)

	// And the live presence cache was refreshed through the fan-out
	req.Equal("alicia", conn.User().Username)
	req.Equal("Alicia B.", conn.User().DisplayName)
}

func TestAccountService_UpdateProfile_OfflineUser_OnlyStorageChanges(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	connections := presence.NewConnectionRegistry()
	rooms := presence.NewRoomRegistry()
	orchestrator := presence.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), connections, rooms)
	userRepository := repositories.NewUserRepository(db)
	accounts := NewAccountService(logs.GetLoggerFromLevel(slog.LevelDebug), userRepository, orchestrator)

	userID, err := userRepository.CreateUser("bob@example.com", "bob", "irrelevant-hash")
	req.NoError(err)

	// The user has no live connection; the update only touches storage
	_, err = accounts.UpdateProfile(userID, "bobby", "")
	req.NoError(err)

	persisted, err := userRepository.GetUserByID(userID)
	req.NoError(err)
	req.Equal("bobby", persisted.Username)
}

func TestAccountService_UpdateProfile_RejectsBadUsername(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	connections := presence.NewConnectionRegistry()
	rooms := presence.NewRoomRegistry()
	orchestrator := presence.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), connections, rooms)
	userRepository := repositories.NewUserRepository(db)
	accounts := NewAccountService(logs.GetLoggerFromLevel(slog.LevelDebug), userRepository, orchestrator)

	userID, err := userRepository.CreateUser("carol@example.com", "carol", "irrelevant-hash")
	req.NoError(err)

	_, err = accounts.UpdateProfile(userID, "x", "")
	req.Error(err)

	persisted, err := userRepository.GetUserByID(userID)
	req.NoError(err)
	req.Equal("carol", persisted.Username)
}
