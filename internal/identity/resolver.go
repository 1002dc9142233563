package identity

import (
	"time"

	"github.com/OpenListTeam/go-cache"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/model"
)

var userCache = cache.NewMemCache(cache.WithShards[*model.User](2))

const cacheTTL = 5 * time.Minute

// Resolve maps a chat identity to a user, registering first-time
// contacts as employees. Results are cached briefly; role changes show
// up after the TTL or an explicit Forget.
func Resolve(chatID, username string) (*model.User, error) {
	if user, ok := userCache.Get(chatID); ok {
		return user, nil
	}
	user, err := db.GetOrCreateUser(chatID, username)
	if err != nil {
		return nil, err
	}
	userCache.Set(chatID, user, cache.WithEx[*model.User](cacheTTL))
	return user, nil
}

// Forget drops a cached identity, forcing the next Resolve to hit the
// store. Called after role changes.
func Forget(chatID string) {
	userCache.Del(chatID)
}
