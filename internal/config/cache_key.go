package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session (JTI).
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// QuizLiveStateKey returns the cache key for a quiz's live session snapshot.
func (r *CacheKeyStruct) QuizLiveStateKey(institute, quizID string) string {
	return fmt.Sprintf("institute:%s:quiz:%s:live", institute, quizID)
}

// QuizChannel returns the Redis PubSub channel carrying live state events
// for one quiz. Every participant stream of that quiz subscribes here.
func (r *CacheKeyStruct) QuizChannel(institute, quizID string) string {
	return fmt.Sprintf("institute:%s:quiz:%s:events", institute, quizID)
}

// SessionAnswersKey returns the cache key marking which questions a
// participant already answered within one session.
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string, userID int) string {
	return fmt.Sprintf("session:%s:user:%d:answered", sessionID, userID)
}

// QuizTimerKey returns the cache key for a quiz's per-question timer seconds.
func (r *CacheKeyStruct) QuizTimerKey(institute, quizID string) string {
	return fmt.Sprintf("institute:%s:quiz:%s:timer", institute, quizID)
}

// NotifyChannel returns the PubSub channel the external push bridge
// consumes for one institute.
func (r *CacheKeyStruct) NotifyChannel(institute string) string {
	return fmt.Sprintf("institute:%s:notify", institute)
}

var CacheKey = NewCacheKeyStruct()
