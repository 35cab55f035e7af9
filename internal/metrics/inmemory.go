package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginSuccesses  uint64
	LoginFailures   uint64
	PostsCreated    uint64
	PostsUpdated    uint64
	PostsDeleted    uint64
	CommentsCreated uint64
	CommentsDeleted uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered uint64
	loginSuccesses  uint64
	loginFailures   uint64
	postsCreated    uint64
	postsUpdated    uint64
	postsDeleted    uint64
	commentsCreated uint64
	commentsDeleted uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:  atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:   atomic.LoadUint64(&m.loginFailures),
		PostsCreated:    atomic.LoadUint64(&m.postsCreated),
		PostsUpdated:    atomic.LoadUint64(&m.postsUpdated),
		PostsDeleted:    atomic.LoadUint64(&m.postsDeleted),
		CommentsCreated: atomic.LoadUint64(&m.commentsCreated),
		CommentsDeleted: atomic.LoadUint64(&m.commentsDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() { atomic.AddUint64(&m.usersRegistered, 1) }

// IncLoginSuccess increments the successful-login counter.
func (m *InMemoryRecorder) IncLoginSuccess() { atomic.AddUint64(&m.loginSuccesses, 1) }

// IncLoginFailure increments the failed-login counter.
func (m *InMemoryRecorder) IncLoginFailure() { atomic.AddUint64(&m.loginFailures, 1) }

// IncPostCreated increments the post-created counter.
func (m *InMemoryRecorder) IncPostCreated() { atomic.AddUint64(&m.postsCreated, 1) }

// IncPostUpdated increments the post-updated counter.
func (m *InMemoryRecorder) IncPostUpdated() { atomic.AddUint64(&m.postsUpdated, 1) }

// IncPostDeleted increments the post-deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() { atomic.AddUint64(&m.postsDeleted, 1) }

// IncCommentCreated increments the comment-created counter.
func (m *InMemoryRecorder) IncCommentCreated() { atomic.AddUint64(&m.commentsCreated, 1) }

// IncCommentDeleted increments the comment-deleted counter.
func (m *InMemoryRecorder) IncCommentDeleted() { atomic.AddUint64(&m.commentsDeleted, 1) }
