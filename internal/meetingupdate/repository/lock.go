package repository

import "context"

// AcquireMeetingLock takes a session-level advisory lock on the meeting id
// so two concurrent commits against the same meeting serialize. The lock is
// held on a dedicated connection because the commit pipeline interleaves
// external calls with database writes; release must be called exactly once.
func (r *Repository) AcquireMeetingLock(ctx context.Context, meetingID string) (release func(), err error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, meetingID); err != nil {
		conn.Release()
		return nil, err
	}
	release = func() {
		// Unlock with a fresh context so cancellation cannot leak the lock.
		_, _ = conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, meetingID)
		conn.Release()
	}
	return release, nil
}
