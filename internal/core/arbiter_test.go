package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

func TestArbiter_GrantOnIdle(t *testing.T) {
	a := NewTalkArbiter()

	grant, granted := a.Request("handy", "u1", "Alice")
	require.True(t, granted)
	require.Equal(t, domain.UserID("u1"), grant.UserID)
	require.Equal(t, "Alice", grant.Username)
	require.False(t, grant.Since.IsZero())

	holder, held := a.Holder("handy")
	require.True(t, held)
	require.Equal(t, domain.UserID("u1"), holder.UserID)
}

func TestArbiter_DenyWhileHeld(t *testing.T) {
	a := NewTalkArbiter()

	_, granted := a.Request("handy", "u1", "Alice")
	require.True(t, granted)

	cur, granted := a.Request("handy", "u2", "Bob")
	require.False(t, granted)
	require.Equal(t, domain.UserID("u1"), cur.UserID)

	// The recorded holder never changes on a denial.
	holder, held := a.Holder("handy")
	require.True(t, held)
	require.Equal(t, domain.UserID("u1"), holder.UserID)
}

func TestArbiter_ReleaseByNonHolderIsNoop(t *testing.T) {
	a := NewTalkArbiter()

	a.Request("handy", "u1", "Alice")
	require.False(t, a.Release("handy", "u2"))

	holder, held := a.Holder("handy")
	require.True(t, held)
	require.Equal(t, domain.UserID("u1"), holder.UserID)
}

func TestArbiter_ReleaseOnIdleIsNoop(t *testing.T) {
	a := NewTalkArbiter()
	require.False(t, a.Release("handy", "u1"))
}

func TestArbiter_ReleaseByHolder(t *testing.T) {
	a := NewTalkArbiter()

	a.Request("handy", "u1", "Alice")
	require.True(t, a.Release("handy", "u1"))

	_, held := a.Holder("handy")
	require.False(t, held)

	_, granted := a.Request("handy", "u2", "Bob")
	require.True(t, granted)
}

func TestArbiter_ReleaseAllFreesEveryRoom(t *testing.T) {
	a := NewTalkArbiter()

	a.Request("handy", "u1", "Alice")
	a.Request("general", "u1", "Alice")
	a.Request("lobby", "u2", "Bob")

	released := a.ReleaseAll("u1")
	require.ElementsMatch(t, []domain.RoomID{"handy", "general"}, released)

	_, held := a.Holder("handy")
	require.False(t, held)
	holder, held := a.Holder("lobby")
	require.True(t, held)
	require.Equal(t, domain.UserID("u2"), holder.UserID)

	// A different user can claim the freed room right away.
	_, granted := a.Request("handy", "u2", "Bob")
	require.True(t, granted)
}

func TestArbiter_SingleHolderUnderContention(t *testing.T) {
	a := NewTalkArbiter()

	var wg sync.WaitGroup
	var mu sync.Mutex
	grants := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			uid := domain.UserID(fmt.Sprintf("u%d", n))
			if _, granted := a.Request("handy", uid, "user"); granted {
				mu.Lock()
				grants++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, grants)
	_, held := a.Holder("handy")
	require.True(t, held)
}
