package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/domain"
)

func newCatalog() *Catalog {
	return NewCatalog(domain.DefaultRooms())
}

func TestCatalog_LookupUnknownRoom(t *testing.T) {
	c := newCatalog()

	_, ok := c.Lookup("basement")
	require.False(t, ok)

	_, err := c.Join("u1", "Alice", "basement")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCatalog_ListKeepsSeedOrderAndCounts(t *testing.T) {
	c := newCatalog()

	_, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)

	infos := c.List()
	require.Len(t, infos, 3)
	require.Equal(t, domain.RoomID("lobby"), infos[0].ID)
	require.Equal(t, domain.RoomID("general"), infos[1].ID)
	require.Equal(t, domain.RoomID("handy"), infos[2].ID)
	require.Equal(t, 1, infos[1].MemberCount)
	require.Equal(t, domain.MaxRoomMembers, infos[1].MaxMembers)
}

func TestCatalog_JoinIncrementsCount(t *testing.T) {
	c := newCatalog()

	res, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)
	require.Equal(t, domain.RoomID("general"), res.RoomID)
	require.Equal(t, 1, res.UserCount)
	require.False(t, res.Transferred)

	res, err = c.Join("u2", "Bob", "general")
	require.NoError(t, err)
	require.Equal(t, 2, res.UserCount)
}

func TestCatalog_TransferMovesUserAtomically(t *testing.T) {
	c := newCatalog()

	_, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)
	_, err = c.Join("u2", "Bob", "general")
	require.NoError(t, err)

	res, err := c.Join("u1", "Alice", "handy")
	require.NoError(t, err)
	require.True(t, res.Transferred)
	require.Equal(t, domain.RoomID("general"), res.PrevRoomID)
	require.Equal(t, 1, res.PrevCount)
	require.Equal(t, 1, res.UserCount)

	// Membership index names exactly the new room.
	room, ok := c.RoomOf("u1")
	require.True(t, ok)
	require.Equal(t, domain.RoomID("handy"), room)

	require.Equal(t, 1, c.MemberCount("general"))
	require.Equal(t, 1, c.MemberCount("handy"))
	require.NotContains(t, c.MemberIDs("general"), domain.UserID("u1"))
	require.Contains(t, c.MemberIDs("handy"), domain.UserID("u1"))
}

func TestCatalog_RejoinSameRoomKeepsCount(t *testing.T) {
	c := newCatalog()

	_, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)
	res, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)
	require.False(t, res.Transferred)
	require.Equal(t, 1, res.UserCount)
}

func TestCatalog_LeaveWithoutRoomIsNoop(t *testing.T) {
	c := newCatalog()

	res := c.Leave("ghost")
	require.False(t, res.Left)
}

func TestCatalog_LeaveClearsIndex(t *testing.T) {
	c := newCatalog()

	_, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)

	res := c.Leave("u1")
	require.True(t, res.Left)
	require.Equal(t, domain.RoomID("general"), res.RoomID)
	require.Equal(t, 0, res.UserCount)

	_, ok := c.RoomOf("u1")
	require.False(t, ok)
}

func TestCatalog_MembersSnapshot(t *testing.T) {
	c := newCatalog()

	_, err := c.Join("u1", "Alice", "general")
	require.NoError(t, err)
	_, err = c.Join("u2", "Bob", "general")
	require.NoError(t, err)

	snap := c.MembersSnapshot("general")
	require.Len(t, snap, 2)
	require.ElementsMatch(t,
		[]MemberDTO{{ID: "u1", Username: "Alice"}, {ID: "u2", Username: "Bob"}},
		snap)

	require.Nil(t, c.MembersSnapshot("basement"))
}
