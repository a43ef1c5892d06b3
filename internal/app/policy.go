package app

import "github.com/Iaion/walkie-talkie-server-sub000/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose connection cannot keep up
// with message fan-out.
type Policy interface {
	OnBackPressure(roomID domain.RoomID, userID domain.UserID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, domain.UserID) BackpressureAction {
	return KickMember
}
