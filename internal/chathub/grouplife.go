package chathub

import (
	"log"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"
)

// GroupLifecycleManager handles group creation, renaming, avatar changes,
// membership changes, admin transfer and deletion. Broadcasts exclude the
// acting identity where the actor already has local confirmation.
type GroupLifecycleManager struct {
	Storage storage.Storage
	Emitter Emitter
}

// NewGroupLifecycleManager constructor.
func NewGroupLifecycleManager(s storage.Storage, e Emitter) *GroupLifecycleManager {
	return &GroupLifecycleManager{Storage: s, Emitter: e}
}

// CreateGroup creates a room with members = {creator} ∪ others and the
// creator as admin, then notifies every member with the room summary and an
// unread count of zero. The creator's notification doubles as the ack.
func (g *GroupLifecycleManager) CreateGroup(creator string, p models.CreateGroupPayload) error {
	if p.GroupName == "" {
		return invalid("groupName is required")
	}

	members := []string{creator}
	for _, id := range p.Members {
		if id != creator {
			members = append(members, id)
		}
	}

	room, err := g.Storage.CreateGroupChatRoom(p.GroupName, p.GroupAvatar, creator, members)
	if err != nil {
		return &PersistenceError{Op: "create group", Err: err}
	}
	log.Printf("Group %s created by %s with %d members", room.GroupChatRoomID, creator, len(members))

	summary := g.summary(room, 0)
	for _, member := range room.Members {
		g.Emitter.Emit(member, models.EventGroupCreated, summary)
	}
	return nil
}

// Rename updates the group name and broadcasts the new summary to all other
// members.
func (g *GroupLifecycleManager) Rename(actor string, p models.GroupNamePayload) error {
	if p.GroupChatRoomID == "" || p.GroupName == "" {
		return invalid("groupChatRoomID and groupName are required")
	}
	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	if err := g.Storage.UpdateGroupName(p.GroupChatRoomID, p.GroupName); err != nil {
		return &PersistenceError{Op: "update group name", Err: err}
	}
	room.GroupName = p.GroupName
	g.broadcastSummary(room, actor)
	return nil
}

// ChangeAvatar updates the group avatar URL and broadcasts the new summary
// to all other members.
func (g *GroupLifecycleManager) ChangeAvatar(actor string, p models.GroupAvatarPayload) error {
	if p.GroupChatRoomID == "" || p.GroupAvatar == "" {
		return invalid("groupChatRoomID and groupAvatar are required")
	}
	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	if err := g.Storage.UpdateGroupAvatar(p.GroupChatRoomID, p.GroupAvatar); err != nil {
		return &PersistenceError{Op: "update group avatar", Err: err}
	}
	room.GroupAvatar = p.GroupAvatar
	g.broadcastSummary(room, actor)
	return nil
}

// AddMembers appends the new identities to the member set, tells each new
// member about the room (with its own unread count, which may be non-zero
// for rejoining members), and broadcasts the updated member list to the
// prior membership.
func (g *GroupLifecycleManager) AddMembers(actor string, p models.AddMembersPayload) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	if len(p.Members) == 0 {
		return invalid("members are required")
	}
	if _, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID); err != nil {
		return wrapStorage("find group", err)
	}
	if err := g.Storage.AddGroupMembers(p.GroupChatRoomID, p.Members); err != nil {
		return &PersistenceError{Op: "add group members", Err: err}
	}

	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}

	added := make(map[string]bool, len(p.Members))
	for _, id := range p.Members {
		added[id] = true
		count, err := g.Storage.CountUnread(room.GroupChatRoomID, id)
		if err != nil {
			log.Printf("ERROR: Failed to count unread for new member %s: %v", id, err)
		}
		g.Emitter.Emit(id, models.EventGroupCreated, g.summary(room, count))
	}

	notice := models.MembersAddedNotice{
		GroupChatRoomID: room.GroupChatRoomID,
		Members:         room.Members,
	}
	for _, member := range room.Members {
		if member == actor || added[member] {
			continue
		}
		g.Emitter.Emit(member, models.EventMembersAdded, notice)
	}
	return nil
}

// LeaveGroup removes the leaver from the member set and broadcasts the
// departure to the remaining members.
func (g *GroupLifecycleManager) LeaveGroup(leaver string, p models.GroupRoomPayload) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	if err := g.Storage.RemoveGroupMember(p.GroupChatRoomID, leaver, ""); err != nil {
		return &PersistenceError{Op: "remove group member", Err: err}
	}

	notice := models.LeftGroupNotice{GroupChatRoomID: p.GroupChatRoomID, GoSipID: leaver}
	for _, member := range room.Members {
		if member == leaver {
			continue
		}
		g.Emitter.Emit(member, models.EventLeftGroup, notice)
	}
	return nil
}

// LeaveGroupAsAdmin removes the departing admin and reassigns admin to the
// given successor in the same update, so the admin-is-a-member invariant
// holds at every point. The successor must already be a member.
func (g *GroupLifecycleManager) LeaveGroupAsAdmin(leaver string, p models.LeaveGroupAdminPayload) error {
	if p.GroupChatRoomID == "" || p.NewAdmin == "" {
		return invalid("groupChatRoomID and newAdmin are required")
	}
	if p.NewAdmin == leaver {
		return invalid("newAdmin must be a different member")
	}
	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	successorIsMember := false
	for _, member := range room.Members {
		if member == p.NewAdmin {
			successorIsMember = true
			break
		}
	}
	if !successorIsMember {
		return invalid("newAdmin %s is not a group member", p.NewAdmin)
	}

	if err := g.Storage.RemoveGroupMember(p.GroupChatRoomID, leaver, p.NewAdmin); err != nil {
		return &PersistenceError{Op: "remove group admin", Err: err}
	}
	log.Printf("Admin %s left group %s, admin reassigned to %s", leaver, p.GroupChatRoomID, p.NewAdmin)

	notice := models.LeftGroupNotice{
		GroupChatRoomID: p.GroupChatRoomID,
		GoSipID:         leaver,
		NewAdmin:        p.NewAdmin,
	}
	for _, member := range room.Members {
		if member == leaver {
			continue
		}
		g.Emitter.Emit(member, models.EventAdminLeftGroup, notice)
	}
	return nil
}

// DeleteGroup deletes the room record together with all its messages and
// broadcasts the deletion to all former members except the actor.
func (g *GroupLifecycleManager) DeleteGroup(actor string, p models.GroupRoomPayload) error {
	if p.GroupChatRoomID == "" {
		return invalid("groupChatRoomID is required")
	}
	room, err := g.Storage.FindGroupChatRoomByID(p.GroupChatRoomID)
	if err != nil {
		return wrapStorage("find group", err)
	}
	if err := g.Storage.DeleteGroupChatRoom(p.GroupChatRoomID); err != nil {
		return &PersistenceError{Op: "delete group", Err: err}
	}
	log.Printf("Group %s deleted by %s", p.GroupChatRoomID, actor)

	notice := models.GroupDeletedNotice{GroupChatRoomID: p.GroupChatRoomID}
	for _, member := range room.Members {
		if member == actor {
			continue
		}
		g.Emitter.Emit(member, models.EventGroupDeleted, notice)
	}
	return nil
}

func (g *GroupLifecycleManager) summary(room *models.GroupChatRoom, unread int64) models.GroupSummary {
	return models.GroupSummary{
		GroupChatRoomID: room.GroupChatRoomID,
		GroupName:       room.GroupName,
		GroupAvatar:     room.GroupAvatar,
		Admin:           room.Admin,
		UnreadCount:     unread,
	}
}

func (g *GroupLifecycleManager) broadcastSummary(room *models.GroupChatRoom, actor string) {
	for _, member := range room.Members {
		if member == actor {
			continue
		}
		count, err := g.Storage.CountUnread(room.GroupChatRoomID, member)
		if err != nil {
			log.Printf("ERROR: Failed to count unread for %s in group %s: %v", member, room.GroupChatRoomID, err)
		}
		g.Emitter.Emit(member, models.EventGroupUpdated, g.summary(room, count))
	}
}
