// handlers/group_live.go - Per-group live event feed over WebSocket
package handlers

import (
	"log"
	"strconv"
	"sync"

	"studybloom/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type groupEvent struct {
	Type          string `json:"type"`
	GroupID       uint   `json:"group_id"`
	UserID        uint   `json:"user_id,omitempty"`
	CurrentStreak int    `json:"current_streak,omitempty"`
}

// groupHub tracks open sockets per group and fans events out to them.
type groupHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*websocket.Conn]uint // conn -> userID
}

var liveHub = &groupHub{rooms: make(map[uint]map[*websocket.Conn]uint)}

func (h *groupHub) add(groupID uint, conn *websocket.Conn, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[groupID] == nil {
		h.rooms[groupID] = make(map[*websocket.Conn]uint)
	}
	h.rooms[groupID][conn] = userID
}

func (h *groupHub) remove(groupID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[groupID], conn)
	if len(h.rooms[groupID]) == 0 {
		delete(h.rooms, groupID)
	}
}

func (h *groupHub) broadcast(groupID uint, ev groupEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[groupID] {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("group feed write failed, dropping connection: %v", err)
			conn.Close()
			delete(h.rooms[groupID], conn)
		}
	}
}

// broadcastStreakUpdate fans a member's new streak out to every group they
// belong to. Feed delivery is best-effort; lookup errors only log.
func broadcastStreakUpdate(userID uint, currentStreak int) {
	groupIDs, err := groupService.UserGroupIDs(userID)
	if err != nil {
		log.Printf("streak broadcast skipped: %v", err)
		return
	}
	for _, groupID := range groupIDs {
		liveHub.broadcast(groupID, groupEvent{
			Type:          "streak_updated",
			GroupID:       groupID,
			UserID:        userID,
			CurrentStreak: currentStreak,
		})
	}
}

// GroupLiveUpgrade gates the websocket upgrade: the caller must be an
// active member of the group. Runs after AuthMiddleware.
func GroupLiveUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	member, err := groupService.IsActiveMember(userID, uint(groupID))
	if err != nil {
		return fail(c, err)
	}
	if !member {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Not a member of this group"})
	}

	c.Locals("liveUserId", userID)
	c.Locals("liveGroupId", uint(groupID))
	return c.Next()
}

// GroupLiveSocket holds the connection open and relays hub events until the
// client disconnects.
var GroupLiveSocket = websocket.New(func(conn *websocket.Conn) {
	userID, _ := conn.Locals("liveUserId").(uint)
	groupID, _ := conn.Locals("liveGroupId").(uint)

	liveHub.add(groupID, conn, userID)
	liveHub.broadcast(groupID, groupEvent{
		Type:    "member_online",
		GroupID: groupID,
		UserID:  userID,
	})

	defer func() {
		liveHub.remove(groupID, conn)
		liveHub.broadcast(groupID, groupEvent{
			Type:    "member_offline",
			GroupID: groupID,
			UserID:  userID,
		})
		conn.Close()
	}()

	// Clients only listen; the read loop just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
})
