package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
)

// Event types
const (
	EventCleaningTaskCreated  = "cleaning_task_created"
	EventCleaningTaskUpdated  = "cleaning_task_updated"
	EventCleaningTaskDeleted  = "cleaning_task_deleted"
	EventCleaningStaffCreated = "cleaning_staff_created"
	EventCleaningStaffUpdated = "cleaning_staff_updated"
	EventRoomUpdated          = "room_updated"
	EventAdmissionUpdated     = "admission_updated"
)

const (
	writeWait = 5 * time.Second
	// messages queued per client before it counts as too slow
	sendBuffer = 64
)

// audiences lists the roles that receive each event. They match the roles
// allowed on the routes that serve the same data.
var audiences = map[string][]models.Role{
	EventCleaningTaskCreated:  models.CleaningRoles,
	EventCleaningTaskUpdated:  models.CleaningRoles,
	EventCleaningTaskDeleted:  models.CleaningRoles,
	EventCleaningStaffCreated: models.CleaningRoles,
	EventCleaningStaffUpdated: models.CleaningRoles,
	EventRoomUpdated:          models.RoomRoles,
	EventAdmissionUpdated:     models.AdmissionRoles,
}

// SubscriberRoles returns every role that receives at least one event.
func SubscriberRoles() []models.Role {
	var out []models.Role
	for _, r := range models.Roles {
		for _, roles := range audiences {
			if models.HasRole(roles, r) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(event string, data interface{})
}

type client struct {
	conn *websocket.Conn
	role models.Role
	send chan []byte
}

// Hub keeps the dashboard websocket clients and fans messages out to them.
// Each client has its own writer goroutine so publishing never waits on
// the network.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: models.Role(role), send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()
	go h.writePump(c)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
	}
	h.mutex.Unlock()
	if ok {
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) Publish(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast queues msg for every client whose role may see the event.
// Clients whose queue is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	audience, ok := audiences[msg.Event]
	if !ok {
		utils.ErrorLogger.WithField("event", msg.Event).Warn("Dropping event with no audience")
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	var slow []*websocket.Conn
	sent := 0
	h.mutex.RLock()
	for conn, c := range h.clients {
		if !models.HasRole(audience, c.role) {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			slow = append(slow, conn)
		}
	}
	h.mutex.RUnlock()

	for _, conn := range slow {
		utils.ErrorLogger.WithField("event", msg.Event).Warn("Client send queue full, disconnecting")
		h.Unregister(conn)
	}

	utils.InfoLogger.WithField("event", msg.Event).Debugf("Broadcast to %d clients", sent)
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("role", c.role).Warnf("Error sending to client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(string, interface{}) {}
