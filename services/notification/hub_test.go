package notification

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"medibook/config"
	"medibook/models"
	"medibook/utils"
)

// fakeConn scripts inbound frames and records outbound writes.
type fakeConn struct {
	frames chan []byte

	mu      sync.Mutex
	closed  bool
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 8)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	raw, ok := <-c.frames
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, raw, nil
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func testToken(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	config.AppConfig.JWTSecret = "hub-test-secret"
	token, err := utils.GenerateToken(userID, string(role), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestAuthenticateJoinsUserTopic(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())

	if err := hub.Authenticate(client, testToken(t, "patient-1", models.RolePatient)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if client.UserID != "patient-1" || client.Role != models.RolePatient {
		t.Errorf("unexpected client identity: %s/%s", client.UserID, client.Role)
	}
	if hub.TopicCount(UserTopic("patient-1")) != 1 {
		t.Errorf("expected client on its user channel")
	}
	if hub.TopicCount(TopicAdmins) != 0 {
		t.Errorf("patient must not join the admins channel")
	}
}

func TestAuthenticateAdminJoinsAdminsTopic(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())

	if err := hub.Authenticate(client, testToken(t, "admin-1", models.RoleAdmin)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if hub.TopicCount(UserTopic("admin-1")) != 1 || hub.TopicCount(TopicAdmins) != 1 {
		t.Errorf("admin must join both its user channel and the admins channel")
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())

	if err := hub.Authenticate(client, "not-a-token"); err == nil {
		t.Fatal("expected error for invalid token")
	}
	if hub.TopicCount(UserTopic("patient-1")) != 0 {
		t.Errorf("failed authentication must not join any channel")
	}
}

func TestAuthenticateAtMostOnce(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())
	token := testToken(t, "patient-1", models.RolePatient)

	if err := hub.Authenticate(client, token); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if err := hub.Authenticate(client, token); err == nil {
		t.Error("expected second Authenticate to be rejected")
	}
	if hub.TopicCount(UserTopic("patient-1")) != 1 {
		t.Errorf("repeat authentication must not duplicate the subscription")
	}
}

func TestPublishToUserDelivers(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())
	if err := hub.Authenticate(client, testToken(t, "patient-1", models.RolePatient)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	other := hub.NewClient(newFakeConn())
	if err := hub.Authenticate(other, testToken(t, "patient-2", models.RolePatient)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	hub.PublishToUser("patient-1", Event{Type: EventStatusUpdate, Message: "Your appointment status has been updated to confirmed"})

	select {
	case raw := <-client.Send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("invalid event payload: %v", err)
		}
		if event.Type != EventStatusUpdate {
			t.Errorf("unexpected event type %s", event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Error("expected the hub to stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered to subscriber")
	}

	select {
	case raw := <-other.Send:
		t.Fatalf("event leaked to another user's channel: %s", raw)
	default:
	}
}

func TestPublishToAdminsFansOut(t *testing.T) {
	hub := NewHub()
	admin1 := hub.NewClient(newFakeConn())
	admin2 := hub.NewClient(newFakeConn())
	if err := hub.Authenticate(admin1, testToken(t, "admin-1", models.RoleAdmin)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if err := hub.Authenticate(admin2, testToken(t, "admin-2", models.RoleAdmin)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	hub.PublishToAdmins(Event{Type: EventNewAppointment, Message: "New appointment request from Pat Example"})

	for _, admin := range []*Client{admin1, admin2} {
		select {
		case <-admin.Send:
		case <-time.After(time.Second):
			t.Fatal("admin never received the broadcast")
		}
	}
}

func TestPublishToAbsentUserIsNoop(t *testing.T) {
	hub := NewHub()
	// Nobody is connected; the publish must simply be dropped.
	hub.PublishToUser("nobody", Event{Type: EventNewMessage, Message: "hello"})
}

func TestPublishSkipsFullBuffer(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())
	if err := hub.Authenticate(client, testToken(t, "patient-1", models.RolePatient)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("{}")
	}

	done := make(chan struct{})
	go func() {
		hub.PublishToUser("patient-1", Event{Type: EventNewMessage, Message: "overflow"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full client buffer")
	}
	if len(client.Send) != cap(client.Send) {
		t.Errorf("overflow event should have been dropped")
	}
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient(newFakeConn())
	if err := hub.Authenticate(client, testToken(t, "admin-1", models.RoleAdmin)); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.TopicCount(UserTopic("admin-1")) != 0 || hub.TopicCount(TopicAdmins) != 0 {
		t.Errorf("expected channels emptied on unregister")
	}
	if _, open := <-client.Send; open {
		t.Error("expected send channel closed")
	}

	// A second unregister is a no-op, not a double close.
	hub.Unregister(client)
}

func TestReadPumpAuthenticatesFirstFrame(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()
	client := hub.NewClient(conn)
	go hub.ReadPump(client)

	frame, _ := json.Marshal(map[string]string{"token": testToken(t, "patient-1", models.RolePatient)})
	conn.frames <- frame

	waitFor(t, func() bool { return hub.TopicCount(UserTopic("patient-1")) == 1 })

	// Transport drop tears the client down.
	close(conn.frames)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	if !conn.isClosed() {
		t.Error("expected connection closed after pump exit")
	}
}

func TestReadPumpClosesOnMalformedFirstFrame(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()
	client := hub.NewClient(conn)
	go hub.ReadPump(client)

	conn.frames <- []byte("not json")

	waitFor(t, func() bool { return hub.ClientCount() == 0 && conn.isClosed() })
}

func TestReadPumpClosesOnBadToken(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()
	client := hub.NewClient(conn)
	go hub.ReadPump(client)

	frame, _ := json.Marshal(map[string]string{"token": "forged"})
	conn.frames <- frame

	waitFor(t, func() bool { return hub.ClientCount() == 0 && conn.isClosed() })
}

func TestWritePumpDrainsSendChannel(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()
	client := hub.NewClient(conn)

	done := make(chan struct{})
	go func() {
		hub.WritePump(client, 1)
		close(done)
	}()

	client.Send <- []byte(`{"type":"newMessage"}`)
	waitFor(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) == 1
	})

	close(client.Send)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not exit on channel close")
	}
	if !conn.isClosed() {
		t.Error("expected connection closed after pump exit")
	}
}
