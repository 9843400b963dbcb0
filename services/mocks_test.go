package services

import (
	"context"
	"sync"
	"time"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

func testLogger() *utils.Logger {
	return utils.NewLogger("test")
}

type emitted struct {
	event string
	data  interface{}
}

type fakeConn struct {
	id     string
	userID string

	mu     sync.Mutex
	events []emitted
	closed bool
}

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) Emit(event string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{event: event, data: data})
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) received(event string) []emitted {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []emitted
	for _, e := range c.events {
		if e.event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

func (c *fakeConn) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

type fakeConversations struct {
	participants map[string][]string // conversation id -> member ids
	err          error
}

func (f *fakeConversations) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, id := range f.participants[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConversations) ParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.participants[conversationID], nil
}

type fakeMessages struct {
	mu            sync.Mutex
	created       []*models.Message
	createErr     error
	readRecords   map[string]struct{} // messageID|userID
	readCalls     int
	reactions     map[string]string // messageID|userID -> emoji
	reactionCalls int
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		readRecords: make(map[string]struct{}),
		reactions:   make(map[string]string),
	}
}

func (f *fakeMessages) CreateMessage(_ context.Context, message *models.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessages) MarkRead(_ context.Context, messageID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	f.readRecords[messageID+"|"+userID] = struct{}{}
	return nil
}

func (f *fakeMessages) UpsertReaction(_ context.Context, messageID, userID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactionCalls++
	f.reactions[messageID+"|"+userID] = emoji
	return nil
}

type fakeUsers struct {
	mu          sync.Mutex
	users       map[string]*models.User
	statusTexts map[string]string
	online      map[string]bool
	lastSeen    map[string]time.Time
	contacts    map[string][]string
	getErr      error
	contactsErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:       make(map[string]*models.User),
		statusTexts: make(map[string]string),
		online:      make(map[string]bool),
		lastSeen:    make(map[string]time.Time),
		contacts:    make(map[string][]string),
	}
}

func (f *fakeUsers) GetUser(_ context.Context, userID string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID], nil
}

func (f *fakeUsers) SetOnline(_ context.Context, userID string, online bool, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = online
	f.lastSeen[userID] = lastSeen
	return nil
}

func (f *fakeUsers) SetStatusText(_ context.Context, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusTexts[userID] = status
	return nil
}

func (f *fakeUsers) ContactIDs(_ context.Context, userID string) ([]string, error) {
	if f.contactsErr != nil {
		return nil, f.contactsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contacts[userID], nil
}

type fakeStatuses struct {
	mu      sync.Mutex
	created []*models.Status
	live    map[string][]models.Status // user id -> still-live statuses
	err     error
}

func (f *fakeStatuses) CreateStatus(_ context.Context, status *models.Status) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, status)
	return nil
}

func (f *fakeStatuses) UserStatuses(_ context.Context, userID string) ([]models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[userID], nil
}
