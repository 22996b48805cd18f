package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"wconnect-service/internal/models"

	"gorm.io/gorm"
)

// In-memory repositories with the same contracts as the postgres ones,
// including pair-key uniqueness under concurrent upserts.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) seed(username string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user := &models.User{
		Model:    gorm.Model{ID: r.nextID, CreatedAt: time.Now()},
		Username: username,
		Email:    username + "@wconnect.dev",
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) ListVisible(ctx context.Context, selfID uint) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) SearchByUsername(ctx context.Context, keyword string, selfID uint) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		if strings.Contains(user.Username, keyword) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddContact(ctx context.Context, userID, contactID uint) error    { return nil }
func (r *fakeUserRepo) RemoveContact(ctx context.Context, userID, contactID uint) error { return nil }
func (r *fakeUserRepo) Block(ctx context.Context, userID, blockedID uint) error         { return nil }

type fakeConversationRepo struct {
	mu        sync.Mutex
	nextID    uint
	byPairKey map[string]*models.Conversation
	byID      map[uint]*models.Conversation
	users     *fakeUserRepo
}

func newFakeConversationRepo(users *fakeUserRepo) *fakeConversationRepo {
	return &fakeConversationRepo{
		byPairKey: make(map[string]*models.Conversation),
		byID:      make(map[uint]*models.Conversation),
		users:     users,
	}
}

// hydrate mirrors the participant preloads of the real repository.
func (r *fakeConversationRepo) hydrate(conv *models.Conversation) {
	if conv.ParticipantAID != nil {
		conv.ParticipantA = r.users.users[*conv.ParticipantAID]
	}
	if conv.ParticipantBID != nil {
		conv.ParticipantB = r.users.users[*conv.ParticipantBID]
	}
}

func (r *fakeConversationRepo) GetOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byPairKey[conv.PairKey]; ok {
		return existing, nil
	}
	r.nextID++
	conv.ID = r.nextID
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	r.hydrate(conv)
	r.byPairKey[conv.PairKey] = conv
	r.byID[conv.ID] = conv
	return conv, nil
}

func (r *fakeConversationRepo) FindByID(ctx context.Context, id uint) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return conv, nil
}

func (r *fakeConversationRepo) ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, conv := range r.byID {
		if conv.HasParticipant(userID) {
			out = append(out, conv)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   uint
	messages []*models.Message
	convs    *fakeConversationRepo
	users    *fakeUserRepo
	clock    time.Time
}

func newFakeMessageRepo(convs *fakeConversationRepo, users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		convs: convs,
		users: users,
		clock: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.clock = r.clock.Add(time.Millisecond)
	msg.CreatedAt = r.clock
	r.messages = append(r.messages, msg)
	if conv, ok := r.convs.byID[msg.ConversationID]; ok {
		id := msg.ID
		conv.LastMessageID = &id
		conv.LastMessage = msg
	}
	return nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID uint) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			if sender, ok := r.users.users[msg.SenderID]; ok {
				msg.Sender = *sender
			}
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, conversationID, readerID uint) ([]uint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	seen := make(map[uint]bool)
	var senderIDs []uint
	for _, msg := range r.messages {
		if msg.ConversationID != conversationID || msg.SenderID == readerID || msg.Status == models.MessageStatusRead {
			continue
		}
		msg.Status = models.MessageStatusRead
		changed++
		if !seen[msg.SenderID] {
			seen[msg.SenderID] = true
			senderIDs = append(senderIDs, msg.SenderID)
		}
	}
	return senderIDs, changed, nil
}

func (r *fakeMessageRepo) DeleteByConversation(ctx context.Context, conversationID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	if conv, ok := r.convs.byID[conversationID]; ok {
		conv.LastMessageID = nil
		conv.LastMessage = nil
	}
	return nil
}

// fakePublisher records read receipts pushed to user rooms.
type fakePublisher struct {
	mu       sync.Mutex
	receipts map[uint][]models.ReadReceipt
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{receipts: make(map[uint][]models.ReadReceipt)}
}

func (p *fakePublisher) PublishReadReceipt(userID uint, receipt models.ReadReceipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receipts[userID] = append(p.receipts[userID], receipt)
	return nil
}

func (p *fakePublisher) receiptsFor(userID uint) []models.ReadReceipt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.receipts[userID]
}
