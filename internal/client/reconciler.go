// Package client holds the reference reconciliation logic a connected client
// runs over one open conversation: optimistic local sends, server
// confirmations, pushed remote messages and read receipts are reduced into a
// single time-ordered view.
package client

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"wconnect-service/internal/models"

	"github.com/google/uuid"
)

// LocalStatus extends the persisted status vocabulary with the two
// client-only states of an optimistic message.
type LocalStatus string

const (
	StatusSending   LocalStatus = "sending"
	StatusSent      LocalStatus = "sent"
	StatusDelivered LocalStatus = "delivered"
	StatusRead      LocalStatus = "read"
	StatusFailed    LocalStatus = "failed"
)

// statusRank orders the reachable delivery states. A message never moves
// backwards; failed is terminal and handled outside the rank.
var statusRank = map[LocalStatus]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Entry is one message in the local view. LocalID is stable for the entry's
// lifetime; ServerID is zero until the server confirms the message.
type Entry struct {
	LocalID   string             `json:"localId"`
	ServerID  uint               `json:"serverId,omitempty"`
	SenderID  uint               `json:"senderId"`
	Type      models.MessageType `json:"type"`
	Content   string             `json:"content"`
	Caption   string             `json:"caption,omitempty"`
	Status    LocalStatus        `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Reconciler is the keyed optimistic cache for one conversation. Every
// mutation is a single map operation addressed by id, never a list scan.
type Reconciler struct {
	mu         sync.Mutex
	viewerID   uint
	entries    map[string]*Entry
	byServerID map[uint]string

	now func() time.Time
}

func NewReconciler(viewerID uint) *Reconciler {
	return &Reconciler{
		viewerID:   viewerID,
		entries:    make(map[string]*Entry),
		byServerID: make(map[uint]string),
		now:        time.Now,
	}
}

// Create registers an optimistic entry for a message the viewer just sent
// and returns its temporary local id.
func (r *Reconciler) Create(msgType models.MessageType, content, caption string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	localID := "local-" + uuid.New().String()
	r.entries[localID] = &Entry{
		LocalID:   localID,
		SenderID:  r.viewerID,
		Type:      msgType,
		Content:   content,
		Caption:   caption,
		Status:    StatusSending,
		CreatedAt: r.now(),
	}
	return localID
}

// Confirm replaces the optimistic entry with the server's authoritative
// record. Later updates address the entry by server id.
func (r *Reconciler) Confirm(localID string, msg models.MessageResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[localID]
	if !ok {
		return fmt.Errorf("no pending entry %q", localID)
	}

	// A history page may have merged the same server message before the
	// confirmation landed. Drop the optimistic entry and adopt the keyed
	// one so the message appears once.
	if existingID, ok := r.byServerID[msg.ID]; ok && existingID != localID {
		delete(r.entries, localID)
		existing := r.entries[existingID]
		if statusRank[LocalStatus(msg.Status)] > statusRank[existing.Status] {
			existing.Status = LocalStatus(msg.Status)
		}
		return nil
	}

	entry.ServerID = msg.ID
	entry.Type = msg.Type
	entry.Content = msg.Content
	entry.Caption = msg.Caption
	entry.Status = LocalStatus(msg.Status)
	entry.CreatedAt = msg.CreatedAt
	r.byServerID[msg.ID] = localID
	return nil
}

// Fail marks an optimistic entry as failed. The entry stays in the view so
// the user can see and resend it; there is no automatic retry.
func (r *Reconciler) Fail(localID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[localID]
	if !ok {
		return fmt.Errorf("no pending entry %q", localID)
	}
	entry.Status = StatusFailed
	return nil
}

// ApplyRemote merges a server message into the view, whether it arrived as a
// realtime push or in a history page. Known messages only ever move their
// status forward, so replaying history over pushed receipts is harmless.
func (r *Reconciler) ApplyRemote(msg models.MessageResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if localID, ok := r.byServerID[msg.ID]; ok {
		entry := r.entries[localID]
		if statusRank[LocalStatus(msg.Status)] > statusRank[entry.Status] {
			entry.Status = LocalStatus(msg.Status)
		}
		return
	}

	localID := "local-" + uuid.New().String()
	r.entries[localID] = &Entry{
		LocalID:   localID,
		ServerID:  msg.ID,
		SenderID:  msg.SenderID,
		Type:      msg.Type,
		Content:   msg.Content,
		Caption:   msg.Caption,
		Status:    LocalStatus(msg.Status),
		CreatedAt: msg.CreatedAt,
	}
	r.byServerID[msg.ID] = localID
}

// ApplyReadReceipt flips the viewer's own sent messages to read. Pending and
// failed entries are untouched.
func (r *Reconciler) ApplyReadReceipt() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.SenderID == r.viewerID && entry.Status == StatusSent {
			entry.Status = StatusRead
		}
	}
}

// View returns the entries ordered by creation time. Optimistic entries sort
// by their local timestamp until confirmation replaces it with the server's.
func (r *Reconciler) View() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].LocalID < out[j].LocalID
	})
	return out
}
