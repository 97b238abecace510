package comp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	comps  map[int64]*models.Comp
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{comps: make(map[int64]*models.Comp)}
}

func copyComp(c *models.Comp) *models.Comp {
	cp := *c
	cp.Slots = append([]models.CompSlot(nil), c.Slots...)
	return &cp
}

func (r *fakeRepo) Create(_ context.Context, comp *models.Comp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comp.ID = r.nextID
	comp.CreatedAt = time.Now()
	comp.UpdatedAt = comp.CreatedAt
	r.comps[comp.ID] = copyComp(comp)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*models.Comp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comps[id]
	if !ok {
		return nil, repositories.ErrCompNotFound
	}
	return copyComp(c), nil
}

func (r *fakeRepo) GetByThreadID(_ context.Context, threadID string) (*models.Comp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comps {
		if c.ThreadID == threadID {
			return copyComp(c), nil
		}
	}
	return nil, repositories.ErrCompNotFound
}

func (r *fakeRepo) GetByMessageID(_ context.Context, messageID string) (*models.Comp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comps {
		if c.MessageID == messageID {
			return copyComp(c), nil
		}
	}
	return nil, repositories.ErrCompNotFound
}

func (r *fakeRepo) Update(_ context.Context, comp *models.Comp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comps[comp.ID]; !ok {
		return repositories.ErrCompNotFound
	}
	comp.UpdatedAt = time.Now()
	r.comps[comp.ID] = copyComp(comp)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comps, id)
	return nil
}

func (r *fakeRepo) DeleteByMessageID(_ context.Context, messageID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comps {
		if c.MessageID == messageID {
			delete(r.comps, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comps {
		if c.CreatedAt.Before(cutoff) {
			delete(r.comps, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) StartCleanupRoutine(context.Context) {}

type gatewayCall struct {
	kind      string
	channelID string
	messageID string
	content   string
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	nextMsg int
	editErr error
}

func (g *fakeGateway) record(c gatewayCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, c)
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID, content string) (string, error) {
	g.mu.Lock()
	g.nextMsg++
	id := "msg-" + strconv.Itoa(g.nextMsg)
	g.mu.Unlock()
	g.record(gatewayCall{kind: "send", channelID: channelID, messageID: id, content: content})
	return id, nil
}

func (g *fakeGateway) EditMessage(_ context.Context, channelID, messageID, content string) error {
	g.mu.Lock()
	err := g.editErr
	g.mu.Unlock()
	if err != nil {
		return err
	}
	g.record(gatewayCall{kind: "edit", channelID: channelID, messageID: messageID, content: content})
	return nil
}

func (g *fakeGateway) Reply(_ context.Context, channelID, messageID, content string) error {
	g.record(gatewayCall{kind: "reply", channelID: channelID, messageID: messageID, content: content})
	return nil
}

func (g *fakeGateway) React(_ context.Context, channelID, messageID, emoji string) error {
	g.record(gatewayCall{kind: "react", channelID: channelID, messageID: messageID, content: emoji})
	return nil
}

func (g *fakeGateway) CreateThread(_ context.Context, channelID, messageID, name string) (string, error) {
	g.record(gatewayCall{kind: "thread", channelID: channelID, messageID: messageID, content: name})
	return "thread-" + messageID, nil
}

func (g *fakeGateway) lastByKind(kind string) (gatewayCall, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.calls) - 1; i >= 0; i-- {
		if g.calls[i].kind == kind {
			return g.calls[i], true
		}
	}
	return gatewayCall{}, false
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeGateway, *models.Comp) {
	t.Helper()
	repo := newFakeRepo()
	gw := &fakeGateway{}
	s := NewService(repo, gw, "<@&R1>")

	rec, err := s.Create(context.Background(), "chan-1", "ZvZ Friday", "# Roster @comp\nTank | 1h mace\nHealer\nDPS", Actor{ID: "ORG", DisplayName: "Organizer"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return s, repo, gw, rec
}

func flushComp(s *Service, compID int64) {
	flush(s.queue, strconv.FormatInt(compID, 10))
}

func TestService_Create(t *testing.T) {
	_, repo, gw, rec := newTestService(t)

	if rec.MessageID == "" || rec.ThreadID == "" {
		t.Fatalf("Create() bindings not set: %+v", rec)
	}
	stored, err := repo.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(stored.Slots) != 3 {
		t.Errorf("stored slots = %d, want 3", len(stored.Slots))
	}

	edit, ok := gw.lastByKind("send")
	if !ok {
		t.Fatal("no messages sent")
	}
	// Last send is the thread instruction message.
	if edit.channelID != rec.ThreadID {
		t.Errorf("instructions went to %q, want thread %q", edit.channelID, rec.ThreadID)
	}

	gw.mu.Lock()
	roster := gw.calls[0]
	gw.mu.Unlock()
	if !strings.Contains(roster.content, "1. Tank (1h mace)") || !strings.Contains(roster.content, "<@&R1>") {
		t.Errorf("roster body = %q", roster.content)
	}
}

func TestService_ClaimAndRelease(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	s.Claim(rec.ID, 1, Actor{ID: "U1", DisplayName: "Alice"}, src)
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID != "U1" {
		t.Fatalf("slot 1 assignee = %q, want U1", stored.Slots[0].AssigneeID)
	}
	if react, ok := gw.lastByKind("react"); !ok || react.content != "✅" {
		t.Errorf("claim not confirmed, got %+v", react)
	}
	if edit, ok := gw.lastByKind("edit"); !ok || !strings.Contains(edit.content, "1. Tank <@U1>") {
		t.Errorf("roster not refreshed, got %+v", edit)
	}

	// Someone else cannot take the held slot.
	s.Claim(rec.ID, 1, Actor{ID: "U2", DisplayName: "Bob"}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID != "U1" {
		t.Errorf("held slot reassigned to %q", stored.Slots[0].AssigneeID)
	}
	if reply, ok := gw.lastByKind("reply"); !ok || !strings.Contains(reply.content, "already taken") {
		t.Errorf("conflict not reported, got %+v", reply)
	}

	// One slot per member.
	s.Claim(rec.ID, 2, Actor{ID: "U1", DisplayName: "Alice"}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "" {
		t.Errorf("second slot claimed by the same member")
	}

	// A stranger cannot free the slot, the holder can.
	s.Release(rec.ID, 1, Actor{ID: "U2", DisplayName: "Bob"}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID != "U1" {
		t.Errorf("stranger freed the slot")
	}

	s.Release(rec.ID, 1, Actor{ID: "U1", DisplayName: "Alice"}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID != "" {
		t.Errorf("holder could not free the slot")
	}
}

func TestService_ConcurrentClaimsSingleWinner(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	const claimers = 8
	var wg sync.WaitGroup
	wg.Add(claimers)
	for i := 0; i < claimers; i++ {
		i := i
		go func() {
			defer wg.Done()
			s.Claim(rec.ID, 1, Actor{ID: "U" + strconv.Itoa(i), DisplayName: "Member " + strconv.Itoa(i)}, src)
		}()
	}
	wg.Wait()
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID == "" {
		t.Fatal("no one holds the contested slot")
	}
	var held int
	for _, slot := range stored.Slots {
		if slot.AssigneeID != "" {
			held++
		}
	}
	if held != 1 {
		t.Errorf("%d slots held, want exactly 1", held)
	}

	gw.mu.Lock()
	var conflicts int
	for _, c := range gw.calls {
		if c.kind == "reply" && strings.Contains(c.content, "already taken") {
			conflicts++
		}
	}
	gw.mu.Unlock()
	if conflicts != claimers-1 {
		t.Errorf("conflict replies = %d, want %d", conflicts, claimers-1)
	}
}

func TestService_ReleaseByOrganizerAndAdmin(t *testing.T) {
	s, repo, _, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	s.Claim(rec.ID, 2, Actor{ID: "U1", DisplayName: "Alice"}, src)
	s.Release(rec.ID, 2, Actor{ID: "ORG", DisplayName: "Organizer"}, src)
	flushComp(s, rec.ID)
	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "" {
		t.Errorf("organizer could not free the slot")
	}

	s.Claim(rec.ID, 2, Actor{ID: "U1", DisplayName: "Alice"}, src)
	s.Release(rec.ID, 2, Actor{ID: "ADMIN", DisplayName: "Admin", Override: true}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "" {
		t.Errorf("super admin could not free the slot")
	}
}

func TestService_InvalidSlotNumbers(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	for _, n := range []int{4, 60} {
		s.Claim(rec.ID, n, Actor{ID: "U1", DisplayName: "Alice"}, src)
	}
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	for i, slot := range stored.Slots {
		if slot.AssigneeID != "" {
			t.Errorf("slot %d unexpectedly held", i+1)
		}
	}
	if reply, ok := gw.lastByKind("reply"); !ok || !strings.Contains(reply.content, "no slot") {
		t.Errorf("out of range not reported, got %+v", reply)
	}
}

func TestService_Assign(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID}

	s.Assign(rec.ID, 2, Assignee{ID: "U5", DisplayName: "Eve"}, Actor{ID: "U9", DisplayName: "Rando"}, src)
	flushComp(s, rec.ID)
	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "" {
		t.Fatalf("non organizer assigned a slot")
	}

	s.Assign(rec.ID, 2, Assignee{ID: "U5", DisplayName: "Eve"}, Actor{ID: "ORG", DisplayName: "Organizer"}, src)
	flushComp(s, rec.ID)
	stored, _ = repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "U5" {
		t.Fatalf("organizer assign failed, slots = %+v", stored.Slots)
	}
	if send, ok := gw.lastByKind("send"); !ok || !strings.Contains(send.content, "<@U5>") {
		t.Errorf("assign not announced, got %+v", send)
	}
}

func TestService_EditReconciles(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	s.Claim(rec.ID, 1, Actor{ID: "U1", DisplayName: "Alice"}, src)
	s.Claim(rec.ID, 3, Actor{ID: "U2", DisplayName: "Bob"}, src)
	flushComp(s, rec.ID)

	// Healer removed, Tank kept, DPS kept; Bob's DPS slot survives, and a
	// brand new Scout slot stays open.
	if err := s.Edit(context.Background(), rec.ID, "Tank\nDPS\nScout", Actor{ID: "ORG", DisplayName: "Organizer"}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.RawTemplate != "Tank\nDPS\nScout" {
		t.Errorf("raw template = %q", stored.RawTemplate)
	}
	want := []string{"U1", "U2", ""}
	for i, id := range want {
		if stored.Slots[i].AssigneeID != id {
			t.Errorf("slot %d assignee = %q, want %q", i+1, stored.Slots[i].AssigneeID, id)
		}
	}
	if send, ok := gw.lastByKind("send"); !ok || !strings.Contains(send.content, "everyone kept their role") {
		t.Errorf("edit summary missing, got %+v", send)
	}
}

func TestService_EditDropsUnmatchedHolders(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	s.Claim(rec.ID, 2, Actor{ID: "U1", DisplayName: "Alice"}, src)
	flushComp(s, rec.ID)

	if err := s.Edit(context.Background(), rec.ID, "Tank\nDPS", Actor{ID: "ORG", DisplayName: "Organizer"}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	for i, slot := range stored.Slots {
		if slot.AssigneeID != "" {
			t.Errorf("slot %d unexpectedly held after edit", i+1)
		}
	}
	if send, ok := gw.lastByKind("send"); !ok || !strings.Contains(send.content, "<@U1>") {
		t.Errorf("dropped holder not reported, got %+v", send)
	}
}

func TestService_EditAuthorization(t *testing.T) {
	s, _, _, rec := newTestService(t)

	if err := s.Edit(context.Background(), rec.ID, "Tank", Actor{ID: "U9", DisplayName: "Rando"}); err == nil {
		t.Error("Edit() by non organizer succeeded")
	}
	if err := s.Edit(context.Background(), rec.ID, "# only comments", Actor{ID: "ORG", DisplayName: "Organizer"}); !errors.Is(err, ErrNoSlots) {
		t.Errorf("Edit() error = %v, want %v", err, ErrNoSlots)
	}
}

func TestService_SyncFailureKeepsCommittedState(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	gw.mu.Lock()
	gw.editErr = ErrMessageNotFound
	gw.mu.Unlock()

	s.Claim(rec.ID, 1, Actor{ID: "U1", DisplayName: "Alice"}, src)
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[0].AssigneeID != "U1" {
		t.Fatalf("commit rolled back on sync failure")
	}
	if send, ok := gw.lastByKind("send"); !ok || !strings.Contains(send.content, "Your change was saved") {
		t.Errorf("missing roster notice not posted, got %+v", send)
	}
	if react, ok := gw.lastByKind("react"); !ok || react.content != "✅" {
		t.Errorf("operation not confirmed despite commit, got %+v", react)
	}
}

func TestService_HandleThreadMessage(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	actor := Actor{ID: "U1", DisplayName: "Alice"}
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "PlainChatIgnored", content: "who is bringing food?", want: false},
		{name: "TooLongNumberIgnored", content: "123", want: false},
		{name: "NumberWithTextIgnored", content: "3 please", want: false},
		{name: "ZeroRejected", content: "0", want: true},
		{name: "ClaimAccepted", content: " 2 ", want: true},
		{name: "ReleaseAccepted", content: "-2", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HandleThreadMessage(rec.ThreadID, tt.content, actor, src); got != tt.want {
				t.Errorf("HandleThreadMessage(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
	flushComp(s, rec.ID)

	stored, _ := repo.GetByID(context.Background(), rec.ID)
	if stored.Slots[1].AssigneeID != "" {
		t.Errorf("slot 2 should be free again after claim then release, got %q", stored.Slots[1].AssigneeID)
	}
	if _, ok := gw.lastByKind("react"); !ok {
		t.Error("no reactions recorded")
	}

	if s.HandleThreadMessage("not-a-comp-thread", "2", actor, src) {
		t.Error("HandleThreadMessage() claimed a foreign thread")
	}
}

func TestService_Cancel(t *testing.T) {
	s, repo, gw, rec := newTestService(t)
	src := MessageRef{ChannelID: rec.ThreadID, MessageID: "cmd-1"}

	s.Cancel(rec.ID, Actor{ID: "U9", DisplayName: "Rando"}, src)
	flushComp(s, rec.ID)
	if _, err := repo.GetByID(context.Background(), rec.ID); err != nil {
		t.Fatalf("non organizer cancelled the comp: %v", err)
	}

	s.Cancel(rec.ID, Actor{ID: "ORG", DisplayName: "Organizer"}, src)
	flushComp(s, rec.ID)
	if _, err := repo.GetByID(context.Background(), rec.ID); !errors.Is(err, repositories.ErrCompNotFound) {
		t.Fatalf("comp not deleted, err = %v", err)
	}
	if edit, ok := gw.lastByKind("edit"); !ok || !strings.Contains(edit.content, "Cancelled") {
		t.Errorf("roster not tombstoned, got %+v", edit)
	}
}

func TestService_HandleRosterMessageDeleted(t *testing.T) {
	s, repo, _, rec := newTestService(t)

	s.HandleRosterMessageDeleted(rec.MessageID)
	if _, err := repo.GetByID(context.Background(), rec.ID); !errors.Is(err, repositories.ErrCompNotFound) {
		t.Fatalf("record survived roster message deletion, err = %v", err)
	}
}
