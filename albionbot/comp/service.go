package comp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
)

// opTimeout bounds the store and gateway calls of a single queued operation
// so a hung call cannot stall the whole chain.
const opTimeout = 15 * time.Second

// signupPattern matches a thread signup command: a slot number, optionally
// negated to leave the slot.
var signupPattern = regexp.MustCompile(`^-?\d{1,2}$`)

// Actor is whoever triggered an operation. Override marks a super admin who
// may act on any comp regardless of who organized it.
type Actor struct {
	ID          string
	DisplayName string
	Override    bool
}

// MessageRef points at the message that triggered an operation, so the
// outcome can be reported as a reaction and reply. A ref with no message id
// reports with a plain message to the channel instead.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Service owns the comp lifecycle: it validates requests up front, then runs
// every state mutation through the per-comp queue. Inside an operation the
// store write is the commit point; updating the roster message afterwards is
// best effort and never rolls the write back.
type Service struct {
	repo         repositories.CompRepository
	gateway      ChatGateway
	queue        *Queue
	groupMention string
}

func NewService(repo repositories.CompRepository, gateway ChatGateway, groupMention string) *Service {
	return &Service{
		repo:         repo,
		gateway:      gateway,
		queue:        NewQueue(),
		groupMention: groupMention,
	}
}

// Create parses the template, posts the roster message, opens its signup
// thread and persists the record. The message and thread bindings are set
// here once and never change afterwards.
func (s *Service) Create(ctx context.Context, channelID, title, template string, organizer Actor) (*models.Comp, error) {
	slots, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}

	body := RenderTemplate(template, slots, s.groupMention)
	messageID, err := s.gateway.SendMessage(ctx, channelID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to post roster message: %w", err)
	}

	threadName := title
	if threadName == "" {
		threadName = "Comp signup"
	}
	threadID, err := s.gateway.CreateThread(ctx, channelID, messageID, threadName)
	if err != nil {
		return nil, fmt.Errorf("failed to open signup thread: %w", err)
	}

	rec := &models.Comp{
		ChannelID:   channelID,
		ThreadID:    threadID,
		MessageID:   messageID,
		OrganizerID: organizer.ID,
		Title:       title,
		RawTemplate: template,
		Slots:       slotsToRecord(slots),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if _, err := s.gateway.SendMessage(ctx, threadID,
		"Type a slot number to take that slot, or the negated number to leave it (for example `3` or `-3`)."); err != nil {
		slog.Warn("Failed to post signup instructions",
			slog.String("type", "comp"),
			slog.Int64("comp_id", rec.ID),
			slog.Any("error", err))
	}

	slog.Info("Comp created",
		slog.String("type", "comp"),
		slog.Int64("comp_id", rec.ID),
		slog.String("organizer_id", organizer.ID),
		slog.Int("slots", len(slots)))
	return rec, nil
}

// LookupByThread resolves a comp from its signup thread. Read only; safe
// outside the queue because the thread binding never changes.
func (s *Service) LookupByThread(ctx context.Context, threadID string) (*models.Comp, error) {
	return s.repo.GetByThreadID(ctx, threadID)
}

// HandleThreadMessage interprets a message posted in a comp signup thread.
// It returns false when the message is not a signup command or the thread
// does not belong to a comp, so the caller can fall through to other
// handling.
func (s *Service) HandleThreadMessage(threadID, content string, actor Actor, src MessageRef) bool {
	content = strings.TrimSpace(content)
	if !signupPattern.MatchString(content) {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	rec, err := s.repo.GetByThreadID(ctx, threadID)
	if errors.Is(err, repositories.ErrCompNotFound) {
		return false
	}
	if err != nil {
		slog.Error("Failed to resolve comp thread",
			slog.String("type", "comp"),
			slog.String("thread_id", threadID),
			slog.Any("error", err))
		return false
	}

	n, _ := strconv.Atoi(content)
	if n == 0 {
		s.reportFailure(ctx, src, "Slot numbers start at 1.")
		return true
	}
	if n > 0 {
		s.Claim(rec.ID, n, actor, src)
	} else {
		s.Release(rec.ID, -n, actor, src)
	}
	return true
}

// Claim queues a signup for the given slot number.
func (s *Service) Claim(compID int64, slotNumber int, actor Actor, src MessageRef) {
	s.enqueue(compID, func(ctx context.Context, rec *models.Comp, slots []Slot) {
		i, ok := s.checkSlotNumber(ctx, src, slots, slotNumber)
		if !ok {
			return
		}
		for j := range slots {
			if slots[j].HeldBy(actor.ID) {
				s.reportFailure(ctx, src, fmt.Sprintf("You already hold slot %d (%s). Leave it first with `-%d`.", j+1, slots[j].Label, j+1))
				return
			}
		}
		if err := slots[i].Claim(Assignee{ID: actor.ID, DisplayName: actor.DisplayName}); err != nil {
			s.reportFailure(ctx, src, fmt.Sprintf("Slot %d is already taken.", slotNumber))
			return
		}
		s.commitAndSync(ctx, rec, slots, src, "")
	})
}

// Release queues freeing the given slot. Allowed for the current holder, the
// organizer, and super admins.
func (s *Service) Release(compID int64, slotNumber int, actor Actor, src MessageRef) {
	s.enqueue(compID, func(ctx context.Context, rec *models.Comp, slots []Slot) {
		i, ok := s.checkSlotNumber(ctx, src, slots, slotNumber)
		if !ok {
			return
		}
		if !slots[i].Held() {
			s.reportFailure(ctx, src, fmt.Sprintf("Slot %d is already empty.", slotNumber))
			return
		}
		if !slots[i].HeldBy(actor.ID) && !s.mayManage(rec, actor) {
			s.reportFailure(ctx, src, fmt.Sprintf("Slot %d is not yours to free.", slotNumber))
			return
		}
		if err := slots[i].Release(); err != nil {
			s.reportFailure(ctx, src, fmt.Sprintf("Slot %d is already empty.", slotNumber))
			return
		}
		s.commitAndSync(ctx, rec, slots, src, "")
	})
}

// Assign queues putting a specific member into an empty slot. Organizer and
// super admins only.
func (s *Service) Assign(compID int64, slotNumber int, target Assignee, actor Actor, src MessageRef) {
	s.enqueue(compID, func(ctx context.Context, rec *models.Comp, slots []Slot) {
		if !s.mayManage(rec, actor) {
			s.reportFailure(ctx, src, "Only the organizer can assign slots.")
			return
		}
		i, ok := s.checkSlotNumber(ctx, src, slots, slotNumber)
		if !ok {
			return
		}
		for j := range slots {
			if slots[j].HeldBy(target.ID) {
				s.reportFailure(ctx, src, fmt.Sprintf("<@%s> already holds slot %d (%s).", target.ID, j+1, slots[j].Label))
				return
			}
		}
		if err := slots[i].Claim(target); err != nil {
			s.reportFailure(ctx, src, fmt.Sprintf("Slot %d is already taken.", slotNumber))
			return
		}
		s.commitAndSync(ctx, rec, slots, src, fmt.Sprintf("Assigned <@%s> to slot %d (%s).", target.ID, slotNumber, slots[i].Label))
	})
}

// Edit validates the new template and the caller's authority synchronously,
// then queues the commit. Holders of the old roster are re-placed onto the
// new one by exact role label; anyone left over is dropped and reported in
// the signup thread.
func (s *Service) Edit(ctx context.Context, compID int64, newTemplate string, actor Actor) error {
	if _, err := ParseTemplate(newTemplate); err != nil {
		return err
	}
	rec, err := s.repo.GetByID(ctx, compID)
	if err != nil {
		return err
	}
	if !s.mayManage(rec, actor) {
		return errors.New("only the organizer can edit this comp")
	}

	s.enqueue(compID, func(ctx context.Context, rec *models.Comp, slots []Slot) {
		next, err := ParseTemplate(newTemplate)
		if err != nil {
			// Already validated above; a failure here means the template
			// constants changed between the two parses, which cannot happen.
			slog.Error("Comp edit template rejected at commit",
				slog.String("type", "comp"),
				slog.Int64("comp_id", rec.ID),
				slog.Any("error", err))
			return
		}
		res := Reconcile(slots, next)
		rec.RawTemplate = newTemplate
		src := MessageRef{ChannelID: rec.ThreadID}
		s.commitAndSync(ctx, rec, res.Slots, src, editSummary(res))
	})
	return nil
}

// Cancel queues deleting the comp. The roster message is struck through as a
// tombstone rather than deleted, so channel history keeps making sense.
func (s *Service) Cancel(compID int64, actor Actor, src MessageRef) {
	s.enqueue(compID, func(ctx context.Context, rec *models.Comp, slots []Slot) {
		if !s.mayManage(rec, actor) {
			s.reportFailure(ctx, src, "Only the organizer can cancel this comp.")
			return
		}
		if err := s.repo.Delete(ctx, rec.ID); err != nil {
			slog.Error("Failed to delete comp",
				slog.String("type", "comp"),
				slog.Int64("comp_id", rec.ID),
				slog.Any("error", err))
			s.reportFailure(ctx, src, "Something went wrong cancelling the comp. Try again.")
			return
		}
		body := "~~" + RenderTemplate(rec.RawTemplate, slots, s.groupMention) + "~~\n**Cancelled.**"
		if err := s.gateway.EditMessage(ctx, rec.ChannelID, rec.MessageID, body); err != nil && !errors.Is(err, ErrMessageNotFound) {
			slog.Warn("Failed to tombstone roster message",
				slog.String("type", "comp"),
				slog.Int64("comp_id", rec.ID),
				slog.Any("error", err))
		}
		s.reportSuccess(ctx, src, "Comp cancelled.")
		slog.Info("Comp cancelled",
			slog.String("type", "comp"),
			slog.Int64("comp_id", rec.ID),
			slog.String("actor_id", actor.ID))
	})
}

// HandleRosterMessageDeleted drops the record bound to a roster message that
// was deleted out from under the bot. Without its message a comp cannot be
// displayed or edited, so the record is garbage.
func (s *Service) HandleRosterMessageDeleted(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	deleted, err := s.repo.DeleteByMessageID(ctx, messageID)
	if err != nil {
		slog.Error("Failed to purge comp for deleted roster message",
			slog.String("type", "comp"),
			slog.String("message_id", messageID),
			slog.Any("error", err))
		return
	}
	if deleted > 0 {
		slog.Info("Comp purged after roster message deletion",
			slog.String("type", "comp"),
			slog.String("message_id", messageID))
	}
}

// enqueue wraps op with the shared load step: re-read the latest record
// inside the chain so the op always sees the state left by its predecessor.
func (s *Service) enqueue(compID int64, op func(ctx context.Context, rec *models.Comp, slots []Slot)) {
	s.queue.Enqueue(strconv.FormatInt(compID, 10), func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		rec, err := s.repo.GetByID(ctx, compID)
		if err != nil {
			slog.Error("Failed to load comp for queued operation",
				slog.String("type", "comp"),
				slog.Int64("comp_id", compID),
				slog.Any("error", err))
			return
		}
		op(ctx, rec, slotsFromRecord(rec.Slots))
	})
}

// commitAndSync writes the mutated slot list, then refreshes the roster
// message. The write is the commit point; a failed or impossible message
// edit leaves the committed state alone and at most produces a notice in the
// signup thread.
func (s *Service) commitAndSync(ctx context.Context, rec *models.Comp, slots []Slot, src MessageRef, successNote string) {
	rec.Slots = slotsToRecord(slots)
	if err := s.repo.Update(ctx, rec); err != nil {
		slog.Error("Failed to commit comp state",
			slog.String("type", "comp"),
			slog.Int64("comp_id", rec.ID),
			slog.Any("error", err))
		s.reportFailure(ctx, src, "Something went wrong saving your change. Try again.")
		return
	}

	body := RenderTemplate(rec.RawTemplate, slots, s.groupMention)
	switch err := s.gateway.EditMessage(ctx, rec.ChannelID, rec.MessageID, body); {
	case err == nil:
	case errors.Is(err, ErrMessageNotFound):
		if _, err := s.gateway.SendMessage(ctx, rec.ThreadID,
			"The roster message for this comp is gone, so the list can no longer be shown. Your change was saved."); err != nil {
			slog.Warn("Failed to post missing-roster notice",
				slog.String("type", "comp"),
				slog.Int64("comp_id", rec.ID),
				slog.Any("error", err))
		}
	default:
		slog.Warn("Failed to refresh roster message",
			slog.String("type", "comp"),
			slog.Int64("comp_id", rec.ID),
			slog.Any("error", err))
	}

	s.reportSuccess(ctx, src, successNote)
}

func (s *Service) checkSlotNumber(ctx context.Context, src MessageRef, slots []Slot, n int) (int, bool) {
	if n < 1 || n > len(slots) {
		s.reportFailure(ctx, src, fmt.Sprintf("There is no slot %d, this comp has %d slots.", n, len(slots)))
		return 0, false
	}
	return n - 1, true
}

func (s *Service) mayManage(rec *models.Comp, actor Actor) bool {
	return actor.Override || actor.ID == rec.OrganizerID
}

func (s *Service) reportSuccess(ctx context.Context, src MessageRef, note string) {
	if src.MessageID != "" {
		if err := s.gateway.React(ctx, src.ChannelID, src.MessageID, "✅"); err != nil {
			slog.Warn("Failed to confirm comp operation",
				slog.String("type", "comp"),
				slog.Any("error", err))
		}
		if note != "" {
			_ = s.gateway.Reply(ctx, src.ChannelID, src.MessageID, note)
		}
		return
	}
	if note != "" && src.ChannelID != "" {
		_, _ = s.gateway.SendMessage(ctx, src.ChannelID, note)
	}
}

func (s *Service) reportFailure(ctx context.Context, src MessageRef, reason string) {
	if src.MessageID != "" {
		_ = s.gateway.React(ctx, src.ChannelID, src.MessageID, "❌")
		if err := s.gateway.Reply(ctx, src.ChannelID, src.MessageID, reason); err != nil {
			slog.Warn("Failed to report comp operation failure",
				slog.String("type", "comp"),
				slog.Any("error", err))
		}
		return
	}
	if src.ChannelID != "" {
		_, _ = s.gateway.SendMessage(ctx, src.ChannelID, reason)
	}
}

func editSummary(res ReconcileResult) string {
	if len(res.Unplaced) == 0 {
		return "Comp updated, everyone kept their role."
	}
	mentions := make([]string, len(res.Unplaced))
	for i, a := range res.Unplaced {
		mentions[i] = fmt.Sprintf("<@%s>", a.ID)
	}
	return "Comp updated. No matching slot left for " + strings.Join(mentions, ", ") + ", please sign up again."
}

func slotsFromRecord(recSlots []models.CompSlot) []Slot {
	slots := make([]Slot, len(recSlots))
	for i, rs := range recSlots {
		slots[i] = NewSlot(rs.Label, rs.Comment)
		if rs.AssigneeID != "" {
			_ = slots[i].Claim(Assignee{ID: rs.AssigneeID, DisplayName: rs.AssigneeName})
		}
	}
	return slots
}

func slotsToRecord(slots []Slot) []models.CompSlot {
	recSlots := make([]models.CompSlot, len(slots))
	for i := range slots {
		recSlots[i] = models.CompSlot{Label: slots[i].Label, Comment: slots[i].Comment}
		if a, ok := slots[i].Assignee(); ok {
			recSlots[i].AssigneeID = a.ID
			recSlots[i].AssigneeName = a.DisplayName
		}
	}
	return recSlots
}
