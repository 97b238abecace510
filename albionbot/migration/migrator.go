package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
)

// Migrator imports the data of the old Node bot from its MongoDB database
// into Postgres. Imports are idempotent, re-running skips rows that already
// exist.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	collNames map[string]string
	stats     map[string]*tableStats
}

type tableStats struct {
	Read     int
	Imported int
	Skipped  int
}

// mongoRegistration mirrors the old bot's registration documents.
type mongoRegistration struct {
	DiscordID    string    `bson:"discordId"`
	AlbionName   string    `bson:"albionName"`
	AlbionID     string    `bson:"albionId"`
	RegisteredBy string    `bson:"registeredBy"`
	RegisteredAt time.Time `bson:"registeredAt"`
}

// mongoComp mirrors the old bot's comp documents.
type mongoComp struct {
	ChannelID   string    `bson:"channelId"`
	ThreadID    string    `bson:"threadId"`
	MessageID   string    `bson:"messageId"`
	OrganizerID string    `bson:"organizerId"`
	Title       string    `bson:"title"`
	Template    string    `bson:"template"`
	CreatedAt   time.Time `bson:"createdAt"`
	Slots       []struct {
		Label        string `bson:"label"`
		Comment      string `bson:"comment"`
		AssigneeID   string `bson:"assigneeId"`
		AssigneeName string `bson:"assigneeName"`
	} `bson:"slots"`
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 500,
		collNames: map[string]string{
			"registrations": "registrations",
			"comps":         "comps",
		},
		stats: make(map[string]*tableStats),
	}
}

// SetBatchSize overrides the default insert batch size.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides a source collection name.
func (m *Migrator) SetCollectionName(kind, name string) {
	if kind != "" && name != "" {
		m.collNames[kind] = name
	}
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"registrations", m.MigrateRegistrations},
		{"comps", m.MigrateComps},
	}

	for _, step := range steps {
		slog.Info("Starting migration step",
			slog.String("type", "db"),
			slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		slog.Info("Completed migration step",
			slog.String("type", "db"),
			slog.String("step", step.name))
	}

	for name, st := range m.stats {
		slog.Info("Migration table summary",
			slog.String("type", "db"),
			slog.String("table", name),
			slog.Int("read", st.Read),
			slog.Int("imported", st.Imported),
			slog.Int("skipped", st.Skipped))
	}
	slog.Info("Migration completed",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}

// MigrateRegistrations copies the account links. Rows whose Discord account
// or game name is already taken in Postgres are skipped, not overwritten.
func (m *Migrator) MigrateRegistrations(ctx context.Context) error {
	st := m.track("registrations")

	cur, err := m.mongoDB.Collection(m.collNames["registrations"]).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query registrations: %w", err)
	}
	defer cur.Close(ctx)

	seen := make(map[string]bool)
	var batch []*models.Registration
	for cur.Next(ctx) {
		var mr mongoRegistration
		if err := cur.Decode(&mr); err != nil {
			st.Skipped++
			continue
		}
		st.Read++

		if mr.DiscordID == "" || mr.AlbionName == "" || seen[mr.DiscordID] {
			st.Skipped++
			continue
		}
		seen[mr.DiscordID] = true

		registeredAt := mr.RegisteredAt
		if registeredAt.IsZero() {
			registeredAt = time.Now()
		}
		registeredBy := mr.RegisteredBy
		if registeredBy == "" {
			registeredBy = mr.DiscordID
		}

		batch = append(batch, &models.Registration{
			DiscordID:    mr.DiscordID,
			GameName:     mr.AlbionName,
			GameID:       mr.AlbionID,
			RegisteredBy: registeredBy,
			RegisteredAt: registeredAt,
		})
		if len(batch) >= m.batchSize {
			if err := m.insertRegistrations(ctx, batch, st); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.insertRegistrations(ctx, batch, st)
	}
	return nil
}

func (m *Migrator) insertRegistrations(ctx context.Context, batch []*models.Registration, st *tableStats) error {
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert registrations batch: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil {
		st.Imported += int(rows)
		st.Skipped += len(batch) - int(rows)
	}
	return nil
}

// MigrateComps copies open comps. A comp without its message and thread
// bindings cannot be operated on, so incomplete documents are skipped.
func (m *Migrator) MigrateComps(ctx context.Context) error {
	st := m.track("comps")

	cur, err := m.mongoDB.Collection(m.collNames["comps"]).Find(ctx, bson.D{})
	if err != nil {
		// Old installations predate the comp subsystem.
		slog.Warn("Comps collection not readable, skipping",
			slog.String("type", "db"),
			slog.Any("error", err))
		return nil
	}
	defer cur.Close(ctx)

	var batch []*models.Comp
	for cur.Next(ctx) {
		var mc mongoComp
		if err := cur.Decode(&mc); err != nil {
			st.Skipped++
			continue
		}
		st.Read++

		if mc.ChannelID == "" || mc.MessageID == "" || mc.ThreadID == "" || mc.Template == "" {
			st.Skipped++
			continue
		}

		createdAt := mc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		slots := make([]models.CompSlot, len(mc.Slots))
		for i, s := range mc.Slots {
			slots[i] = models.CompSlot{
				Label:        s.Label,
				Comment:      s.Comment,
				AssigneeID:   s.AssigneeID,
				AssigneeName: s.AssigneeName,
			}
		}

		batch = append(batch, &models.Comp{
			ChannelID:   mc.ChannelID,
			ThreadID:    mc.ThreadID,
			MessageID:   mc.MessageID,
			OrganizerID: mc.OrganizerID,
			Title:       mc.Title,
			RawTemplate: mc.Template,
			Slots:       slots,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
		if len(batch) >= m.batchSize {
			if err := m.insertComps(ctx, batch, st); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.insertComps(ctx, batch, st)
	}
	return nil
}

func (m *Migrator) insertComps(ctx context.Context, batch []*models.Comp, st *tableStats) error {
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert comps batch: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil {
		st.Imported += int(rows)
		st.Skipped += len(batch) - int(rows)
	}
	return nil
}

func (m *Migrator) track(name string) *tableStats {
	st, ok := m.stats[name]
	if !ok {
		st = &tableStats{}
		m.stats[name] = st
	}
	return st
}
