package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
)

type fakeRegistrationRepo struct {
	byDiscordID map[string]*models.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byDiscordID: make(map[string]*models.Registration)}
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration) error {
	if _, ok := r.byDiscordID[reg.DiscordID]; ok {
		return repositories.ErrAlreadyRegistered
	}
	for _, existing := range r.byDiscordID {
		if existing.GameName == reg.GameName {
			return repositories.ErrGameNameTaken
		}
	}
	r.byDiscordID[reg.DiscordID] = reg
	return nil
}

func (r *fakeRegistrationRepo) GetByDiscordID(_ context.Context, discordID string) (*models.Registration, error) {
	reg, ok := r.byDiscordID[discordID]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *fakeRegistrationRepo) GetByGameName(_ context.Context, gameName string) (*models.Registration, error) {
	for _, reg := range r.byDiscordID {
		if reg.GameName == gameName {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) DeleteByDiscordID(_ context.Context, discordID string) error {
	delete(r.byDiscordID, discordID)
	return nil
}

func newTestService(t *testing.T) (*RegistrationService, *fakeRegistrationRepo) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Aeron", "aeron":
			fmt.Fprint(w, `{"players":[{"Id":"p1","Name":"Aeron","GuildName":"Highland Brotherhood"}]}`)
		default:
			fmt.Fprint(w, `{"players":[]}`)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := albion.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	repo := newFakeRegistrationRepo()
	return NewRegistrationService(repo, client), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService(t)

	player, err := svc.Register(context.Background(), "D1", "aeron", "D2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if player.Name != "Aeron" {
		t.Errorf("player name = %q, want the API spelling Aeron", player.Name)
	}

	reg := repo.byDiscordID["D1"]
	if reg == nil {
		t.Fatal("registration was not stored")
	}
	if reg.GameName != "Aeron" || reg.GameID != "p1" || reg.RegisteredBy != "D2" {
		t.Errorf("stored registration = %+v", reg)
	}
	if reg.RegisteredAt.IsZero() {
		t.Error("RegisteredAt not set")
	}
}

func TestRegisterRejectsInvalidNames(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"", "name with spaces", "way_too-weird", "start", "START", "seventeencharacter"} {
		if _, err := svc.Register(context.Background(), "D1", name, "D1"); !errors.Is(err, ErrInvalidGameName) {
			t.Errorf("Register(%q) err = %v, want ErrInvalidGameName", name, err)
		}
	}
}

func TestRegisterUnknownPlayer(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "D1", "Nobody", "D1"); !errors.Is(err, albion.ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "D1", "Aeron", "D1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "D1", "Aeron", "D1"); !errors.Is(err, repositories.ErrAlreadyRegistered) {
		t.Errorf("same account err = %v, want ErrAlreadyRegistered", err)
	}
	if _, err := svc.Register(context.Background(), "D2", "Aeron", "D2"); !errors.Is(err, repositories.ErrGameNameTaken) {
		t.Errorf("same character err = %v, want ErrGameNameTaken", err)
	}
}

func TestUnregister(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.Register(context.Background(), "D1", "Aeron", "D1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reg, err := svc.Unregister(context.Background(), "D1")
	if err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if reg.GameName != "Aeron" {
		t.Errorf("removed row names %q, want Aeron", reg.GameName)
	}
	if _, ok := repo.byDiscordID["D1"]; ok {
		t.Error("registration still stored after Unregister")
	}

	if _, err := svc.Unregister(context.Background(), "D1"); !errors.Is(err, repositories.ErrRegistrationNotFound) {
		t.Errorf("second Unregister err = %v, want ErrRegistrationNotFound", err)
	}
}

func TestNickname(t *testing.T) {
	svc, _ := newTestService(t)

	got := svc.Nickname(&albion.Player{Name: "Aeron", GuildName: "The Highland Brotherhood"})
	if got != "[Highl] Aeron" {
		t.Errorf("Nickname = %q, want [Highl] Aeron", got)
	}
}
