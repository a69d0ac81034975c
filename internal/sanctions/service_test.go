package sanctions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/mqtt"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type call struct {
	guild, subject, kind string
	d                    time.Duration
}

type fakeModerator struct {
	guild string
	mu    *sync.Mutex
	calls *[]call
	err   error
}

func (f fakeModerator) record(subject, kind string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.calls = append(*f.calls, call{f.guild, subject, kind, d})
	return f.err
}

func (f fakeModerator) Timeout(_ context.Context, subject string, d time.Duration, _ string) error {
	return f.record(subject, "timeout", d)
}

func (f fakeModerator) Kick(_ context.Context, subject string, _ string) error {
	return f.record(subject, "kick", 0)
}

func (f fakeModerator) Ban(_ context.Context, subject string, _ string) error {
	return f.record(subject, "ban", 0)
}

type recorder struct {
	mu       sync.Mutex
	calls    []call
	outcomes []warn.Outcome
	guilds   []string
}

func newService(t *testing.T, modErr error) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	engine := warn.NewEngine(database.NewMemoryWarnStore(), warn.Options{})
	svc := New(engine, Options{
		Moderators: func(guildID string) warn.Moderator {
			return fakeModerator{guild: guildID, mu: &rec.mu, calls: &rec.calls, err: modErr}
		},
		Events: mqtt.NewEvents(mqtt.NewLocal("test")),
		Notify: func(guildID string, o warn.Outcome) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.outcomes = append(rec.outcomes, o)
			rec.guilds = append(rec.guilds, guildID)
		},
		Now: func() time.Time { return now },
	})
	return svc, rec
}

func TestWarnPunishesInGuild(t *testing.T) {
	svc, rec := newService(t, nil)
	ctx := context.Background()
	issuer := "M1"

	for i := 1; i <= 3; i++ {
		res, err := svc.Warn(ctx, "G1", "U1", &issuer, "spam")
		if err != nil {
			t.Fatalf("Warn() #%d error = %v", i, err)
		}
		if res.ActiveCount != i {
			t.Errorf("Warn() #%d ActiveCount = %d, want %d", i, res.ActiveCount, i)
		}
	}
	svc.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 2 {
		t.Fatalf("moderator calls = %v, want 2 timeouts", rec.calls)
	}
	got := map[time.Duration]bool{}
	for _, c := range rec.calls {
		if c.guild != "G1" || c.subject != "U1" || c.kind != "timeout" {
			t.Errorf("call = %+v, want timeout of U1 in G1", c)
		}
		got[c.d] = true
	}
	if !got[10*time.Minute] || !got[time.Hour] {
		t.Errorf("timeouts = %v, want 10m and 1h", rec.calls)
	}
	if len(rec.outcomes) != 2 || rec.guilds[0] != "G1" {
		t.Errorf("outcomes = %v in %v, want 2 in G1", rec.outcomes, rec.guilds)
	}
}

func TestWarnWithoutGuildDoesNotPunish(t *testing.T) {
	svc, rec := newService(t, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Warn(ctx, "", "U1", nil, "spam"); err != nil {
			t.Fatalf("Warn() error = %v", err)
		}
	}
	svc.Wait()

	if len(rec.calls) != 0 {
		t.Errorf("moderator calls = %v, want none", rec.calls)
	}
}

func TestPunishmentFailureKeepsWarn(t *testing.T) {
	svc, rec := newService(t, errors.New("missing permissions"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Warn(ctx, "G1", "U1", nil, "spam"); err != nil {
			t.Fatalf("Warn() error = %v", err)
		}
	}
	svc.Wait()

	n, err := svc.Engine().CountActiveWarns(ctx, "U1", now)
	if err != nil || n != 2 {
		t.Errorf("CountActiveWarns() = %d, %v, want 2", n, err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.outcomes) != 1 || rec.outcomes[0].Err == nil {
		t.Errorf("outcomes = %v, want one failure", rec.outcomes)
	}
}

func TestInvalidWarnIsNotAnnounced(t *testing.T) {
	svc, rec := newService(t, nil)

	_, err := svc.Warn(context.Background(), "G1", "U1", nil, "   ")
	if !errors.Is(err, warn.ErrInvalidInput) {
		t.Fatalf("Warn() error = %v, want ErrInvalidInput", err)
	}
	svc.Wait()
	if len(rec.calls) != 0 {
		t.Errorf("moderator calls = %v, want none", rec.calls)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	res, _ := svc.Warn(ctx, "", "U1", nil, "a")
	_, _ = svc.Warn(ctx, "", "U1", nil, "b")

	removed, err := svc.Remove(ctx, res.Warn.ID)
	if err != nil || !removed {
		t.Fatalf("Remove() = %v, %v, want true", removed, err)
	}
	removed, _ = svc.Remove(ctx, res.Warn.ID)
	if removed {
		t.Error("Remove() of a missing id = true, want false")
	}

	n, err := svc.Clear(ctx, "U1")
	if err != nil || n != 1 {
		t.Errorf("Clear() = %d, %v, want 1", n, err)
	}
}

func TestMissingModeratorSkipsPunishment(t *testing.T) {
	engine := warn.NewEngine(database.NewMemoryWarnStore(), warn.Options{})
	svc := New(engine, Options{Now: func() time.Time { return now }})

	for i := 0; i < 2; i++ {
		if _, err := svc.Warn(context.Background(), "G1", "U1", nil, "spam"); err != nil {
			t.Fatalf("Warn() error = %v", err)
		}
	}
	svc.Wait()
}

type fakeSender struct {
	embeds []*discordgo.MessageEmbed
}

func (f *fakeSender) ChannelMessageSendEmbed(_ string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestLogChannel(t *testing.T) {
	sender := &fakeSender{}
	l := LogChannel{Sender: sender, ChannelID: "C1"}

	res := warn.Result{ActiveCount: 6, Action: warn.PunishmentFor(6)}
	res.Warn.ID = 9
	res.Warn.SubjectID = "U1"
	res.Warn.Reason = "spam"
	res.Warn.IssuedAt = now
	res.Warn.ExpiresAt = now.Add(warn.ExpiryOffset(6))

	l.Warned(res, "palabra: spam")
	l.Punishment("G1", warn.Outcome{SubjectID: "U1", Count: 6, Action: res.Action, Err: errors.New("forbidden")})

	if len(sender.embeds) != 2 {
		t.Fatalf("embeds sent = %d, want 2", len(sender.embeds))
	}
	if got := sender.embeds[0].Fields[1].Value; got != "Sistema" {
		t.Errorf("issuer field = %q, want Sistema", got)
	}
	if got := sender.embeds[0].Fields[2].Value; got != "6/6" {
		t.Errorf("count field = %q, want 6/6", got)
	}
	if sender.embeds[1].Color != colorFailure {
		t.Errorf("failure embed color = %x, want %x", sender.embeds[1].Color, colorFailure)
	}

	LogChannel{}.Warned(res, "")
}

func TestIssuer(t *testing.T) {
	id := "42"
	if got := Issuer(&id); got != "<@42>" {
		t.Errorf("Issuer(&42) = %q, want <@42>", got)
	}
	if got := Issuer(nil); got != "Sistema" {
		t.Errorf("Issuer(nil) = %q, want Sistema", got)
	}
}
