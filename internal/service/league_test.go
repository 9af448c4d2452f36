package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestListPlayers(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	tests := []struct {
		name   string
		group  string
		search string
		want   []string
	}{
		{"all active sorted by name", "", "", []string{"p_alice", "p_ben", "p_cara"}},
		{"group filter", "d4", "", []string{"p_cara"}},
		{"explicit ALL", "ALL", "", []string{"p_alice", "p_ben", "p_cara"}},
		{"search is case-insensitive", "", "BE", []string{"p_ben"}},
		{"inactive never listed", "D4", "dan", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players, err := f.svc.ListPlayers(ctx, tt.group, tt.search)
			require.NoError(t, err)
			ids := make([]string, 0, len(players))
			for _, p := range players {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGetPlayerAndByPhone(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	detail, err := f.svc.GetPlayer(ctx, "p_dan")
	require.NoError(t, err, "inactive players are still retrievable")
	assert.Equal(t, "Dan", detail.Player.DisplayName)

	_, err = f.svc.GetPlayer(ctx, "p_nobody")
	assert.True(t, domain.IsNotFound(err))

	p, err := f.svc.PlayerByPhone(ctx, "", "12-345-6789")
	require.NoError(t, err)
	assert.Equal(t, "p_alice", p.ID)

	_, err = f.svc.PlayerByPhone(ctx, "+65", "123456789")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.PlayerByPhone(ctx, "+60", "")
	assert.True(t, domain.IsValidation(err))
}

func TestRecordMatch(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	view, err := f.svc.RecordMatch(ctx, league.MatchInput{
		PlayerAID: "p_alice",
		PlayerBID: "p_ben",
		Score:     "6-4, 3-6, 10-7",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "p_alice", view.WinnerID)
	assert.Equal(t, "Alice", view.WinnerName)
	assert.Equal(t, "ben", view.LoserName)
	assert.Equal(t, testSeason, view.Season)
	assert.Equal(t, "2026-03-14", view.Date)
	assert.Equal(t, domain.CreatedByPlayer, view.CreatedBy)
	assert.Regexp(t, `^m_[0-9a-f]{10}$`, view.ID)

	doc := f.snapshot(t)
	require.Len(t, doc.Matches, 1)
	assert.Equal(t, int64(1), doc.Revision)
	assert.Equal(t, []domain.EventType{domain.EventMatchRecorded}, f.events.types())
	assert.Equal(t, doc.Revision, f.events.events[0].Revision)
}

func TestRecordMatchValidationPersistsNothing(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()
	savesBefore := f.repo.Saves()

	tests := []struct {
		name string
		in   league.MatchInput
		msg  string
	}{
		{"missing player", league.MatchInput{PlayerAID: "p_alice", Score: "6-0"}, "players required"},
		{"same player", league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_alice", Score: "6-0"}, "players must differ"},
		{"unknown player", league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_zed", Score: "6-0"}, "invalid player id"},
		{"drawn score", league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-4, 4-6"}, "invalid winner"},
		{"outside winner", league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", WinnerID: "p_cara", Score: "6-0"}, "invalid winner"},
		{"no score", league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", WinnerID: "p_ben"}, "score required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordMatch(ctx, tt.in, "")
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	assert.Equal(t, savesBefore, f.repo.Saves())
	assert.Empty(t, f.snapshot(t).Matches)
	assert.Empty(t, f.events.types())
}

func TestRecordMatchIdempotencyKey(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()
	in := league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-1, 6-1"}

	first, err := f.svc.RecordMatch(ctx, in, "retry-1")
	require.NoError(t, err)
	second, err := f.svc.RecordMatch(ctx, in, "retry-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.snapshot(t).Matches, 1)

	// a failed attempt frees the key for a corrected retry
	_, err = f.svc.RecordMatch(ctx, league.MatchInput{PlayerAID: "p_alice"}, "retry-2")
	require.Error(t, err)
	_, err = f.svc.RecordMatch(ctx, in, "retry-2")
	require.NoError(t, err)
	assert.Len(t, f.snapshot(t).Matches, 2)
}

func TestConcurrentRecordMatchLosesNothing(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordMatch(ctx, league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-3"}, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc := f.snapshot(t)
	assert.Len(t, doc.Matches, writers)
	assert.Equal(t, int64(writers), doc.Revision)
}

func TestUpdateMatch(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	created, err := f.svc.CreateMatch(ctx, league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-4, 6-4", Date: "2026-03-01"})
	require.NoError(t, err)
	assert.Equal(t, domain.CreatedByAdmin, created.CreatedBy)

	// clearing the winner re-derives it from the new score
	updated, err := f.svc.UpdateMatch(ctx, created.ID, league.MatchPatch{Score: strPtr("4-6, 4-6"), WinnerID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "p_ben", updated.WinnerID)
	assert.Equal(t, "2026-03-01", updated.Date)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)

	_, err = f.svc.UpdateMatch(ctx, created.ID, league.MatchPatch{PlayerBID: strPtr("p_alice")})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UpdateMatch(ctx, "m_missing", league.MatchPatch{})
	assert.True(t, domain.IsNotFound(err))

	stored := f.snapshot(t).FindMatch(created.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "p_ben", stored.WinnerID, "failed update leaves the stored match intact")
}

func TestDeleteMatch(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	m, err := f.svc.CreateMatch(ctx, league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-0"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMatch(ctx, m.ID))
	assert.Empty(t, f.snapshot(t).Matches)
	assert.True(t, domain.IsNotFound(f.svc.DeleteMatch(ctx, m.ID)))
	assert.Equal(t, []domain.EventType{domain.EventMatchRecorded, domain.EventMatchDeleted}, f.events.types())
}

func TestListMatchesNewestFirst(t *testing.T) {
	f := newFixture(t, func(doc *domain.Document) {
		seedPlayers(doc)
		base := fixedNow.Add(-time.Hour)
		doc.Matches = []domain.Match{
			{ID: "m_old", Season: testSeason, Stage: domain.StageRegular, Date: "2026-03-01", PlayerAID: "p_alice", PlayerBID: "p_ben", WinnerID: "p_alice", CreatedAt: base},
			{ID: "m_new", Season: testSeason, Stage: domain.StageRegular, Date: "2026-03-05", PlayerAID: "p_alice", PlayerBID: "p_ghost", WinnerID: "p_ghost", CreatedAt: base},
			{ID: "m_same_day_later", Season: testSeason, Stage: "PLAYOFF", Date: "2026-03-01", PlayerAID: "p_ben", PlayerBID: "p_cara", WinnerID: "p_cara", CreatedAt: base.Add(time.Minute)},
			{ID: "m_other_season", Season: "2025-S2", Stage: domain.StageRegular, Date: "2026-03-09", PlayerAID: "p_ben", PlayerBID: "p_cara", CreatedAt: base},
		}
	})
	ctx := context.Background()

	views, err := f.svc.ListMatches(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "m_new", views[0].ID)
	assert.Equal(t, "m_same_day_later", views[1].ID)
	assert.Equal(t, "m_old", views[2].ID)
	assert.Equal(t, "Unknown", views[0].PlayerBName)
	assert.Equal(t, "TBD", views[0].WinnerName)

	playoff, err := f.svc.ListMatches(ctx, testSeason, "playoff")
	require.NoError(t, err)
	require.Len(t, playoff, 1)
	assert.Equal(t, "m_same_day_later", playoff[0].ID)
}

func TestStandingsDefaults(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	_, err := f.svc.RecordMatch(ctx, league.MatchInput{PlayerAID: "p_cara", PlayerBID: "p_ben", Score: "6-2, 6-2"}, "")
	require.NoError(t, err)

	table, err := f.svc.Standings(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, testSeason, table.Season)
	assert.Equal(t, domain.GroupAll, table.Group)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "p_cara", table.Rows[0].PlayerID)
	assert.Equal(t, 3, table.Rows[0].Points)
	assert.Equal(t, 1, table.Rows[0].Rank)

	d4, err := f.svc.Standings(ctx, testSeason, "d4")
	require.NoError(t, err)
	assert.Equal(t, "D4", d4.Group)
	require.Len(t, d4.Rows, 1)
	assert.Equal(t, 0, d4.Rows[0].Played, "matches against players outside the group are skipped")
}

func TestTournamentUpsertIsIdempotent(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()
	slot := 1
	in := TournamentInput{
		Season:    strPtr(testSeason),
		Round:     strPtr("qf"),
		Slot:      &slot,
		Player1ID: strPtr("p_alice"),
		Player2ID: strPtr("p_ben"),
		WinnerID:  strPtr(""),
		Score:     strPtr(""),
		Date:      strPtr("2026-04-01"),
	}

	first, err := f.svc.UpsertTournamentMatch(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundQF, first.Round)

	in.WinnerID = strPtr("p_alice")
	in.Score = strPtr("6-3, 6-3")
	second, err := f.svc.UpsertTournamentMatch(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	doc := f.snapshot(t)
	require.Len(t, doc.TournamentMatches, 1)
	assert.Equal(t, "p_alice", doc.TournamentMatches[0].WinnerID)

	bracket, err := f.svc.Bracket(ctx, "")
	require.NoError(t, err)
	require.Len(t, bracket.Matches, 1)
	assert.Equal(t, "Alice", bracket.Matches[0].WinnerName)

	require.NoError(t, f.svc.DeleteTournamentMatch(ctx, first.ID))
	assert.True(t, domain.IsNotFound(f.svc.DeleteTournamentMatch(ctx, first.ID)))
}

func TestTournamentUpsertRequiresFields(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()
	slot := 2

	_, err := f.svc.UpsertTournamentMatch(ctx, TournamentInput{Season: strPtr(testSeason), Round: strPtr("SF"), Slot: &slot})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player1_id is required")

	_, err = f.svc.UpsertTournamentMatch(ctx, TournamentInput{
		Season: strPtr(testSeason), Round: strPtr("R64"), Slot: &slot,
		Player1ID: strPtr("p_alice"), Player2ID: strPtr("p_ben"),
		WinnerID: strPtr(""), Score: strPtr(""), Date: strPtr(""),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid round")
}

func TestTournamentInputSlotDecoding(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *int
		wantErr bool
	}{
		{"number", `{"slot":3}`, intPtr(3), false},
		{"quoted integer", `{"slot":"3"}`, intPtr(3), false},
		{"quoted with spaces", `{"slot":" 4 "}`, intPtr(4), false},
		{"null is missing", `{"slot":null}`, nil, false},
		{"absent", `{"round":"QF"}`, nil, false},
		{"word", `{"slot":"first"}`, nil, true},
		{"fraction", `{"slot":2.5}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in TournamentInput
			err := json.Unmarshal([]byte(tt.raw), &in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Slot)
		})
	}

	var in TournamentInput
	require.NoError(t, json.Unmarshal([]byte(`{"season":"2026-S1","round":"QF","slot":"3","player1_id":"p_alice","player2_id":"p_ben","winner_id":"","score":"","date":""}`), &in))
	require.NotNil(t, in.Season)
	assert.Equal(t, "2026-S1", *in.Season)
	assert.Equal(t, "p_ben", *in.Player2ID)
	require.NotNil(t, in.Slot)
	assert.Equal(t, 3, *in.Slot)
}

func TestTournamentUpsertWithQuotedSlot(t *testing.T) {
	f := newFixture(t, seedPlayers)
	var in TournamentInput
	require.NoError(t, json.Unmarshal([]byte(`{"season":"`+testSeason+`","round":"SF","slot":"2","player1_id":"p_alice","player2_id":"p_ben","winner_id":"","score":"","date":""}`), &in))

	slot, err := f.svc.UpsertTournamentMatch(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Slot)
}

func TestNewsAndCommunity(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	_, err := f.svc.CreateNews(ctx, NewsInput{Title: "Only a title"})
	assert.True(t, domain.IsValidation(err))

	first, err := f.svc.CreateNews(ctx, NewsInput{Title: "Season opens", Content: "Welcome back"})
	require.NoError(t, err)
	assert.Equal(t, domain.NewsCategoryOfficial, first.Category)
	assert.Equal(t, "2026-03-14", first.Date)

	f.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = f.svc.CreateNews(ctx, NewsInput{Title: "Court closure", Category: "Venue", Content: "Court 3 resurfacing"})
	require.NoError(t, err)

	all, err := f.svc.ListNews(ctx, "All", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Court closure", all[0].Title)

	venue, err := f.svc.ListNews(ctx, "Venue", "")
	require.NoError(t, err)
	assert.Len(t, venue, 1)

	found, err := f.svc.ListNews(ctx, "", "WELCOME")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	require.NoError(t, f.svc.DeleteNews(ctx, first.ID))
	assert.True(t, domain.IsNotFound(f.svc.DeleteNews(ctx, first.ID)))

	_, err = f.svc.CreatePost(ctx, PostInput{Author: "Alice", Content: "hi"})
	assert.True(t, domain.IsValidation(err))
	_, err = f.svc.CreatePost(ctx, PostInput{Content: "hello all"})
	assert.True(t, domain.IsValidation(err))

	post, err := f.svc.CreatePost(ctx, PostInput{Author: "Alice", PlayerID: "p_alice", Content: "Anyone for doubles?"})
	require.NoError(t, err)
	posts, err := f.svc.ListCommunity(ctx, "doubles")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NoError(t, f.svc.DeletePost(ctx, post.ID))
	assert.True(t, domain.IsNotFound(f.svc.DeletePost(ctx, post.ID)))
}

func TestProfile(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := f.svc.CreateMatch(ctx, league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-1"})
		require.NoError(t, err)
	}

	profile, err := f.svc.GetProfile(ctx, "p_alice")
	require.NoError(t, err)
	assert.Nil(t, profile.Account)
	assert.Len(t, profile.RecentMatches, recentMatchLimit)
	assert.Equal(t, domain.PlayerStats{Played: 12, Won: 12}, profile.Stats)

	_, err = f.svc.UpdateProfile(ctx, "p_alice", ProfileInput{Email: "not-an-email"})
	assert.True(t, domain.IsValidation(err))

	updated, err := f.svc.UpdateProfile(ctx, "p_alice", ProfileInput{NTRP: "4.5", Email: "alice@example.com", Bio: "Lefty"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Player.DisplayName)
	assert.Equal(t, domain.GroupD1, updated.Player.Group)
	assert.Equal(t, "alice@example.com", updated.Account.Email)
	assert.Equal(t, "Lefty", updated.Account.Bio)

	again, err := f.svc.UpdateProfile(ctx, "p_alice", ProfileInput{DisplayName: "Alice K"})
	require.NoError(t, err)
	assert.Equal(t, updated.Account.ID, again.Account.ID)
	assert.Equal(t, "Alice K", again.Account.DisplayName)
	assert.Len(t, f.snapshot(t).Accounts, 1)

	_, err = f.svc.GetProfile(ctx, "")
	assert.True(t, domain.IsValidation(err))
	_, err = f.svc.UpdateProfile(ctx, "p_nobody", ProfileInput{})
	assert.True(t, domain.IsNotFound(err))
}

func TestAdminPlayerLifecycle(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	_, err := f.svc.CreatePlayer(ctx, AdminPlayerInput{})
	assert.True(t, domain.IsValidation(err))

	p, err := f.svc.CreatePlayer(ctx, AdminPlayerInput{DisplayName: "Eve", Phone: "012-345 6789"})
	require.NoError(t, err)
	assert.Equal(t, defaultNTRP, p.NTRP)
	assert.Equal(t, domain.GroupD4, p.Group)
	assert.Equal(t, "600123456789", p.WhatsAppNumber)
	assert.True(t, p.RegisteredViaWhatsApp)
	assert.True(t, p.Active)

	updated, err := f.svc.UpdatePlayer(ctx, p.ID, AdminPlayerPatch{NTRP: strPtr("4.6")})
	require.NoError(t, err)
	assert.Equal(t, domain.GroupD1, updated.Group, "group follows ntrp when not given")

	updated, err = f.svc.UpdatePlayer(ctx, p.ID, AdminPlayerPatch{NTRP: strPtr("2.5"), Group: strPtr("d2"), CountryCode: strPtr("+65")})
	require.NoError(t, err)
	assert.Equal(t, domain.GroupD2, updated.Group, "explicit group wins")
	assert.Equal(t, "650123456789", updated.WhatsAppNumber)

	_, err = f.svc.UpdatePlayer(ctx, "p_nobody", AdminPlayerPatch{})
	assert.True(t, domain.IsNotFound(err))

	dash, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, dash.Counts.Players)
}

func TestDeletePlayerCascades(t *testing.T) {
	f := newFixture(t, seedPlayers)
	ctx := context.Background()

	_, err := f.svc.CreateMatch(ctx, league.MatchInput{PlayerAID: "p_alice", PlayerBID: "p_ben", Score: "6-1"})
	require.NoError(t, err)
	_, err = f.svc.CreateMatch(ctx, league.MatchInput{PlayerAID: "p_ben", PlayerBID: "p_cara", Score: "6-1"})
	require.NoError(t, err)
	_, err = f.svc.UpdateProfile(ctx, "p_alice", ProfileInput{Bio: "hi"})
	require.NoError(t, err)
	slot := 1
	_, err = f.svc.UpsertTournamentMatch(ctx, TournamentInput{
		Season: strPtr(testSeason), Round: strPtr("F"), Slot: &slot,
		Player1ID: strPtr("p_cara"), Player2ID: strPtr("p_alice"),
		WinnerID: strPtr(""), Score: strPtr(""), Date: strPtr(""),
	})
	require.NoError(t, err)

	result, err := f.svc.DeletePlayer(ctx, "p_alice")
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchesRemoved)
	assert.Equal(t, 1, result.TournamentMatchesRemoved)
	assert.Equal(t, 1, result.AccountsRemoved)

	doc := f.snapshot(t)
	assert.Nil(t, doc.FindPlayer("p_alice"))
	assert.Len(t, doc.Matches, 1)
	assert.Empty(t, doc.TournamentMatches)
	assert.Empty(t, doc.Accounts)

	_, err = f.svc.DeletePlayer(ctx, "p_alice")
	assert.True(t, domain.IsNotFound(err))
}
