package services

import (
	"context"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
)

// In-memory repository fakes mirroring the guarded-write semantics of the
// postgres implementations, including the CAS sentinels.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(ts ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range ts {
		r.tournaments[t.ID] = cloneTournament(t)
	}
	return r
}

// cloneTournament mirrors a row scan: callers get their own copy, so only
// writes that go through the repository reach the stored state.
func cloneTournament(t *models.Tournament) *models.Tournament {
	c := *t
	c.RegisteredPlayerIDs = append([]int(nil), t.RegisteredPlayerIDs...)
	return &c
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return cloneTournament(t), nil
}

func (r *fakeTournamentRepo) ListDueToStart(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.TournamentRegistrationOpen && !t.StartTime.After(now) {
			out = append(out, cloneTournament(t))
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListInProgress(_ context.Context) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.TournamentInProgress {
			out = append(out, cloneTournament(t))
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Status != from {
		return repositories.ErrTournamentStale
	}
	t.Status = to
	return nil
}

func (r *fakeTournamentRepo) AdvanceRound(_ context.Context, _ repositories.SQLExecutor, id int, fromRound int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Status != models.TournamentInProgress || t.CurrentRoundLevel != fromRound {
		return repositories.ErrTournamentStale
	}
	t.CurrentRoundLevel = fromRound + 1
	return nil
}

func (r *fakeTournamentRepo) AddRegisteredPlayers(_ context.Context, _ repositories.SQLExecutor, id int, playerIDs []int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.RegisteredPlayerIDs = append(t.RegisteredPlayerIDs, playerIDs...)
	return nil
}

type fakeMatchRepo struct {
	nextID  int
	matches []*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		m.ID = r.nextID
		r.nextID++
		r.matches = append(r.matches, m)
	}
	return nil
}

func (r *fakeMatchRepo) ListByRound(_ context.Context, tournamentID, roundLevel int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.RoundLevel == roundLevel {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByRound(_ context.Context, tournamentID, roundLevel int) (int, error) {
	matches, _ := r.ListByRound(context.Background(), tournamentID, roundLevel)
	return len(matches), nil
}

func (r *fakeMatchRepo) ListDue(_ context.Context, tournamentID int, now time.Time) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Status == models.MatchPending && !m.ScheduledStartTime.After(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Complete(_ context.Context, _ repositories.SQLExecutor, id int, winnerID int, score string) error {
	for _, m := range r.matches {
		if m.ID != id {
			continue
		}
		if m.Status != models.MatchPending {
			return repositories.ErrMatchAlreadyCompleted
		}
		m.Status = models.MatchCompleted
		m.WinnerID = &winnerID
		m.Score = &score
		return nil
	}
	return repositories.ErrMatchNotFound
}

type fakePlayerRepo struct {
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{nextID: 1000, players: make(map[int]*models.Player)}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p, nil
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Player, error) {
	var out []*models.Player
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) CreateCPU(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	player.ID = r.nextID
	r.nextID++
	player.IsCPU = true
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) UpdateRank(_ context.Context, id int, rank float64, label models.Tier) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Rank = rank
	p.RankLabel = label
	return nil
}

func (r *fakePlayerRepo) AppendInjury(_ context.Context, id int, injury models.Injury) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Injuries = append(p.Injuries, injury)
	return nil
}

type fakeMatchRecordRepo struct {
	nextID  int
	records []models.MatchRecord
	// clock stamps created rows so window filtering stays meaningful.
	clock func() time.Time
}

func newFakeMatchRecordRepo(clock func() time.Time) *fakeMatchRecordRepo {
	return &fakeMatchRecordRepo{nextID: 1, clock: clock}
}

func (r *fakeMatchRecordRepo) Create(_ context.Context, _ repositories.SQLExecutor, record *models.MatchRecord) error {
	record.ID = r.nextID
	r.nextID++
	record.CreatedAt = r.clock()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeMatchRecordRepo) ListByPlayerSince(_ context.Context, playerID int, since time.Time) ([]models.MatchRecord, error) {
	var out []models.MatchRecord
	for _, rec := range r.records {
		involved := rec.Player1ID == playerID || (rec.Player2ID != nil && *rec.Player2ID == playerID)
		if involved && !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeLedgerRepo struct {
	entries []models.LedgerEntry
}

func (r *fakeLedgerRepo) Insert(_ context.Context, _ repositories.SQLExecutor, entry *models.LedgerEntry) error {
	entry.ID = len(r.entries) + 1
	r.entries = append(r.entries, *entry)
	return nil
}

type fakeSeasonRepo struct {
	seasons map[int]*models.InterclubSeason
}

func newFakeSeasonRepo(seasons ...*models.InterclubSeason) *fakeSeasonRepo {
	r := &fakeSeasonRepo{seasons: make(map[int]*models.InterclubSeason)}
	for _, s := range seasons {
		r.seasons[s.ID] = s
	}
	return r
}

func (r *fakeSeasonRepo) GetByID(_ context.Context, id int) (*models.InterclubSeason, error) {
	s, ok := r.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	return s, nil
}

func (r *fakeSeasonRepo) ListActive(_ context.Context) ([]*models.InterclubSeason, error) {
	var out []*models.InterclubSeason
	for _, s := range r.seasons {
		if s.Status == models.SeasonActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSeasonRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.SeasonStatus) error {
	s, ok := r.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	if s.Status != from {
		return repositories.ErrSeasonStale
	}
	s.Status = to
	return nil
}

type fakeEncounterRepo struct {
	nextID     int
	encounters []*models.InterclubEncounter
}

func newFakeEncounterRepo() *fakeEncounterRepo {
	return &fakeEncounterRepo{nextID: 1}
}

func (r *fakeEncounterRepo) get(id int) *models.InterclubEncounter {
	for _, e := range r.encounters {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (r *fakeEncounterRepo) GetByID(_ context.Context, id int) (*models.InterclubEncounter, error) {
	e := r.get(id)
	if e == nil {
		return nil, repositories.ErrEncounterNotFound
	}
	return e, nil
}

func (r *fakeEncounterRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, encounters []*models.InterclubEncounter) error {
	for _, e := range encounters {
		e.ID = r.nextID
		r.nextID++
		r.encounters = append(r.encounters, e)
	}
	return nil
}

func (r *fakeEncounterRepo) CountBySeason(_ context.Context, seasonID int) (int, error) {
	count := 0
	for _, e := range r.encounters {
		if e.SeasonID == seasonID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEncounterRepo) ListBySeason(_ context.Context, seasonID int, status *models.EncounterStatus) ([]*models.InterclubEncounter, error) {
	var out []*models.InterclubEncounter
	for _, e := range r.encounters {
		if e.SeasonID != seasonID {
			continue
		}
		if status != nil && e.Status != *status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEncounterRepo) ListDue(_ context.Context, seasonID int, status models.EncounterStatus, due time.Time) ([]*models.InterclubEncounter, error) {
	var out []*models.InterclubEncounter
	for _, e := range r.encounters {
		if e.SeasonID == seasonID && e.Status == status && !e.MatchDate.After(due) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEncounterRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.EncounterStatus) error {
	e := r.get(id)
	if e == nil {
		return repositories.ErrEncounterNotFound
	}
	if e.Status != from {
		return repositories.ErrEncounterStale
	}
	e.Status = to
	return nil
}

func (r *fakeEncounterRepo) SetLineup(_ context.Context, _ repositories.SQLExecutor, id int, side string, lineup models.Lineup) error {
	e := r.get(id)
	if e == nil {
		return repositories.ErrEncounterNotFound
	}
	if side == "away" {
		e.AwayLineup = lineup
	} else {
		e.HomeLineup = lineup
	}
	return nil
}

func (r *fakeEncounterRepo) Complete(_ context.Context, _ repositories.SQLExecutor, id int, from models.EncounterStatus,
	results []models.CategoryResult, winnerTeamID *int, finalScore string) error {
	e := r.get(id)
	if e == nil {
		return repositories.ErrEncounterNotFound
	}
	if e.Status != from {
		return repositories.ErrEncounterStale
	}
	e.Status = models.EncounterCompleted
	e.Results = results
	e.WinnerTeamID = winnerTeamID
	e.FinalScore = &finalScore
	return nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return t, nil
}
