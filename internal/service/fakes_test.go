package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/matchup-stats-service/internal/cache"
	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

type fakeTeamRepo struct {
	nextID    int64
	items     map[int64]model.Team
	createErr error
	lastPage  repository.Page // capture last page for pagination normalization tests
}

func newFakeTeamRepo(teams ...model.Team) *fakeTeamRepo {
	f := &fakeTeamRepo{nextID: 1, items: map[int64]model.Team{}}
	for _, t := range teams {
		f.items[t.ID] = t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

func (f *fakeTeamRepo) Create(_ context.Context, t model.Team) (model.Team, error) {
	if f.createErr != nil {
		return model.Team{}, f.createErr
	}
	t.ID = f.nextID
	f.nextID++
	f.items[t.ID] = t
	return t, nil
}
func (f *fakeTeamRepo) GetByID(_ context.Context, id int64) (model.Team, error) {
	it, ok := f.items[id]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	return it, nil
}
func (f *fakeTeamRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	f.lastPage = p
	res := repository.PageResult[model.Team]{}
	for _, v := range f.items {
		res.Items = append(res.Items, v)
	}
	res.Total = len(res.Items)
	return res, nil
}
func (f *fakeTeamRepo) ListByLeague(_ context.Context, leagueID int64) ([]model.Team, error) {
	var out []model.Team
	for _, v := range f.items {
		if v.LeagueID != nil && *v.LeagueID == leagueID {
			out = append(out, v)
		}
	}
	return out, nil
}
func (f *fakeTeamRepo) ListByCity(_ context.Context, city string) ([]model.Team, error) {
	var out []model.Team
	for _, v := range f.items {
		if strings.EqualFold(v.City, city) {
			out = append(out, v)
		}
	}
	return out, nil
}
func (f *fakeTeamRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

var _ repository.TeamRepository = (*fakeTeamRepo)(nil)

type fakePlayerRepo struct {
	items map[int64]model.Player
}

func (f *fakePlayerRepo) Create(_ context.Context, p model.Player) (model.Player, error) {
	p.ID = int64(len(f.items) + 1)
	f.items[p.ID] = p
	return p, nil
}
func (f *fakePlayerRepo) GetByID(_ context.Context, id int64) (model.Player, error) {
	p, ok := f.items[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}
func (f *fakePlayerRepo) ListByTeam(context.Context, int64, repository.Page) (repository.PageResult[model.Player], error) {
	return repository.PageResult[model.Player]{}, nil
}
func (f *fakePlayerRepo) ListByPosition(context.Context, model.Position, repository.Page) (repository.PageResult[model.Player], error) {
	return repository.PageResult[model.Player]{}, nil
}
func (f *fakePlayerRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

var _ repository.PlayerRepository = (*fakePlayerRepo)(nil)

type fakeGameRepo struct {
	mu       sync.Mutex
	items    map[int64]model.Game
	between  []model.Game
	upcoming []model.Game
	recent   []model.Game
	err      error
	calls    []string
}

func (f *fakeGameRepo) track(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeGameRepo) Create(_ context.Context, g model.Game) (model.Game, error) {
	g.ID = int64(len(f.items) + 1)
	f.items[g.ID] = g
	return g, nil
}
func (f *fakeGameRepo) GetByID(_ context.Context, id int64) (model.Game, error) {
	g, ok := f.items[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g, nil
}
func (f *fakeGameRepo) List(context.Context, repository.Page) (repository.PageResult[model.Game], error) {
	return repository.PageResult[model.Game]{}, nil
}
func (f *fakeGameRepo) ListBetween(context.Context, time.Time, time.Time) ([]model.Game, error) {
	f.track("between")
	return f.between, f.err
}
func (f *fakeGameRepo) ListUpcoming(context.Context, time.Time, int) ([]model.Game, error) {
	f.track("upcoming")
	return f.upcoming, f.err
}
func (f *fakeGameRepo) ListRecent(context.Context, time.Time, int) ([]model.Game, error) {
	f.track("recent")
	return f.recent, f.err
}

var _ repository.GameRepository = (*fakeGameRepo)(nil)

type fakePlayerStatsRepo struct {
	upserted []model.PlayerGameStat
}

func (f *fakePlayerStatsRepo) Upsert(_ context.Context, s model.PlayerGameStat) (model.PlayerGameStat, error) {
	s.ID = int64(len(f.upserted) + 1)
	f.upserted = append(f.upserted, s)
	return s, nil
}
func (f *fakePlayerStatsRepo) ListByGame(context.Context, int64) ([]model.PlayerGameStat, error) {
	return nil, nil
}
func (f *fakePlayerStatsRepo) ListByPlayer(context.Context, int64, int64, repository.Page) (repository.PageResult[model.PlayerGameStat], error) {
	return repository.PageResult[model.PlayerGameStat]{}, nil
}

var _ repository.PlayerStatsRepository = (*fakePlayerStatsRepo)(nil)

type fakeTeamStatsRepo struct {
	upserted []model.TeamGameStat
}

func (f *fakeTeamStatsRepo) Upsert(_ context.Context, s model.TeamGameStat) (model.TeamGameStat, error) {
	s.ID = int64(len(f.upserted) + 1)
	f.upserted = append(f.upserted, s)
	return s, nil
}
func (f *fakeTeamStatsRepo) ListByGame(context.Context, int64) ([]model.TeamGameStat, error) {
	return nil, nil
}
func (f *fakeTeamStatsRepo) ListByTeam(context.Context, int64, int64, repository.Page) (repository.PageResult[model.TeamGameStat], error) {
	return repository.PageResult[model.TeamGameStat]{}, nil
}

var _ repository.TeamStatsRepository = (*fakeTeamStatsRepo)(nil)

// fakeStatisticsRepo answers by descriptor query type and records what it saw.
type fakeStatisticsRepo struct {
	mu     sync.Mutex
	rows   func(d query.Descriptor) []model.StatRow
	err    error
	seen   []query.Descriptor
	served int
}

func (f *fakeStatisticsRepo) Query(_ context.Context, d query.Descriptor) ([]model.StatRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, d)
	if f.err != nil {
		return nil, f.err
	}
	f.served++
	if f.rows == nil {
		return nil, nil
	}
	return f.rows(d), nil
}

var _ repository.StatisticsRepository = (*fakeStatisticsRepo)(nil)

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = passTx{}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[key]
	return b, ok, nil
}
func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}
func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

type recordingSink struct {
	mu      sync.Mutex
	records []service.ErrorRecord
}

func (s *recordingSink) Record(_ context.Context, rec service.ErrorRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

var _ service.ErrorSink = (*recordingSink)(nil)

func fieldNames(err error) []string {
	var out []string
	for _, fe := range service.FieldErrors(err) {
		out = append(out, fe.Field)
	}
	return out
}

func int64p(v int64) *int64 { return &v }
