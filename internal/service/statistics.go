package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/matchup-stats-service/internal/cache"
	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/query"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

// StatisticsOptions tunes the statistics service; zero values disable the feature.
type StatisticsOptions struct {
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

type statisticsService struct {
	repo  repository.StatisticsRepository
	cache cache.Cache
	sink  ErrorSink
	opts  StatisticsOptions
	log   zerolog.Logger
}

func NewStatisticsService(repo repository.StatisticsRepository, c cache.Cache, sink ErrorSink, opts StatisticsOptions, logger zerolog.Logger) StatisticsService {
	l := logger.With().Str("module", "service").Str("component", "statistics").Logger()
	if c == nil {
		c = cache.Nop{}
	}
	return &statisticsService{repo: repo, cache: c, sink: sink, opts: opts, log: l}
}

func (s *statisticsService) Query(ctx context.Context, raw map[string]string) (ListResult, error) {
	start := time.Now()
	f, err := NormalizeStatistics(raw)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("statistics validation failed")
		return ListResult{}, err
	}
	d, err := query.Compose(f)
	if err != nil {
		s.record(ctx, SeverityServiceError, err, raw)
		return ListResult{}, err
	}
	rows, err := s.run(ctx, d)
	if err != nil {
		s.record(ctx, SeverityDatabaseError, err, raw)
		return ListResult{}, err
	}
	s.log.Debug().
		Str("query_type", string(d.QueryType)).
		Int("rows", len(rows)).
		Dur("took", time.Since(start)).
		Msg("statistics query served")
	return ShapeList(d, rows), nil
}

func (s *statisticsService) VsTeamDetailed(ctx context.Context, playerID, enemyTeamID string, raw map[string]string) (model.StatRow, error) {
	params := detailParams(raw, model.QueryVsTeam)
	params["playerId"] = playerID
	params["enemyTeamId"] = enemyTeamID
	return s.detailed(ctx, params)
}

func (s *statisticsService) VsTeamInPositionDetailed(ctx context.Context, playerID, position, enemyTeamID string, raw map[string]string) (model.StatRow, error) {
	params := detailParams(raw, model.QueryInPositionVsTeam)
	params["playerId"] = playerID
	params["playerPosition"] = position
	params["enemyTeamId"] = enemyTeamID
	return s.detailed(ctx, params)
}

// detailParams copies raw under a fixed query type. The detail views return
// one row per player, so grouping and limit are not caller controlled.
func detailParams(raw map[string]string, qt model.QueryType) map[string]string {
	params := make(map[string]string, len(raw)+4)
	for k, v := range raw {
		params[k] = v
	}
	params["queryType"] = string(qt)
	delete(params, "groupBy")
	delete(params, "limit")
	return params
}

// detailed runs params with every field projected and returns the single aggregate row.
func (s *statisticsService) detailed(ctx context.Context, params map[string]string) (model.StatRow, error) {
	f, err := NormalizeStatistics(params)
	if err != nil {
		return nil, err
	}
	f.Fields = query.FieldNames()
	d, err := query.Compose(f)
	if err != nil {
		s.record(ctx, SeverityServiceError, err, params)
		return nil, err
	}
	d = withoutGrouping(d)
	rows, err := s.run(ctx, d)
	if err != nil {
		s.record(ctx, SeverityDatabaseError, err, params)
		return nil, err
	}
	return ShapeSingle(rows)
}

func (s *statisticsService) QueryTypes() []QueryTypeInfo {
	return queryTypeCatalog()
}

// run executes d through the cache. Cache failures only cost a round trip.
// The request deadline covers the cache lookup and the data source together.
func (s *statisticsService) run(ctx context.Context, d query.Descriptor) ([]model.StatRow, error) {
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	key := cacheKey(d)
	if s.opts.CacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("cache get failed")
		} else if ok {
			var rows []model.StatRow
			if err := decodeRows(b, &rows); err == nil {
				return rows, nil
			}
			s.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	rows, err := s.repo.Query(ctx, d)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, repository.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
		}
		return nil, err
	}

	if s.opts.CacheTTL > 0 {
		if b, err := json.Marshal(rows); err == nil {
			if err := s.cache.Set(ctx, key, b, s.opts.CacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("cache set failed")
			}
		}
	}
	return rows, nil
}

func (s *statisticsService) record(ctx context.Context, severity string, err error, params map[string]string) {
	if s.sink == nil {
		return
	}
	fields := make(map[string]any, len(params)+1)
	for k, v := range params {
		fields[k] = v
	}
	fields["error"] = err.Error()
	s.sink.Record(ctx, ErrorRecord{
		Message:   "statistics query failed",
		Component: "statistics",
		Severity:  severity,
		Context:   fields,
	})
}

// withoutGrouping collapses a descriptor to a single aggregate per subject.
func withoutGrouping(d query.Descriptor) query.Descriptor {
	keep := 0
	for _, c := range d.Projection {
		if c.Alias == "EnemyTeamId" || c.Alias == "EnemyTeamName" {
			continue
		}
		d.Projection[keep] = c
		keep++
	}
	d.Projection = d.Projection[:keep]
	d.GroupBy = []string{"ps.player_id", "p.first_name", "p.last_name"}
	d.Joins = dropJoin(d.Joins, "et")
	d.OrderBy = []query.Order{{Alias: "PlayerId", Dir: model.Asc}}
	d.Group = model.GroupNone
	return d
}

func dropJoin(js []query.Join, alias string) []query.Join {
	out := make([]query.Join, 0, len(js))
	for _, j := range js {
		if j.Alias != alias {
			out = append(out, j)
		}
	}
	return out
}

// cacheKey is derived from the rendered statement, so equal requests share an entry.
func cacheKey(d query.Descriptor) string {
	sql, args := d.Render()
	h := sha256.New()
	h.Write([]byte(sql))
	for _, a := range args {
		fmt.Fprintf(h, "|%v", a)
	}
	return "stats:" + hex.EncodeToString(h.Sum(nil))
}

// decodeRows keeps numbers as json.Number so integer ids survive the round trip.
func decodeRows(b []byte, out *[]model.StatRow) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(out)
}
