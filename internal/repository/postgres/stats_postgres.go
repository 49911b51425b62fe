package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/matchup-stats-service/internal/model"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

const playerStatColumns = `id, player_id, game_id, team_id, position, minutes, points,
	field_goals_made, field_goals_attempt, three_points_made, three_points_attempt,
	free_throws_made, free_throws_attempt, offensive_rebounds, defensive_rebounds, total_rebounds,
	assists, steals, blocks, turnovers, personal_fouls, plus_minus, created_at, updated_at`

// prefixed qualifies every column of a comma separated list with alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type playerStatsRepository struct{ pool *pgxpool.Pool }

func NewPlayerStatsRepository(pool *pgxpool.Pool) repository.PlayerStatsRepository {
	return &playerStatsRepository{pool: pool}
}

func scanPlayerStat(row pgx.Row, extra ...any) (model.PlayerGameStat, error) {
	var s model.PlayerGameStat
	var pos string
	dest := []any{
		&s.ID, &s.PlayerID, &s.GameID, &s.TeamID, &pos, &s.Minutes, &s.Points,
		&s.FieldGoalsMade, &s.FieldGoalsAttempt, &s.ThreePointsMade, &s.ThreePointsAttempt,
		&s.FreeThrowsMade, &s.FreeThrowsAttempt, &s.OffensiveRebounds, &s.DefensiveRebounds, &s.TotalRebounds,
		&s.Assists, &s.Steals, &s.Blocks, &s.Turnovers, &s.PersonalFouls, &s.PlusMinus, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.PlayerGameStat{}, err
	}
	s.Position = model.Position(pos)
	return s, nil
}

// Upsert writes the (player, game) line, replacing any previous version.
func (r *playerStatsRepository) Upsert(ctx context.Context, s model.PlayerGameStat) (model.PlayerGameStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerGameStat{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO player_game_stats (
			player_id, game_id, team_id, position, minutes, points,
			field_goals_made, field_goals_attempt, three_points_made, three_points_attempt,
			free_throws_made, free_throws_attempt, offensive_rebounds, defensive_rebounds, total_rebounds,
			assists, steals, blocks, turnovers, personal_fouls, plus_minus
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (player_id, game_id)
		DO UPDATE SET
			team_id = EXCLUDED.team_id,
			position = EXCLUDED.position,
			minutes = EXCLUDED.minutes,
			points = EXCLUDED.points,
			field_goals_made = EXCLUDED.field_goals_made,
			field_goals_attempt = EXCLUDED.field_goals_attempt,
			three_points_made = EXCLUDED.three_points_made,
			three_points_attempt = EXCLUDED.three_points_attempt,
			free_throws_made = EXCLUDED.free_throws_made,
			free_throws_attempt = EXCLUDED.free_throws_attempt,
			offensive_rebounds = EXCLUDED.offensive_rebounds,
			defensive_rebounds = EXCLUDED.defensive_rebounds,
			total_rebounds = EXCLUDED.total_rebounds,
			assists = EXCLUDED.assists,
			steals = EXCLUDED.steals,
			blocks = EXCLUDED.blocks,
			turnovers = EXCLUDED.turnovers,
			personal_fouls = EXCLUDED.personal_fouls,
			plus_minus = EXCLUDED.plus_minus,
			updated_at = NOW()
		RETURNING `+playerStatColumns,
		s.PlayerID, s.GameID, s.TeamID, string(s.Position), s.Minutes, s.Points,
		s.FieldGoalsMade, s.FieldGoalsAttempt, s.ThreePointsMade, s.ThreePointsAttempt,
		s.FreeThrowsMade, s.FreeThrowsAttempt, s.OffensiveRebounds, s.DefensiveRebounds, s.TotalRebounds,
		s.Assists, s.Steals, s.Blocks, s.Turnovers, s.PersonalFouls, s.PlusMinus,
	)
	out, err := scanPlayerStat(row)
	if err != nil {
		return model.PlayerGameStat{}, repository.MapPgError(err)
	}
	return out, nil
}

// ListByGame is the player half of a box score, home and visitor lines mixed.
func (r *playerStatsRepository) ListByGame(ctx context.Context, gameID int64) ([]model.PlayerGameStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+playerStatColumns+` FROM player_game_stats WHERE game_id = $1 ORDER BY team_id, points DESC, id`,
		gameID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.PlayerGameStat, 0, 24)
	for rows.Next() {
		s, err := scanPlayerStat(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *playerStatsRepository) ListByPlayer(ctx context.Context, playerID, seasonID int64, p repository.Page) (repository.PageResult[model.PlayerGameStat], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.PlayerGameStat]{}, err
	}
	p = p.Normalize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+prefixed("ps", playerStatColumns)+`, COUNT(*) OVER() AS total
		 FROM player_game_stats ps
		 JOIN games g ON g.id = ps.game_id
		 WHERE ps.player_id = $1 AND ($2::bigint = 0 OR g.season_id = $2)
		 ORDER BY g.start_date DESC, ps.id DESC
		 LIMIT $3 OFFSET $4`,
		playerID, seasonID, p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.PlayerGameStat]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.PlayerGameStat]{Items: make([]model.PlayerGameStat, 0, p.Limit)}
	for rows.Next() {
		var total int
		s, err := scanPlayerStat(rows, &total)
		if err != nil {
			return repository.PageResult[model.PlayerGameStat]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, s)
		res.Total = total
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.PlayerStatsRepository = (*playerStatsRepository)(nil)
