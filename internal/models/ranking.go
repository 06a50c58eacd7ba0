package models

type RankingEntry struct {
	PlayerID                 string  `json:"player_id"`
	Points                   int     `json:"points"`
	CompletedCount           int     `json:"completed_count"`
	AvgCompletionTimeSeconds float64 `json:"avg_completion_time_seconds"`
	AchievementCount         int     `json:"achievement_count"`
	TimePlayedSeconds        float64 `json:"time_played_seconds"`
	Rank                     int     `json:"rank"`
}

// PlayerRank is a single player's standing relative to everyone ranked.
type PlayerRank struct {
	RankingEntry
	TotalPlayers int     `json:"total_players"`
	Percentile   float64 `json:"percentile"` // top X%
}
