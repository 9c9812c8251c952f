package race

// RankBadge 返回名次对应的奖牌（rank 从 1 开始）
func RankBadge(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "👏"
	}
}
