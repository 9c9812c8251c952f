package identity

import (
	"math/rand"
	"slices"

	"github.com/google/uuid"
)

// Chars 可选的玩家形象
var Chars = []string{"🐰", "🐢", "🐸", "🐶", "🐱", "🐼", "🦊", "🐷"}

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "闪电的", "飞奔的", "极速的", "灵巧的",
		"呆萌的", "威武的", "活泼的", "神秘的", "酷炫的",
		"机智的", "潇洒的", "顽皮的", "淡定的", "迷人的",
	}

	nouns = []string{
		"小兔", "乌龟", "青蛙", "柯基", "橘猫",
		"熊猫", "狐狸", "小猪", "仓鼠", "刺猬",
		"松鼠", "水獭", "羊驼", "企鹅", "考拉",
	}
)

// NewPlayerID 生成一次性的玩家标识
// 每次建立连接生成一个新的，不跨会话保留
func NewPlayerID() string {
	return "player_" + uuid.NewString()
}

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + noun
}

// RandomChar 随机选择一个形象
func RandomChar() string {
	return Chars[rand.Intn(len(Chars))]
}

// ValidChar 检查形象是否在可选集合内
func ValidChar(char string) bool {
	return slices.Contains(Chars, char)
}
