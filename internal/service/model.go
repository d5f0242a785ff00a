package service

import "github.com/google/uuid"

// 游戏状态是一个只有两个变体的封闭集合：
// Waiting —— 房主已创建游戏，等待对手加入
// Playing —— 双方入座，各自独立累计分数
// 状态只能从 Waiting 单向转移到 Playing
type GameStatus interface {
	isGameStatus()
}

type Waiting struct {
	Host uuid.UUID
}

type Playing struct {
	A Player
	B Player
}

func (Waiting) isGameStatus() {}
func (Playing) isGameStatus() {}

// 单个玩家分数的上限
const MAX_SCORE = 255

type Player struct {
	ID    uuid.UUID `json:"id"`
	Score uint8     `json:"score"`
}

func NewPlayer(id uuid.UUID) Player {
	return Player{ID: id}
}

// 累加一次骰子点数，到达上限后饱和而不是回绕
func (p *Player) addDice(dice uint8) {
	if p.Score > MAX_SCORE-dice {
		p.Score = MAX_SCORE
		return
	}

	p.Score += dice
}
