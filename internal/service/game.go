package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameService 持有所有进行中的对局
// 整张表由一把全局读写锁保护，每个临界区都是 O(1) 的 map 操作，
// 所以不做按游戏分片的细粒度锁
type GameService struct {
	state *gameServiceState
}

type gameServiceState struct {
	mu sync.RWMutex

	// 均为从游戏 ID 到实体的映射
	games        map[uuid.UUID]GameStatus
	waitingSince map[uuid.UUID]time.Time
	waitChList   map[uuid.UUID]chan struct{}

	// 等待中的游戏超过这个时长没人加入就会被清理
	waitingTTL time.Duration

	cleanUpDone chan struct{}
}

func NewGameService(waitingTTL time.Duration) *GameService {
	state := &gameServiceState{
		games:        make(map[uuid.UUID]GameStatus),
		waitingSince: make(map[uuid.UUID]time.Time),
		waitChList:   make(map[uuid.UUID]chan struct{}),
		waitingTTL:   waitingTTL,
		cleanUpDone:  make(chan struct{}),
	}

	// 启动一个 goroutine 定期清理无人加入的游戏
	go startCleanupLoop(state)

	return &GameService{
		state: state,
	}
}

func startCleanupLoop(state *gameServiceState) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-state.cleanUpDone:
			return

		case <-ticker.C:
			state.mu.Lock()
			sweepExpired(state, time.Now())
			state.mu.Unlock()
		}
	}
}

// 调用时必须已持有写锁
func sweepExpired(state *gameServiceState, now time.Time) {
	for gameID, since := range state.waitingSince {
		if now.Sub(since) < state.waitingTTL {
			continue
		}

		zap.S().Infof("等待中的游戏 %s 超时无人加入，开始清理", gameID)

		delete(state.games, gameID)
		closeWaitLocked(state, gameID)
	}
}

// 关闭并移除等待通知通道，游戏离开 Waiting 状态时必须调用
// 调用时必须已持有写锁
func closeWaitLocked(state *gameServiceState, gameID uuid.UUID) {
	if ch, ok := state.waitChList[gameID]; ok {
		close(ch)
		delete(state.waitChList, gameID)
	}

	delete(state.waitingSince, gameID)
}

func (gs *GameService) Close() {
	close(gs.state.cleanUpDone)
}

// Create 以 hostID 为房主登记一局新游戏
// 如果 gameID 已经存在则拒绝，避免撞 ID 时悄悄销毁别人的对局
func (gs *GameService) Create(gameID uuid.UUID, hostID uuid.UUID) error {
	gs.state.mu.Lock()
	defer gs.state.mu.Unlock()

	if _, ok := gs.state.games[gameID]; ok {
		return ErrGameAlreadyStarted
	}

	gs.state.games[gameID] = Waiting{Host: hostID}
	gs.state.waitingSince[gameID] = time.Now()
	gs.state.waitChList[gameID] = make(chan struct{})

	return nil
}

// Lookup 返回当前状态的快照
func (gs *GameService) Lookup(gameID uuid.UUID) (GameStatus, error) {
	gs.state.mu.RLock()
	defer gs.state.mu.RUnlock()

	status, ok := gs.state.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	return status, nil
}

// WatchJoin 返回等待中游戏的通知通道
// 游戏离开 Waiting 状态（加入、离开、超时清理）时该通道被关闭
func (gs *GameService) WatchJoin(gameID uuid.UUID) (<-chan struct{}, error) {
	gs.state.mu.RLock()
	defer gs.state.mu.RUnlock()

	ch, ok := gs.state.waitChList[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	return ch, nil
}

// Join 让 joinerID 加入一局等待中的游戏，座次固定：房主在前，加入者在后
func (gs *GameService) Join(gameID uuid.UUID, joinerID uuid.UUID) error {
	gs.state.mu.Lock()
	defer gs.state.mu.Unlock()

	status, ok := gs.state.games[gameID]
	if !ok {
		return ErrGameNotFound
	}

	waiting, ok := status.(Waiting)
	if !ok {
		return ErrGameAlreadyStarted
	}

	if waiting.Host == joinerID {
		// 房主连到自己的等待局走 WaitingForPlayer 流程，
		// 走到这里说明调用方和注册表的状态已经不一致
		return ErrInternal
	}

	gs.state.games[gameID] = Playing{
		A: NewPlayer(waiting.Host),
		B: NewPlayer(joinerID),
	}

	closeWaitLocked(gs.state, gameID)

	zap.S().Infof("玩家 %s 加入游戏 %s，对局开始", joinerID, gameID)

	return nil
}

// Leave 把整局游戏从注册表里移除，任意一个座位上的玩家都可以调用
// 非参与者得到的结果和游戏不存在无法区分：只有参与者能结束对局
func (gs *GameService) Leave(gameID uuid.UUID, playerID uuid.UUID) error {
	gs.state.mu.Lock()
	defer gs.state.mu.Unlock()

	status, ok := gs.state.games[gameID]
	if !ok {
		return ErrGameNotFound
	}

	switch s := status.(type) {
	case Waiting:
		if s.Host == playerID {
			delete(gs.state.games, gameID)
			closeWaitLocked(gs.state, gameID)

			zap.S().Infof("房主 %s 离开，游戏 %s 已销毁", playerID, gameID)

			return nil
		}

	case Playing:
		if s.A.ID == playerID || s.B.ID == playerID {
			delete(gs.state.games, gameID)

			zap.S().Infof("玩家 %s 离开，游戏 %s 已销毁", playerID, gameID)

			return nil
		}
	}

	return ErrGameNotFound
}

// Roll 为 playerID 掷一次骰子，返回累计分数和本次点数
// 对局未开始时掷骰不是用户错误，而是协议层状态不一致
func (gs *GameService) Roll(gameID uuid.UUID, playerID uuid.UUID) (uint8, uint8, error) {
	gs.state.mu.Lock()
	defer gs.state.mu.Unlock()

	status, ok := gs.state.games[gameID]
	if !ok {
		return 0, 0, ErrGameNotFound
	}

	playing, ok := status.(Playing)
	if !ok {
		return 0, 0, ErrInternal
	}

	dice := uint8(rand.IntN(6) + 1)

	var score uint8

	switch playerID {
	case playing.A.ID:
		playing.A.addDice(dice)
		score = playing.A.Score
	case playing.B.ID:
		playing.B.addDice(dice)
		score = playing.B.Score
	default:
		// 不在座位上的玩家和不存在的游戏不做区分
		return 0, 0, ErrGameNotFound
	}

	gs.state.games[gameID] = playing

	return score, dice, nil
}
