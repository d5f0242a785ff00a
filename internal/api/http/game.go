package http

import (
	"dice-duel-be/internal/service/dto"
	"dice-duel-be/internal/state"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// CreateGame 创建一局新游戏并返回游戏 ID
// 调用者之后带着这个 ID 建立 WebSocket 连接进入等待状态
func CreateGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		hostID := appState.Identity.PlayerID(ctx)

		gameID := uuid.New()

		if err := appState.GameSvc.Create(gameID, hostID); err != nil {
			// gameID 是刚生成的 UUID，撞上已有对局基本不可能发生
			zap.L().Error(
				"创建游戏失败",
				zap.String("game_id", gameID.String()),
				zap.String("host_id", hostID.String()),
				zap.Error(err),
			)

			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{
				"error": "创建游戏失败",
			})
			return
		}

		zap.S().Infof("游戏 %s 由玩家 %s 创建", gameID, hostID)

		ctx.JSON(dto.CreateGameResponse{
			GameID: gameID.String(),
		})
	}
}
