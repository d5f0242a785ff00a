package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dice-duel-be/internal/service"
	"dice-duel-be/internal/service/dto"
	"dice-duel-be/internal/state"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// Play 处理一条游戏连接的完整生命周期：
// 建立连接时根据注册表状态确定调用者在这局游戏里的角色，
// 之后循环消费入站消息并把注册表操作的结果发回去，
// 直到任意一方关闭连接或出现协议错误
func Play(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		// 先解析身份和游戏 ID，参数有问题就不升级连接
		playerID := appState.Identity.PlayerID(ctx)

		gameID, err := uuid.Parse(ctx.URLParam("id"))
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "无效的游戏ID",
			})
			return
		}

		// 升级响应要带上会话 Cookie，
		// 否则新玩家的身份无法跨重连保持
		upgradeHeader := http.Header{}
		if cookies := ctx.ResponseWriter().Header().Values("Set-Cookie"); len(cookies) > 0 {
			upgradeHeader["Set-Cookie"] = cookies
		}

		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			upgradeHeader,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		clientIP := ctx.RemoteAddr()

		// 入场确认是同步直写的，此时写协程还没启动，不会并发写
		waiting, ok := resolveOnConnect(appState.GameSvc, conn, gameID, playerID, clientIP)
		if !ok {
			return
		}

		// 后续响应都经由缓冲通道交给写协程发送
		respCh := make(chan dto.ResponseWrapper, 64)

		// 写协程的退出信号，以及写协程真正退出的确认
		writeDoneCh := make(chan struct{})
		writeExitedCh := make(chan struct{})

		// 退出前等写协程把剩余响应发完，再由上面的 defer 关连接
		defer func() {
			close(writeDoneCh)
			<-writeExitedCh
		}()

		go writeLoop(conn, respCh, writeDoneCh, writeExitedCh, clientIP)

		// 等待中的房主额外挂一个监视协程，对手加入时主动推送
		if waiting {
			go watchPeerJoin(appState.GameSvc, gameID, playerID, respCh, writeDoneCh)
		}

		readLoop(appState.GameSvc, conn, gameID, playerID, respCh, clientIP)
	}
}

// resolveOnConnect 按注册表的当前状态决定入场响应
// 返回值：是否处于等待对手状态、连接是否保持打开
func resolveOnConnect(
	gameSvc *service.GameService,
	conn *websocket.Conn,
	gameID uuid.UUID,
	playerID uuid.UUID,
	clientIP string,
) (waiting bool, open bool) {
	status, err := gameSvc.Lookup(gameID)
	if err != nil {
		sendDirect(conn, errResponse(err), clientIP)
		return false, false
	}

	switch s := status.(type) {
	case service.Waiting:
		if s.Host == playerID {
			// 房主回到自己的等待局，保持连接等对手
			sendDirect(conn, dto.WrapResponse(dto.RESP_WAITING_FOR_PLAYER, nil), clientIP)
			return true, true
		}

		if err := gameSvc.Join(gameID, playerID); err != nil {
			sendDirect(conn, errResponse(err), clientIP)
			return false, false
		}

		sendDirect(conn, dto.WrapResponse(dto.RESP_JOINED, nil), clientIP)
		return false, true

	case service.Playing:
		if s.A.ID == playerID || s.B.ID == playerID {
			// 重连回进行中的对局
			sendDirect(conn, dto.WrapResponse(dto.RESP_SUCCESS, nil), clientIP)
			return false, true
		}

		// 旁观者不被接受
		sendDirect(conn, dto.WrapErrResponse(dto.ERR_CODE_INTERNAL, "不是这局游戏的玩家"), clientIP)
		return false, false
	}

	zap.L().Error(
		"未知的游戏状态",
		zap.String("game_id", gameID.String()),
		zap.Any("status", status),
	)

	sendDirect(conn, dto.WrapErrResponse(dto.ERR_CODE_INTERNAL, "内部错误"), clientIP)
	return false, false
}

func sendDirect(conn *websocket.Conn, resp dto.ResponseWrapper, clientIP string) {
	if err := conn.WriteJSON(resp); err != nil {
		zap.L().Error(
			"发送入场响应失败",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)
	}
}

// 写协程：心跳 + 按序发送响应
func writeLoop(
	conn *websocket.Conn,
	respCh <-chan dto.ResponseWrapper,
	writeDoneCh <-chan struct{},
	writeExitedCh chan<- struct{},
	clientIP string,
) {
	defer close(writeExitedCh)

	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-writeDoneCh:
			// 退出前把已排队的响应发完
			for {
				select {
				case resp := <-respCh:
					if err := conn.WriteJSON(resp); err != nil {
						return
					}
				default:
					zap.L().Info(
						"WebSocket写入协程退出",
						zap.String("client_ip", clientIP),
					)
					return
				}
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"发送心跳失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

			zap.L().Debug(
				"发送心跳",
				zap.String("client_ip", clientIP),
			)

		case resp := <-respCh:
			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"发送消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

			zap.L().Debug(
				"发送消息",
				zap.String("client_ip", clientIP),
				zap.Any("response", resp),
			)
		}
	}
}

// 监视协程：等待局的通知通道被关闭时确认新状态并推送给房主
func watchPeerJoin(
	gameSvc *service.GameService,
	gameID uuid.UUID,
	playerID uuid.UUID,
	respCh chan<- dto.ResponseWrapper,
	writeDoneCh <-chan struct{},
) {
	joinedCh, err := gameSvc.WatchJoin(gameID)
	if err != nil {
		// 拿到等待确认和对手加入之间的窗口里游戏状态变了，
		// 当作通知已经触发处理
		joinedCh = closedChan()
	}

	select {
	case <-writeDoneCh:
		return
	case <-joinedCh:
	}

	// 通道关闭只说明游戏离开了等待状态，
	// 重新查询才能区分是对手加入还是游戏被销毁
	status, err := gameSvc.Lookup(gameID)
	if err == nil {
		if playing, ok := status.(service.Playing); ok {
			if playing.A.ID == playerID || playing.B.ID == playerID {
				select {
				case respCh <- dto.WrapResponse(dto.RESP_PEER_JOINED, nil):
				case <-writeDoneCh:
				}
				return
			}
		}
	}

	select {
	case respCh <- dto.WrapErrResponse(dto.ERR_CODE_GAME_NOT_FOUND, "游戏已不存在"):
	case <-writeDoneCh:
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// 读循环（主协程）：一条入站消息对应一次注册表操作
func readLoop(
	gameSvc *service.GameService,
	conn *websocket.Conn,
	gameID uuid.UUID,
	playerID uuid.UUID,
	respCh chan<- dto.ResponseWrapper,
	clientIP string,
) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				// 对端正常关闭，按离开处理，整局游戏销毁
				if err := gameSvc.Leave(gameID, playerID); err != nil {
					zap.L().Debug(
						"离开游戏失败",
						zap.String("game_id", gameID.String()),
						zap.String("player_id", playerID.String()),
						zap.Error(err),
					)
				}
			} else if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				// 异常断开不触发离开，等待清理协程或对手来收尾
				zap.L().Error(
					"读取消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
			}

			return
		}

		var wrapper dto.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Error(
				"解析消息失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			// 无法解析意味着后续帧也不可信，回错误后结束连接
			respCh <- dto.WrapErrResponse(dto.ERR_CODE_INTERNAL, "无效的请求格式")
			return
		}

		roll := dto.TryUnwrapRollDiceRequest(wrapper)
		if roll == nil {
			// 未知请求类型同样视为不可恢复的协议错误
			respCh <- dto.WrapErrResponse(dto.ERR_CODE_INTERNAL, "无效的请求类型")
			return
		}

		// 不信任载荷里的 player 字段，掷骰者取连接自身的会话身份
		score, dice, err := gameSvc.Roll(gameID, playerID)
		if err != nil {
			// 掷骰失败只回错误，连接保持打开
			respCh <- errResponse(err)
			continue
		}

		zap.L().Debug(
			"掷骰成功",
			zap.String("game_id", gameID.String()),
			zap.String("player_id", playerID.String()),
			zap.Uint8("dice", dice),
			zap.Uint8("score", score),
		)

		respCh <- dto.WrapResponse(dto.RESP_SCORE, dto.ScoreResponse{
			Score: score,
			Dice:  dice,
		})
	}
}

// 把注册表错误翻译成线上的错误码
func errResponse(err error) dto.ResponseWrapper {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return dto.WrapErrResponse(dto.ERR_CODE_GAME_NOT_FOUND, err.Error())
	case errors.Is(err, service.ErrGameAlreadyStarted):
		return dto.WrapErrResponse(dto.ERR_CODE_GAME_ALREADY_STARTED, err.Error())
	default:
		return dto.WrapErrResponse(dto.ERR_CODE_INTERNAL, err.Error())
	}
}
