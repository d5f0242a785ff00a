package dto

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端请求类型
const (
	REQ_ROLL_DICE = "RollDice"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

type RollDiceRequest struct {
	GameID string `json:"game_id"`
	// 兼容旧客户端保留的字段，服务端不信任它，
	// 掷骰者一律取连接自身的会话身份
	Player string `json:"player"`
}

func TryUnwrapRollDiceRequest(wrapper RequestWrapper) *RollDiceRequest {
	if wrapper.ReqType != REQ_ROLL_DICE {
		return nil
	}

	var rollDiceRequest RollDiceRequest

	err := json.Unmarshal(wrapper.Data, &rollDiceRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap RollDiceRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &rollDiceRequest
}

// 服务端响应类型
const (
	RESP_ERROR = "Error"

	RESP_JOINED             = "Joined"
	RESP_WAITING_FOR_PLAYER = "WaitingForPlayer"
	RESP_SUCCESS            = "Success"
	RESP_PEER_JOINED        = "PeerJoined"
	RESP_SCORE              = "Score"
)

// 错误响应携带的错误码
const (
	ERR_CODE_GAME_NOT_FOUND       = "GameNotFound"
	ERR_CODE_GAME_ALREADY_STARTED = "GameAlreadyStarted"
	ERR_CODE_INTERNAL             = "InternalError"
)

type ScoreResponse struct {
	Score uint8 `json:"score"`
	Dice  uint8 `json:"dice"`
}

type ErrorResponse struct {
	Code string `json:"code"`
}

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data,omitempty"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(code string, errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		Data:     ErrorResponse{Code: code},
		ErrMsg:   errMsg,
	}
}
