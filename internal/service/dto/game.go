package dto

// 创建游戏走 HTTP 接口，游戏 ID 在响应里带回，
// 之后双方各自带着这个 ID 建立 WebSocket 连接
type CreateGameResponse struct {
	GameID string `json:"game_id"`
}
