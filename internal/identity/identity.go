package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"
)

const SESSION_KEY_PLAYER_ID = "player_id"

// Provider 基于 Cookie 会话给每个访问者一个稳定的玩家 ID
// 首次访问时生成一个 UUID 并写入会话，之后重连都解析回同一个 ID
type Provider struct {
	sess *sessions.Sessions
}

func NewProvider(cookie string, expiry time.Duration) *Provider {
	return &Provider{
		sess: sessions.New(sessions.Config{
			Cookie:       cookie,
			Expires:      expiry,
			AllowReclaim: true,
		}),
	}
}

func (p *Provider) PlayerID(ctx iris.Context) uuid.UUID {
	session := p.sess.Start(ctx)

	if raw := session.GetString(SESSION_KEY_PLAYER_ID); raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			return id
		}

		// 会话里存的值坏了就重新生成一个
		zap.L().Warn(
			"会话中的玩家ID无法解析，重新生成",
			zap.String("raw", raw),
			zap.Error(err),
		)
	}

	id := uuid.New()
	session.Set(SESSION_KEY_PLAYER_ID, id.String())

	zap.S().Infof("为新玩家分配 ID %s", id)

	return id
}
