package state

import (
	"dice-duel-be/internal/config"
	"dice-duel-be/internal/identity"
	"dice-duel-be/internal/service"
)

type AppState struct {
	Cfg      *config.AppConfig
	GameSvc  *service.GameService
	Identity *identity.Provider
}

func NewAppState(
	cfg *config.AppConfig,
	gameSvc *service.GameService,
	identity *identity.Provider,
) *AppState {
	return &AppState{
		Cfg:      cfg,
		GameSvc:  gameSvc,
		Identity: identity,
	}
}
