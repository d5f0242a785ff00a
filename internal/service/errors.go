package service

import "errors"

var (
	// 游戏不存在，或调用者不是这局游戏的参与者
	ErrGameNotFound = errors.New("游戏不存在")
	// 游戏已经开局，无法再加入
	ErrGameAlreadyStarted = errors.New("游戏已经开始")
	// 调用方与注册表的状态不一致，属于协议层错误
	ErrInternal = errors.New("内部错误")
)
