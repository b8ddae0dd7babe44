package server

import "strings"

// Input 客户端移动输入（意图），由服务端在 Tick 中解释并驱动世界状态
type Input struct {
	PlayerID PlayerID
	Command  Direction
	Seq      int64 // 客户端本地序列号，用于去重与确认
}

// 入站消息的 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"forward"}
//
//	{"type":"fire","weapon":"missile","antiArmor":true}
type InputMessage struct {
	Type      string `json:"type"`
	Command   string `json:"command,omitempty"`
	Weapon    string `json:"weapon,omitempty"`
	AntiArmor bool   `json:"antiArmor,omitempty"`
	Seq       int64  `json:"seq,omitempty"`
}

// parseDirection 将移动指令映射为 Direction，未知指令为 DirNone
func parseDirection(cmd string) Direction {
	switch strings.ToLower(cmd) {
	case "forward", "up":
		return DirForward
	case "backward", "down":
		return DirBackward
	case "left":
		return DirTurnLeft
	case "right":
		return DirTurnRight
	default:
		return DirNone
	}
}
