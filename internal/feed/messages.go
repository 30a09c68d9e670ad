package feed

import (
	"github.com/udisondev/hordewave/internal/model"
	"github.com/udisondev/hordewave/internal/wave"
)

// Outbound message types.
const (
	TypeStatus    = "status"
	TypeSpawn     = "spawn"
	TypeWave      = "wave"
	TypeState     = "state"
	TypeMonster   = "monster"
	TypeCondition = "condition"
	TypeAck       = "ack"
	TypeError     = "error"
)

// Inbound control commands.
const (
	CommandStart = "start"
	CommandStop  = "stop"
	CommandSwap  = "swap"
)

type spawnMessage struct {
	Type    string             `json:"type"`
	Command model.SpawnCommand `json:"command"`
}

type waveMessage struct {
	Type string `json:"type"`
	Wave int    `json:"wave"`
}

type stateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type monsterMessage struct {
	Type    string            `json:"type"`
	Monster model.MonsterType `json:"monster"`
}

type conditionMessage struct {
	Type      string `json:"type"`
	Kind      string `json:"kind"`
	Operation string `json:"operation"`
	Detail    string `json:"detail,omitempty"`
}

// statusMessage is sent once to every new subscriber.
type statusMessage struct {
	Type    string            `json:"type"`
	State   string            `json:"state"`
	Wave    int               `json:"wave"`
	Monster model.MonsterType `json:"monster,omitempty"`
}

type clientMessage struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`
}

type replyMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Seq     uint64 `json:"seq,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newConditionMessage(c wave.Condition) conditionMessage {
	return conditionMessage{
		Type:      TypeCondition,
		Kind:      c.Kind.String(),
		Operation: c.Operation,
		Detail:    c.Detail,
	}
}
