package model

// SpawnCommand instructs an executor to materialise one monster.
// Stats is a point-in-time copy; executors never see the scheduler cache.
type SpawnCommand struct {
	Sequence    uint64      `json:"sequence"`
	SessionID   uint64      `json:"session_id"`
	MonsterType MonsterType `json:"monster_type"`
	Template    string      `json:"template"`
	Position    Position    `json:"position"`
	Stats       ScaledStats `json:"stats"`

	// Degraded is set when the stats cache had no entry for MonsterType
	// and Stats fell back to the unscaled base values.
	Degraded bool `json:"degraded,omitempty"`

	Wave    int     `json:"wave"`
	Elapsed float64 `json:"elapsed"` // seconds of wave clock at emission
}
