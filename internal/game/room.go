package game

import (
	"time"

	"github.com/wfunc/block-battle/internal/game/tetris"
)

// Room 一局两人对战的全部状态
// 所有字段只在Registry的锁内访问，方块序列创建后不再修改，可安全共享
type Room struct {
	ID        string
	Name      string
	HostID    string
	State     RoomState
	Players   []*Player
	Sequence  []tetris.PieceType
	CreatedAt time.Time
	StartedAt time.Time

	// countdownActive 开局倒计时进行中
	// 倒计时期间掉线按对局中处理：留下的人直接获胜
	countdownActive bool

	// seenGarbage 已转发过的垃圾事件ID，至少一次投递下的重放在这里被吸收
	seenGarbage map[string]struct{}
}

// newRoom 创建房间
func newRoom(id, name string, host *Player, sequence []tetris.PieceType) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		HostID:      host.ID,
		State:       RoomStateWaiting,
		Players:     []*Player{host},
		Sequence:    sequence,
		CreatedAt:   time.Now(),
		seenGarbage: make(map[string]struct{}),
	}
}

// player 按ID查玩家，未找到返回nil
func (r *Room) player(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// opponent 返回playerID的对手，没有对手返回nil
func (r *Room) opponent(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// addPlayer 加入玩家，调用方保证前置条件已检查
func (r *Room) addPlayer(p *Player) {
	r.Players = append(r.Players, p)
}

// removePlayer 移除玩家；被移除的是房主时房主转给剩下的玩家
func (r *Room) removePlayer(playerID string) *Player {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			if r.HostID == playerID && len(r.Players) > 0 {
				r.HostID = r.Players[0].ID
			}
			return p
		}
	}
	return nil
}

// markGarbageSeen 记录垃圾事件ID，重复ID返回false
func (r *Room) markGarbageSeen(eventID string) bool {
	if _, dup := r.seenGarbage[eventID]; dup {
		return false
	}
	r.seenGarbage[eventID] = struct{}{}
	return true
}

// playerIDs 房间内全部玩家ID
func (r *Room) playerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// snapshot 房间对外快照
func (r *Room) snapshot() RoomInfo {
	players := make([]PlayerInfo, 0, len(r.Players))
	creator := ""
	for _, p := range r.Players {
		players = append(players, PlayerInfo{
			ID:       p.ID,
			Username: p.Username,
			IsHost:   p.ID == r.HostID,
			Score:    p.Score,
			Lines:    p.Lines,
			Level:    p.Level,
		})
		if p.ID == r.HostID {
			creator = p.Username
		}
	}

	return RoomInfo{
		RoomID:     r.ID,
		RoomName:   r.Name,
		Creator:    creator,
		Players:    players,
		MaxPlayers: MaxPlayers,
		Status:     r.State,
		CreatedAt:  r.CreatedAt.Unix(),
	}
}
