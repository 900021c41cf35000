package game

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wfunc/block-battle/internal/errors"
	"github.com/wfunc/block-battle/internal/game/tetris"
)

// RegistryConfig 注册表行为参数
type RegistryConfig struct {
	SequenceLength int           // 共享方块序列长度
	Countdown      time.Duration // 开局倒计时
	CleanupGrace   time.Duration // FINISHED房间保留时长
	StaleCeiling   time.Duration // PLAYING房间最长存活时长
	SweepInterval  time.Duration // 超时房间清扫周期
}

// DefaultRegistryConfig 默认参数
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		SequenceLength: tetris.DefaultSequenceLength,
		Countdown:      3 * time.Second,
		CleanupGrace:   10 * time.Second,
		StaleCeiling:   time.Hour,
		SweepInterval:  time.Minute,
	}
}

// ResultRecord 一名玩家的对局结果，交给持久化层异步落库
type ResultRecord struct {
	UserID          uint
	Username        string
	Result          string // win / loss
	Score           int
	Lines           int
	OpponentUserID  uint
	OpponentName    string
	DurationSeconds int
	Reason          string
}

// ResultRecorder 对局结果持久化接口
// 调用发生在game-end推送之后，失败只记日志，绝不反馈给玩家
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, records []ResultRecord) error
}

// Registry 房间注册表
// 持有全部房间，单把互斥锁把所有房间事件串行化，房间内部不再加锁
type Registry struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	playerRooms map[string]string // playerID -> roomID

	cfg      RegistryConfig
	log      *zap.Logger
	recorder ResultRecorder
	rng      *rand.Rand

	// notify 定时器触发的推送出口（倒计时、清扫），请求内推送走返回值
	notify func(PushMessage)
}

// NewRegistry 创建房间注册表
func NewRegistry(cfg RegistryConfig, log *zap.Logger, recorder ResultRecorder) *Registry {
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = tetris.DefaultSequenceLength
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = 3 * time.Second
	}
	if cfg.CleanupGrace <= 0 {
		cfg.CleanupGrace = 10 * time.Second
	}
	if cfg.StaleCeiling <= 0 {
		cfg.StaleCeiling = time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Registry{
		rooms:       make(map[string]*Room),
		playerRooms: make(map[string]string),
		cfg:         cfg,
		log:         log,
		recorder:    recorder,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetNotify 设置异步推送出口
func (r *Registry) SetNotify(fn func(PushMessage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notify = fn
}

// Run 周期清扫超时房间，ctx取消后退出
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepStale()
		}
	}
}

// CreateRoom 创建房间，创建者即房主
func (r *Registry) CreateRoom(playerID string, userID uint, username, roomName string) (RoomInfo, []PushMessage, *errors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.playerRooms[playerID]; ok {
		return RoomInfo{}, nil, errors.New(errors.ErrAlreadyInRoom, "已在房间 "+existing)
	}
	if roomName == "" {
		return RoomInfo{}, nil, errors.New(errors.ErrInvalidParam, "房间名不能为空")
	}

	host := &Player{
		ID:       playerID,
		UserID:   userID,
		Username: username,
		JoinedAt: time.Now(),
	}

	room := newRoom(uuid.New().String(), roomName, host, tetris.GenerateSequence(r.cfg.SequenceLength, r.rng))
	r.rooms[room.ID] = room
	r.playerRooms[playerID] = room.ID

	r.log.Info("房间已创建",
		zap.String("room_id", room.ID),
		zap.String("room_name", roomName),
		zap.String("host", username))

	return room.snapshot(), []PushMessage{lobbyPush(r.roomListLocked())}, nil
}

// JoinRoom 加入房间
// 重复加入自己所在的房间是幂等操作，只重发当前快照
func (r *Registry) JoinRoom(playerID string, userID uint, username, roomID string) (RoomInfo, []PushMessage, *errors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return RoomInfo{}, nil, errors.New(errors.ErrRoomNotFound, roomID)
	}

	if current, seated := r.playerRooms[playerID]; seated {
		if current == roomID {
			// 幂等重入：重发快照，不动花名册
			return room.snapshot(), nil, nil
		}
		return RoomInfo{}, nil, errors.New(errors.ErrAlreadyInRoom, "已在房间 "+current)
	}

	if room.State != RoomStateWaiting {
		return RoomInfo{}, nil, errors.New(errors.ErrRoomAlreadyStarted, roomID)
	}
	if len(room.Players) >= MaxPlayers {
		return RoomInfo{}, nil, errors.New(errors.ErrRoomFull, roomID)
	}

	room.addPlayer(&Player{
		ID:       playerID,
		UserID:   userID,
		Username: username,
		JoinedAt: time.Now(),
	})
	r.playerRooms[playerID] = roomID

	r.log.Info("玩家加入房间",
		zap.String("room_id", roomID),
		zap.String("player", username))

	snapshot := room.snapshot()
	pushes := []PushMessage{
		push(EventRoomUpdate, snapshot, room.opponent(playerID).ID),
		lobbyPush(r.roomListLocked()),
	}
	return snapshot, pushes, nil
}

// StartGame 房主开局：推送3秒倒计时，倒计时结束后进入PLAYING
func (r *Registry) StartGame(playerID, roomID string) ([]PushMessage, *errors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, errors.New(errors.ErrRoomNotFound, roomID)
	}
	if room.player(playerID) == nil {
		return nil, errors.New(errors.ErrNotInRoom, playerID)
	}
	if room.HostID != playerID {
		return nil, errors.New(errors.ErrNotRoomHost)
	}
	if room.State != RoomStateWaiting || room.countdownActive {
		return nil, errors.New(errors.ErrRoomAlreadyStarted, roomID)
	}
	if len(room.Players) < MaxPlayers {
		return nil, errors.New(errors.ErrNotEnoughPlayers)
	}

	room.countdownActive = true

	countdown := int(r.cfg.Countdown / time.Second)
	r.log.Info("开局倒计时",
		zap.String("room_id", roomID),
		zap.Int("countdown", countdown))

	time.AfterFunc(r.cfg.Countdown, func() {
		r.onCountdownDone(roomID)
	})

	return []PushMessage{
		push(EventGameStarting, map[string]interface{}{
			"room_id":   roomID,
			"countdown": countdown,
		}, room.playerIDs()...),
	}, nil
}

// onCountdownDone 倒计时结束回调
// 房间可能已被删除或已因掉线结束，所有前置条件重新检查，不满足则静默放弃
func (r *Registry) onCountdownDone(roomID string) {
	r.mu.Lock()

	room, ok := r.rooms[roomID]
	if !ok || room.State != RoomStateWaiting || !room.countdownActive {
		r.mu.Unlock()
		return
	}
	if len(room.Players) < MaxPlayers {
		room.countdownActive = false
		r.mu.Unlock()
		return
	}

	room.State = RoomStatePlaying
	room.StartedAt = time.Now()
	room.countdownActive = false

	snapshot := room.snapshot()
	start := GameStart{
		RoomID:    roomID,
		StartTime: room.StartedAt.UnixMilli(),
		Sequence:  room.Sequence,
		Players:   snapshot.Players,
	}

	r.log.Info("对局开始",
		zap.String("room_id", roomID),
		zap.Int("sequence_len", len(room.Sequence)))

	pushes := []PushMessage{
		push(EventGameStart, start, room.playerIDs()...),
		lobbyPush(r.roomListLocked()),
	}
	r.mu.Unlock()

	r.emit(pushes...)
}

// UpdateBoard 转发棋盘快照给对手
// 行数不足height的畸形负载静默丢弃，不给进行中的对局制造错误事件
func (r *Registry) UpdateBoard(playerID, roomID string, update BoardUpdate) []PushMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.State != RoomStatePlaying {
		return nil
	}
	player := room.player(playerID)
	if player == nil {
		return nil
	}

	if len(update.Board) != tetris.BoardHeight {
		r.log.Debug("丢弃畸形棋盘快照",
			zap.String("room_id", roomID),
			zap.String("player", player.Username),
			zap.Int("rows", len(update.Board)))
		return nil
	}

	player.Score = update.Score
	player.Lines = update.Lines
	player.Level = update.Level

	opp := room.opponent(playerID)
	if opp == nil {
		return nil
	}

	return []PushMessage{
		push(EventOpponentUpdate, map[string]interface{}{
			"from":  playerID,
			"board": update.Board,
			"score": update.Score,
			"lines": update.Lines,
			"level": update.Level,
		}, opp.ID),
	}
}

// RelayGarbage 把消行产生的垃圾行转发给对手
// 发送量为max(0, 消行数-1)：单行消除不攻击
// eventID重复的事件直接吸收，保证至少一次投递下不会双倍攻击
func (r *Registry) RelayGarbage(playerID, roomID, eventID string, linesCleared int) []PushMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.State != RoomStatePlaying {
		return nil
	}
	player := room.player(playerID)
	if player == nil {
		return nil
	}

	lines := linesCleared - 1
	if lines <= 0 {
		return nil
	}
	// 一次消行最多4行，上报超出按4行折算
	if lines > 3 {
		lines = 3
	}

	if eventID == "" {
		eventID = uuid.New().String()
	}
	if !room.markGarbageSeen(eventID) {
		r.log.Debug("吸收重复垃圾事件",
			zap.String("room_id", roomID),
			zap.String("event_id", eventID))
		return nil
	}

	opp := room.opponent(playerID)
	if opp == nil {
		return nil
	}

	r.log.Debug("转发垃圾行",
		zap.String("room_id", roomID),
		zap.String("from", player.Username),
		zap.Int("lines", lines))

	return []PushMessage{
		push(EventReceiveGarbage, GarbageEvent{
			EventID:    eventID,
			FromPlayer: playerID,
			FromName:   player.Username,
			Lines:      lines,
			Timestamp:  time.Now().UnixMilli(),
		}, opp.ID),
	}
}

// ReportGameOver 玩家上报己方棋盘顶满
// 幂等：第一次上报结束对局并广播唯一一次game-end，后续上报报错且不改状态
func (r *Registry) ReportGameOver(playerID, roomID string, finalScore int) ([]PushMessage, *errors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, errors.New(errors.ErrRoomNotFound, roomID)
	}
	player := room.player(playerID)
	if player == nil {
		return nil, errors.New(errors.ErrNotInRoom, playerID)
	}
	if room.State == RoomStateFinished {
		return nil, errors.New(errors.ErrGameAlreadyOver, roomID)
	}
	if room.State != RoomStatePlaying {
		return nil, errors.New(errors.ErrRoomNotStarted, roomID)
	}

	if finalScore > player.Score {
		player.Score = finalScore
	}

	return r.finishLocked(room, playerID, ReasonToppedOut), nil
}

// LeaveRoom 玩家主动离开房间
func (r *Registry) LeaveRoom(playerID, roomID string) ([]PushMessage, *errors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, errors.New(errors.ErrRoomNotFound, roomID)
	}
	if room.player(playerID) == nil {
		return nil, errors.New(errors.ErrNotInRoom, playerID)
	}

	return r.departLocked(room, playerID), nil
}

// Disconnect 连接断开，效果等同于离开所在房间；不在任何房间时是无害空操作
func (r *Registry) Disconnect(playerID string) []PushMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRooms[playerID]
	if !ok {
		return nil
	}
	room, ok := r.rooms[roomID]
	if !ok {
		delete(r.playerRooms, playerID)
		return nil
	}

	return r.departLocked(room, playerID)
}

// departLocked 处理离开/掉线
// 对局中（含倒计时中）离开视同认输；等待中离开只收缩花名册
func (r *Registry) departLocked(room *Room, playerID string) []PushMessage {
	if room.State == RoomStatePlaying || room.countdownActive {
		return r.finishLocked(room, playerID, ReasonOpponentLeft)
	}

	player := room.removePlayer(playerID)
	delete(r.playerRooms, playerID)

	if len(room.Players) == 0 {
		// 空房间立即删除
		delete(r.rooms, room.ID)
		r.log.Info("空房间已删除", zap.String("room_id", room.ID))
		return []PushMessage{lobbyPush(r.roomListLocked())}
	}

	r.log.Info("玩家离开房间",
		zap.String("room_id", room.ID),
		zap.String("player", player.Username),
		zap.String("new_host", room.HostID))

	snapshot := room.snapshot()
	return []PushMessage{
		push(EventOpponentLeft, map[string]interface{}{
			"room_id":  room.ID,
			"player":   player.Username,
			"new_host": room.HostID,
		}, room.playerIDs()...),
		push(EventRoomUpdate, snapshot, room.playerIDs()...),
		lobbyPush(r.roomListLocked()),
	}
}

// finishLocked 结束对局：loser判负，对手获胜
// 推送game-end后才调度异步持久化，持久化失败对玩家完全不可见
func (r *Registry) finishLocked(room *Room, loserID, reason string) []PushMessage {
	loser := room.player(loserID)
	winner := room.opponent(loserID)

	room.State = RoomStateFinished
	room.countdownActive = false

	// 座位立即释放，双方不必等宽限期结束就能进出其他房间
	for _, p := range room.Players {
		if r.playerRooms[p.ID] == room.ID {
			delete(r.playerRooms, p.ID)
		}
	}

	end := GameEnd{
		RoomID: room.ID,
		Reason: reason,
	}
	if loser != nil {
		end.LoserID = loser.ID
		end.Loser = loser.Username
	}
	if winner != nil {
		end.WinnerID = winner.ID
		end.Winner = winner.Username
	}

	duration := 0
	if !room.StartedAt.IsZero() {
		duration = int(time.Since(room.StartedAt) / time.Second)
	}

	r.log.Info("对局结束",
		zap.String("room_id", room.ID),
		zap.String("winner", end.Winner),
		zap.String("loser", end.Loser),
		zap.String("reason", reason),
		zap.Int("duration_s", duration))

	// FINISHED房间保留一个宽限期后删除
	roomID := room.ID
	time.AfterFunc(r.cfg.CleanupGrace, func() {
		r.cleanupFinished(roomID)
	})

	// 先送达game-end，再异步落库
	if r.recorder != nil && winner != nil && loser != nil {
		records := []ResultRecord{
			{
				UserID:          winner.UserID,
				Username:        winner.Username,
				Result:          "win",
				Score:           winner.Score,
				Lines:           winner.Lines,
				OpponentUserID:  loser.UserID,
				OpponentName:    loser.Username,
				DurationSeconds: duration,
				Reason:          reason,
			},
			{
				UserID:          loser.UserID,
				Username:        loser.Username,
				Result:          "loss",
				Score:           loser.Score,
				Lines:           loser.Lines,
				OpponentUserID:  winner.UserID,
				OpponentName:    winner.Username,
				DurationSeconds: duration,
				Reason:          reason,
			},
		}
		go func() {
			if err := r.recorder.RecordGameResult(context.Background(), records); err != nil {
				r.log.Error("对局结果落库失败",
					zap.String("room_id", roomID),
					zap.Error(err))
			}
		}()
	}

	return []PushMessage{
		push(EventGameEnd, end, room.playerIDs()...),
		lobbyPush(r.roomListLocked()),
	}
}

// cleanupFinished 宽限期后删除FINISHED房间
// 定时器触发时房间可能早已删除或又被复用检查后再动手
func (r *Registry) cleanupFinished(roomID string) {
	r.mu.Lock()

	room, ok := r.rooms[roomID]
	if !ok || room.State != RoomStateFinished {
		r.mu.Unlock()
		return
	}

	r.deleteRoomLocked(room)
	r.log.Info("结束房间已清理", zap.String("room_id", roomID))
	listing := lobbyPush(r.roomListLocked())
	r.mu.Unlock()

	r.emit(listing)
}

// sweepStale 强制删除超过存活上限的PLAYING房间，防止被遗弃的对局占着内存
func (r *Registry) sweepStale() {
	r.mu.Lock()

	swept := 0
	for _, room := range r.rooms {
		if room.State == RoomStatePlaying && time.Since(room.StartedAt) > r.cfg.StaleCeiling {
			r.log.Warn("强制清理超时对局",
				zap.String("room_id", room.ID),
				zap.Duration("age", time.Since(room.StartedAt)))
			r.deleteRoomLocked(room)
			swept++
		}
	}

	var listing PushMessage
	if swept > 0 {
		listing = lobbyPush(r.roomListLocked())
	}
	r.mu.Unlock()

	if swept > 0 {
		r.emit(listing)
	}
}

// deleteRoomLocked 删除房间并解开全部座位映射
func (r *Registry) deleteRoomLocked(room *Room) {
	for _, p := range room.Players {
		if r.playerRooms[p.ID] == room.ID {
			delete(r.playerRooms, p.ID)
		}
	}
	delete(r.rooms, room.ID)
}

// RoomList 大厅列表，FINISHED房间永远不出现
func (r *Registry) RoomList() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roomListLocked()
}

// roomListLocked 在锁内按需从房间状态推导大厅快照，不做冗余存储
func (r *Registry) roomListLocked() []RoomInfo {
	list := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.State == RoomStateFinished {
			continue
		}
		list = append(list, room.snapshot())
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt < list[j].CreatedAt
		}
		return list[i].RoomID < list[j].RoomID
	})

	return list
}

// RoomCount 当前房间数
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// RoomOf 查询玩家所在房间ID
func (r *Registry) RoomOf(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.playerRooms[playerID]
	return roomID, ok
}

// emit 通过异步出口下发推送
// 必须在锁外调用：出口可能阻塞，不能让它拖住整个注册表
func (r *Registry) emit(messages ...PushMessage) {
	if r.notify == nil {
		return
	}
	for _, msg := range messages {
		r.notify(msg)
	}
}
