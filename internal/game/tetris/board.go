package tetris

// 棋盘尺寸常量
const (
	// BoardWidth 棋盘宽度（列数）
	BoardWidth = 10
	// BoardHeight 棋盘高度（行数，含顶部2行出生缓冲区）
	BoardHeight = 20
	// SpawnBufferRows 出生缓冲行数，第0/1行有方块即判负
	SpawnBufferRows = 2
)

// Cell 棋盘单元格
// 0为空，1-7对应七种方块颜色，PenaltyCell为垃圾行
type Cell int8

const (
	// EmptyCell 空单元格
	EmptyCell Cell = 0
	// PenaltyCell 垃圾行单元格（对手攻击注入，不可消除）
	PenaltyCell Cell = 8
)

// Board 10x20棋盘，Board[y][x]，y=0为最顶行
type Board [][]Cell

// Position 方块锚点坐标（形状矩阵左上角在棋盘中的位置）
// 方块刚出生时Y可以为负（部分露出顶部边界之外）
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewBoard 创建空棋盘
func NewBoard() Board {
	board := make(Board, BoardHeight)
	for y := range board {
		board[y] = make([]Cell, BoardWidth)
	}
	return board
}

// Clone 深拷贝棋盘
func (b Board) Clone() Board {
	clone := make(Board, len(b))
	for y, row := range b {
		clone[y] = make([]Cell, len(row))
		copy(clone[y], row)
	}
	return clone
}

// IsValidMove 判断形状放在pos处是否合法
// 越界（左右出界或超过底部）及与已有方块重叠均为非法
// y<0的格子视为空（出生缓冲允许），不参与重叠判断
func IsValidMove(board Board, shape Shape, pos Position) bool {
	for dy, row := range shape {
		for dx, cell := range row {
			if cell == 0 {
				continue
			}

			x := pos.X + dx
			y := pos.Y + dy

			if x < 0 || x >= BoardWidth {
				return false
			}
			if y >= BoardHeight {
				return false
			}
			// 顶部边界之上永远视为空
			if y < 0 {
				continue
			}
			if board[y][x] != EmptyCell {
				return false
			}
		}
	}
	return true
}

// PlacePiece 把形状固定到棋盘上，返回新棋盘，不修改输入
// y<0的格子直接丢弃，出生时的合法性检查不会破坏棋盘状态
func PlacePiece(board Board, shape Shape, pos Position, color Cell) Board {
	result := board.Clone()

	for dy, row := range shape {
		for dx, cell := range row {
			if cell == 0 {
				continue
			}

			x := pos.X + dx
			y := pos.Y + dy

			if y < 0 || y >= BoardHeight || x < 0 || x >= BoardWidth {
				continue
			}
			result[y][x] = color
		}
	}

	return result
}

// FindCompletedLines 查找可消除的行号
// 整行非空且不含垃圾格才算满行，垃圾行不能被"顺带"消掉
func FindCompletedLines(board Board) []int {
	var lines []int

	for y, row := range board {
		full := true
		for _, cell := range row {
			if cell == EmptyCell || cell == PenaltyCell {
				full = false
				break
			}
		}
		if full {
			lines = append(lines, y)
		}
	}

	return lines
}

// ClearLines 消除指定行，顶部补等量空行，返回新棋盘
func ClearLines(board Board, lines []int) Board {
	if len(lines) == 0 {
		return board.Clone()
	}

	toClear := make(map[int]bool, len(lines))
	for _, y := range lines {
		toClear[y] = true
	}

	result := make(Board, 0, BoardHeight)
	for y, row := range board {
		if toClear[y] {
			continue
		}
		kept := make([]Cell, len(row))
		copy(kept, row)
		result = append(result, kept)
	}

	// 顶部补空行
	for len(result) < BoardHeight {
		result = append([]([]Cell){make([]Cell, BoardWidth)}, result...)
	}

	return result
}

// AddPenaltyLines 底部注入n行垃圾行，已有行整体上移，顶出边界的行丢弃
// 被"埋"出顶部的一方会在下一次IsGameOver检查中判负
func AddPenaltyLines(board Board, n int) Board {
	if n <= 0 {
		return board.Clone()
	}
	if n > BoardHeight {
		n = BoardHeight
	}

	result := make(Board, 0, BoardHeight)
	for y := n; y < BoardHeight; y++ {
		kept := make([]Cell, len(board[y]))
		copy(kept, board[y])
		result = append(result, kept)
	}

	for i := 0; i < n; i++ {
		penalty := make([]Cell, BoardWidth)
		for x := range penalty {
			penalty[x] = PenaltyCell
		}
		result = append(result, penalty)
	}

	return result
}

// IsGameOver 棋盘是否已经顶满
// 出生缓冲区（第0/1行）出现任何方块即判定结束
func IsGameOver(board Board) bool {
	for y := 0; y < SpawnBufferRows && y < len(board); y++ {
		for _, cell := range board[y] {
			if cell != EmptyCell {
				return true
			}
		}
	}
	return false
}

// scoreTable 消行基础得分表
var scoreTable = map[int]int{
	1: 100,
	2: 300,
	3: 500,
	4: 800,
}

// CalculateScore 计算消行得分：基础分×(等级+1)
// 0行或超过4行（不可能出现）得0分
func CalculateScore(linesCleared, level int) int {
	base, ok := scoreTable[linesCleared]
	if !ok {
		return 0
	}
	return base * (level + 1)
}

// DropSpeed 当前等级的下落间隔（毫秒），下限50
func DropSpeed(level int) int {
	speed := 1000 - level*50
	if speed < 50 {
		return 50
	}
	return speed
}
