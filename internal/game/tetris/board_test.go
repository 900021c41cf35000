package tetris

import (
	"testing"
)

// fillRow 把指定行填满颜色方块
func fillRow(b Board, y int, c Cell) {
	for x := 0; x < BoardWidth; x++ {
		b[y][x] = c
	}
}

func TestNewBoard(t *testing.T) {
	board := NewBoard()

	if len(board) != BoardHeight {
		t.Fatalf("棋盘高度 = %d, 期望 %d", len(board), BoardHeight)
	}
	for y, row := range board {
		if len(row) != BoardWidth {
			t.Fatalf("第%d行宽度 = %d, 期望 %d", y, len(row), BoardWidth)
		}
		for x, cell := range row {
			if cell != EmptyCell {
				t.Errorf("新棋盘(%d,%d)非空", x, y)
			}
		}
	}
}

func TestIsValidMove(t *testing.T) {
	board := NewBoard()
	board[10][4] = 3 // 中间放一个障碍

	shape := ShapeOf(PieceO) // 2x2

	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"空白区域", Position{X: 0, Y: 0}, true},
		{"左侧出界", Position{X: -1, Y: 5}, false},
		{"右侧出界", Position{X: BoardWidth - 1, Y: 5}, false},
		{"底部出界", Position{X: 0, Y: BoardHeight - 1}, false},
		{"贴底合法", Position{X: 0, Y: BoardHeight - 2}, true},
		{"与已有方块重叠", Position{X: 4, Y: 9}, false},
		{"出生缓冲区之上视为空", Position{X: 0, Y: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidMove(board, shape, tt.pos); got != tt.want {
				t.Errorf("IsValidMove(%+v) = %v, 期望 %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestIsValidMove_NegativeYOverlap(t *testing.T) {
	// y<0的格子不参与重叠判断，但y>=0的部分仍然要检查
	board := NewBoard()
	board[0][0] = 1

	shape := ShapeOf(PieceI)
	shape = Rotate(shape) // 竖条 4x1

	if IsValidMove(board, shape, Position{X: 0, Y: -3}) {
		t.Error("竖条底部与第0行方块重叠,应当非法")
	}
	if !IsValidMove(board, shape, Position{X: 1, Y: -3}) {
		t.Error("相邻列无重叠,应当合法")
	}
}

func TestPlacePiece_DoesNotMutateInput(t *testing.T) {
	board := NewBoard()
	shape := ShapeOf(PieceT)

	result := PlacePiece(board, shape, Position{X: 3, Y: 10}, ColorOf(PieceT))

	// 输入棋盘必须保持纯净
	for y, row := range board {
		for x, cell := range row {
			if cell != EmptyCell {
				t.Fatalf("PlacePiece修改了输入棋盘(%d,%d)", x, y)
			}
		}
	}

	// 结果棋盘包含方块
	placed := 0
	for _, row := range result {
		for _, cell := range row {
			if cell == ColorOf(PieceT) {
				placed++
			}
		}
	}
	if placed != 4 {
		t.Errorf("落子后方块格数 = %d, 期望 4", placed)
	}
}

func TestPlacePiece_DropsNegativeRows(t *testing.T) {
	board := NewBoard()
	shape := ShapeOf(PieceO)

	// 方块一半在顶部边界之外
	result := PlacePiece(board, shape, Position{X: 0, Y: -1}, ColorOf(PieceO))

	placed := 0
	for _, row := range result {
		for _, cell := range row {
			if cell != EmptyCell {
				placed++
			}
		}
	}
	// 只有y=0的那一行落进棋盘
	if placed != 2 {
		t.Errorf("越界落子保留格数 = %d, 期望 2", placed)
	}
}

func TestFindCompletedLines(t *testing.T) {
	board := NewBoard()
	fillRow(board, 19, 1)
	fillRow(board, 18, 2)
	board[17][0] = 3 // 不满的行

	lines := FindCompletedLines(board)
	if len(lines) != 2 {
		t.Fatalf("满行数 = %d, 期望 2", len(lines))
	}
	if lines[0] != 18 || lines[1] != 19 {
		t.Errorf("满行 = %v, 期望 [18 19]", lines)
	}
}

func TestFindCompletedLines_PenaltyNeverClears(t *testing.T) {
	board := NewBoard()
	// 整行填满但混入一个垃圾格
	fillRow(board, 19, 1)
	board[19][5] = PenaltyCell
	// 纯垃圾行
	fillRow(board, 18, PenaltyCell)

	if lines := FindCompletedLines(board); len(lines) != 0 {
		t.Errorf("含垃圾格的行被判定可消除: %v", lines)
	}
}

func TestClearLines(t *testing.T) {
	board := NewBoard()
	board[17][3] = 5
	fillRow(board, 18, 1)
	fillRow(board, 19, 2)

	result := ClearLines(board, []int{18, 19})

	// 原有方块下移两行
	if result[19][3] != 5 {
		t.Errorf("消行后方块未下移到底部, result[19][3] = %d", result[19][3])
	}
	// 顶部补了空行
	for y := 0; y < 2; y++ {
		for x := 0; x < BoardWidth; x++ {
			if result[y][x] != EmptyCell {
				t.Errorf("顶部补行(%d,%d)非空", x, y)
			}
		}
	}
	if len(result) != BoardHeight {
		t.Errorf("消行后高度 = %d, 期望 %d", len(result), BoardHeight)
	}
}

func TestAddPenaltyLines(t *testing.T) {
	board := NewBoard()
	board[19][0] = 1

	result := AddPenaltyLines(board, 2)

	// 原底行上移两行
	if result[17][0] != 1 {
		t.Errorf("注入垃圾后原方块位置错误, result[17][0] = %d", result[17][0])
	}
	// 底部两行全部为垃圾格
	for y := 18; y < 20; y++ {
		for x := 0; x < BoardWidth; x++ {
			if result[y][x] != PenaltyCell {
				t.Fatalf("底部垃圾行(%d,%d) = %d", x, y, result[y][x])
			}
		}
	}
	if len(result) != BoardHeight {
		t.Errorf("注入垃圾后高度 = %d, 期望 %d", len(result), BoardHeight)
	}
}

func TestAddPenaltyLines_BuriesIntoGameOver(t *testing.T) {
	// 叠高+n超过height-2时注入垃圾必然顶满
	board := NewBoard()
	for y := 2; y < BoardHeight; y++ {
		board[y][0] = 1
	}

	if IsGameOver(board) {
		t.Fatal("注入前不应已经结束")
	}

	result := AddPenaltyLines(board, 1)
	if !IsGameOver(result) {
		t.Error("被垃圾行顶出缓冲区后应判定结束")
	}

	// 叠高不足时注入少量垃圾不会结束
	low := NewBoard()
	fillRow(low, 19, 1)
	if IsGameOver(AddPenaltyLines(low, 3)) {
		t.Error("叠高+垃圾未超过界限,不应结束")
	}
}

func TestIsGameOver(t *testing.T) {
	board := NewBoard()
	if IsGameOver(board) {
		t.Error("空棋盘不应结束")
	}

	board[1][5] = 4
	if !IsGameOver(board) {
		t.Error("第1行有方块应判定结束")
	}

	board2 := NewBoard()
	board2[0][0] = PenaltyCell
	if !IsGameOver(board2) {
		t.Error("第0行有垃圾格应判定结束")
	}

	board3 := NewBoard()
	board3[2][0] = 1
	if IsGameOver(board3) {
		t.Error("第2行有方块不应结束")
	}
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		lines, level, want int
	}{
		{1, 0, 100},
		{2, 0, 300},
		{3, 0, 500},
		{4, 0, 800},
		{4, 10, 8800},
		{2, 3, 1200},
		{0, 0, 0},
		{5, 0, 0},
		{-1, 0, 0},
	}

	for _, tt := range tests {
		if got := CalculateScore(tt.lines, tt.level); got != tt.want {
			t.Errorf("CalculateScore(%d, %d) = %d, 期望 %d",
				tt.lines, tt.level, got, tt.want)
		}
	}
}

func TestDropSpeed(t *testing.T) {
	if DropSpeed(0) != 1000 {
		t.Errorf("DropSpeed(0) = %d, 期望 1000", DropSpeed(0))
	}

	// 单调不增且下限50
	prev := DropSpeed(0)
	for level := 1; level <= 30; level++ {
		speed := DropSpeed(level)
		if speed > prev {
			t.Errorf("DropSpeed(%d)=%d 大于 DropSpeed(%d)=%d", level, speed, level-1, prev)
		}
		if speed < 50 {
			t.Errorf("DropSpeed(%d)=%d 低于下限50", level, speed)
		}
		prev = speed
	}
	if DropSpeed(100) != 50 {
		t.Errorf("DropSpeed(100) = %d, 期望 50", DropSpeed(100))
	}
}
