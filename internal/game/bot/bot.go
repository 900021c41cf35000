// Package bot 实现基于特征打分的落点搜索机器人
// 只考虑垂直下落可达的落点，不搜索塞入式操作和踢墙
package bot

import (
	"github.com/wfunc/block-battle/internal/game/tetris"
)

// Difficulty 机器人难度档位
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Weights 落点评估的线性权重
// 七项特征：落点高度、消行数、行转换、列转换、空洞数、井深总和、最大堆高
type Weights struct {
	LandingHeight     float64
	LinesCleared      float64
	RowTransitions    float64
	ColumnTransitions float64
	Holes             float64
	WellSum           float64
	MaxHeight         float64
}

// tierWeights 各难度档位的权重，档位之间只有堆高厌恶程度不同
var tierWeights = map[Difficulty]Weights{
	DifficultyEasy: {
		LandingHeight:     -4.5,
		LinesCleared:      3.42,
		RowTransitions:    -3.22,
		ColumnTransitions: -9.35,
		Holes:             -7.9,
		WellSum:           -3.39,
		MaxHeight:         -0.5,
	},
	DifficultyMedium: {
		LandingHeight:     -4.5,
		LinesCleared:      3.42,
		RowTransitions:    -3.22,
		ColumnTransitions: -9.35,
		Holes:             -7.9,
		WellSum:           -3.39,
		MaxHeight:         -1.5,
	},
	DifficultyHard: {
		LandingHeight:     -4.5,
		LinesCleared:      3.42,
		RowTransitions:    -3.22,
		ColumnTransitions: -9.35,
		Holes:             -7.9,
		WellSum:           -3.39,
		MaxHeight:         -3.0,
	},
}

// Placement 一个候选落点
type Placement struct {
	Rotation int             // 顺时针旋转次数 0-3
	X        int             // 水平位置
	Y        int             // 最终落点Y
	Shape    tetris.Shape    // 旋转后的形状
	Score    float64         // 评估得分
	Board    tetris.Board    // 落子并消行后的棋盘
	Lines    int             // 本次消行数
}

// Bot 落点搜索机器人
type Bot struct {
	weights Weights
}

// New 创建指定难度的机器人，未知难度回退到medium
func New(difficulty Difficulty) *Bot {
	w, ok := tierWeights[difficulty]
	if !ok {
		w = tierWeights[DifficultyMedium]
	}
	return &Bot{weights: w}
}

// BestPlacement 返回得分最高的落点
// 按(旋转,再x)固定顺序遍历，同分取先找到的，结果确定；无合法落点返回nil
func (b *Bot) BestPlacement(board tetris.Board, piece tetris.PieceType) *Placement {
	var best *Placement

	shape := tetris.ShapeOf(piece)
	if shape == nil {
		return nil
	}
	color := tetris.ColorOf(piece)

	for rotation := 0; rotation < 4; rotation++ {
		if rotation > 0 {
			shape = tetris.Rotate(shape)
		}

		width := 0
		if len(shape) > 0 {
			width = len(shape[0])
		}

		for x := 0; x <= tetris.BoardWidth-width; x++ {
			y := dropY(board, shape, x)
			if y == noDrop {
				continue
			}

			placed := tetris.PlacePiece(board, shape, tetris.Position{X: x, Y: y}, color)
			lines := tetris.FindCompletedLines(placed)
			after := tetris.ClearLines(placed, lines)

			score := b.evaluate(placed, after, shape, y, len(lines))
			if best == nil || score > best.Score {
				best = &Placement{
					Rotation: rotation,
					X:        x,
					Y:        y,
					Shape:    shape,
					Score:    score,
					Board:    after,
					Lines:    len(lines),
				}
			}
		}
	}

	return best
}

const noDrop = -1000

// dropY 从顶部垂直下落能到达的最终Y，不可达返回noDrop
func dropY(board tetris.Board, shape tetris.Shape, x int) int {
	start := -len(shape)
	if !tetris.IsValidMove(board, shape, tetris.Position{X: x, Y: start}) {
		return noDrop
	}

	y := start
	for tetris.IsValidMove(board, shape, tetris.Position{X: x, Y: y + 1}) {
		y++
	}
	return y
}

// evaluate 七项特征的线性组合
// placed为消行前棋盘（用于落点高度），after为消行后棋盘（用于剩余特征）
func (b *Bot) evaluate(placed, after tetris.Board, shape tetris.Shape, y, lines int) float64 {
	landing := float64(tetris.BoardHeight - (y + len(shape)))

	return b.weights.LandingHeight*landing +
		b.weights.LinesCleared*float64(lines) +
		b.weights.RowTransitions*float64(rowTransitions(after)) +
		b.weights.ColumnTransitions*float64(columnTransitions(after)) +
		b.weights.Holes*float64(countHoles(after)) +
		b.weights.WellSum*float64(wellSum(after)) +
		b.weights.MaxHeight*float64(maxHeight(after))
}

// rowTransitions 每行内空/实交替次数，左右墙视为实心
func rowTransitions(board tetris.Board) int {
	total := 0
	for _, row := range board {
		prev := true // 左墙
		for _, cell := range row {
			filled := cell != tetris.EmptyCell
			if filled != prev {
				total++
			}
			prev = filled
		}
		if !prev { // 右墙
			total++
		}
	}
	return total
}

// columnTransitions 每列内空/实交替次数，底面视为实心
func columnTransitions(board tetris.Board) int {
	total := 0
	for x := 0; x < tetris.BoardWidth; x++ {
		prev := false // 顶部视为空
		for y := 0; y < tetris.BoardHeight; y++ {
			filled := board[y][x] != tetris.EmptyCell
			if filled != prev {
				total++
			}
			prev = filled
		}
		if !prev { // 底面
			total++
		}
	}
	return total
}

// countHoles 被方块盖住的空格数
func countHoles(board tetris.Board) int {
	holes := 0
	for x := 0; x < tetris.BoardWidth; x++ {
		covered := false
		for y := 0; y < tetris.BoardHeight; y++ {
			if board[y][x] != tetris.EmptyCell {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}

// wellSum 井深总和：两侧都高于自身的空列深度累加
func wellSum(board tetris.Board) int {
	sum := 0
	for x := 0; x < tetris.BoardWidth; x++ {
		for y := 0; y < tetris.BoardHeight; y++ {
			if board[y][x] != tetris.EmptyCell {
				break
			}
			leftWall := x == 0 || board[y][x-1] != tetris.EmptyCell
			rightWall := x == tetris.BoardWidth-1 || board[y][x+1] != tetris.EmptyCell
			if leftWall && rightWall {
				sum++
			}
		}
	}
	return sum
}

// maxHeight 最高列的高度
func maxHeight(board tetris.Board) int {
	for y := 0; y < tetris.BoardHeight; y++ {
		for x := 0; x < tetris.BoardWidth; x++ {
			if board[y][x] != tetris.EmptyCell {
				return tetris.BoardHeight - y
			}
		}
	}
	return 0
}
