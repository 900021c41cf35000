package tetris

// PieceType 方块类型，七种标准四格方块
type PieceType string

const (
	PieceI PieceType = "I"
	PieceO PieceType = "O"
	PieceT PieceType = "T"
	PieceS PieceType = "S"
	PieceZ PieceType = "Z"
	PieceJ PieceType = "J"
	PieceL PieceType = "L"
)

// PieceTypes 全部方块类型，顺序固定
var PieceTypes = []PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

// Shape 形状矩阵，1为实心格
type Shape [][]int

// pieceShapes 各方块的初始朝向
var pieceShapes = map[PieceType]Shape{
	PieceI: {
		{1, 1, 1, 1},
	},
	PieceO: {
		{1, 1},
		{1, 1},
	},
	PieceT: {
		{0, 1, 0},
		{1, 1, 1},
	},
	PieceS: {
		{0, 1, 1},
		{1, 1, 0},
	},
	PieceZ: {
		{1, 1, 0},
		{0, 1, 1},
	},
	PieceJ: {
		{1, 0, 0},
		{1, 1, 1},
	},
	PieceL: {
		{0, 0, 1},
		{1, 1, 1},
	},
}

// pieceColors 各方块的颜色标记
var pieceColors = map[PieceType]Cell{
	PieceI: 1,
	PieceO: 2,
	PieceT: 3,
	PieceS: 4,
	PieceZ: 5,
	PieceJ: 6,
	PieceL: 7,
}

// ShapeOf 返回方块初始形状的拷贝
func ShapeOf(t PieceType) Shape {
	src, ok := pieceShapes[t]
	if !ok {
		return nil
	}
	shape := make(Shape, len(src))
	for i, row := range src {
		shape[i] = make([]int, len(row))
		copy(shape[i], row)
	}
	return shape
}

// ColorOf 返回方块的颜色标记
func ColorOf(t PieceType) Cell {
	return pieceColors[t]
}

// Rotate 顺时针旋转90度：转置后每行反转，返回新矩阵
func Rotate(shape Shape) Shape {
	if len(shape) == 0 {
		return Shape{}
	}

	rows := len(shape)
	cols := len(shape[0])

	rotated := make(Shape, cols)
	for y := 0; y < cols; y++ {
		rotated[y] = make([]int, rows)
		for x := 0; x < rows; x++ {
			rotated[y][x] = shape[rows-1-x][y]
		}
	}

	return rotated
}
