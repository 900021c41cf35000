package tetris

import "math/rand"

// DefaultSequenceLength 默认共享序列长度
const DefaultSequenceLength = 100

// GenerateSequence 生成长度为n的方块序列
// 每个位置在七种方块里独立均匀抽取，不做bag公平性保证，同种连出是正常现象
// 每个房间创建时生成一次，两名玩家共享同一份，保证双方"手气"完全一致
func GenerateSequence(n int, rng *rand.Rand) []PieceType {
	if n <= 0 {
		n = DefaultSequenceLength
	}

	seq := make([]PieceType, n)
	for i := range seq {
		if rng != nil {
			seq[i] = PieceTypes[rng.Intn(len(PieceTypes))]
		} else {
			seq[i] = PieceTypes[rand.Intn(len(PieceTypes))]
		}
	}
	return seq
}
