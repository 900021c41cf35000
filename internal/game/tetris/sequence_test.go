package tetris

import (
	"math/rand"
	"testing"
)

func TestGenerateSequence(t *testing.T) {
	seq := GenerateSequence(100, nil)

	if len(seq) != 100 {
		t.Fatalf("序列长度 = %d, 期望 100", len(seq))
	}

	valid := make(map[PieceType]bool, len(PieceTypes))
	for _, pt := range PieceTypes {
		valid[pt] = true
	}
	for i, pt := range seq {
		if !valid[pt] {
			t.Errorf("序列第%d个元素非法: %q", i, pt)
		}
	}
}

func TestGenerateSequence_DefaultLength(t *testing.T) {
	if got := len(GenerateSequence(0, nil)); got != DefaultSequenceLength {
		t.Errorf("长度<=0时序列长度 = %d, 期望 %d", got, DefaultSequenceLength)
	}
	if got := len(GenerateSequence(-5, nil)); got != DefaultSequenceLength {
		t.Errorf("负长度时序列长度 = %d, 期望 %d", got, DefaultSequenceLength)
	}
}

func TestGenerateSequence_SeededDeterministic(t *testing.T) {
	a := GenerateSequence(50, rand.New(rand.NewSource(42)))
	b := GenerateSequence(50, rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("相同种子第%d个元素不一致: %s vs %s", i, a[i], b[i])
		}
	}
}
