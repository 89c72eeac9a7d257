package nsga3

import (
	"slices"

	"gonum.org/v1/gonum/stat/combin"
)

// ReferencePoint 目标空间单位单纯形上的一个方向
type ReferencePoint []float64

// DasDennis 使用 Das-Dennis 系统采样生成 m 维单纯形上坐标为 k/p 的全部点
// 点的数量为 C(m+p-1, p)，生成顺序固定
func DasDennis(m, p int) []ReferencePoint {
	if m <= 0 || p <= 0 {
		return nil
	}

	points := make([]ReferencePoint, 0, combin.Binomial(m+p-1, p))
	current := make([]float64, m)

	var recurse func(index, left int)
	recurse = func(index, left int) {
		if index == m-1 {
			current[index] = float64(left) / float64(p)
			points = append(points, slices.Clone(current))
			return
		}
		for k := 0; k <= left; k++ {
			current[index] = float64(k) / float64(p)
			recurse(index+1, left-k)
		}
	}
	recurse(0, p)

	return points
}

// GenerateReferencePoints 生成外层参考点，inner > 0 时再追加一层向中心收缩的内层参考点
func GenerateReferencePoints(m, outer, inner int) []ReferencePoint {
	points := DasDennis(m, outer)

	for _, p := range DasDennis(m, inner) {
		shrunk := make(ReferencePoint, m)
		for i := range p {
			shrunk[i] = 0.5*p[i] + 0.5/float64(m)
		}
		points = append(points, shrunk)
	}

	return points
}
