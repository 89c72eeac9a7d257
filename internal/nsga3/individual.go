package nsga3

// Individual 种群中的一个个体
// 评估完成之后 Variables、Objectives、Constraints 不会再被修改
// Rank、RefPoint、NicheDistance 是环境选择时写在浅拷贝上的标注
type Individual struct {
	Variables   []float64
	Objectives  []float64
	Constraints []float64
	Violation   float64 // 所有约束违反量之和
	Feasible    bool

	Rank          int
	RefPoint      int // 关联的参考点下标，-1 表示尚未关联
	NicheDistance float64
}

func newIndividual(x []float64, objectives, constraints []float64) *Individual {
	violation := 0.0
	for _, c := range constraints {
		if c > 0 {
			violation += c
		}
	}

	return &Individual{
		Variables:   x,
		Objectives:  objectives,
		Constraints: constraints,
		Violation:   violation,
		Feasible:    violation == 0,
		RefPoint:    -1,
	}
}

// annotated 返回一个浅拷贝，用于写入本代的选择标注
func (ind *Individual) annotated() *Individual {
	c := *ind
	return &c
}

// Feasible 过滤出可行个体，顺序保持不变
func Feasible(population []*Individual) []*Individual {
	res := make([]*Individual, 0, len(population))
	for _, ind := range population {
		if ind.Feasible {
			res = append(res, ind)
		}
	}
	return res
}
