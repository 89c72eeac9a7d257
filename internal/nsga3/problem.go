package nsga3

import (
	"errors"
	"fmt"
)

// EvaluateFunc 把决策向量映射为目标向量和约束违反向量
// 约束违反量为 0 表示满足，大于 0 表示违反的幅度
// 必须是纯函数，引擎可能会并发调用
type EvaluateFunc func(x []float64) (objectives []float64, constraints []float64)

// Problem 在运行之前构造一次，运行期间不会被修改
type Problem struct {
	NumVariables   int
	NumObjectives  int
	NumConstraints int
	Lower          []float64
	Upper          []float64
	Evaluate       EvaluateFunc
}

func (p Problem) validate() error {
	if p.NumVariables <= 0 {
		return errors.New("决策变量数量必须大于 0")
	}
	if p.NumObjectives <= 0 {
		return errors.New("目标数量必须大于 0")
	}
	if p.NumConstraints < 0 {
		return errors.New("约束数量不能为负数")
	}
	if len(p.Lower) != p.NumVariables || len(p.Upper) != p.NumVariables {
		return fmt.Errorf("上下界的长度必须等于决策变量数量 %d", p.NumVariables)
	}
	for i := range p.Lower {
		if p.Lower[i] > p.Upper[i] {
			return fmt.Errorf("第 %d 个决策变量的下界大于上界", i)
		}
	}
	if p.Evaluate == nil {
		return errors.New("缺少评估函数")
	}
	return nil
}
