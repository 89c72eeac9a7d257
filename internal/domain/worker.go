package domain

import "math/rand/v2"

// 效率等级对应的抽样区间（左闭右开），抽到的整数除以 100 即为工人的效率
var productivityBands = map[Category][2]int{
	CategoryLow:    {333, 1111},
	CategoryMedium: {1122, 2777},
	CategoryHigh:   {2788, 4000},
}

// Worker 收获工人，Rate 的单位为 千克/小时，创建之后不再变化
type Worker struct {
	Category Category `json:"category"`
	Rate     float64  `json:"rate"`
}

// NewWorker 根据效率等级随机生成工人，调用者必须保证 category 合法
func NewWorker(category Category, rng *rand.Rand) Worker {
	band := productivityBands[category]
	sampled := band[0] + rng.IntN(band[1]-band[0])
	return Worker{
		Category: category,
		Rate:     float64(sampled) / 100,
	}
}
