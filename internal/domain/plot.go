package domain

// 不同坡度对工人效率的修正值，直接加到工人的效率上
var slopeAdjustments = map[Category]float64{
	CategoryLow:    3.4,
	CategoryMedium: 0,
	CategoryHigh:   -2.25,
}

// Plot 待收获的地块
type Plot struct {
	QuotaKg float64  `json:"quotaKg"`
	Slope   Category `json:"slope"`
}

func (p Plot) Adjustment() float64 {
	return slopeAdjustments[p.Slope]
}
