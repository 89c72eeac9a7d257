package domain

// Category 同时用来表示收获工人的效率等级和地块的坡度等级
// 前端传入的是 0、1、2 三个整数
type Category int

const (
	CategoryLow    Category = 0
	CategoryMedium Category = 1
	CategoryHigh   Category = 2
)

func (c Category) Valid() bool {
	return c >= CategoryLow && c <= CategoryHigh
}

func (c Category) String() string {
	switch c {
	case CategoryLow:
		return "LOW"
	case CategoryMedium:
		return "MEDIUM"
	case CategoryHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}
