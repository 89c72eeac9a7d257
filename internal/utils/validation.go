package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
)

// ValidateAllocation 检查解码之后的排班表是否满足工时约束
// 解码时每个地块的小时数向零取整，所以总时长的下界需要放宽 plots 个小时
func ValidateAllocation(allocation domain.Allocation, workers, plots int, minWeekly, maxWeekly, maxPlot int) error {
	if len(allocation) != workers {
		return fmt.Errorf("排班表中有 %d 个工人，应为 %d 个", len(allocation), workers)
	}

	for _, w := range allocation {
		if len(w.Plots) != plots {
			return fmt.Errorf("%s 的地块数量为 %d，应为 %d 个", w.Name, len(w.Plots), plots)
		}

		total := 0
		for _, p := range w.Plots {
			if p.Hours < 0 || p.Hours > maxPlot {
				return fmt.Errorf("%s 在 %s 的工作时长 %d 超出范围", w.Name, p.Name, p.Hours)
			}
			total += p.Hours
		}

		if total > maxWeekly {
			return fmt.Errorf("%s 的总工作时长 %d 超过 %d 小时", w.Name, total, maxWeekly)
		}
		if total <= minWeekly-plots {
			return fmt.Errorf("%s 的总工作时长 %d 不足 %d 小时", w.Name, total, minWeekly)
		}
	}

	return nil
}
