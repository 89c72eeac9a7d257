package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// problemFile 本地排班使用的问题描述文件
//
//	productivity: [2, 1, 0]
//	slopes: [0, 2]
//	quotas: [1800, 900]
type problemFile struct {
	Productivity []domain.Category `yaml:"productivity"`
	Slopes       []domain.Category `yaml:"slopes"`
	Quotas       []float64         `yaml:"quotas"`
	Seed         uint64            `yaml:"seed"`
}

func loadProblem(path string) (*problemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := &problemFile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("无法解析问题文件: %w", err)
	}

	if len(p.Productivity) == 0 || len(p.Slopes) == 0 {
		return nil, errors.New("问题文件中缺少 productivity 或 slopes")
	}

	return p, nil
}
