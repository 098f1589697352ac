package moderation

import (
	"context"

	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// DepartmentStats summarizes curated coverage of one department.
type DepartmentStats struct {
	Department    types.Department `json:"department"`
	ApprovedCount int              `json:"approved_count"`
	HasData       bool             `json:"has_data"`
}

// Summary aggregates approved candidates across departments.
type Summary struct {
	TotalApproved int                      `json:"total_approved"`
	ByDepartment  map[types.Department]int `json:"by_department"`
}

func (w *Workflow) DepartmentStats(ctx context.Context, department types.Department) DepartmentStats {
	n := len(w.ListApproved(ctx, department))
	return DepartmentStats{
		Department:    department,
		ApprovedCount: n,
		HasData:       n > 0,
	}
}

func (w *Workflow) Stats(ctx context.Context) Summary {
	all := w.ListAllApproved(ctx)
	summary := Summary{
		TotalApproved: len(all),
		ByDepartment:  make(map[types.Department]int),
	}
	for _, c := range all {
		summary.ByDepartment[c.Department]++
	}
	return summary
}
