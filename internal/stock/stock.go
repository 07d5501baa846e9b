// Package stock 项目维度的物料对账：把BOM分配与出入库/调拨流水
// 折算成每个物料的汇总行。纯计算，无任何存储依赖。
package stock

import (
	"sort"

	"github.com/vebops/store/internal/entity"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Totals 某项目下单个物料的流水累计
type Totals struct {
	OrderedQty        float64
	ReceivedQty       float64
	IssuedQty         float64
	TransferredInQty  float64
	TransferredOutQty float64
}

// Balance 项目结存 = 收货 − 发料 − 调出 + 调入，下限为零。
func (t Totals) Balance() float64 {
	balance := t.ReceivedQty - t.IssuedQty - t.TransferredOutQty + t.TransferredInQty
	if balance < 0 {
		return 0
	}
	return balance
}

// Row 对账结果行：分配量 + 流水累计 + 结存
type Row struct {
	MaterialID   string
	MaterialCode string
	MaterialName string
	PartNo       string
	LineType     string
	Unit         string
	Category     string
	AllocatedQty float64
	Totals
	BalanceQty float64
}

// Accumulate 汇总触及指定项目的流水行。
// 调拨对源项目计为调出、对目标项目计为调入；同项目跨场地调拨两头都计。
// 缺失行列表的记录贡献为零；负数量按零处理。
func Accumulate(
	projectID string,
	inwards []entity.InwardRecord,
	outwards []entity.OutwardRegister,
	transfers []entity.TransferRecord,
) map[string]Totals {
	totals := make(map[string]Totals)

	for _, rec := range inwards {
		if rec.ProjectID != projectID {
			continue
		}
		for _, line := range rec.Lines {
			t := totals[line.MaterialID]
			t.OrderedQty += positive(line.OrderedQty)
			t.ReceivedQty += positive(line.ReceivedQty)
			totals[line.MaterialID] = t
		}
	}

	for _, reg := range outwards {
		if reg.ProjectID != projectID {
			continue
		}
		for _, line := range reg.Lines {
			t := totals[line.MaterialID]
			t.IssuedQty += positive(line.IssueQty)
			totals[line.MaterialID] = t
		}
	}

	for _, rec := range transfers {
		out := rec.FromProjectID == projectID
		in := rec.ToProjectID == projectID
		if !out && !in {
			continue
		}
		for _, line := range rec.Lines {
			t := totals[line.MaterialID]
			qty := positive(line.TransferQty)
			if out {
				t.TransferredOutQty += qty
			}
			if in {
				t.TransferredInQty += qty
			}
			totals[line.MaterialID] = t
		}
	}

	return totals
}

// Reconcile 按项目的BOM分配生成汇总行。分配集合是行的权威范围：
// 未分配物料的流水不产生行（可通过Orphans单独暴露）。
// 输出按物料编码升序（区域感知比较）。
func Reconcile(
	projectID string,
	allocations []entity.BomLine,
	inwards []entity.InwardRecord,
	outwards []entity.OutwardRegister,
	transfers []entity.TransferRecord,
) []Row {
	totals := Accumulate(projectID, inwards, outwards, transfers)
	rows := make([]Row, 0, len(allocations))

	for _, line := range allocations {
		if line.ProjectID != projectID {
			continue
		}
		row := Row{
			MaterialID:   line.MaterialID,
			AllocatedQty: line.Quantity,
			Totals:       totals[line.MaterialID],
		}
		if m := line.Material; m != nil {
			row.MaterialCode = m.Code
			row.MaterialName = m.Name
			row.PartNo = m.PartNo
			row.LineType = m.LineType
			row.Unit = m.Unit
			row.Category = m.Category
		}
		row.BalanceQty = row.Balance()
		rows = append(rows, row)
	}

	SortRows(rows)
	return rows
}

// Orphans 有流水但无分配的物料累计——数据质量信号，不是错误。
func Orphans(allocations []entity.BomLine, totals map[string]Totals) map[string]Totals {
	allocated := make(map[string]struct{}, len(allocations))
	for _, line := range allocations {
		allocated[line.MaterialID] = struct{}{}
	}
	orphans := make(map[string]Totals)
	for materialID, t := range totals {
		if _, ok := allocated[materialID]; !ok {
			orphans[materialID] = t
		}
	}
	return orphans
}

// AvailableForInward 可入库物料集：存在分配即可。
func AvailableForInward(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	out = append(out, rows...)
	return out
}

// AvailableForOutward 可出库/调拨物料集：结存必须为正。
func AvailableForOutward(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.BalanceQty > 0 {
			out = append(out, row)
		}
	}
	return out
}

// SortRows 按物料编码升序稳定排序
func SortRows(rows []Row) {
	c := collate.New(language.Und, collate.Loose)
	sort.SliceStable(rows, func(i, j int) bool {
		return c.CompareString(rows[i].MaterialCode, rows[j].MaterialCode) < 0
	})
}

func positive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
