package stock

import (
	"reflect"
	"testing"

	"github.com/vebops/store/internal/entity"
)

func mat(id, code string) *entity.Material {
	return &entity.Material{ID: id, Code: code, Name: "Material " + code, Unit: "pcs"}
}

func allocation(projectID, materialID, code string, qty float64) entity.BomLine {
	return entity.BomLine{
		ProjectID:  projectID,
		MaterialID: materialID,
		Quantity:   qty,
		Material:   mat(materialID, code),
	}
}

func inward(projectID string, lines ...entity.InwardLine) entity.InwardRecord {
	return entity.InwardRecord{ProjectID: projectID, Lines: lines}
}

func outward(projectID string, lines ...entity.OutwardLine) entity.OutwardRegister {
	return entity.OutwardRegister{ProjectID: projectID, Lines: lines}
}

func transfer(fromProjectID, toProjectID string, lines ...entity.TransferLine) entity.TransferRecord {
	return entity.TransferRecord{FromProjectID: fromProjectID, ToProjectID: toProjectID, Lines: lines}
}

// TestReconcileScenario walks the allocation → inward → outward → transfer
// sequence and checks the composite row after each step.
func TestReconcileScenario(t *testing.T) {
	allocations := []entity.BomLine{allocation("p1", "m10", "MAT-010", 100)}

	// Inward 50/50
	inwards := []entity.InwardRecord{
		inward("p1", entity.InwardLine{MaterialID: "m10", OrderedQty: 50, ReceivedQty: 50}),
	}
	rows := Reconcile("p1", allocations, inwards, nil, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.AllocatedQty != 100 || row.OrderedQty != 50 || row.ReceivedQty != 50 || row.BalanceQty != 50 {
		t.Fatalf("after inward: unexpected row %+v", row)
	}

	// Outward 20
	outwards := []entity.OutwardRegister{
		outward("p1", entity.OutwardLine{MaterialID: "m10", IssueQty: 20}),
	}
	row = Reconcile("p1", allocations, inwards, outwards, nil)[0]
	if row.IssuedQty != 20 || row.BalanceQty != 30 {
		t.Fatalf("after outward: unexpected row %+v", row)
	}

	// Transfer 10 from p1 to p2
	transfers := []entity.TransferRecord{
		transfer("p1", "p2", entity.TransferLine{MaterialID: "m10", TransferQty: 10}),
	}
	row = Reconcile("p1", allocations, inwards, outwards, transfers)[0]
	if row.TransferredOutQty != 10 || row.BalanceQty != 20 {
		t.Fatalf("after transfer (source): unexpected row %+v", row)
	}

	p2Allocations := []entity.BomLine{allocation("p2", "m10", "MAT-010", 40)}
	p2Row := Reconcile("p2", p2Allocations, nil, nil, transfers)[0]
	if p2Row.TransferredInQty != 10 || p2Row.BalanceQty != 10 {
		t.Fatalf("after transfer (destination): unexpected row %+v", p2Row)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	allocations := []entity.BomLine{allocation("p1", "m1", "A-001", 10)}
	inwards := []entity.InwardRecord{
		inward("p1", entity.InwardLine{MaterialID: "m1", ReceivedQty: 5}),
	}
	outwards := []entity.OutwardRegister{
		outward("p1", entity.OutwardLine{MaterialID: "m1", IssueQty: 8}),
	}
	row := Reconcile("p1", allocations, inwards, outwards, nil)[0]
	if row.BalanceQty != 0 {
		t.Fatalf("expected clamped balance 0, got %v", row.BalanceQty)
	}
	if row.IssuedQty != 8 {
		t.Fatalf("clamping must not rewrite issued totals, got %v", row.IssuedQty)
	}
}

func TestReconcileIsPure(t *testing.T) {
	allocations := []entity.BomLine{
		allocation("p1", "m1", "B-002", 10),
		allocation("p1", "m2", "A-001", 20),
	}
	inwards := []entity.InwardRecord{
		inward("p1",
			entity.InwardLine{MaterialID: "m1", OrderedQty: 4, ReceivedQty: 3},
			entity.InwardLine{MaterialID: "m2", ReceivedQty: 7},
		),
	}
	first := Reconcile("p1", allocations, inwards, nil, nil)
	second := Reconcile("p1", allocations, inwards, nil, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recomputation diverged:\n%+v\n%+v", first, second)
	}
}

func TestRowsOrderedByMaterialCode(t *testing.T) {
	allocations := []entity.BomLine{
		allocation("p1", "m1", "CEM-100", 1),
		allocation("p1", "m2", "agg-050", 1),
		allocation("p1", "m3", "BAR-200", 1),
	}
	rows := Reconcile("p1", allocations, nil, nil, nil)
	codes := []string{rows[0].MaterialCode, rows[1].MaterialCode, rows[2].MaterialCode}
	want := []string{"agg-050", "BAR-200", "CEM-100"}
	if !reflect.DeepEqual(codes, want) {
		t.Fatalf("expected order %v, got %v", want, codes)
	}
}

func TestUnallocatedMovementProducesNoRow(t *testing.T) {
	allocations := []entity.BomLine{allocation("p1", "m1", "A-001", 5)}
	inwards := []entity.InwardRecord{
		inward("p1", entity.InwardLine{MaterialID: "ghost", ReceivedQty: 50}),
	}
	rows := Reconcile("p1", allocations, inwards, nil, nil)
	if len(rows) != 1 || rows[0].MaterialID != "m1" {
		t.Fatalf("unallocated material must not surface as a row: %+v", rows)
	}

	totals := Accumulate("p1", inwards, nil, nil)
	orphans := Orphans(allocations, totals)
	if got := orphans["ghost"].ReceivedQty; got != 50 {
		t.Fatalf("orphaned activity should still be visible, got %v", got)
	}
}

func TestAvailableForOutwardExcludesZeroBalance(t *testing.T) {
	allocations := []entity.BomLine{
		allocation("p1", "m1", "A-001", 10),
		allocation("p1", "m2", "B-002", 10),
	}
	inwards := []entity.InwardRecord{
		inward("p1", entity.InwardLine{MaterialID: "m1", ReceivedQty: 6}),
	}
	rows := Reconcile("p1", allocations, inwards, nil, nil)

	pickable := AvailableForOutward(rows)
	if len(pickable) != 1 || pickable[0].MaterialID != "m1" {
		t.Fatalf("only positive-balance materials are issuable: %+v", pickable)
	}
	if got := len(AvailableForInward(rows)); got != 2 {
		t.Fatalf("every allocated material is inwardable, got %d", got)
	}
}

func TestMalformedRecordsContributeZero(t *testing.T) {
	allocations := []entity.BomLine{allocation("p1", "m1", "A-001", 10)}
	inwards := []entity.InwardRecord{
		{ProjectID: "p1"}, // no lines
		inward("p1", entity.InwardLine{MaterialID: "m1", OrderedQty: -5, ReceivedQty: 3}),
	}
	row := Reconcile("p1", allocations, inwards, nil, nil)[0]
	if row.OrderedQty != 0 || row.ReceivedQty != 3 {
		t.Fatalf("negative and missing lines must contribute zero: %+v", row)
	}
}

func TestSameProjectSiteTransferIsNetZero(t *testing.T) {
	allocations := []entity.BomLine{allocation("p1", "m1", "A-001", 10)}
	inwards := []entity.InwardRecord{
		inward("p1", entity.InwardLine{MaterialID: "m1", ReceivedQty: 6}),
	}
	transfers := []entity.TransferRecord{
		{FromProjectID: "p1", ToProjectID: "p1", FromSite: "Yard A", ToSite: "Yard B",
			Lines: []entity.TransferLine{{MaterialID: "m1", TransferQty: 4}}},
	}
	row := Reconcile("p1", allocations, inwards, nil, transfers)[0]
	if row.TransferredInQty != 4 || row.TransferredOutQty != 4 {
		t.Fatalf("both legs should be counted: %+v", row)
	}
	if row.BalanceQty != 6 {
		t.Fatalf("site move must not change the project balance, got %v", row.BalanceQty)
	}
}
