package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/vebops/store/internal/testutil"
)

func registerInward(t *testing.T, env *testutil.TestEnv, token, projectID, materialID string, ordered, received float64) {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": projectID,
		"lines": []map[string]interface{}{
			{"materialId": materialID, "orderedQty": ordered, "receivedQty": received},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for inward, got %d: %s", w.Code, w.Body.String())
	}
}

func projectRow(t *testing.T, env *testutil.TestEnv, token, projectID, materialID string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/bom/projects/"+projectID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for bom rows, got %d: %s", w.Code, w.Body.String())
	}
	for _, row := range testutil.ParseListResponse(w) {
		if row["materialId"] == materialID {
			return row
		}
	}
	t.Fatalf("Material %s not found in project rows", materialID)
	return nil
}

func TestInventoryCodes(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/inventory/codes", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	codes := testutil.ParseResponse(w)
	datePart := time.Now().Format("20060102")
	if codes["inwardCode"] != fmt.Sprintf("INW-%s-001", datePart) {
		t.Errorf("Unexpected inward code: %v", codes["inwardCode"])
	}
	if !strings.HasPrefix(codes["outwardCode"].(string), "OUT-") {
		t.Errorf("Unexpected outward code: %v", codes["outwardCode"])
	}
	if !strings.HasPrefix(codes["transferCode"].(string), "TRF-") {
		t.Errorf("Unexpected transfer code: %v", codes["transferCode"])
	}
}

func TestInwardRequiresAllocation(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "orderedQty": 10, "receivedQty": 10},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Material Copper Cable is not allocated to this project" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestInwardAllocationCap(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)

	registerInward(t, env, token, project.ID, material.ID, 60, 50)

	// cumulative received 50+60 would exceed the 100 allocation
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "orderedQty": 0, "receivedQty": 60},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Received quantity for material Copper Cable exceeds the allocated requirement" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	row := projectRow(t, env, token, project.ID, material.ID)
	if row["receivedQty"].(float64) != 50 {
		t.Errorf("Expected receivedQty 50, got %v", row["receivedQty"])
	}
	if row["balanceQty"].(float64) != 50 {
		t.Errorf("Expected balanceQty 50, got %v", row["balanceQty"])
	}
}

func TestInwardCapSpansLinesInOneRequest(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)

	// two lines of 60 each pass individually but not together
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "receivedQty": 60},
			{"materialId": material.ID, "receivedQty": 60},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// whole submission rejected, nothing applied
	row := projectRow(t, env, token, project.ID, material.ID)
	if row["receivedQty"].(float64) != 0 {
		t.Errorf("Expected receivedQty 0 after rejected submission, got %v", row["receivedQty"])
	}
}

func TestOutwardBalanceGateAndRegisterReuse(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)
	registerInward(t, env, token, project.ID, material.ID, 80, 80)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"issueTo":   "Site crew",
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 30},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	first := testutil.ParseResponse(w)
	if first["status"] != "OPEN" {
		t.Errorf("Expected OPEN register, got %v", first["status"])
	}

	// same project, same day: lines append to the existing open register
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 20},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	second := testutil.ParseResponse(w)
	if second["id"] != first["id"] {
		t.Errorf("Expected same register id, got %v and %v", first["id"], second["id"])
	}
	if len(second["lines"].([]interface{})) != 2 {
		t.Errorf("Expected 2 lines after append, got %d", len(second["lines"].([]interface{})))
	}

	// project balance is 80-50=30; issuing 40 must fail
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 40},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Issue quantity for material Copper Cable exceeds the available balance" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	row := projectRow(t, env, token, project.ID, material.ID)
	if row["issuedQty"].(float64) != 50 {
		t.Errorf("Expected issuedQty 50, got %v", row["issuedQty"])
	}
	if row["balanceQty"].(float64) != 30 {
		t.Errorf("Expected balanceQty 30, got %v", row["balanceQty"])
	}
}

func TestOutwardWithoutBalance(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 5},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "No balance available for material Copper Cable in project Plant Alpha" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestOutwardCloseAndReject(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)
	registerInward(t, env, token, project.ID, material.ID, 80, 80)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 10},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	register := testutil.ParseResponse(w)
	registerID := register["id"].(string)

	// close the register
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/outwards/"+registerID, map[string]interface{}{
		"status": "CLOSED",
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 10},
		},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	closed := testutil.ParseResponse(w)
	if closed["status"] != "CLOSED" {
		t.Errorf("Expected CLOSED, got %v", closed["status"])
	}
	if closed["closeDate"] == nil || closed["closeDate"] == "" {
		t.Error("Expected closeDate to be set")
	}

	// same-day submission against a closed register is rejected
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 5},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Outward register already closed for this date" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	// closed registers cannot be edited
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/outwards/"+registerID, map[string]interface{}{
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 7},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["message"] != "Closed registers cannot be edited" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestOutwardUpdateAdjustsAggregates(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)
	registerInward(t, env, token, project.ID, material.ID, 80, 80)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/outwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 30},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	registerID := testutil.ParseResponse(w)["id"].(string)

	// lower the issue to 20; issued total must drop by 10
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/outwards/"+registerID, map[string]interface{}{
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 20},
		},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	row := projectRow(t, env, token, project.ID, material.ID)
	if row["issuedQty"].(float64) != 20 {
		t.Errorf("Expected issuedQty 20, got %v", row["issuedQty"])
	}
	if row["balanceQty"].(float64) != 60 {
		t.Errorf("Expected balanceQty 60, got %v", row["balanceQty"])
	}

	// raising past the project balance fails
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/outwards/"+registerID, map[string]interface{}{
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "issueQty": 90},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTransferSiteRules(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)
	registerInward(t, env, token, project.ID, material.ID, 50, 50)

	// same project without sites
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/transfers", map[string]interface{}{
		"fromProjectId": project.ID,
		"toProjectId":   project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "transferQty": 10},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Provide both source and destination sites when transferring within a project" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	// same project, same site (case-insensitive)
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/transfers", map[string]interface{}{
		"fromProjectId": project.ID,
		"toProjectId":   project.ID,
		"fromSite":      "Yard A",
		"toSite":        "yard a",
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "transferQty": 10},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["message"] != "Cannot transfer within the same project site" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	// same project, distinct sites is allowed
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/transfers", map[string]interface{}{
		"fromProjectId": project.ID,
		"toProjectId":   project.ID,
		"fromSite":      "Yard A",
		"toSite":        "Yard B",
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "transferQty": 10},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTransferBalanceGate(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	source := env.SeedProject(t, "P-001", "Plant Alpha")
	dest := env.SeedProject(t, "P-002", "Plant Beta")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, source.ID, material.ID, 100)
	registerInward(t, env, token, source.ID, material.ID, 40, 40)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/transfers", map[string]interface{}{
		"fromProjectId": source.ID,
		"toProjectId":   dest.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "transferQty": 50},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Transfer quantity for material Copper Cable exceeds the available balance" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/transfers", map[string]interface{}{
		"fromProjectId": source.ID,
		"toProjectId":   dest.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "transferQty": 25},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	transfer := testutil.ParseResponse(w)
	if !strings.HasPrefix(transfer["code"].(string), "TRF-") {
		t.Errorf("Unexpected transfer code: %v", transfer["code"])
	}

	// source balance drops, destination gains the transferred-in quantity
	row := projectRow(t, env, token, source.ID, material.ID)
	if row["balanceQty"].(float64) != 15 {
		t.Errorf("Expected source balance 15, got %v", row["balanceQty"])
	}
	if row["transferredOutQty"].(float64) != 25 {
		t.Errorf("Expected transferredOutQty 25, got %v", row["transferredOutQty"])
	}

	// global material stock is untouched by transfers
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/materials", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	materials := testutil.ParseListResponse(w)
	if materials[0]["balanceQty"].(float64) != 40 {
		t.Errorf("Expected global balance 40, got %v", materials[0]["balanceQty"])
	}
}

func TestInwardEmptyLines(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)

	// zero-quantity lines are dropped; nothing left to register
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": material.ID, "orderedQty": 0, "receivedQty": 0},
		},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "At least one material line is required" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}
