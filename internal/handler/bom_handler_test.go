package handler_test

import (
	"net/http"
	"testing"

	"github.com/vebops/store/internal/testutil"
)

func TestBomAssignAndRequiredQtySync(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/bom/projects/"+project.ID+"/materials",
		map[string]interface{}{"materialId": material.ID, "quantity": 120}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	row := testutil.ParseResponse(w)
	if row["allocatedQty"].(float64) != 120 {
		t.Errorf("Expected allocatedQty 120, got %v", row["allocatedQty"])
	}

	// global requirement follows the allocation
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/materials", nil, token)
	materials := testutil.ParseListResponse(w)
	if materials[0]["requiredQty"].(float64) != 120 {
		t.Errorf("Expected requiredQty 120, got %v", materials[0]["requiredQty"])
	}

	// duplicate allocation conflicts
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/bom/projects/"+project.ID+"/materials",
		map[string]interface{}{"materialId": material.ID, "quantity": 10}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Material Copper Cable is already allocated to this project" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestBomUpdateQuantity(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/bom/projects/"+project.ID+"/materials",
		map[string]interface{}{"materialId": material.ID, "quantity": 100}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/bom/projects/"+project.ID+"/materials/"+material.ID,
		map[string]interface{}{"quantity": 70}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	row := testutil.ParseResponse(w)
	if row["allocatedQty"].(float64) != 70 {
		t.Errorf("Expected allocatedQty 70, got %v", row["allocatedQty"])
	}

	// requiredQty reflects the delta
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/materials", nil, token)
	materials := testutil.ParseListResponse(w)
	if materials[0]["requiredQty"].(float64) != 70 {
		t.Errorf("Expected requiredQty 70, got %v", materials[0]["requiredQty"])
	}

	// missing quantity is rejected
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/bom/projects/"+project.ID+"/materials/"+material.ID,
		map[string]interface{}{}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBomRemove(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 50)

	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/bom/projects/"+project.ID+"/materials/"+material.ID, nil, token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/bom/projects/"+project.ID, nil, token)
	rows := testutil.ParseListResponse(w)
	if len(rows) != 0 {
		t.Errorf("Expected no rows after removal, got %d", len(rows))
	}
}

func TestBomRemoveBlockedByMovements(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, project.ID, material.ID, 100)
	registerInward(t, env, token, project.ID, material.ID, 10, 10)

	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/bom/projects/"+project.ID+"/materials/"+material.ID, nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "Material Copper Cable has recorded movements and cannot be removed" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}

func TestBomRoleGate(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	env.SeedUser(t, "Store Keeper", "keeper@test.local", "keeper123", "USER", "PROJECTS")
	token := env.Login(t, "keeper@test.local", "keeper123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/bom/projects/"+project.ID, nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "You do not have permission to perform this action" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}
}
