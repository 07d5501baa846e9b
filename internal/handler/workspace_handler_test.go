package handler_test

import (
	"net/http"
	"testing"

	"github.com/vebops/store/internal/testutil"
)

func TestBootstrapProjectVisibility(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	adminToken := env.Login(t, "admin@test.local", "admin123")

	alpha := env.SeedProject(t, "P-001", "Plant Alpha")
	beta := env.SeedProject(t, "P-002", "Plant Beta")
	material := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	env.SeedAllocation(t, alpha.ID, material.ID, 100)
	env.SeedAllocation(t, beta.ID, material.ID, 100)
	registerInward(t, env, adminToken, alpha.ID, material.ID, 20, 20)
	registerInward(t, env, adminToken, beta.ID, material.ID, 30, 30)

	// scoped user sees only the assigned project
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/admin/users", map[string]interface{}{
		"name":       "Site Manager",
		"email":      "pm@test.local",
		"password":   "pm123456",
		"role":       "PROJECT_MANAGER",
		"accessType": "PROJECTS",
		"projectIds": []string{alpha.ID},
	}, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	pmToken := env.Login(t, "pm@test.local", "pm123456")

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/bootstrap", nil, pmToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	snapshot := testutil.ParseResponse(w)

	projects := snapshot["projects"].([]interface{})
	if len(projects) != 1 {
		t.Fatalf("Expected 1 visible project, got %d", len(projects))
	}
	if projects[0].(map[string]interface{})["id"] != alpha.ID {
		t.Errorf("Expected Plant Alpha visible, got %v", projects[0])
	}

	bom := snapshot["bom"].(map[string]interface{})
	if len(bom) != 1 {
		t.Errorf("Expected bom for 1 project, got %d", len(bom))
	}
	if _, ok := bom[alpha.ID]; !ok {
		t.Error("Expected bom rows for the assigned project")
	}

	inwardHistory := snapshot["inwardHistory"].([]interface{})
	if len(inwardHistory) != 1 {
		t.Fatalf("Expected 1 visible inward, got %d", len(inwardHistory))
	}
	if inwardHistory[0].(map[string]interface{})["projectId"] != alpha.ID {
		t.Errorf("Expected inward for assigned project, got %v", inwardHistory[0])
	}

	if snapshot["inventoryCodes"].(map[string]interface{})["inwardCode"] == "" {
		t.Error("Expected next inward code in snapshot")
	}

	// ALL access sees everything
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/bootstrap", nil, adminToken)
	snapshot = testutil.ParseResponse(w)
	if len(snapshot["projects"].([]interface{})) != 2 {
		t.Errorf("Expected 2 projects for admin, got %d", len(snapshot["projects"].([]interface{})))
	}
	if len(snapshot["inwardHistory"].([]interface{})) != 2 {
		t.Errorf("Expected 2 inwards for admin, got %d", len(snapshot["inwardHistory"].([]interface{})))
	}
}

func TestMaterialMovementHistory(t *testing.T) {
	env := testutil.SetupServer(t)
	env.SeedAdmin(t)
	token := env.Login(t, "admin@test.local", "admin123")
	project := env.SeedProject(t, "P-001", "Plant Alpha")
	cable := env.SeedMaterial(t, "MAT-001", "Copper Cable", "m")
	rod := env.SeedMaterial(t, "MAT-002", "Steel Rod", "kg")
	env.SeedAllocation(t, project.ID, cable.ID, 100)
	env.SeedAllocation(t, project.ID, rod.ID, 100)

	// one record carrying both materials
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/inwards", map[string]interface{}{
		"projectId": project.ID,
		"lines": []map[string]interface{}{
			{"materialId": cable.ID, "orderedQty": 10, "receivedQty": 10},
			{"materialId": rod.ID, "orderedQty": 5, "receivedQty": 5},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/materials/"+cable.ID+"/inwards", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	inwards := testutil.ParseListResponse(w)
	if len(inwards) != 1 {
		t.Fatalf("Expected 1 inward record, got %d", len(inwards))
	}
	lines := inwards[0]["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("Expected lines filtered to the material, got %d", len(lines))
	}
	if lines[0].(map[string]interface{})["materialId"] != cable.ID {
		t.Errorf("Expected cable line only, got %v", lines[0])
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/materials/"+cable.ID+"/movements", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	movements := testutil.ParseResponse(w)
	if len(movements["inwards"].([]interface{})) != 1 {
		t.Errorf("Expected 1 inward in movements, got %v", movements["inwards"])
	}
	if len(movements["outwards"].([]interface{})) != 0 {
		t.Errorf("Expected no outwards yet, got %v", movements["outwards"])
	}
	if len(movements["transfers"].([]interface{})) != 0 {
		t.Errorf("Expected no transfers yet, got %v", movements["transfers"])
	}

	// unknown material
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/app/materials/missing/movements", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
