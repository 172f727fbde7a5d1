package rpcio

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
)

func openTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(ops.New(s, nil), nil)
}

func serveOneLine(t *testing.T, srv *Server, line string) Response {
	t.Helper()
	in := strings.NewReader(line + "\n")
	var out bytes.Buffer
	if err := srv.Serve(t.Context(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v (%q)", err, out.String())
	}
	return resp
}

func TestServe_UnknownVerb(t *testing.T) {
	srv := openTestServer(t)
	resp := serveOneLine(t, srv, `{"id":"1","verb":"does_not_exist"}`)
	if resp.Error == nil {
		t.Fatal("expected an error for an unknown verb")
	}
	if resp.Error.Code != "Validation" {
		t.Errorf("Code = %q, want %q", resp.Error.Code, "Validation")
	}
}

func TestServe_MalformedRequest(t *testing.T) {
	srv := openTestServer(t)
	resp := serveOneLine(t, srv, `not json at all`)
	if resp.Error == nil || resp.Error.Code != "Validation" {
		t.Fatalf("expected a Validation error, got %+v", resp.Error)
	}
}

func TestServe_AddFoodItem_RoundTrip(t *testing.T) {
	srv := openTestServer(t)
	req := `{"id":"1","verb":"add_food_item","args":{"name":"Rolled Oats","serving_size":40,"serving_unit":"g","base_unit_type":"mass","grams_per_serving":40,"nutrition":{"calories":150},"preference":"neutral"}}`
	resp := serveOneLine(t, srv, req)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result == nil {
		t.Fatal("expected a result for a successful add_food_item")
	}
}

func TestServe_ValidationErrorEnvelope(t *testing.T) {
	srv := openTestServer(t)
	req := `{"id":"1","verb":"add_food_item","args":{"name":"","serving_size":40,"serving_unit":"g","base_unit_type":"mass","grams_per_serving":40,"preference":"neutral"}}`
	resp := serveOneLine(t, srv, req)
	if resp.Error == nil {
		t.Fatal("expected a Validation error for an empty name")
	}
	if resp.Error.Code != "Validation" {
		t.Errorf("Code = %q, want %q", resp.Error.Code, "Validation")
	}
	if resp.Error.Details["field"] != "name" {
		t.Errorf("Details[field] = %v, want %q", resp.Error.Details["field"], "name")
	}
}

func TestServe_NotFoundErrorEnvelope(t *testing.T) {
	srv := openTestServer(t)
	resp := serveOneLine(t, srv, `{"id":"1","verb":"get_food_item","args":{"id":999}}`)
	if resp.Error == nil {
		t.Fatal("expected a NotFound error")
	}
	if resp.Error.Code != "NotFound" {
		t.Errorf("Code = %q, want %q", resp.Error.Code, "NotFound")
	}
}

func TestServe_BlankLinesAreSkipped(t *testing.T) {
	srv := openTestServer(t)
	in := strings.NewReader("\n\n{\"id\":\"1\",\"verb\":\"start_batch_update\"}\n\n")
	var out bytes.Buffer
	if err := srv.Serve(t.Context(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d response lines for one real request among blanks, want 1: %q", len(lines), out.String())
	}
}

func TestServe_MultipleRequestsOneResponsePerLine(t *testing.T) {
	srv := openTestServer(t)
	in := strings.NewReader(
		`{"id":"1","verb":"start_batch_update"}` + "\n" +
			`{"id":"2","verb":"finish_batch_update"}` + "\n",
	)
	var out bytes.Buffer
	if err := srv.Serve(t.Context(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2", len(lines))
	}
	var first, second Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first response is not valid JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second response is not valid JSON: %v", err)
	}
	if string(first.ID) != `"1"` || string(second.ID) != `"2"` {
		t.Errorf("response ids = %s, %s, want \"1\", \"2\"", first.ID, second.ID)
	}
}

func TestToEnvelope_UnitIncompatible(t *testing.T) {
	srv := openTestServer(t)
	ctx := t.Context()

	addResp := serveOneLine(t, srv, `{"id":"1","verb":"add_food_item","args":{"name":"Rolled Oats","serving_size":40,"serving_unit":"g","base_unit_type":"mass","grams_per_serving":40,"nutrition":{"calories":150},"preference":"neutral"}}`)
	if addResp.Error != nil {
		t.Fatalf("unexpected error adding food item: %+v", addResp.Error)
	}
	created, err := srv.surface.Store.ListFoodItems(ctx, store.FoodItemListFilter{})
	if err != nil || len(created) != 1 {
		t.Fatalf("listing food items: %v (%d items)", err, len(created))
	}
	foodID := created[0].ID

	recipe, err := srv.surface.CreateRecipe(ctx, ops.CreateRecipeArgs{Name: "Oatmeal", ServingsProduced: 1})
	if err != nil {
		t.Fatalf("creating recipe: %v", err)
	}
	req := `{"id":"1","verb":"add_recipe_ingredient","args":{"recipe_id":` +
		jsonInt(recipe.ID) + `,"food_item_id":` + jsonInt(foodID) + `,"quantity":1,"unit":"ml"}}`
	resp := serveOneLine(t, srv, req)
	if resp.Error == nil {
		t.Fatal("expected a UnitIncompatible error for volume units on a mass-based food item")
	}
	if resp.Error.Code != "UnitIncompatible" {
		t.Errorf("Code = %q, want %q", resp.Error.Code, "UnitIncompatible")
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
