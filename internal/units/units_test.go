package units

import "testing"

func TestCategorize(t *testing.T) {
	cases := []struct {
		unit string
		want Category
	}{
		{"g", CategoryMass},
		{"grams", CategoryMass},
		{"KG", CategoryMass},
		{"ml", CategoryVolume},
		{"tbsp", CategoryVolume},
		{"Tablespoons", CategoryVolume},
		{"each", CategoryCount},
		{"slice", CategoryCount},
		{"scoop", CategoryCustom},
		{"patty", CategoryCustom},
	}
	for _, c := range cases {
		if got := Categorize(c.unit); got != c.want {
			t.Errorf("Categorize(%q) = %v, want %v", c.unit, got, c.want)
		}
	}
}

func TestParse_BareUnit(t *testing.T) {
	p := Parse("tbsp")
	if p.BaseUnit != "tbsp" {
		t.Errorf("BaseUnit = %q, want tbsp", p.BaseUnit)
	}
	if p.GramWeight != nil || p.MlAmount != nil {
		t.Errorf("bare unit should carry no annotation, got %+v", p)
	}
	if p.Category != CategoryVolume {
		t.Errorf("Category = %v, want volume", p.Category)
	}
}

func TestParse_GramAnnotation(t *testing.T) {
	p := Parse("tbsp (20g)")
	if p.BaseUnit != "tbsp" {
		t.Errorf("BaseUnit = %q, want tbsp", p.BaseUnit)
	}
	if p.GramWeight == nil || *p.GramWeight != 20 {
		t.Errorf("GramWeight = %v, want 20", p.GramWeight)
	}
	if p.MlAmount != nil {
		t.Errorf("MlAmount should be nil, got %v", *p.MlAmount)
	}
}

func TestParse_MlAnnotation(t *testing.T) {
	p := Parse("cup (240ml)")
	if p.BaseUnit != "cup" {
		t.Errorf("BaseUnit = %q, want cup", p.BaseUnit)
	}
	if p.MlAmount == nil || *p.MlAmount != 240 {
		t.Errorf("MlAmount = %v, want 240", p.MlAmount)
	}
}

func TestInferBaseUnitType(t *testing.T) {
	cases := []struct {
		servingUnit string
		want        BaseUnitType
	}{
		{"g", BaseMass},
		{"kg", BaseMass},
		{"ml", BaseVolume},
		{"cup", BaseVolume},
		{"each", BaseCount},
		// The "8 tbsp bug": a compound serving unit annotated in grams
		// must be inferred as mass, not volume, even though its base
		// token "tbsp" is a volume unit. This is the regression case an
		// earlier version of the smart-unit parser got wrong by
		// classifying on the bare token before checking for an
		// annotation.
		{"8 tbsp (120g)", BaseMass},
		{"tbsp (14.5g)", BaseMass},
		{"cup (240ml)", BaseVolume},
		{"scoop", BaseMass},
	}
	for _, c := range cases {
		if got := InferBaseUnitType(c.servingUnit); got != c.want {
			t.Errorf("InferBaseUnitType(%q) = %v, want %v", c.servingUnit, got, c.want)
		}
	}
}

func TestGramsPerServing(t *testing.T) {
	g, ok := GramsPerServing(2, "tbsp (20g)")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if g != 40 {
		t.Errorf("GramsPerServing = %v, want 40", g)
	}

	g, ok = GramsPerServing(3, "kg")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if g != 3000 {
		t.Errorf("GramsPerServing = %v, want 3000", g)
	}

	_, ok = GramsPerServing(1, "cup")
	if ok {
		t.Error("expected ok=false for a bare volume unit with no gram annotation")
	}
}

func TestMlPerServing(t *testing.T) {
	ml, ok := MlPerServing(1, "cup (240ml)")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if ml != 240 {
		t.Errorf("MlPerServing = %v, want 240", ml)
	}

	ml, ok = MlPerServing(2, "l")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if ml != 2000 {
		t.Errorf("MlPerServing = %v, want 2000", ml)
	}
}

func TestToGrams_AnnotationOverridesFactor(t *testing.T) {
	// A "tbsp" is ordinarily a volume unit; when annotated with a
	// gram weight ToGrams must use the annotation, not fail.
	g, ok := ToGrams(1, "tbsp (14.5g)")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if g != 14.5 {
		t.Errorf("ToGrams = %v, want 14.5", g)
	}
}

func TestToMl_UnknownUnit(t *testing.T) {
	_, ok := ToMl(1, "scoop")
	if ok {
		t.Error("expected ok=false for a custom unit with no ml factor or annotation")
	}
}
